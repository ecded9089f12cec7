package billing

import (
	"context"
	"fmt"

	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/cryptocast/cryptocast/pkg/scriptgen"
	"github.com/go-redis/redis"
)

// CreditLedger tracks remaining generation credit in redis. One credit is
// one token of model usage; the balance is debited after each successful
// generation and topped up out of band by the billing pipeline.
type CreditLedger struct {
	rc     *redis.Client
	key    string
	logger *Logger.Logger
}

func NewCreditLedger(rc *redis.Client, key string, logger *Logger.Logger) *CreditLedger {
	if key == "" {
		key = "broadcast:credits"
	}
	return &CreditLedger{rc: rc, key: key, logger: logger}
}

// Debit subtracts one generation's token spend from the balance. The balance
// is allowed to go negative; cutting off mid-broadcast is a policy decision
// made elsewhere.
func (c *CreditLedger) Debit(usage scriptgen.Usage) error {
	total := usage.PromptTokens + usage.CompletionTokens
	if total <= 0 {
		return nil
	}
	remaining, err := c.rc.DecrBy(c.key, total).Result()
	if err != nil {
		return fmt.Errorf("failed to debit credits: %w", err)
	}
	c.logger.Debugf("debited %d credits, %d remaining", total, remaining)
	return nil
}

// Balance returns the remaining credit. A missing key reads as zero.
func (c *CreditLedger) Balance() (int64, error) {
	balance, err := c.rc.Get(c.key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read credit balance: %w", err)
	}
	return balance, nil
}

// TopUp adds credit to the balance.
func (c *CreditLedger) TopUp(amount int64) (int64, error) {
	balance, err := c.rc.IncrBy(c.key, amount).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to top up credits: %w", err)
	}
	return balance, nil
}

// Hook adapts the ledger to the generation client's usage callback. Debit
// failures are logged, never propagated: billing must not break the show.
func (c *CreditLedger) Hook() scriptgen.UsageHook {
	return func(ctx context.Context, usage scriptgen.Usage) {
		if err := c.Debit(usage); err != nil {
			c.logger.Warnf("credit debit failed: %v", err)
		}
	}
}
