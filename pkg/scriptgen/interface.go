package scriptgen

import "context"

// Usage reports token spend for one completed generation.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// UsageHook is invoked after a successful generation. Billing owns what
// happens with it; generation only triggers it.
type UsageHook func(ctx context.Context, usage Usage)

// Generator produces a broadcast transcript from a prompt. Implementations do
// not retry internally; the caller decides whether to re-dispatch a segment.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
