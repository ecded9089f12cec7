package viseme

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cryptocast/cryptocast/pkg/Logger"
)

// Event is one time-aligned animation frame emitted by the synthesis service.
// The front-end drives the avatar's face from these.
type Event struct {
	Time   float64   `json:"time"`
	Shapes []float64 `json:"blendshapes"`
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type synthesizeResponse struct {
	AudioData   string  `json:"audioData"` // base64
	BlendShapes []Event `json:"blendShapes"`
}

// Client talks to the speech synthesis service. A failed request is retried
// up to MaxAttempts times with a fixed delay between attempts; cancellation
// of ctx aborts the in-flight request and stops retrying.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *Logger.Logger
	maxAttempts int
	retryDelay  time.Duration
}

func NewClient(baseURL string, maxAttempts int, retryDelay time.Duration, logger *Logger.Logger) *Client {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:      logger,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// Synthesize converts one line of text into audio plus its viseme track.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, []Event, error) {
	if text == "" {
		return nil, nil, fmt.Errorf("empty text")
	}
	if voiceID == "" {
		return nil, nil, fmt.Errorf("empty voice id")
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		audio, events, err := c.doSynthesize(ctx, text, voiceID)
		if err == nil {
			return audio, events, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		c.logger.Warnf("synthesis attempt %d/%d failed: %v", attempt, c.maxAttempts, err)
		if attempt < c.maxAttempts {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		}
	}
	return nil, nil, fmt.Errorf("synthesis failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) doSynthesize(ctx context.Context, text, voiceID string) ([]byte, []Event, error) {
	payload, err := json.Marshal(synthesizeRequest{Text: text, Voice: voiceID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("synthesis service returned status %d: %s", resp.StatusCode, string(body))
	}

	var out synthesizeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode audio payload: %w", err)
	}

	return audio, out.BlendShapes, nil
}
