package viseme

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cryptocast/cryptocast/pkg/Logger"
)

func testLogger() *Logger.Logger {
	return Logger.New(true)
}

func TestSynthesizeDecodesAudioAndShapes(t *testing.T) {
	audio := []byte{0x52, 0x49, 0x46, 0x46}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Text != "gm everyone" || req.Voice != "en-US-JennyNeural" {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(synthesizeResponse{
			AudioData: base64.StdEncoding.EncodeToString(audio),
			BlendShapes: []Event{
				{Time: 0, Shapes: []float64{0.1, 0.2}},
				{Time: 0.25, Shapes: []float64{0.3, 0.4}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 3, 10*time.Millisecond, testLogger())
	got, events, err := c.Synthesize(context.Background(), "gm everyone", "en-US-JennyNeural")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(got) != len(audio) {
		t.Errorf("expected %d audio bytes, got %d", len(audio), len(got))
	}
	if len(events) != 2 {
		t.Errorf("expected 2 viseme events, got %d", len(events))
	}
}

func TestSynthesizeRetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(synthesizeResponse{
			AudioData: base64.StdEncoding.EncodeToString([]byte{1}),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 3, time.Millisecond, testLogger())
	_, _, err := c.Synthesize(context.Background(), "hello", "v1")
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestSynthesizeExhaustsRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 3, time.Millisecond, testLogger())
	_, _, err := c.Synthesize(context.Background(), "hello", "v1")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestSynthesizeStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, 3, time.Second, testLogger())
	start := time.Now()
	_, _, err := c.Synthesize(ctx, "hello", "v1")
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("cancelled synthesis should not wait out retry delays")
	}
}

func TestSynthesizeRejectsEmptyInput(t *testing.T) {
	c := NewClient("http://localhost:1", 1, time.Millisecond, testLogger())
	if _, _, err := c.Synthesize(context.Background(), "", "v1"); err == nil {
		t.Error("expected error for empty text")
	}
	if _, _, err := c.Synthesize(context.Background(), "hi", ""); err == nil {
		t.Error("expected error for empty voice")
	}
}
