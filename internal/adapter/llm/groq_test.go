package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edututor/internal/domain"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	t.Setenv("TEST_GROQ_KEY", "test-key")
	c, err := NewClient(Config{
		Model:     "llama-3.1-8b-instant",
		URL:       url,
		APIKeyEnv: "TEST_GROQ_KEY",
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func collect(t *testing.T, c *Client) (string, int, error) {
	t.Helper()
	stream, err := c.StreamChat(context.Background(), "system", "user")
	if err != nil {
		return "", 0, err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sb.String(), stream.Skipped(), err
		}
		sb.WriteString(fragment)
	}
	return sb.String(), stream.Skipped(), nil
}

func TestStreamChatYieldsDeltas(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"choices":[{"delta":{"role":"assistant"}}]}`+"\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"Hello"}}]}`+"\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":", world"}}]}`+"\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer ts.Close()

	got, _, err := collect(t, newTestClient(t, ts.URL))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello, world" {
		t.Errorf("expected %q, got %q", "Hello, world", got)
	}
}

func TestStreamChatSkipsMalformedEvents(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "data: {not json at all\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"ok"}}]}`+"\n\n")
		io.WriteString(w, ": keepalive comment\n\n")
		io.WriteString(w, `data: {"choices":[]}`+"\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer ts.Close()

	got, skipped, err := collect(t, newTestClient(t, ts.URL))
	if err != nil {
		t.Fatal(err)
	}
	if got != "ok" {
		t.Errorf("expected %q, got %q", "ok", got)
	}
	if skipped != 3 {
		t.Errorf("expected 3 skipped events, got %d", skipped)
	}
}

func TestStreamChatHTTPErrorFailsWholeCall(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := newTestClient(t, ts.URL).StreamChat(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error for non-success status")
	}

	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T: %v", err, err)
	}
	if genErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", genErr.Status)
	}
	if !strings.Contains(genErr.Body, "rate limited") {
		t.Errorf("expected body to carry server message, got %q", genErr.Body)
	}
}

func TestStreamChatServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newTestClient(t, ts.URL).StreamChat(context.Background(), "s", "u")
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", genErr.Status)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("TEST_EMPTY_KEY", "")
	if _, err := NewClient(Config{APIKeyEnv: "TEST_EMPTY_KEY"}); err == nil {
		t.Error("expected error when API key env is empty")
	}
}
