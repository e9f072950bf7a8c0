package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"edututor/internal/domain"
	"edututor/internal/port"
)

// Client streams chat completions from an OpenAI-compatible endpoint
// (Groq by default). The request carries stream:true and the response is
// consumed as server-sent events.
type Client struct {
	apiKey      string
	model       string
	url         string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// Config configures the generation client.
type Config struct {
	Model       string
	URL         string
	APIKeyEnv   string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewClient creates a streaming generation client reading its API key
// from the named environment variable.
func NewClient(cfg Config) (*Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.APIKeyEnv)
	}
	if cfg.URL == "" {
		cfg.URL = "https://api.groq.com/openai/v1/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.1-8b-instant"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		apiKey:      apiKey,
		model:       cfg.Model,
		url:         cfg.URL,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient: &http.Client{
			// The timeout covers connection and response headers only;
			// an overall deadline would cut long streams mid-answer.
			Transport: &http.Transport{
				ResponseHeaderTimeout: cfg.Timeout,
			},
		},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatDelta struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamChat issues the generation request and returns the incremental
// response stream. A non-success status fails the whole call with a
// GenerationError before any fragment is yielded.
func (c *Client) StreamChat(ctx context.Context, systemPrompt, userPrompt string) (port.ChatStream, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      true,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &domain.GenerationError{Status: resp.StatusCode, Body: string(body)}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Stream{body: resp.Body, scanner: scanner}, nil
}

// ModelName returns the name of the generation model.
func (c *Client) ModelName() string {
	return c.model
}

// Stream decodes the server-sent event lines of a single response. It is
// single-pass and not restartable.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	skipped int
	done    bool
}

var dataPrefix = []byte("data:")

// Recv returns the next incremental text fragment, or io.EOF when the
// stream is exhausted. Malformed events are skipped and counted, never
// surfaced as errors.
func (s *Stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if !bytes.HasPrefix(line, dataPrefix) {
			s.skipped++
			continue
		}
		payload := bytes.TrimSpace(bytes.TrimPrefix(line, dataPrefix))

		if bytes.Equal(payload, []byte("[DONE]")) {
			s.done = true
			return "", io.EOF
		}

		var delta chatDelta
		if err := json.Unmarshal(payload, &delta); err != nil {
			s.skipped++
			continue
		}
		if len(delta.Choices) == 0 {
			s.skipped++
			continue
		}
		if content := delta.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
		// Role announcements and finish events carry no content.
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("stream read failed: %w", err)
	}
	return "", io.EOF
}

// Skipped reports how many malformed or non-content events were dropped.
func (s *Stream) Skipped() int {
	return s.skipped
}

// Close releases the underlying response body.
func (s *Stream) Close() error {
	return s.body.Close()
}
