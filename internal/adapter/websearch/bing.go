package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"edututor/internal/domain"
)

// BingSearcher queries the Bing Web Search v7 API. Callers treat any
// failure as an empty result; this adapter just reports it.
type BingSearcher struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewBingSearcher creates a searcher reading its subscription key from
// the named environment variable. An empty key disables the searcher;
// nil is returned with no error so callers can skip the fallback.
func NewBingSearcher(apiKeyEnv, endpoint string) *BingSearcher {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil
	}
	if endpoint == "" {
		endpoint = "https://api.bing.microsoft.com/v7.0/search"
	}
	return &BingSearcher{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

// Search returns up to count ranked snippets for the query.
func (s *BingSearcher) Search(ctx context.Context, query string, count int) ([]domain.WebResult, error) {
	if count <= 0 {
		count = 3
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, "GET", s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("web search returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse web search response: %w", err)
	}

	results := make([]domain.WebResult, 0, len(parsed.WebPages.Value))
	for _, item := range parsed.WebPages.Value {
		results = append(results, domain.WebResult{
			Title:   item.Name,
			URL:     item.URL,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
