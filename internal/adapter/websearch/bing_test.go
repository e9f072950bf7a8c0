package websearch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBingSearchParsesResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "bing-key" {
			t.Errorf("missing subscription key header, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "pythagorean theorem" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("count"); got != "2" {
			t.Errorf("unexpected count %q", got)
		}
		io.WriteString(w, `{"webPages":{"value":[
			{"name":"First","url":"https://a.example","snippet":"a^2+b^2=c^2"},
			{"name":"Second","url":"https://b.example","snippet":"proof sketch"}
		]}}`)
	}))
	defer ts.Close()

	t.Setenv("TEST_BING_KEY", "bing-key")
	s := NewBingSearcher("TEST_BING_KEY", ts.URL)
	if s == nil {
		t.Fatal("expected searcher to be constructed")
	}

	results, err := s.Search(context.Background(), "pythagorean theorem", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "First" || results[0].URL != "https://a.example" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
}

func TestBingSearchErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer ts.Close()

	t.Setenv("TEST_BING_KEY", "bing-key")
	s := NewBingSearcher("TEST_BING_KEY", ts.URL)

	if _, err := s.Search(context.Background(), "anything", 3); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestBingSearcherDisabledWithoutKey(t *testing.T) {
	t.Setenv("TEST_BING_KEY", "")
	if s := NewBingSearcher("TEST_BING_KEY", ""); s != nil {
		t.Error("expected nil searcher when credential is absent")
	}
}
