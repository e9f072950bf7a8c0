package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"edututor/internal/domain"
)

func openTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHistoryAppendAndAll(t *testing.T) {
	s := openTestHistory(t)

	turns := []domain.Turn{
		{Role: domain.RoleUser, Text: "what is a derivative?", At: time.Now()},
		{Role: domain.RoleAssistant, Text: "the rate of change", At: time.Now()},
	}
	for _, turn := range turns {
		if err := s.Append(turn); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
	if got[0].Role != domain.RoleUser || got[1].Role != domain.RoleAssistant {
		t.Errorf("turns out of order: %+v", got)
	}
	if got[0].Text != turns[0].Text {
		t.Errorf("expected %q, got %q", turns[0].Text, got[0].Text)
	}
}

func TestHistoryRecentWindow(t *testing.T) {
	s := openTestHistory(t)

	for i := 0; i < 8; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		if err := s.Append(domain.Turn{Role: role, Text: fmt.Sprintf("turn %d", i)}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := s.Recent(6)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 6 {
		t.Fatalf("expected 6 turns, got %d", len(recent))
	}
	// Chronological order, starting from turn 2.
	for i, turn := range recent {
		want := fmt.Sprintf("turn %d", i+2)
		if turn.Text != want {
			t.Errorf("position %d: expected %q, got %q", i, want, turn.Text)
		}
	}
}

func TestHistoryRecentFewerThanWindow(t *testing.T) {
	s := openTestHistory(t)
	if err := s.Append(domain.Turn{Role: domain.RoleUser, Text: "hi"}); err != nil {
		t.Fatal(err)
	}

	recent, err := s.Recent(6)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Errorf("expected 1 turn, got %d", len(recent))
	}
}

func TestHistoryClear(t *testing.T) {
	s := openTestHistory(t)

	for i := 0; i < 3; i++ {
		if err := s.Append(domain.Turn{Role: domain.RoleUser, Text: "x"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}

	got, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no turns after clear, got %d", len(got))
	}

	// The store stays usable after a clear.
	if err := s.Append(domain.Turn{Role: domain.RoleUser, Text: "again"}); err != nil {
		t.Fatal(err)
	}
	got, err = s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 turn after re-append, got %d", len(got))
	}
}
