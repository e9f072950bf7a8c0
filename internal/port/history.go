package port

import "edututor/internal/domain"

// HistoryStore records conversation turns in append order.
type HistoryStore interface {
	// Append adds a turn to the end of the conversation.
	Append(turn domain.Turn) error

	// Recent returns the last n turns in chronological order.
	Recent(n int) ([]domain.Turn, error)

	// All returns every recorded turn in chronological order.
	All() ([]domain.Turn, error)

	// Clear removes all recorded turns.
	Clear() error
}
