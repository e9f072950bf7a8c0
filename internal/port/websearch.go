package port

import (
	"context"

	"edututor/internal/domain"
)

// WebSearcher returns ranked web snippets for a query.
type WebSearcher interface {
	Search(ctx context.Context, query string, count int) ([]domain.WebResult, error)
}
