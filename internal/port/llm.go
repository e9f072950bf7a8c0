package port

import "context"

// ChatStream is a single-pass incremental sequence of answer fragments.
// Recv returns io.EOF when the stream is exhausted.
type ChatStream interface {
	Recv() (string, error)

	// Skipped reports how many malformed or non-content events were
	// dropped while decoding the stream.
	Skipped() int

	Close() error
}

// LLM is a streaming chat-completion client.
type LLM interface {
	// StreamChat issues a generation request and exposes the response
	// incrementally. A non-success HTTP status fails the whole call
	// before any fragment is yielded.
	StreamChat(ctx context.Context, systemPrompt, userPrompt string) (ChatStream, error)

	// ModelName returns the name of the generation model.
	ModelName() string
}
