package port

// Chunker splits extracted document text into overlapping windows.
type Chunker interface {
	// Chunk returns the ordered sequence of text windows for the input.
	// Empty or whitespace-only input yields no chunks and no error.
	Chunk(text string) []string
}
