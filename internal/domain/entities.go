package domain

import "time"

// Chunk is a bounded text window extracted from a document for
// independent embedding and retrieval.
type Chunk struct {
	ID   string
	Text string
}

// Metadata is the record stored alongside each vector in the index.
// Position i in the metadata list always corresponds to position i in
// the vector list.
type Metadata struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SearchHit is a retrieval result. Score is the L2 distance between the
// query vector and the stored vector; lower means more similar.
type SearchHit struct {
	Score    float64
	Metadata Metadata
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single conversation entry.
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Mode selects the response style requested from the model.
type Mode string

const (
	ModeConcise  Mode = "Concise"
	ModeDetailed Mode = "Detailed"
)

// WebResult is a single ranked web-search snippet.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
