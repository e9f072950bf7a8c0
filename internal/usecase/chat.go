package usecase

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"log"
	"strings"
	"text/template"

	"edututor/internal/domain"
	"edututor/internal/port"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// FallbackAnswer is shown and recorded when generation fails; the
// conversation stays usable for the next question.
const FallbackAnswer = "Sorry, something went wrong while generating the answer."

// ChatOptions tunes prompt composition.
type ChatOptions struct {
	TopK         int // retrieval depth
	SnippetChars int // per-hit snippet cap in the prompt
	MemoryTurns  int // conversation turns fed to the model
	WebCount     int // web results requested on fallback
}

func (o *ChatOptions) applyDefaults() {
	if o.TopK <= 0 {
		o.TopK = 5
	}
	if o.SnippetChars <= 0 {
		o.SnippetChars = 1000
	}
	if o.MemoryTurns <= 0 {
		o.MemoryTurns = 6
	}
	if o.WebCount <= 0 {
		o.WebCount = 3
	}
}

// ChatUseCase composes generation requests from conversation memory,
// retrieved document context and the question, and streams the answer.
type ChatUseCase struct {
	history   port.HistoryStore
	retriever *RetrieveUseCase  // nil when no documents are ingested
	llm       port.LLM
	searcher  port.WebSearcher // nil when web search is not configured
	opts      ChatOptions

	systemPrompt string
	userTmpl     *template.Template
}

// NewChatUseCase creates the chat orchestrator.
func NewChatUseCase(history port.HistoryStore, retriever *RetrieveUseCase, llm port.LLM, searcher port.WebSearcher, opts ChatOptions) (*ChatUseCase, error) {
	opts.applyDefaults()

	system, err := promptTemplates.ReadFile("templates/system_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("system prompt template missing: %w", err)
	}

	userContent, err := promptTemplates.ReadFile("templates/user_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("user prompt template missing: %w", err)
	}
	userTmpl, err := template.New("user_prompt").Parse(string(userContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse user prompt template: %w", err)
	}

	return &ChatUseCase{
		history:      history,
		retriever:    retriever,
		llm:          llm,
		searcher:     searcher,
		opts:         opts,
		systemPrompt: string(system),
		userTmpl:     userTmpl,
	}, nil
}

// Answer is the outcome of one question.
type Answer struct {
	Text          string
	Sources       []string           // chunk IDs cited into the prompt
	WebResults    []domain.WebResult // live results injected on fallback
	SkippedEvents int                // malformed stream events dropped
}

type promptData struct {
	Memory     string
	DocContext string
	WebContext string
	Question   string
	Mode       domain.Mode
}

// Ask records the question, composes the prompt and streams the answer
// through onDelta. The user turn is recorded before generation, so a
// failed generation still leaves the question in history alongside the
// fallback answer.
func (u *ChatUseCase) Ask(ctx context.Context, question string, mode domain.Mode, onDelta func(string)) (*Answer, error) {
	if mode != domain.ModeDetailed {
		mode = domain.ModeConcise
	}

	if err := u.history.Append(domain.Turn{Role: domain.RoleUser, Text: question}); err != nil {
		return nil, fmt.Errorf("failed to record question: %w", err)
	}

	memory, err := u.memoryContext()
	if err != nil {
		return nil, err
	}

	var hits []domain.SearchHit
	if u.retriever != nil {
		hits, err = u.retriever.Retrieve(question, u.opts.TopK)
		if err != nil {
			return nil, fmt.Errorf("retrieval failed: %w", err)
		}
	}
	docContext, sources := u.docContext(hits)

	// Live web search is a fallback: only consulted when the documents
	// offer nothing, and any failure degrades to no web context.
	var webResults []domain.WebResult
	if len(hits) == 0 && u.searcher != nil {
		webResults, err = u.searcher.Search(ctx, question, u.opts.WebCount)
		if err != nil {
			log.Printf("warning: web search failed, continuing without web context: %v", err)
			webResults = nil
		}
	}
	webContext := formatWebContext(webResults)

	var buf bytes.Buffer
	err = u.userTmpl.Execute(&buf, promptData{
		Memory:     memory,
		DocContext: docContext,
		WebContext: webContext,
		Question:   question,
		Mode:       mode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compose prompt: %w", err)
	}

	answer := &Answer{Sources: sources, WebResults: webResults}

	stream, err := u.llm.StreamChat(ctx, u.systemPrompt, buf.String())
	if err != nil {
		return u.recordFailure(answer, err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		fragment, recvErr := stream.Recv()
		if recvErr == io.EOF {
			break
		}
		if recvErr != nil {
			answer.SkippedEvents = stream.Skipped()
			return u.recordFailure(answer, recvErr)
		}
		sb.WriteString(fragment)
		if onDelta != nil {
			onDelta(fragment)
		}
	}

	answer.Text = sb.String()
	answer.SkippedEvents = stream.Skipped()
	if answer.SkippedEvents > 0 {
		log.Printf("warning: dropped %d malformed stream events", answer.SkippedEvents)
	}

	if err := u.history.Append(domain.Turn{Role: domain.RoleAssistant, Text: answer.Text}); err != nil {
		return answer, fmt.Errorf("failed to record answer: %w", err)
	}
	return answer, nil
}

// recordFailure stores the fallback answer so the conversation keeps a
// complete turn sequence, then surfaces the original error.
func (u *ChatUseCase) recordFailure(answer *Answer, cause error) (*Answer, error) {
	answer.Text = FallbackAnswer
	if err := u.history.Append(domain.Turn{Role: domain.RoleAssistant, Text: FallbackAnswer}); err != nil {
		log.Printf("warning: failed to record fallback answer: %v", err)
	}
	return answer, cause
}

func (u *ChatUseCase) memoryContext() (string, error) {
	turns, err := u.history.Recent(u.opts.MemoryTurns)
	if err != nil {
		return "", fmt.Errorf("failed to load conversation memory: %w", err)
	}
	var sb strings.Builder
	for _, turn := range turns {
		sb.WriteString(string(turn.Role))
		sb.WriteString(": ")
		sb.WriteString(turn.Text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (u *ChatUseCase) docContext(hits []domain.SearchHit) (string, []string) {
	var sb strings.Builder
	sources := make([]string, 0, len(hits))
	for _, hit := range hits {
		snippet := hit.Metadata.Text
		if runes := []rune(snippet); len(runes) > u.opts.SnippetChars {
			snippet = string(runes[:u.opts.SnippetChars])
		}
		fmt.Fprintf(&sb, "[DOC:%s] %s\n\n", hit.Metadata.ID, snippet)
		sources = append(sources, hit.Metadata.ID)
	}
	return sb.String(), sources
}

func formatWebContext(results []domain.WebResult) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "[WEB:%d] %s - %s (%s)\n", i+1, r.Title, r.Snippet, r.URL)
	}
	return sb.String()
}

// History returns the full recorded conversation for display.
func (u *ChatUseCase) History() ([]domain.Turn, error) {
	return u.history.All()
}

// ClearHistory erases the recorded conversation.
func (u *ChatUseCase) ClearHistory() error {
	return u.history.Clear()
}
