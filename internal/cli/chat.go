package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"edututor/internal/adapter/chunker"
	"edututor/internal/tui"
	"edututor/internal/usecase"
)

var chatNoWeb bool

var chatCmd = &cobra.Command{
	Use:   "chat [paths...]",
	Short: "Start an interactive tutoring session",
	Long: `Open a terminal chat over the ingested documents. Paths given as
arguments are ingested first. Answers stream in as they are generated
and the conversation is recorded, so the session can be resumed later.

Keys:
  Enter    ask the typed question
  Tab      toggle concise/detailed answers
  Ctrl+L   clear the conversation history
  Ctrl+C   quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNoWeb, "no-web", false, "disable the live web-search fallback")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) > 0 {
		files, err := collectDocuments(args, nil)
		if err != nil {
			return err
		}
		chk, err := chunker.NewWordChunker(a.cfg.Index.ChunkSize, a.cfg.Index.ChunkOverlap)
		if err != nil {
			return fmt.Errorf("invalid chunking config: %w", err)
		}
		result, err := usecase.NewIngestUseCase(chk, a.embedder, a.index, a.queries).Ingest(files, nil)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		fmt.Printf("Ingested %d documents (%d chunks).\n", result.FilesIngested, result.ChunksIndexed)
		for _, warning := range result.Warnings {
			fmt.Printf("  warning: %s\n", warning)
		}
	}

	chat, err := a.newChat(chatNoWeb)
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("%d chunks indexed | model %s", a.index.Count(), a.cfg.Generation.Model)
	if a.index.Count() == 0 {
		summary = "No documents ingested yet; answering from general knowledge. | " + summary
	}

	program := tea.NewProgram(tui.New(chat, summary), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
