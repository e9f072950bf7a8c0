package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"edututor/internal/adapter/chunker"
	"edututor/internal/api"
	"edututor/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the assistant over HTTP",
	Long: `Start an HTTP server with ingestion, retrieval and question-answering
endpoints. Answers stream back as server-sent events.

Endpoints:
  POST /api/ingest         {"path": "/docs"}
  POST /api/query          {"query": "...", "top_k": 5}
  POST /api/ask            {"question": "...", "mode": "concise"}
  GET  /api/stats
  GET  /api/history
  POST /api/history/clear
  GET  /health`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	chk, err := chunker.NewWordChunker(a.cfg.Index.ChunkSize, a.cfg.Index.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}

	chat, err := a.newChat(false)
	if err != nil {
		return err
	}

	handler := api.NewHandler(
		usecase.NewIngestUseCase(chk, a.embedder, a.index, a.queries),
		a.newRetriever(),
		chat,
		a.index,
		a.cfg.Generation.Model,
	)

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("Serving on %s (%d chunks indexed)\n", serveAddr, a.index.Count())
	return srv.ListenAndServe()
}
