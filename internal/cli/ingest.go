package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"edututor/internal/adapter/chunker"
	"edututor/internal/adapter/fs"
	"edututor/internal/usecase"
)

var ingestExcludes []string

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Index documents for retrieval",
	Long: `Collect PDF, text and markdown documents from the given files and
directories, chunk them into word windows, embed each chunk and add it
to the vector index.

Examples:
  edututor ingest .                       # Ingest current directory
  edututor ingest notes.pdf chapter1.md   # Ingest specific files
  edututor ingest notes --exclude "drafts/**"`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringSliceVar(&ingestExcludes, "exclude", nil, "glob patterns to skip")
	rootCmd.AddCommand(ingestCmd)
}

// collectDocuments resolves each argument to document files: directories
// are walked, files are taken as-is.
func collectDocuments(paths []string, excludes []string) ([]string, error) {
	walker := fs.NewWalker(nil, excludes)
	var files []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("path does not exist: %w", err)
		}
		if info.IsDir() {
			found, err := walker.Walk(abs)
			if err != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", abs, err)
			}
			files = append(files, found...)
		} else {
			files = append(files, abs)
		}
	}
	return files, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{GetRootDir()}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	files, err := collectDocuments(paths, ingestExcludes)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	chk, err := chunker.NewWordChunker(a.cfg.Index.ChunkSize, a.cfg.Index.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}
	ingestUC := usecase.NewIngestUseCase(chk, a.embedder, a.index, a.queries)

	fmt.Printf("Ingesting %d documents...\n", len(files))

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	result, err := ingestUC.Ingest(files, func(processed, total int, currentFile string) {
		bar.Set(processed)
		if currentFile != "" {
			bar.Describe(fmt.Sprintf("[cyan]Ingesting[reset] %s", filepath.Base(currentFile)))
		}
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files ingested: %d\n", result.FilesIngested)
	fmt.Printf("  Chunks indexed: %d\n", result.ChunksIndexed)
	fmt.Printf("  Index size:     %d vectors\n", a.index.Count())

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nIndex stored at: %s\n", a.indexDir)
	return nil
}
