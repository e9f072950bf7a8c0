package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Inspect retrieval without generation",
	Long: `Embed the query and print the nearest document chunks by L2 distance.
Useful for checking what context a question would pull in.

Examples:
  edututor query -q "photosynthesis"
  edututor query -q "derivatives" -k 10 --json`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	topK := queryTopK
	if topK <= 0 {
		topK = a.cfg.Retrieve.TopK
	}

	hits, err := a.newRetriever().Retrieve(queryText, topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if queryJSON {
		type hitOut struct {
			ID    string  `json:"id"`
			Score float64 `json:"score"`
			Text  string  `json:"text"`
		}
		out := make([]hitOut, len(hits))
		for i, h := range hits {
			out[i] = hitOut{ID: h.Metadata.ID, Score: h.Score, Text: h.Metadata.Text}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(hits) == 0 {
		fmt.Println("No results. Is the index empty? Run 'edututor ingest' first.")
		return nil
	}

	for i, h := range hits {
		fmt.Printf("%d. %s (distance %.4f)\n", i+1, h.Metadata.ID, h.Score)
		snippet := h.Metadata.Text
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		fmt.Printf("   %s\n\n", snippet)
	}
	return nil
}
