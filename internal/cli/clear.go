package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearIndex bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the conversation history",
	Long: `Erase the recorded conversation so the next session starts fresh.
With --index, also discard all indexed document vectors.

Examples:
  edututor clear          # Forget the conversation
  edututor clear --index  # Forget the conversation and the documents`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearIndex, "index", false, "also reset the vector index")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.history.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Println("Conversation history cleared.")

	if clearIndex {
		if err := a.index.Reset(); err != nil {
			return fmt.Errorf("failed to reset index: %w", err)
		}
		fmt.Println("Vector index reset.")
	}
	return nil
}
