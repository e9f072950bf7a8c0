package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"edututor/internal/domain"
)

var (
	askMode  string
	askNoWeb bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and stream the answer",
	Long: `Answer a single question grounded in the ingested documents, streaming
the response to stdout as it is generated. The exchange is recorded in
the conversation history, so follow-up questions keep their context.

Examples:
  edututor ask "what is photosynthesis?"
  edututor ask --mode detailed "explain the chain rule"
  edututor ask --no-web "what does chapter 3 cover?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askMode, "mode", "concise", "answer style: concise or detailed")
	askCmd.Flags().BoolVar(&askNoWeb, "no-web", false, "disable the live web-search fallback")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("empty question")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	chat, err := a.newChat(askNoWeb)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mode := domain.ModeConcise
	if strings.EqualFold(askMode, "detailed") {
		mode = domain.ModeDetailed
	}

	answer, err := chat.Ask(ctx, question, mode, func(fragment string) {
		fmt.Print(fragment)
	})
	if err != nil {
		if answer != nil {
			fmt.Println(answer.Text)
		}
		return err
	}
	fmt.Println()

	if len(answer.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
	}
	for _, r := range answer.WebResults {
		fmt.Printf("Web: %s (%s)\n", r.Title, r.URL)
	}
	return nil
}
