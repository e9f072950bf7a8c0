package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"edututor/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "edututor",
	Short: "EduTutor - question answering grounded in your own study documents",
	Long: `EduTutor ingests study documents (PDF, text, markdown), indexes them
as embedding vectors and answers questions with a streamed LLM response
grounded in the closest document chunks. When the documents offer
nothing, an optional live web search fills the gap.

Example usage:
  edututor ingest ./notes           # Index a folder of documents
  edututor query -q "photosynthesis" # Inspect retrieval directly
  edututor ask "what is a limit?"   # One-shot streamed answer
  edututor chat                     # Interactive tutoring session
  edututor serve                    # Expose the assistant over HTTP`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// Credentials commonly live in a local .env file.
		_ = godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./edututor.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
