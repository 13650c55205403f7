package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:           "vibewrite",
	Short:         "Paragraph-by-paragraph revision assistant",
	Long:          `vibewrite asks a language model to rewrite each paragraph of a document and lets you review, apply or discard every suggestion.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(serveMCPCmd)
	rootCmd.AddCommand(versionCmd)

	registerPersistentFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func registerPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to a vibewrite.toml or vibewrite.yaml file")
	flags.String("provider", "", "language model provider (ollama|openai)")
	flags.String("model", "", "model name")
	flags.String("endpoint", "", "service base URL")
	flags.Int("concurrency", 0, "paragraphs revised at once")
	flags.Duration("timeout", 0, "per-paragraph request timeout")
	flags.Float64("temperature", 0, "sampling temperature")
	flags.String("cache-dir", "", "directory for cached replies")
	flags.Bool("no-cache", false, "disable the reply cache")
	flags.String("log-file", "", "append log output to this file")
	flags.String("color", "auto", "colorize output (auto|on|off)")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
