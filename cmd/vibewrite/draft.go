package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/csheth/vibewrite/internal/draft"
	"github.com/csheth/vibewrite/internal/llm"
	"github.com/csheth/vibewrite/internal/source"
)

var (
	draftPrompt string
	draftOutput string
	draftDryRun bool
)

func init() {
	draftCmd.Flags().StringVarP(&draftPrompt, "prompt", "p", "", "what the model should write")
	draftCmd.Flags().StringVarP(&draftOutput, "output", "o", "", "where to write (default: the input file, or FILE.revised.md for PDFs)")
	draftCmd.Flags().BoolVar(&draftDryRun, "dry-run", false, "print the draft without writing")
	_ = draftCmd.MarkFlagRequired("prompt")
}

var draftCmd = &cobra.Command{
	Use:   "draft FILE",
	Short: "Ask the model to write new text and append it to FILE",
	Long:  `draft sends --prompt to the configured model and appends the reply to FILE as a new paragraph. A missing FILE is created.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		closer, err := openLogFile(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		doc, err := loadOrEmpty(args[0], cfg.MaxDocumentBytes)
		if err != nil {
			return err
		}
		drafter, err := llm.NewDrafter(cfg.LLM())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Timeout))
		defer cancel()
		result, err := draft.Compose(ctx, drafter, doc.Text, draftPrompt)
		if err != nil {
			return fmt.Errorf("draft: %w", err)
		}

		if draftDryRun {
			fmt.Fprintln(cmd.OutOrStdout(), result.Draft)
			return nil
		}
		path := draftOutput
		if path == "" {
			path = doc.Path
			if !doc.Writable() {
				path = source.RevisedPath(doc.Path)
			}
		}
		if err := source.Save(path, result.Document); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "appended %d characters; wrote %s\n", len([]rune(result.Draft)), path)
		return nil
	},
}

// loadOrEmpty loads path, treating a missing file as an empty document.
func loadOrEmpty(path string, maxBytes int64) (source.Document, error) {
	doc, err := source.Load(path, maxBytes)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return source.Document{}, err
	}
	format, ferr := source.FormatFor(path)
	if ferr != nil {
		return source.Document{}, ferr
	}
	return source.Document{Path: path, Format: format}, nil
}
