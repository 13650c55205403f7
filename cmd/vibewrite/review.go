package main

import (
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/vibewrite/internal/source"
	"github.com/csheth/vibewrite/internal/suggest"
	"github.com/csheth/vibewrite/internal/tui"
)

var (
	reviewOutput      string
	reviewNoAltScreen bool
)

func init() {
	reviewCmd.Flags().StringVarP(&reviewOutput, "output", "o", "", "where w writes (default: the input file, or FILE.revised.md for PDFs)")
	reviewCmd.Flags().BoolVar(&reviewNoAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
}

var reviewCmd = &cobra.Command{
	Use:   "review FILE",
	Short: "Review suggested rewrites interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logPath, err := cmd.Root().PersistentFlags().GetString("log-file")
		if err != nil {
			return err
		}
		if logPath != "" {
			f, err := tea.LogToFile(logPath, "vibewrite")
			if err != nil {
				return err
			}
			defer f.Close()
		} else {
			log.SetOutput(io.Discard)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		doc, err := source.Load(args[0], cfg.MaxDocumentBytes)
		if err != nil {
			return err
		}
		engine, err := buildEngine(cfg, suggest.NewCounter(""))
		if err != nil {
			return err
		}

		opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
		if !reviewNoAltScreen {
			opts = append(opts, tea.WithAltScreen())
		}
		program := tea.NewProgram(
			tui.New(tui.Config{
				Engine:     engine,
				Document:   doc,
				Options:    cfg.Options(),
				OutputPath: reviewOutput,
			}),
			opts...,
		)
		_, err = program.Run()
		return err
	},
}
