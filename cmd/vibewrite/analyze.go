package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/csheth/vibewrite/internal/diff"
	"github.com/csheth/vibewrite/internal/mcptools"
	"github.com/csheth/vibewrite/internal/revise"
	"github.com/csheth/vibewrite/internal/source"
	"github.com/csheth/vibewrite/internal/suggest"
)

var (
	analyzeApply  bool
	analyzeOutput string
	analyzeJSON   bool
)

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeApply, "apply", false, "apply every suggestion and write the result")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "where --apply writes (default: the input file, or FILE.revised.md for PDFs)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Run one revision pass and print the suggested rewrites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeOutput != "" && !analyzeApply {
			return errors.New("--output only makes sense with --apply")
		}
		closer, err := openLogFile(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		report, err := engine.Analyze(ctx, doc.Text, cfg.Options())
		if err != nil {
			return fmt.Errorf("analyze %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if analyzeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(mcptools.NewAnalyzeDocumentOutput(report)); err != nil {
				return err
			}
		} else {
			useColor, err := colorMode(cmd, os.Stdout)
			if err != nil {
				return err
			}
			printReport(out, filepath.Base(doc.Path), report, newPalette(useColor))
		}

		if analyzeApply {
			if err := applyAndWrite(cmd.ErrOrStderr(), engine, doc, analyzeOutput); err != nil {
				return err
			}
		}
		if report.Requested > 0 && len(report.Failures) == report.Requested {
			return fmt.Errorf("all %d paragraphs failed", report.Requested)
		}
		return nil
	},
}

func applyAndWrite(w io.Writer, engine *revise.Engine, doc source.Document, output string) error {
	result := engine.ApplyAll(doc.Text)
	if len(result.Applied) == 0 {
		fmt.Fprintln(w, "nothing to apply")
		return nil
	}
	path := output
	if path == "" {
		path = doc.Path
		if !doc.Writable() {
			path = source.RevisedPath(doc.Path)
		}
	}
	if err := source.Save(path, result.Text); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(w, "applied %d suggestion(s), %d stale; wrote %s\n", len(result.Applied), len(result.Stale), path)
	return nil
}

type palette struct {
	added   *color.Color
	removed *color.Color
	header  *color.Color
	dim     *color.Color
	warn    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed, color.CrossedOut),
		header:  color.New(color.FgCyan, color.Bold),
		dim:     color.New(color.Faint),
		warn:    color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.added, p.removed, p.header, p.dim, p.warn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func printReport(w io.Writer, name string, report revise.Report, p palette) {
	fmt.Fprintf(w, "%s: %d paragraphs, %d requested, %d suggestion(s), %d unchanged, %d failed\n",
		name, report.Paragraphs, report.Requested, len(report.Suggestions), len(report.Unchanged), len(report.Failures))

	for _, sg := range report.Suggestions {
		stats := diff.Summarize(sg.Diff)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n",
			p.header.Sprintf("¶%d", sg.ParagraphIndex+1),
			p.dim.Sprintf("[%s] +%d -%d", sg.ID, stats.Added, stats.Removed))
		for _, seg := range sg.Diff {
			switch seg.Kind {
			case diff.Added:
				fmt.Fprint(w, p.added.Sprint(seg.Text))
			case diff.Removed:
				fmt.Fprint(w, p.removed.Sprint(seg.Text))
			default:
				fmt.Fprint(w, seg.Text)
			}
		}
		fmt.Fprintln(w)
	}

	if len(report.Failures) > 0 {
		fmt.Fprintln(w)
		for _, f := range report.Failures {
			fmt.Fprintln(w, p.warn.Sprintf("paragraph %d failed (%s): %v", f.Index+1, f.Kind, f.Err))
		}
	}
}
