package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/vibewrite/internal/paragraph"
	"github.com/csheth/vibewrite/internal/revise"
	"github.com/csheth/vibewrite/internal/source"
)

// analyzeJob runs one pass and streams progress into events, which it closes
// when the pass ends. The channel is sized so OnProgress never blocks.
func analyzeJob(engine *revise.Engine, text string, opts revise.Options, generation int) (jobRunner, <-chan revise.ProgressEvent) {
	events := make(chan revise.ProgressEvent, 3*len(paragraph.Segment(text))+1)
	opts.OnProgress = func(ev revise.ProgressEvent) {
		events <- ev
	}
	return func(ctx context.Context) (tea.Msg, error) {
		defer close(events)
		report, err := engine.Analyze(ctx, text, opts)
		return analysisResultMsg{generation: generation, report: report, err: err}, err
	}, events
}

func listenForProgress(events <-chan revise.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return progressClosedMsg{}
		}
		return progressMsg(ev)
	}
}

func saveJob(path, text string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		if err := source.Save(path, text); err != nil {
			return saveResultMsg{path: path, err: err}, err
		}
		return saveResultMsg{path: path, bytes: len(text)}, nil
	}
}
