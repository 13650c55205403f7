package tui

import (
	"github.com/csheth/vibewrite/internal/revise"
)

type stage int

const (
	stageAnalyzing stage = iota
	stageReview
	stageSaving
)

const heroTagline = "Review paragraph rewrites one at a time."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	listPreviewLimit          = 120
)

type progressMsg revise.ProgressEvent

type progressClosedMsg struct{}

type analysisResultMsg struct {
	generation int
	report     revise.Report
	err        error
}

type saveResultMsg struct {
	path  string
	bytes int
	err   error
}
