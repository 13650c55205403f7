package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/vibewrite/internal/revise"
	"github.com/csheth/vibewrite/internal/source"
	"github.com/csheth/vibewrite/internal/suggest"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Engine   *revise.Engine
	Document source.Document
	Options  revise.Options
	// OutputPath overrides where w writes; defaults to the document path, or
	// a .revised.md sibling for read-only formats.
	OutputPath string
}

type passStats struct {
	total     int
	finished  int
	failed    int
	unchanged int
}

type model struct {
	config Config
	stage  stage
	jobs   *jobBus
	layout pageLayout

	spinner  spinner.Model
	progress progress.Model
	viewport viewport.Model

	ctx    context.Context
	cancel context.CancelFunc

	document   string
	dirty      bool
	pending    []suggest.Suggestion
	cursor     int
	generation int
	events     <-chan revise.ProgressEvent
	pass       passStats
	failures   []revise.Failure
	applied    int
	stale      int

	activeJobs    map[string]jobSnapshot
	infoMessage   string
	errorMessage  string
	helpVisible   bool
	viewportDirty bool
}

// New returns a tea.Model ready to be mounted into a Program. The first
// analysis pass starts from Init.
func New(config Config) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spinnerStyle

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true

	ctx, cancel := context.WithCancel(context.Background())
	return &model{
		config:        config,
		stage:         stageAnalyzing,
		jobs:          newJobBus(),
		layout:        newPageLayout(),
		spinner:       spin,
		progress:      prog,
		viewport:      vp,
		ctx:           ctx,
		cancel:        cancel,
		document:      config.Document.Text,
		activeJobs:    map[string]jobSnapshot{},
		viewportDirty: true,
	}
}

func (m *model) Init() tea.Cmd {
	return m.startAnalysis(false)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageAnalyzing || m.stage == stageSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case progress.FrameMsg:
		updated, cmd := m.progress.Update(msg)
		m.progress = updated.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.progress.Width = m.layout.viewportWidth
		m.markViewportDirty()
		return m, nil
	case jobSignalMsg:
		m.activeJobs[msg.Snapshot.ID] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		delete(m.activeJobs, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case progressMsg:
		cmd := m.applyProgress(revise.ProgressEvent(msg))
		return m, tea.Batch(cmd, listenForProgress(m.events))
	case progressClosedMsg:
		m.events = nil
		return m, nil
	case analysisResultMsg:
		return m.finishAnalysis(msg)
	case saveResultMsg:
		m.stage = stageReview
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("write failed: %v", msg.err)
			m.infoMessage = "Press w to retry."
			return m, nil
		}
		m.dirty = false
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Wrote %d bytes to %s", msg.bytes, msg.path)
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "q", "esc":
		if m.helpVisible && key.String() == "esc" {
			m.helpVisible = false
			return m, nil
		}
		m.cancel()
		return m, tea.Quit
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	}
	if m.stage != stageReview {
		return m, nil
	}

	switch key.String() {
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "g", "home":
		m.moveCursor(-len(m.pending))
	case "G", "end":
		m.moveCursor(len(m.pending))
	case "a", "enter":
		m.applySelected()
	case "d", "backspace":
		m.discardSelected()
	case "A":
		m.applyAll()
	case "r":
		return m, m.startAnalysis(true)
	case "w":
		return m, m.writeDocument()
	case "pgdown", "pgup", "ctrl+d", "ctrl+u":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	}
	return m, nil
}

func (m *model) startAnalysis(replace bool) tea.Cmd {
	if m.config.Engine == nil {
		m.stage = stageReview
		m.errorMessage = "no revision engine configured"
		return nil
	}
	m.generation++
	m.stage = stageAnalyzing
	m.pass = passStats{}
	m.failures = nil
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Asking %s for rewrites…", m.config.Engine.Name())

	opts := m.config.Options
	opts.Replace = replace
	runner, events := analyzeJob(m.config.Engine, m.document, opts, m.generation)
	m.events = events
	return tea.Batch(
		m.jobs.Start(m.ctx, jobKindAnalyze, runner),
		listenForProgress(events),
		m.spinner.Tick,
		m.progress.SetPercent(0),
	)
}

func (m *model) applyProgress(ev revise.ProgressEvent) tea.Cmd {
	m.pass.total = ev.Total
	switch ev.Status {
	case revise.ProgressDone:
		m.pass.finished++
	case revise.ProgressUnchanged:
		m.pass.finished++
		m.pass.unchanged++
	case revise.ProgressFailed:
		m.pass.finished++
		m.pass.failed++
	default:
		return nil
	}
	if m.pass.total == 0 {
		return nil
	}
	return m.progress.SetPercent(float64(m.pass.finished) / float64(m.pass.total))
}

func (m *model) finishAnalysis(msg analysisResultMsg) (tea.Model, tea.Cmd) {
	if msg.generation != m.generation {
		return m, nil
	}
	m.stage = stageReview
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		m.errorMessage = fmt.Sprintf("analysis failed: %v", msg.err)
		m.refreshPending()
		return m, nil
	}
	m.failures = msg.report.Failures
	m.refreshPending()
	m.cursor = 0
	switch {
	case len(m.pending) == 0 && len(m.failures) == 0:
		m.infoMessage = "No changes suggested. The document reads fine."
	case len(m.pending) == 0:
		m.infoMessage = fmt.Sprintf("No suggestions; %d paragraph(s) failed.", len(m.failures))
	default:
		m.infoMessage = fmt.Sprintf("%d suggestion(s) ready. a applies, d discards.", len(m.pending))
	}
	if len(m.failures) > 0 {
		m.errorMessage = failureSummary(m.failures)
	}
	return m, nil
}

func (m *model) selected() (suggest.Suggestion, bool) {
	if m.cursor < 0 || m.cursor >= len(m.pending) {
		return suggest.Suggestion{}, false
	}
	return m.pending[m.cursor], true
}

func (m *model) applySelected() {
	sg, ok := m.selected()
	if !ok {
		m.infoMessage = "Nothing to apply."
		return
	}
	updated, err := m.config.Engine.Apply(sg.ID, m.document)
	switch {
	case err == nil:
		m.document = updated
		m.dirty = true
		m.applied++
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Applied rewrite of paragraph %d.", sg.ParagraphIndex+1)
	case errors.Is(err, revise.ErrStale):
		m.stale++
		m.errorMessage = fmt.Sprintf("Paragraph %d changed since analysis; suggestion retired.", sg.ParagraphIndex+1)
	default:
		m.errorMessage = err.Error()
	}
	m.refreshPending()
}

func (m *model) discardSelected() {
	sg, ok := m.selected()
	if !ok {
		return
	}
	if m.config.Engine.Discard(sg.ID) {
		m.infoMessage = fmt.Sprintf("Discarded suggestion for paragraph %d.", sg.ParagraphIndex+1)
	}
	m.refreshPending()
}

func (m *model) applyAll() {
	if len(m.pending) == 0 {
		m.infoMessage = "Nothing to apply."
		return
	}
	result := m.config.Engine.ApplyAll(m.document)
	if len(result.Applied) > 0 {
		m.document = result.Text
		m.dirty = true
	}
	m.applied += len(result.Applied)
	m.stale += len(result.Stale)
	m.infoMessage = fmt.Sprintf("Applied %d suggestion(s); %d went stale.", len(result.Applied), len(result.Stale))
	m.refreshPending()
}

func (m *model) writeDocument() tea.Cmd {
	if !m.dirty {
		m.infoMessage = "No applied changes to write."
		return nil
	}
	path := m.outputPath()
	m.stage = stageSaving
	m.infoMessage = fmt.Sprintf("Writing %s…", path)
	return tea.Batch(m.jobs.Start(m.ctx, jobKindSave, saveJob(path, m.document)), m.spinner.Tick)
}

func (m *model) outputPath() string {
	if m.config.OutputPath != "" {
		return m.config.OutputPath
	}
	if m.config.Document.Writable() {
		return m.config.Document.Path
	}
	return source.RevisedPath(m.config.Document.Path)
}

func (m *model) refreshPending() {
	if m.config.Engine != nil {
		m.pending = m.config.Engine.ListPending()
	}
	if m.cursor >= len(m.pending) {
		m.cursor = len(m.pending) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.markViewportDirty()
}

func (m *model) moveCursor(delta int) {
	if len(m.pending) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.pending) {
		m.cursor = len(m.pending) - 1
	}
	m.markViewportDirty()
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty {
		return
	}
	m.viewportDirty = false
	sg, ok := m.selected()
	if !ok {
		m.viewport.SetContent(helperStyle.Render("No pending suggestions."))
		return
	}
	m.viewport.SetContent(renderSuggestion(sg, m.wrapWidth(2)))
	m.viewport.GotoTop()
}
