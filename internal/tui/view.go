package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/vibewrite/internal/revise"
)

func (m *model) View() string {
	switch m.stage {
	case stageAnalyzing:
		return m.viewAnalyzing()
	case stageReview, stageSaving:
		return m.viewReview()
	default:
		return ""
	}
}

func (m *model) viewAnalyzing() string {
	header := fmt.Sprintf("%s %s", m.spinner.View(), m.infoMessage)
	counts := fmt.Sprintf("%d of %d paragraphs • %d unchanged • %d failed",
		m.pass.finished, m.pass.total, m.pass.unchanged, m.pass.failed)
	parts := []string{
		m.heroView(),
		helperStyle.Render(header),
		m.progress.View(),
		helperStyle.Render(counts),
		helperStyle.Render("q: quit"),
	}
	return joinNonEmpty(parts)
}

func (m *model) viewReview() string {
	m.refreshViewportIfDirty()
	parts := []string{
		m.heroView(),
		m.suggestionList(),
		m.viewport.View(),
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.stage == stageSaving {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView(), m.helpView())
	}
	parts = append(parts, m.sessionMeterView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	name := filepath.Base(m.config.Document.Path)
	if m.config.Document.Path == "" {
		name = "untitled"
	}
	title := heroTitleStyle.Render("vibewrite")
	meta := helperStyle.Render(name)
	if m.config.Engine != nil {
		meta = helperStyle.Render(fmt.Sprintf("%s • %s", name, m.config.Engine.Name()))
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", meta),
		taglineStyle.Render(heroTagline),
	)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func (m *model) sessionMeterView() string {
	stats := []string{
		fmt.Sprintf("Pending %d", len(m.pending)),
		fmt.Sprintf("Applied %d", m.applied),
		fmt.Sprintf("Stale %d", m.stale),
	}
	if len(m.failures) > 0 {
		stats = append(stats, fmt.Sprintf("Failed %d", len(m.failures)))
	}
	if m.dirty {
		stats = append(stats, "Unsaved")
	}
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	if len(m.activeJobs) == 0 {
		return nil
	}
	badges := make([]string, 0, len(m.activeJobs))
	for _, snap := range m.activeJobs {
		badges = append(badges, fmt.Sprintf("%s…", snap.Kind))
	}
	sort.Strings(badges)
	return badges
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"j/k", "Move"},
		{"a", "Apply"},
		{"d", "Discard"},
		{"A", "Apply all"},
		{"r", "Re-run"},
		{"w", "Write file"},
		{"PgUp/PgDn", "Scroll diff"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("Reviewing"),
		helperStyle.Render("• each entry is a rewrite of one paragraph; red text is removed, green text is added."),
		helperStyle.Render("• a suggestion goes stale when its paragraph changed after analysis; it is retired instead of applied."),
		helperStyle.Render("• r asks for fresh rewrites of the current text and drops the old list."),
		helperStyle.Render("• w writes the document; PDFs are written to a .revised.md file next to the source."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func failureSummary(failures []revise.Failure) string {
	if len(failures) == 0 {
		return ""
	}
	first := failures[0]
	if len(failures) == 1 {
		return fmt.Sprintf("Paragraph %d failed (%s): %v", first.Index+1, first.Kind, first.Err)
	}
	return fmt.Sprintf("%d paragraphs failed; first was %d (%s): %v", len(failures), first.Index+1, first.Kind, first.Err)
}

var (
	heroAccentColor        = lipgloss.Color("#ff9f1c")
	heroSecondaryTextColor = lipgloss.Color("#ffbf69")
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	spinnerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	addedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Underline(true)
	removedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Strikethrough(true)
	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	taglineStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
)
