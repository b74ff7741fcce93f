package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tasktree/internal/approval"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/gate"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusPill renders a project status as a colored label.
func StatusPill(status domain.ProjectStatus) string {
	switch status {
	case domain.ProjectCompleted, domain.ProjectSubmitted:
		return StyleGreen.Render(strings.ToUpper(string(status)))
	case domain.ProjectInProgress:
		return StyleYellow.Render("IN PROGRESS")
	case domain.ProjectDraft:
		return StyleDim.Render("DRAFT")
	default:
		return StyleDim.Render("UNKNOWN")
	}
}

// ModeBadge renders the session mode, e.g. "[ EDIT ]".
func ModeBadge(mode gate.Mode) string {
	label := fmt.Sprintf("[ %s ]", strings.ToUpper(strings.ReplaceAll(string(mode), "_", " ")))
	switch mode {
	case gate.ModeEdit:
		return StyleHeader.Render(label)
	case gate.ModePreview:
		return StylePurple.Render(label)
	default:
		return StyleDim.Render(label)
	}
}

// DecisionBadge renders a reviewer decision. Pending decisions render as "".
func DecisionBadge(d approval.Decision) string {
	switch d {
	case approval.Accepted:
		return StyleGreen.Render("＋ in plan")
	case approval.Rejected:
		return StyleRed.Render("✕ rejected")
	default:
		return ""
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
