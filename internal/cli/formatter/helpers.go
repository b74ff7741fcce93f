package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// HumanTimestamp returns a human-friendly relative timestamp string.
func HumanTimestamp(t time.Time) string {
	return HumanTimestampFrom(t, time.Now())
}

// HumanTimestampFrom is HumanTimestamp against a fixed reference time.
func HumanTimestampFrom(t, now time.Time) string {
	if t.IsZero() {
		return "--"
	}
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "Yesterday"
	default:
		return t.Format("Jan 2, 2006")
	}
}

// TruncID returns the last 8 characters of an ID, dimmed. Server ids
// share their leading timestamp bytes, so the tail is what tells them apart.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return StyleDim.Render(id)
}
