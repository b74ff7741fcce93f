package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title   string
	ID      string // shown dimmed after the title; "" hides it
	Level   int
	IsLast  bool
	Done    bool
	Deleted bool
	Badges  []string // pre-styled, right-aligned
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Done items get a green ✔ prefix,
// open items an empty box, and badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		var statusPrefix string
		switch {
		case item.Deleted:
			statusPrefix = StyleDim.Render("✕ ")
			title = StyleDim.Strikethrough(true).Render(title)
		case item.Done:
			statusPrefix = StyleGreen.Render("✔ ")
			title = Dim(title)
		default:
			statusPrefix = StyleFg.Render("☐ ")
		}
		if item.ID != "" {
			title += " " + Dim(fmt.Sprintf("(%s)", item.ID))
		}

		content := prefix + statusPrefix + title
		lines[idx].content = content

		var badges []string
		for _, b := range item.Badges {
			if b != "" {
				badges = append(badges, b)
			}
		}
		lines[idx].badge = strings.Join(badges, " ")

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned badges.
	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := max(0, maxContentWidth-lipgloss.Width(li.content))
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}
