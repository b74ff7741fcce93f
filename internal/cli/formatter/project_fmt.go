package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tasktree/internal/approval"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/gate"
	"github.com/alexanderramin/tasktree/internal/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProjectView holds all data needed to render a project card.
type ProjectView struct {
	Project  *domain.Project
	Mode     gate.Mode
	Progress int
	// Decision reports the reviewer decision per task. Nil hides decision badges.
	Decision func(taskID string) approval.Decision
	ShowIDs  bool
}

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	if len(projects) == 0 {
		return RenderBox("Projects", Dim("No projects yet. Import one with 'tasktree project import FILE'."))
	}

	headers := []string{"ID", "TITLE", "STATUS", "PROGRESS", "UPDATED"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(p.Title),
			StatusPill(p.Status),
			RenderProgress(p.Progress, 10),
			HumanTimestamp(p.UpdatedAt),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatProject renders a project card: header, progress bar, plan tree and
// the per-pillar breakdown.
func FormatProject(v ProjectView) string {
	p := v.Project
	var b strings.Builder

	title := StyleBold.Render(p.Title)
	if v.Mode != "" {
		title += "  " + ModeBadge(v.Mode)
	}
	b.WriteString(title + "\n")
	if p.Description != "" {
		b.WriteString(Dim(p.Description) + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("STATUS  "), StatusPill(p.Status))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("ID      "), Dim(p.ID))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("PROGRESS"), RenderProgress(v.Progress, 20))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("UPDATED "), HumanTimestamp(p.UpdatedAt))

	b.WriteString("\n" + Header("Plan") + "\n")
	items := ProjectTreeItems(p.Tasks, v.Decision, v.ShowIDs)
	if len(items) == 0 {
		b.WriteString(Dim("No tasks") + "\n")
	} else {
		b.WriteString(RenderTree(items))
	}

	if pillars := FormatPillars(p); pillars != "" {
		b.WriteString("\n" + Header("Pillars") + "\n" + pillars)
	}

	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}

// FormatPillars renders one readiness line per top-level pillar. It returns
// "" for a project without pillars.
func FormatPillars(p *domain.Project) string {
	breakdown := progress.PillarBreakdown(p)
	if len(breakdown) == 0 {
		return ""
	}
	width := 0
	for _, s := range breakdown {
		width = max(width, lipgloss.Width(s.Name))
	}
	var b strings.Builder
	for _, s := range breakdown {
		pad := strings.Repeat(" ", width-lipgloss.Width(s.Name))
		fmt.Fprintf(&b, "%s%s  %s  %s\n", s.Name, pad,
			RenderProgress(s.Percent, 10),
			Dim(fmt.Sprintf("%d/%d", s.Completed, s.Total)))
	}
	return b.String()
}

// ProjectTreeItems flattens the plan tree into display rows in depth-first
// order.
func ProjectTreeItems(roots []*domain.Task, decision func(string) approval.Decision, showIDs bool) []TreeItem {
	var items []TreeItem
	var walk func(nodes []*domain.Task, level int)
	walk = func(nodes []*domain.Task, level int) {
		for i, n := range nodes {
			item := TreeItem{
				Title:   n.Name,
				Level:   level,
				IsLast:  i == len(nodes)-1,
				Done:    progress.IsTaskCompleted(n),
				Deleted: n.IsDeleted,
			}
			if showIDs {
				item.ID = n.ID
			}
			if n.IsCustomTask {
				item.Badges = append(item.Badges, StylePurple.Render("custom"))
			}
			if !n.IsRequired && n.Kind() == domain.NodeLeaf {
				item.Badges = append(item.Badges, Dim("optional"))
			}
			if decision != nil {
				item.Badges = append(item.Badges, DecisionBadge(decision(n.ID)))
			}
			items = append(items, item)
			walk(n.Children, level+1)
		}
	}
	walk(roots, 0)
	return items
}
