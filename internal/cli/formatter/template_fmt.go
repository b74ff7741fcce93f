package formatter

import (
	"strconv"

	"github.com/alexanderramin/tasktree/internal/template"
)

// FormatTemplateList renders a styled template list inside a bordered box.
func FormatTemplateList(templates []template.Summary) string {
	headers := []string{"ID", "TITLE", "PILLARS", "SOURCE"}
	rows := make([][]string, 0, len(templates))

	for _, t := range templates {
		source := StyleBlue.Render("local")
		if t.Builtin {
			source = Dim("builtin")
		}
		rows = append(rows, []string{
			Bold(t.ID),
			t.Title,
			strconv.Itoa(t.Pillars),
			source,
		})
	}

	return RenderBox("Templates", RenderTable(headers, rows))
}
