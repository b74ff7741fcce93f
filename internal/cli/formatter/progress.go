package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a progress bar like [████░░░░]  45% for a
// whole-number percentage. The bar is green above 66, yellow from 33 and
// red below.
func RenderProgress(percent, width int) string {
	percent = max(0, min(percent, 100))
	width = max(width, 2)

	filled := percent * width / 100
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case percent < 33:
		style = StyleRed
	case percent < 66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3d%%", style.Render(bar), percent)
}
