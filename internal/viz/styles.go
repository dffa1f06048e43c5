package viz

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders fraction in [0, 1] as a bar of width cells.
func ProgressBar(fraction float64, width int, color lipgloss.Color) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

// LoadingSweep returns the offset and width of the busy segment inside a
// bar of the given width. The segment bounces once per second.
func LoadingSweep(elapsed time.Duration, width int) (pos, size int) {
	size = width / 5
	phase := float64(elapsed%time.Second) / float64(time.Second)
	tri := 1 - math.Abs(2*phase-1)
	return int(tri * float64(width-size)), size
}

// SweepBar renders LoadingSweep as a bar of width cells.
func SweepBar(elapsed time.Duration, width int, color lipgloss.Color) string {
	pos, size := LoadingSweep(elapsed, width)
	bar := strings.Repeat("░", pos) + strings.Repeat("█", size) + strings.Repeat("░", width-pos-size)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

// StrengthPlot charts interaction strengths, strongest first. It returns
// an empty string for fewer than two values.
func StrengthPlot(strengths []float32, width, height int, caption string) string {
	if len(strengths) < 2 {
		return ""
	}
	data := make([]float64, len(strengths))
	for i, s := range strengths {
		data[i] = float64(s)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

func Separator(width int, style lipgloss.Style) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return style.Render(left + " ◆ " + right)
}
