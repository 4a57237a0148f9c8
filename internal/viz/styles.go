package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			Width(statsWidth)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	plainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	StatusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	StatusHalted  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
)

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders a fill level in [0, 1]. Fuller bars are warmer, since
// they show how close a body is to a confirmed escape.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case percent > 0.7:
		return SparkHigh.Render(bar)
	case percent > 0.3:
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// driftSeries converts energies into relative drift from the first value,
// scaled by a power of ten so the largest magnitude lands in [1, 1000).
// The returned exponent is the scale: values are drift / 10^exp.
func driftSeries(energies []float64) ([]float64, int) {
	if len(energies) == 0 || energies[0] == 0 {
		return nil, 0
	}
	e0 := math.Abs(energies[0])
	out := make([]float64, len(energies))
	peak := 0.0
	for i, e := range energies {
		out[i] = (e - energies[0]) / e0
		peak = math.Max(peak, math.Abs(out[i]))
	}
	if peak == 0 {
		return out, 0
	}
	exp := int(math.Floor(math.Log10(peak)/3)) * 3
	scale := math.Pow(10, float64(-exp))
	for i := range out {
		out[i] *= scale
	}
	return out, exp
}
