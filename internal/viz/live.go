package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/orbitsim/internal/detect"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	width         = 80
	height        = 24
	statsWidth    = 46
	logCapacity   = 6
	plotPoints    = 60
	maxFrameDelta = 100 * time.Millisecond
	rotateStep    = 0.1
)

type TickMsg time.Time

// Model is the live viewer of one driver. The driver is advanced once per
// tick by the wall-clock time since the previous tick.
type Model struct {
	driver     *sim.Driver
	title      string
	canvas     *Canvas
	camera     *Camera
	theme      int
	fps        int
	lastTick   time.Time
	ticks      int
	log        []string
	halted     *sim.Event
	showHelp   bool
	showTrails bool
}

func NewModel(d *sim.Driver, title string, fps int) Model {
	if fps < 1 {
		fps = 60
	}
	m := Model{
		driver:     d,
		title:      title,
		canvas:     NewCanvas(width-statsWidth, height),
		camera:     NewCamera(1),
		fps:        fps,
		showTrails: true,
	}
	m.camera.Fit(d.Positions())
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.driver.Paused() {
				m.driver.Resume()
				m.halted = nil
			} else {
				m.driver.Pause()
			}
		case "r":
			if err := m.driver.Reset(); err != nil {
				m.pushLog("reset failed: " + err.Error())
			} else {
				m.halted = nil
				m.pushLog("reset")
			}
		case ".":
			m.driver.SetTimeScale(m.driver.Settings().TimeScale * 2)
		case ",":
			m.driver.SetTimeScale(m.driver.Settings().TimeScale / 2)
		case "left", "h":
			m.camera.Rotate(-rotateStep, 0)
		case "right", "l":
			m.camera.Rotate(rotateStep, 0)
		case "up", "k":
			m.camera.Rotate(0, rotateStep)
		case "down", "j":
			m.camera.Rotate(0, -rotateStep)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "f":
			m.camera.Fit(m.driver.Positions())
		case "L":
			m.showTrails = !m.showTrails
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height)
	case TickMsg:
		now := time.Time(msg)
		delta := time.Second / time.Duration(m.fps)
		if !m.lastTick.IsZero() {
			delta = min(max(now.Sub(m.lastTick), 0), maxFrameDelta)
		}
		m.lastTick = now
		m.ticks++

		report := m.driver.Frame(delta)
		if report.Event != nil {
			m.halted = report.Event
			m.pushLog(fmt.Sprintf("t=%.1fd %s", report.Event.SimTime, report.Event.Message))
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) resize(w, h int) (Model, tea.Cmd) {
	m.canvas = NewCanvas(max(w-statsWidth-4, 10), max(h-1, 8))
	return m, nil
}

func (m *Model) pushLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > logCapacity {
		m.log = m.log[len(m.log)-logCapacity:]
	}
}

// draw projects trails and bodies onto the canvas, painting nearer bodies
// last.
func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.PixelSize()

	if cx, cy, _, ok := m.camera.Project(r3.Vec{}, w, h); ok {
		m.canvas.Set(cx, cy)
	}

	n := m.driver.Len()
	if m.showTrails {
		for i := 0; i < n; i++ {
			for _, p := range m.driver.Trail(dynamo.BodyIndex(i)) {
				if x, y, _, ok := m.camera.Project(p, w, h); ok {
					m.canvas.Paint(x, y, i)
				}
			}
		}
	}

	type dot struct {
		x, y, ink int
		depth     float64
	}
	dots := make([]dot, 0, n)
	for i, p := range m.driver.Positions() {
		if x, y, depth, ok := m.camera.Project(p, w, h); ok {
			dots = append(dots, dot{x, y, i, depth})
		}
	}
	for len(dots) > 0 {
		far := 0
		for j := range dots {
			if dots[j].depth < dots[far].depth {
				far = j
			}
		}
		d := dots[far]
		m.canvas.Disk(d.x, d.y, 1, d.ink)
		dots = append(dots[:far], dots[far+1:]...)
	}
}

func (m Model) status() string {
	switch {
	case m.halted != nil:
		return StatusHalted.Render("HALTED: " + m.halted.Kind.String())
	case m.driver.Paused():
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render(AnimatedSpinner(m.ticks) + " RUNNING")
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	theme := Themes[m.theme]
	canvasView := canvasStyle.Render(m.canvas.Render(theme.Palette(), plainStyle))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	days := m.driver.SimTime()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2f d (%.3f yr)", days, days/365.25)) + "\n")
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d", m.driver.Frames())) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%g d/s", m.driver.Settings().TimeScale)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.9g", m.driver.Energy())) + "\n")
	current, worst := m.driver.Drift()
	s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.2e (max %.2e)", current, worst)) + "\n")

	energies := m.driver.EnergyValues()
	if len(energies) > plotPoints {
		energies = energies[len(energies)-plotPoints:]
	}
	if series, exp := driftSeries(energies); len(series) > 1 {
		chart := asciigraph.Plot(series,
			asciigraph.Height(4),
			asciigraph.Width(statsWidth-14),
			asciigraph.Precision(2),
			asciigraph.Caption(fmt.Sprintf("dE/E0 (x1e%d)", exp)))
		s.WriteString("\n" + graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("BODIES") + "\n")
	threshold := m.driver.Settings().Escape.Threshold
	for i := 0; i < m.driver.Len(); i++ {
		idx := dynamo.BodyIndex(i)
		speed := r3.Norm(m.driver.View().Velocity(idx))
		bar := ProgressBar(float64(m.driver.EscapeCount(idx))/float64(max(threshold, 1)), 6)
		if m.driver.EscapePhase(idx) == detect.Confirmed {
			bar = StatusHalted.Render("ESCAPED")
		}
		s.WriteString(fmt.Sprintf("%s %-10s %9.3g AU/d %s\n",
			theme.BodyStyle(i).Render("●"), truncate(m.driver.Name(idx), 10), speed, bar))
	}

	if len(m.log) > 0 {
		s.WriteString("\n" + dimStyle.Render("EVENTS") + "\n")
		for _, line := range m.log {
			s.WriteString(valueStyle.Render(truncate(line, statsWidth-4)) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit ,/.:Speed\nArrows:Rotate +/-:Zoom F:Fit ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset initial conditions ║
║  , .      - Halve/double time scale  ║
║  Arrows   - Rotate camera            ║
║  + -      - Zoom                     ║
║  F        - Fit camera to bodies     ║
║  L        - Toggle trails            ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(n-1, 0)]) + "…"
}
