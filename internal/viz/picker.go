package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyHint = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	errText = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one tunable run setting on the config screen, bound to a
// single config.
type field struct {
	name   string
	show   func() string
	adjust func(dir int)
	// parse is nil for settings that only cycle.
	parse func(s string) error
}

func floatField(name, format string, v *float64, step func(v float64, dir int) float64, lo float64) field {
	return field{
		name:   name,
		show:   func() string { return fmt.Sprintf(format, *v) },
		adjust: func(dir int) { *v = math.Max(lo, step(*v, dir)) },
		parse: func(s string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return err
			}
			*v = math.Max(lo, f)
			return nil
		},
	}
}

func intField(name string, v *int, lo int) field {
	return field{
		name:   name,
		show:   func() string { return strconv.Itoa(*v) },
		adjust: func(dir int) { *v = max(lo, *v+dir) },
		parse: func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			*v = max(lo, n)
			return nil
		},
	}
}

func cycle(options []string, current string, dir int) string {
	for i, o := range options {
		if o == current {
			return options[((i+dir)%len(options)+len(options))%len(options)]
		}
	}
	return options[0]
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func additive(step float64) func(float64, int) float64 {
	return func(v float64, dir int) float64 { return v + step*float64(dir) }
}

// fieldsFor binds the editable settings of cfg.
func fieldsFor(cfg *config.Config) []field {
	collision := func() string {
		if !cfg.Collision.Enabled {
			return "off"
		}
		return cfg.Collision.Mode
	}
	return []field{
		floatField("time_scale", "%g d/s", &cfg.TimeScale,
			func(v float64, dir int) float64 { return v * math.Pow(2, float64(dir)) }, 0),
		intField("sub_steps", &cfg.SubSteps, 1),
		{
			name: "integrator",
			show: func() string { return cfg.Integrator },
			adjust: func(dir int) {
				cfg.Integrator = cycle(integrators.Names(), cfg.Integrator, dir)
			},
		},
		{
			name: "collision",
			show: collision,
			adjust: func(dir int) {
				next := cycle([]string{"off", "core", "vdt"}, collision(), dir)
				cfg.Collision.Enabled = next != "off"
				if cfg.Collision.Enabled {
					cfg.Collision.Mode = next
				}
			},
		},
		floatField("collision_fudge", "%.2f", &cfg.Collision.Fudge, additive(0.1), 0.1),
		{
			name:   "escape",
			show:   func() string { return onOff(cfg.Escape.Enabled) },
			adjust: func(int) { cfg.Escape.Enabled = !cfg.Escape.Enabled },
		},
		floatField("max_sep_au", "%.2f", &cfg.Escape.MaxSepAU, additive(0.5), 0),
		intField("escape_threshold", &cfg.Escape.ConsecutiveThreshold, 1),
	}
}

// Picker lists the presets, lets the run settings be tuned and then hands
// over to a live Model.
type Picker struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	fields        []field
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	opts          []sim.Option
	width, height int
	live          Model
}

func NewPicker(opts ...sim.Option) Picker {
	return Picker{
		state:   stateMenu,
		presets: config.ListPresets(),
		opts:    opts,
		width:   width,
		height:  height,
	}
}

func (m Picker) Init() tea.Cmd { return nil }

func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m Picker) forward(msg tea.Msg) (Picker, tea.Cmd) {
	next, cmd := m.live.Update(msg)
	m.live = next.(Model)
	return m, cmd
}

func (m Picker) handleKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.forward(msg)
	}
	return m, nil
}

func (m Picker) menuKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.fields = fieldsFor(m.cfg)
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m Picker) configKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	f := m.fields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			m.err = f.parse(m.editBuf)
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				m.editBuf += s
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(m.fields)-1 {
			m.fieldCursor++
		}
	case "left", "h":
		f.adjust(-1)
	case "right", "l":
		f.adjust(1)
	case "enter", " ":
		if f.parse == nil {
			f.adjust(1)
		} else {
			m.editing, m.editBuf = true, ""
		}
	case "s":
		return m.start()
	}
	return m, nil
}

func (m Picker) start() (Picker, tea.Cmd) {
	exp, err := experiment.New(m.cfg, m.opts...)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live = NewModel(exp.Driver(), m.cfg.Name, m.cfg.FrameRate)
	m.live, _ = m.live.resize(m.width, m.height)
	m.state = stateSim
	return m, m.live.Init()
}

func (m Picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func (m Picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + cyan.Render("ORBITSIM") + "\n    " + dim.Render("gravitational n-body engine") + "\n    " + dim.Render("───────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := truncate(config.DescribePreset(name), 48)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cyan.Render("▸"), white.Render(fmt.Sprintf("%-14s", name)), magenta.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", dim.Render(fmt.Sprintf("  %-14s", name)), dimmer.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHint.Render("j/k") + dim.Render(" navigate  ") + keyHint.Render("enter") + dim.Render(" select  ") + keyHint.Render("q") + dim.Render(" quit") + "\n")
	return b.String()
}

func (m Picker) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + cyan.Render(strings.ToUpper(m.cfg.Name)) + "\n    " + dim.Render(config.DescribePreset(m.cfg.Name)) + "\n    " + dim.Render("───────────────────────────") + "\n\n")
	for i, f := range m.fields {
		val := fmt.Sprintf("%10s", f.show())
		if m.editing && i == m.fieldCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cyan.Render("▸"), white.Render(fmt.Sprintf("%-16s", f.name)), magenta.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", dim.Render(fmt.Sprintf("  %-16s", f.name)), dimmer.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errText.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHint.Render("j/k") + dim.Render(" select  ") + keyHint.Render("h/l") + dim.Render(" adjust  ") + keyHint.Render("enter") + dim.Render(" edit  ") + keyHint.Render("s") + dim.Render(" start  ") + keyHint.Render("esc") + dim.Render(" back") + "\n")
	return b.String()
}

// RunPicker starts the preset picker full screen.
func RunPicker(opts ...sim.Option) error {
	_, err := tea.NewProgram(NewPicker(opts...), tea.WithAltScreen()).Run()
	return err
}

// RunLive shows d full screen until the user quits.
func RunLive(d *sim.Driver, title string, fps int) error {
	_, err := tea.NewProgram(NewModel(d, title, fps), tea.WithAltScreen()).Run()
	return err
}
