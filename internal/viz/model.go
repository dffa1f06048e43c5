package viz

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fmriviz/internal/animation"
	"github.com/san-kum/fmriviz/internal/config"
	"github.com/san-kum/fmriviz/internal/metrics"
	"github.com/san-kum/fmriviz/internal/navigation"
	"github.com/san-kum/fmriviz/internal/scene"
)

const (
	width      = 80
	height     = 24
	panelWidth = 52
	plotWidth  = 36
)

type TickMsg time.Time

// Model is the terminal viewer. It polls the navigation state once per
// tick and draws the current sample at the current animation phase.
type Model struct {
	nav   *navigation.State
	build navigation.BuildFunc
	opts  *config.Options
	title string

	canvas *Canvas
	camera *Camera
	pool   *animation.FramePool
	theme  Theme
	styles styles
	keys   keyMap
	help   help.Model

	elapsed   time.Duration
	last      time.Time
	paused    bool
	showPaths bool
	fitted    bool
	layer     int
	frame     int
	err       error
}

// NewModel builds a viewer over nav. build is used by the reload key and
// may be nil.
func NewModel(nav *navigation.State, build navigation.BuildFunc, opts *config.Options, title string) Model {
	theme := Themes[0]
	return Model{
		nav:       nav,
		build:     build,
		opts:      opts,
		title:     title,
		canvas:    NewCanvas(width, height),
		camera:    NewCamera(),
		pool:      animation.NewFramePool(),
		theme:     theme,
		styles:    newStyles(theme),
		keys:      defaultKeyMap(),
		help:      help.New(),
		showPaths: true,
	}
}

// WithTheme returns m using the named theme.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.styles = newStyles(m.theme)
	return m
}

// Err is the last load error, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	fps := m.opts.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := max(msg.Width-panelWidth-4, 20)
		h := max(msg.Height-4, 10)
		m.canvas = NewCanvas(w, h)
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.move(m.nav.Next)
		case key.Matches(msg, m.keys.Previous):
			m.move(m.nav.Previous)
		case key.Matches(msg, m.keys.Reload):
			if m.build != nil {
				if err := m.nav.BeginLoad(m.build); err != nil && !errors.Is(err, navigation.ErrLoadInFlight) {
					m.err = err
				}
			}
		case key.Matches(msg, m.keys.NextLayer):
			m.layer++
		case key.Matches(msg, m.keys.PrevLayer):
			m.layer--
		case key.Matches(msg, m.keys.Rotate):
			if msg.String() == "y" {
				m.camera.RotateY(0.1)
			} else {
				m.camera.RotateY(-0.1)
			}
		case key.Matches(msg, m.keys.Tilt):
			if msg.String() == "x" {
				m.camera.RotateX(0.1)
			} else {
				m.camera.RotateX(-0.1)
			}
		case key.Matches(msg, m.keys.ZoomIn):
			m.camera.ZoomIn()
		case key.Matches(msg, m.keys.ZoomOut):
			m.camera.ZoomOut()
		case key.Matches(msg, m.keys.Paths):
			m.showPaths = !m.showPaths
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Theme):
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case TickMsg:
		now := time.Time(msg)
		if !m.paused && !m.last.IsZero() {
			m.elapsed += now.Sub(m.last)
		}
		m.last = now
		m.frame++

		status, err := m.nav.Poll()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		if status == navigation.Ready && !m.fitted {
			m.fit()
		}
		return m, m.tick()
	}
	return m, nil
}

// move switches samples and restarts the animation.
func (m *Model) move(step func() error) {
	if err := step(); err != nil {
		return
	}
	m.elapsed = 0
	m.layer = 0
	m.fitted = false
	m.fit()
}

func (m *Model) fit() {
	r, err := m.nav.Current()
	if err != nil {
		return
	}
	lo, hi := scene.Compose(r, m.opts, 0, nil).Bounds()
	m.camera.Fit(lo, hi)
	m.fitted = true
}

// Phase is the animation parameter of the current frame.
func (m Model) Phase() float64 {
	return m.opts.Phase(m.elapsed)
}

func (m Model) View() string {
	r, err := m.nav.Current()
	if err != nil {
		return m.loadingView()
	}

	m.canvas.Clear()
	f := scene.Compose(r, m.opts, m.Phase(), m.pool)
	if !m.showPaths {
		f.Paths = nil
	}
	DrawFrame(m.canvas, f, m.camera)

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.canvas.Render(m.canvas.Render()),
		m.styles.panel.Render(m.panel(r)),
	)
	return main + "\n" + m.help.View(m.keys)
}

func (m Model) loadingView() string {
	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.title)) + "\n")
	switch m.nav.Status() {
	case navigation.Loading:
		fmt.Fprintf(&s, "%s %s %s\n",
			m.styles.accent.Render(AnimatedSpinner(m.frame)),
			m.styles.value.Render("simulating network"),
			m.styles.muted.Render(m.nav.Elapsed().Truncate(100*time.Millisecond).String()),
		)
		s.WriteString(SweepBar(m.nav.Elapsed(), 30, m.theme.Primary) + "\n")
	default:
		s.WriteString(m.styles.muted.Render("no samples loaded") + "\n")
	}
	if m.err != nil {
		s.WriteString(m.styles.err.Render(m.err.Error()) + "\n")
	}
	return s.String() + "\n" + m.help.View(m.keys)
}

// animated returns the indices of the layers that carry an animation.
func animated(r *scene.SampleResult) []int {
	var out []int
	for i, e := range r.Layers {
		if e.Animation != nil {
			out = append(out, i)
		}
	}
	return out
}

func (m Model) panel(r *scene.SampleResult) string {
	st := m.styles
	var s strings.Builder

	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	if m.paused {
		status = "PAUSED"
	}
	s.WriteString(st.accent.Render(status) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Input", r.Input)
	row("Sample", fmt.Sprintf("%d / %d", m.nav.Cursor()+1, m.nav.Len()))
	row("Layers", fmt.Sprintf("%d (%d animated)", len(r.Layers), r.Animations()))
	row("Phase", ProgressBar(m.Phase(), 20, m.theme.Primary))

	if idx := animated(r); len(idx) > 0 {
		sel := idx[((m.layer%len(idx))+len(idx))%len(idx)]
		e := r.Layers[sel]
		s.WriteString("\n" + Separator(40, st.muted) + "\n\n")
		row("Layer", fmt.Sprintf("%s (%s)", e.Visualization.Name, e.Visualization.Kind))
		row("Interactions", fmt.Sprintf("%d", e.Interactions))

		values := metrics.Observe(e.Strengths, metrics.Defaults()...)
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			row(name, fmt.Sprintf("%.4g", values[name]))
		}

		if plot := StrengthPlot(e.Strengths, plotWidth, 5, "strength by rank"); plot != "" {
			s.WriteString(st.graph.Render(plot) + "\n")
		}
	}

	if len(r.Top) > 0 {
		s.WriteString("\n" + st.header.Render("TOP GUESSES") + "\n")
		for _, g := range r.Top {
			label := g.Label
			if label == "" {
				label = fmt.Sprintf("#%d", g.Index)
			}
			row(label, fmt.Sprintf("%.3f", g.Score))
		}
	}

	if m.err != nil {
		s.WriteString("\n" + st.err.Render(m.err.Error()) + "\n")
	}
	return s.String()
}
