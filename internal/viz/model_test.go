package viz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/fmriviz/internal/config"
	"github.com/san-kum/fmriviz/internal/navigation"
	"github.com/san-kum/fmriviz/internal/scene"
	"github.com/san-kum/fmriviz/internal/trace"
)

func syntheticBuild(n int) navigation.BuildFunc {
	sim := trace.NewSynthetic(3)
	p := scene.NewPipeline(sim, config.DefaultOptions(), nil)
	return func(ctx context.Context) ([]scene.SampleResult, error) {
		return p.BuildAll(ctx, sim.Inputs(n))
	}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// tickUntil sends ticks until done reports true or the attempts run out.
func tickUntil(t *testing.T, m Model, done func(Model) bool) (Model, tea.Cmd) {
	t.Helper()
	now := time.Now()
	var cmd tea.Cmd
	for i := 0; i < 400; i++ {
		now = now.Add(10 * time.Millisecond)
		var next tea.Model
		next, cmd = m.Update(TickMsg(now))
		m = next.(Model)
		if done(m) {
			return m, cmd
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
	return m, cmd
}

func TestModelLoadsAndNavigates(t *testing.T) {
	nav := navigation.New(navigation.WithPollTimeout(5 * time.Millisecond))
	build := syntheticBuild(2)
	if err := nav.BeginLoad(build); err != nil {
		t.Fatal(err)
	}

	m := NewModel(nav, build, config.DefaultOptions(), "synthetic")
	if !strings.Contains(m.View(), "simulating network") && nav.Status() == navigation.Loading {
		t.Error("expected a loading indicator while the load runs")
	}

	m, _ = tickUntil(t, m, func(m Model) bool { return m.nav.Status() == navigation.Ready })
	if !m.fitted {
		t.Error("camera should be fitted once samples arrive")
	}
	if !strings.Contains(m.View(), "sample-0") {
		t.Error("view should name the current input")
	}

	next, _ := m.Update(runeKey('n'))
	m = next.(Model)
	if nav.Cursor() != 1 {
		t.Errorf("expected cursor 1, got %d", nav.Cursor())
	}
	if m.elapsed != 0 {
		t.Error("switching samples should restart the animation")
	}

	next, _ = m.Update(runeKey('n'))
	m = next.(Model)
	if nav.Cursor() != 0 {
		t.Errorf("expected cursor to wrap to 0, got %d", nav.Cursor())
	}

	next, _ = m.Update(runeKey('p'))
	if nav.Cursor() != 1 {
		t.Errorf("expected previous to wrap to 1, got %d", nav.Cursor())
	}
	_ = next
}

func TestModelPauseFreezesPhase(t *testing.T) {
	nav := navigation.New()
	m := NewModel(nav, nil, config.DefaultOptions(), "paused")

	start := time.Now()
	next, _ := m.Update(TickMsg(start))
	m = next.(Model)
	next, _ = m.Update(TickMsg(start.Add(time.Second)))
	m = next.(Model)
	if m.elapsed != time.Second {
		t.Fatalf("expected 1s elapsed, got %s", m.elapsed)
	}

	next, _ = m.Update(runeKey(' '))
	m = next.(Model)
	next, _ = m.Update(TickMsg(start.Add(3 * time.Second)))
	m = next.(Model)
	if m.elapsed != time.Second {
		t.Errorf("paused model advanced to %s", m.elapsed)
	}
}

func TestModelQuitsOnFailedFirstLoad(t *testing.T) {
	nav := navigation.New(navigation.WithPollTimeout(5 * time.Millisecond))
	boom := errors.New("boom")
	if err := nav.BeginLoad(func(context.Context) ([]scene.SampleResult, error) { return nil, boom }); err != nil {
		t.Fatal(err)
	}

	m := NewModel(nav, nil, config.DefaultOptions(), "failing")
	m, cmd := tickUntil(t, m, func(m Model) bool { return m.Err() != nil })

	if !errors.Is(m.Err(), navigation.ErrLoadFailed) || !errors.Is(m.Err(), boom) {
		t.Errorf("unexpected error %v", m.Err())
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelQuitsOnFailedReload(t *testing.T) {
	nav := navigation.New(navigation.WithPollTimeout(5 * time.Millisecond))
	build := syntheticBuild(1)
	if err := nav.BeginLoad(build); err != nil {
		t.Fatal(err)
	}

	m := NewModel(nav, build, config.DefaultOptions(), "reload")
	m, _ = tickUntil(t, m, func(m Model) bool { return m.nav.Status() == navigation.Ready })

	malformed := errors.New("malformed model")
	if err := nav.BeginLoad(func(context.Context) ([]scene.SampleResult, error) { return nil, malformed }); err != nil {
		t.Fatal(err)
	}
	m, cmd := tickUntil(t, m, func(m Model) bool { return m.Err() != nil })

	if !errors.Is(m.Err(), navigation.ErrLoadFailed) || !errors.Is(m.Err(), malformed) {
		t.Errorf("unexpected error %v", m.Err())
	}
	if nav.Len() != 1 {
		t.Errorf("previous sequence should stay installed, got %d samples", nav.Len())
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg after a failed reload")
	}
}

func TestModelQuitKey(t *testing.T) {
	m := NewModel(navigation.New(), nil, config.DefaultOptions(), "quit")
	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestNextTheme(t *testing.T) {
	last := Themes[len(Themes)-1]
	if NextTheme(last).Name != Themes[0].Name {
		t.Error("themes should wrap around")
	}
	if GetTheme("missing").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
}
