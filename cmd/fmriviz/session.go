package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/san-kum/fmriviz/internal/config"
	"github.com/san-kum/fmriviz/internal/navigation"
	"github.com/san-kum/fmriviz/internal/scene"
	"github.com/san-kum/fmriviz/internal/trace"
)

// session is everything a command needs to build scenes.
type session struct {
	title    string
	opts     *config.Options
	pipeline *scene.Pipeline
	inputs   []string
}

// loadOptions applies the preset first, then the options file.
func loadOptions() (*config.Options, error) {
	opts := config.DefaultOptions()
	if preset != "" {
		opts = config.GetPreset(preset)
		if opts == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, listPresets())
		}
	}
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		opts = cfg
	}
	return opts, opts.Validate()
}

func listPresets() []string {
	names := config.ListPresets()
	sort.Strings(names)
	return names
}

// readLabels reads one label per non-empty line.
func readLabels(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			labels = append(labels, line)
		}
	}
	return labels, sc.Err()
}

func newSession() (*session, error) {
	opts, err := loadOptions()
	if err != nil {
		return nil, err
	}
	labels, err := readLabels(labelsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	s := &session{opts: opts}
	var sim scene.Simulator
	if manifest != "" {
		replay, err := trace.Open(manifest)
		if err != nil {
			return nil, err
		}
		sim = replay
		s.title = replay.Manifest().Name
		s.inputs = replay.Manifest().Inputs
	} else {
		synth := trace.NewSynthetic(seed)
		sim = synth
		s.title = "synthetic"
		s.inputs = synth.Inputs(samples)
	}
	if len(s.inputs) == 0 {
		return nil, navigation.ErrNoSamples
	}

	s.pipeline = scene.NewPipeline(sim, opts, labels)
	return s, nil
}

// only narrows the session to a single input.
func (s *session) only(input string) error {
	for _, in := range s.inputs {
		if in == input {
			s.inputs = []string{input}
			return nil
		}
	}
	return fmt.Errorf("unknown input %q (available: %v)", input, s.inputs)
}

func (s *session) build() navigation.BuildFunc {
	return func(ctx context.Context) ([]scene.SampleResult, error) {
		return s.pipeline.BuildAll(ctx, s.inputs)
	}
}

// navigator starts the first load in the background.
func (s *session) navigator(ctx context.Context) (*navigation.State, error) {
	nav := navigation.New(
		navigation.WithPollTimeout(s.opts.PollTimeout),
		navigation.WithContext(ctx),
	)
	return nav, nav.BeginLoad(s.build())
}
