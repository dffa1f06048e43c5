package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fmriviz/internal/animation"
	"github.com/san-kum/fmriviz/internal/interaction"
)

const (
	DefaultInteractionLimit   = interaction.DefaultLimit
	DefaultLayerSpacing       = animation.DefaultLayerSpacing
	DefaultLayerOpacity       = 1.0
	DefaultInteractionOpacity = 1.0
	DefaultFPS                = 60
	DefaultAnimationPeriod    = 4 * time.Second
	DefaultPollTimeout        = 10 * time.Millisecond

	// MaxPollTimeout bounds how long a frame may wait for a load result.
	MaxPollTimeout = 50 * time.Millisecond
)

var ErrInvalidOption = errors.New("config: invalid option")

// Options are the tunables read once when a scene is built.
type Options struct {
	InteractionLimit   int           `yaml:"interaction_limit" json:"interaction_limit" desc:"maximum interactions kept per fully connected layer"`
	Epsilon            float32       `yaml:"epsilon" json:"epsilon" desc:"magnitude treated as zero"`
	Workers            int           `yaml:"workers" json:"workers" desc:"goroutines for weight products, 0 for all CPUs"`
	LayerSpacing       float64       `yaml:"layer_spacing" json:"layer_spacing" desc:"x distance between consecutive layers"`
	LayerOpacity       float32       `yaml:"layer_opacity" json:"layer_opacity" desc:"alpha of layer nodes and tiles"`
	InteractionOpacity float32       `yaml:"interaction_opacity" json:"interaction_opacity" desc:"alpha of animated interactions"`
	DrawPaths          bool          `yaml:"draw_paths" json:"draw_paths" desc:"draw a line along every interaction"`
	ActiveOnly         bool          `yaml:"active_only" json:"active_only" desc:"hide nodes with no activation"`
	PathColor          Color         `yaml:"path_color" json:"path_color" desc:"color of interaction paths"`
	NeutralColor       Color         `yaml:"neutral_color" json:"neutral_color" desc:"color of weak activations"`
	PositiveColor      Color         `yaml:"positive_color" json:"positive_color" desc:"color of strong positive activations"`
	NegativeColor      Color         `yaml:"negative_color" json:"negative_color" desc:"color of strong negative activations"`
	FPS                int           `yaml:"fps" json:"fps" desc:"frames per second of the viewers"`
	AnimationPeriod    time.Duration `yaml:"animation_period" json:"animation_period" desc:"time for one pass of an animation"`
	PollTimeout        time.Duration `yaml:"poll_timeout" json:"poll_timeout" desc:"longest a frame waits for a finished load"`
}

func DefaultOptions() *Options {
	return &Options{
		InteractionLimit:   DefaultInteractionLimit,
		Epsilon:            interaction.DefaultEpsilon,
		LayerSpacing:       DefaultLayerSpacing,
		LayerOpacity:       DefaultLayerOpacity,
		InteractionOpacity: DefaultInteractionOpacity,
		PathColor:          Color{1, 1, 1, 0.1},
		NeutralColor:       Color{1, 1, 1, 1},
		PositiveColor:      Color{0, 1, 0, 1},
		NegativeColor:      Color{1, 0, 0, 1},
		FPS:                DefaultFPS,
		AnimationPeriod:    DefaultAnimationPeriod,
		PollTimeout:        DefaultPollTimeout,
	}
}

func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

func Save(path string, opts *Options) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (o *Options) Validate() error {
	switch {
	case o.InteractionLimit <= 0:
		return fmt.Errorf("%w: interaction_limit must be positive", ErrInvalidOption)
	case o.Epsilon < 0:
		return fmt.Errorf("%w: epsilon must not be negative", ErrInvalidOption)
	case o.LayerOpacity < 0 || o.LayerOpacity > 1:
		return fmt.Errorf("%w: layer_opacity must be in [0, 1]", ErrInvalidOption)
	case o.InteractionOpacity < 0 || o.InteractionOpacity > 1:
		return fmt.Errorf("%w: interaction_opacity must be in [0, 1]", ErrInvalidOption)
	case o.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive", ErrInvalidOption)
	case o.AnimationPeriod <= 0:
		return fmt.Errorf("%w: animation_period must be positive", ErrInvalidOption)
	case o.PollTimeout < 0 || o.PollTimeout > MaxPollTimeout:
		return fmt.Errorf("%w: poll_timeout must be in [0, %s]", ErrInvalidOption, MaxPollTimeout)
	}
	return nil
}

func (o *Options) Interaction() interaction.Options {
	return interaction.Options{
		Limit:   o.InteractionLimit,
		Epsilon: o.Epsilon,
		Workers: o.Workers,
	}
}

func (o *Options) Build() animation.BuildOptions {
	return animation.BuildOptions{
		InteractionAlpha: o.InteractionOpacity,
		Paths:            o.DrawPaths,
	}
}

// Phase maps elapsed time onto the animation parameter in [0, 1).
func (o *Options) Phase(elapsed time.Duration) float64 {
	period := o.AnimationPeriod
	if period <= 0 {
		period = DefaultAnimationPeriod
	}
	return float64(elapsed%period) / float64(period)
}
