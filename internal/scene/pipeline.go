package scene

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"

	"github.com/san-kum/fmriviz/internal/animation"
	"github.com/san-kum/fmriviz/internal/config"
	"github.com/san-kum/fmriviz/internal/events"
	"github.com/san-kum/fmriviz/internal/interaction"
	"github.com/san-kum/fmriviz/internal/tensor"
)

// TopGuesses is the number of final layer outputs reported per sample.
const TopGuesses = 5

// Simulator produces layer activations for an input. Simulate is slow and
// is only ever called from a load worker.
type Simulator interface {
	LayerMeta() map[string]tensor.Meta
	Simulate(ctx context.Context, input string) ([]*tensor.Snapshot, error)
}

// build is the state threaded through the stages for one sample. The
// snapshots are dropped with it once the result is assembled.
type build struct {
	input     string
	started   time.Time
	snapshots []*tensor.Snapshot
	result    *SampleResult
}

// Pipeline turns inputs into sample results.
type Pipeline struct {
	sim    Simulator
	opts   *config.Options
	meta   map[string]tensor.Meta
	labels []string
	chain  pipz.Chainable[*build]
}

// Stage identities of the per-sample build.
var (
	SampleID    = pipz.NewIdentity("sample", "per-sample scene build")
	SimulateID  = pipz.NewIdentity("simulate", "runs the simulator for one input")
	VisualizeID = pipz.NewIdentity("visualize", "derives layer visualizations from snapshots")
	AnimateID   = pipz.NewIdentity("animate", "extracts interactions and builds animations")
	ClassifyID  = pipz.NewIdentity("classify", "ranks the outputs of the last flat layer")
)

// NewPipeline reads the simulator's layer metadata once. labels name the
// outputs of the final layer and may be nil.
func NewPipeline(sim Simulator, opts *config.Options, labels []string) *Pipeline {
	p := &Pipeline{
		sim:    sim,
		opts:   opts,
		meta:   sim.LayerMeta(),
		labels: labels,
	}
	p.chain = pipz.NewSequence(SampleID,
		pipz.Apply(SimulateID, p.simulate),
		pipz.Apply(VisualizeID, p.visualize),
		pipz.Apply(AnimateID, p.animate),
		pipz.Apply(ClassifyID, p.classify),
	)
	return p
}

// BuildSample simulates input and derives its full scene.
func (p *Pipeline) BuildSample(ctx context.Context, input string) (*SampleResult, error) {
	b, err := p.chain.Process(ctx, &build{input: input, started: time.Now()})
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", input, err)
	}

	capitan.Info(ctx, events.SampleBuilt,
		events.InputKey.Field(input),
		events.LayersKey.Field(len(b.result.Layers)),
		events.DurationMsKey.Field(int(time.Since(b.started).Milliseconds())),
	)
	return b.result, nil
}

// BuildAll builds every input in order. The first failure aborts the run.
func (p *Pipeline) BuildAll(ctx context.Context, inputs []string) ([]SampleResult, error) {
	results := make([]SampleResult, 0, len(inputs))
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := p.BuildSample(ctx, input)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}

func (p *Pipeline) layerMeta(name string) tensor.Meta {
	if m, ok := p.meta[name]; ok {
		return m
	}
	return tensor.Meta{Name: name, Kind: tensor.Other}
}

func (p *Pipeline) simulate(ctx context.Context, b *build) (*build, error) {
	snaps, err := p.sim.Simulate(ctx, b.input)
	if err != nil {
		return b, err
	}
	b.snapshots = snaps
	b.result = &SampleResult{Input: b.input, Layers: make([]Entry, len(snaps))}
	return b, nil
}

func (p *Pipeline) visualize(ctx context.Context, b *build) (*build, error) {
	for i, snap := range b.snapshots {
		meta := p.layerMeta(snap.Name)
		v, err := Visualize(snap, meta, p.opts)
		if err != nil {
			return b, err
		}
		b.result.Layers[i].Visualization = v

		capitan.Info(ctx, events.LayerVisualized,
			events.InputKey.Field(b.input),
			events.LayerKey.Field(v.Name),
			events.KindKey.Field(meta.Kind.String()),
			events.StyleKey.Field(v.Style.String()),
			events.NodesKey.Field(v.NodeCount()),
		)
	}
	return b, nil
}

func (p *Pipeline) animate(ctx context.Context, b *build) (*build, error) {
	for i := 1; i < len(b.snapshots); i++ {
		prev, cur := b.result.Layers[i-1].Visualization, b.result.Layers[i].Visualization
		if prev.NodeCount() == 0 || cur.NodeCount() == 0 {
			continue
		}

		meta := p.layerMeta(b.snapshots[i].Name)
		res, err := interaction.Extract(b.snapshots[i-1], b.snapshots[i], meta, p.opts.Interaction())
		if err != nil {
			return b, err
		}

		entry := &b.result.Layers[i]
		switch {
		case res.Field != nil:
			means := res.Field.ChannelMeans()
			entry.Animation, err = animation.FromDenseField(res.Field, prev.Positions(), cur.Positions(),
				p.opts.LayerSpacing, p.policy(meta.Kind, means), p.opts.InteractionOpacity)
			entry.Interactions = len(means)
			entry.Strengths = ranked(means)
		case len(res.Interactions) > 0:
			strengths := make([]float32, len(res.Interactions))
			for j, it := range res.Interactions {
				strengths[j] = it.Strength
			}
			entry.Animation, err = animation.FromInteractions(res.Interactions, prev.Layout, cur.Layout,
				p.opts.LayerSpacing, p.policy(meta.Kind, strengths), p.opts.Build())
			entry.Interactions = len(res.Interactions)
			entry.Strengths = ranked(strengths)
		default:
			continue
		}
		if err != nil {
			return b, tensor.Wrap(meta.Name, meta.Kind, err)
		}

		capitan.Info(ctx, events.InteractionsExtracted,
			events.InputKey.Field(b.input),
			events.LayerKey.Field(meta.Name),
			events.KindKey.Field(meta.Kind.String()),
			events.CountKey.Field(entry.Interactions),
		)
	}
	return b, nil
}

// classify ranks the outputs of the last flat layer.
func (p *Pipeline) classify(_ context.Context, b *build) (*build, error) {
	for i := len(b.snapshots) - 1; i >= 0; i-- {
		if b.snapshots[i].Rank() == 2 {
			b.result.Top = topGuesses(b.snapshots[i], p.labels, TopGuesses)
			break
		}
	}
	return b, nil
}

// policy picks the coloring for a transition. ReLU only shows the sign of
// the change, Softmax a ramp over the rescaled probabilities, and every
// other kind the magnitude relative to the strongest value.
func (p *Pipeline) policy(kind tensor.Kind, strengths []float32) animation.ColorPolicy {
	pos, neg, neutral := p.opts.PositiveColor.RGBA(), p.opts.NegativeColor.RGBA(), p.opts.NeutralColor.RGBA()
	switch kind {
	case tensor.ReLU:
		return animation.SignPolicy(pos, neg)
	case tensor.Softmax:
		return animation.RampPolicy(1, neutral, pos)
	default:
		var limit float32
		for _, s := range strengths {
			limit = maxAbs(limit, s)
		}
		return animation.MagnitudePolicy(pos, neg, neutral, limit)
	}
}

func ranked(values []float32) []float32 {
	out := append([]float32(nil), values...)
	sort.Slice(out, func(a, b int) bool { return abs32(out[a]) > abs32(out[b]) })
	return out
}
