package interaction

import (
	"fmt"

	"github.com/san-kum/fmriviz/internal/layout"
	"github.com/san-kum/fmriviz/internal/tensor"
)

const (
	DefaultLimit   = 10000
	DefaultEpsilon = 1e-6
)

// Interaction connects node Source of the previous layer to node Sink of
// the current one.
type Interaction struct {
	Strength float32
	Source   int
	Sink     int
}

type Options struct {
	// Limit bounds the number of InnerProduct interactions kept.
	Limit int
	// Epsilon is the magnitude below which a value counts as zero.
	Epsilon float32
	// Workers caps the goroutines used for large products. Zero means
	// runtime.NumCPU.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Limit:   DefaultLimit,
		Epsilon: DefaultEpsilon,
	}
}

// DenseField is a per element value grid over an image shaped layer. It
// animates whole channel tiles instead of single nodes.
type DenseField struct {
	Values  []float32
	Shape   []int
	Scaling float64
}

func (f *DenseField) Channels() int { return f.Shape[1] }

// ChannelMeans averages the field over each channel.
func (f *DenseField) ChannelMeans() []float32 {
	c := f.Channels()
	per := len(f.Values) / c
	out := make([]float32, c)
	for ch := 0; ch < c; ch++ {
		var sum float64
		for _, v := range f.Values[ch*per : (ch+1)*per] {
			sum += float64(v)
		}
		out[ch] = float32(sum / float64(per))
	}
	return out
}

// Result is either a list of interactions or a dense field. Both empty
// means the transition is not animated.
type Result struct {
	Interactions []Interaction
	Field        *DenseField
}

func (r Result) Empty() bool {
	return len(r.Interactions) == 0 && r.Field == nil
}

// Extract runs the policy for meta.Kind over the transition prev -> cur.
// Malformed inputs return errors wrapped in *tensor.LayerError.
func Extract(prev, cur *tensor.Snapshot, meta tensor.Meta, opts Options) (Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultEpsilon
	}

	var (
		res Result
		err error
	)
	switch meta.Kind {
	case tensor.InnerProduct:
		res.Interactions, err = innerProduct(prev, cur, meta.Params, opts)
	case tensor.DropOut:
		res.Interactions, err = dropOut(prev, cur)
	case tensor.ReLU:
		res, err = relu(prev, cur, opts)
	case tensor.LRN:
		res, err = lrn(prev, cur)
	case tensor.Softmax:
		res.Interactions, err = softmax(cur)
	case tensor.Pooling:
		res.Field, err = pooling(prev, cur)
	default:
		return Result{}, nil
	}
	if err != nil {
		return Result{}, tensor.Wrap(meta.Name, meta.Kind, err)
	}
	return res, nil
}

func normalizers(prev, cur *tensor.Snapshot) (int, int, error) {
	src, err := layout.Normalizer(prev.Shape)
	if err != nil {
		return 0, 0, err
	}
	sink, err := layout.Normalizer(cur.Shape)
	if err != nil {
		return 0, 0, err
	}
	return src, sink, nil
}

func sameSize(prev, cur *tensor.Snapshot) error {
	if prev.NumEntries() != cur.NumEntries() {
		return fmt.Errorf("%w: %s has %d entries, %s has %d",
			tensor.ErrShapeMismatch, prev.Name, prev.NumEntries(), cur.Name, cur.NumEntries())
	}
	return nil
}

func sameShape(prev, cur *tensor.Snapshot) error {
	if len(prev.Shape) != len(cur.Shape) {
		return fmt.Errorf("%w: %v vs %v", tensor.ErrShapeMismatch, prev.Shape, cur.Shape)
	}
	for i := range prev.Shape {
		if prev.Shape[i] != cur.Shape[i] {
			return fmt.Errorf("%w: %v vs %v", tensor.ErrShapeMismatch, prev.Shape, cur.Shape)
		}
	}
	return nil
}
