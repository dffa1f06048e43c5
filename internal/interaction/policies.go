package interaction

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/fmriviz/internal/layout"
	"github.com/san-kum/fmriviz/internal/tensor"
)

// productChunk is the smallest slice of products handed to one worker.
const productChunk = 1 << 15

// innerProduct treats the first parameter as a row-major [out, in] weight
// matrix. Candidate k = o*in + i has strength W[k] * prev[i].
func innerProduct(prev, cur *tensor.Snapshot, params []tensor.Param, opts Options) ([]Interaction, error) {
	if len(params) == 0 || params[0].NumEntries() == 0 {
		return nil, tensor.ErrMissingParameters
	}
	w := params[0]
	if len(w.Shape) != 2 {
		return nil, fmt.Errorf("%w: weights must be [out, in], got %v", tensor.ErrUnsupportedShape, w.Shape)
	}
	out, in := w.Shape[0], w.Shape[1]
	if out*in != w.NumEntries() {
		return nil, fmt.Errorf("%w: weights %v hold %d values", tensor.ErrShapeMismatch, w.Shape, w.NumEntries())
	}
	if in != prev.NumEntries() {
		return nil, fmt.Errorf("%w: weights expect %d inputs, %s has %d",
			tensor.ErrShapeMismatch, in, prev.Name, prev.NumEntries())
	}
	if out != cur.NumEntries() {
		return nil, fmt.Errorf("%w: weights produce %d outputs, %s has %d",
			tensor.ErrShapeMismatch, out, cur.Name, cur.NumEntries())
	}
	srcNorm, err := layout.Normalizer(prev.Shape)
	if err != nil {
		return nil, err
	}

	products := make([]float32, w.NumEntries())
	ParallelFor(len(products), productChunk, opts.Workers, func(start, end int) {
		for k := start; k < end; k++ {
			products[k] = w.Data[k] * prev.Data[k%in]
		}
	})

	winners := topK(products, opts.Limit, opts.Epsilon)
	result := make([]Interaction, len(winners))
	for j, k := range winners {
		result[j] = Interaction{
			Strength: products[k],
			Source:   (k % in) / srcNorm,
			Sink:     k / in,
		}
	}
	return result, nil
}

func dropOut(prev, cur *tensor.Snapshot) ([]Interaction, error) {
	if err := sameSize(prev, cur); err != nil {
		return nil, err
	}
	srcNorm, sinkNorm, err := normalizers(prev, cur)
	if err != nil {
		return nil, err
	}

	raw := make([]Interaction, 0, cur.NumEntries())
	for i, v := range cur.Data {
		if v != 0 {
			raw = append(raw, Interaction{Strength: v, Source: i / srcNorm, Sink: i / sinkNorm})
		}
	}
	return Deduplicate(raw), nil
}

// Deduplicate merges interactions sharing a (source, sink) pair by summing
// their strengths. The result is ordered by source, then sink.
func Deduplicate(list []Interaction) []Interaction {
	type pair struct{ src, sink int }
	sums := make(map[pair]float32, len(list))
	for _, it := range list {
		sums[pair{it.Source, it.Sink}] += it.Strength
	}

	out := make([]Interaction, 0, len(sums))
	for p, s := range sums {
		out = append(out, Interaction{Strength: s, Source: p.src, Sink: p.sink})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Source != out[b].Source {
			return out[a].Source < out[b].Source
		}
		return out[a].Sink < out[b].Sink
	})
	return out
}

func relu(prev, cur *tensor.Snapshot, opts Options) (Result, error) {
	if err := sameSize(prev, cur); err != nil {
		return Result{}, err
	}

	changes := make([]float32, cur.NumEntries())
	for i := range changes {
		changes[i] = cur.Data[i] - prev.Data[i]
	}

	switch cur.Rank() {
	case 2:
		var list []Interaction
		for i, v := range cur.Data {
			if v > opts.Epsilon {
				list = append(list, Interaction{Strength: changes[i], Source: i, Sink: i})
			}
		}
		return Result{Interactions: list}, nil
	case 4:
		return Result{Field: &DenseField{Values: changes, Shape: cloneShape(prev.Shape), Scaling: 1}}, nil
	default:
		return Result{}, fmt.Errorf("%w: rank %d", tensor.ErrUnsupportedShape, cur.Rank())
	}
}

func lrn(prev, cur *tensor.Snapshot) (Result, error) {
	if err := sameShape(prev, cur); err != nil {
		return Result{}, err
	}

	ratios := NormalizationRatios(prev.Data, cur.Data)

	switch cur.Rank() {
	case 2:
		list := make([]Interaction, len(ratios))
		for i, v := range ratios {
			list[i] = Interaction{Strength: v, Source: i, Sink: i}
		}
		return Result{Interactions: list}, nil
	case 4:
		return Result{Field: &DenseField{Values: ratios, Shape: cloneShape(prev.Shape), Scaling: 1}}, nil
	default:
		return Result{}, fmt.Errorf("%w: rank %d", tensor.ErrUnsupportedShape, cur.Rank())
	}
}

// NormalizationRatios returns log(prev/cur) per element. Ratios that are
// not finite become 1 before the log, and a log that is still not finite
// (a sign flip) becomes 0.
func NormalizationRatios(prev, cur []float32) []float32 {
	out := make([]float32, len(prev))
	for i := range prev {
		ratio := float64(prev[i]) / float64(cur[i])
		out[i] = float32(finiteOr(math.Log(finiteOr(ratio, 1)), 0))
	}
	return out
}

func softmax(cur *tensor.Snapshot) ([]Interaction, error) {
	if cur.Rank() != 2 {
		return nil, fmt.Errorf("%w: softmax needs a flat layer, got rank %d", tensor.ErrUnsupportedShape, cur.Rank())
	}

	intensities := append([]float32(nil), cur.Data...)
	Rescale(intensities, 0, 1)

	list := make([]Interaction, len(intensities))
	for i, v := range intensities {
		list[i] = Interaction{Strength: v, Source: i, Sink: i}
	}
	return list, nil
}

// pooling shrinks every previous channel tile toward its pooled position.
func pooling(prev, cur *tensor.Snapshot) (*DenseField, error) {
	if prev.Rank() != 4 || cur.Rank() != 4 {
		return nil, fmt.Errorf("%w: pooling needs image layers", tensor.ErrUnsupportedShape)
	}
	if prev.Channels() != cur.Channels() {
		return nil, fmt.Errorf("%w: %d channels pooled into %d",
			tensor.ErrShapeMismatch, prev.Channels(), cur.Channels())
	}

	scaling := math.Sqrt(float64(cur.Height()*cur.Width()) / float64(prev.Height()*prev.Width()))
	return &DenseField{
		Values:  append([]float32(nil), prev.Data...),
		Shape:   cloneShape(prev.Shape),
		Scaling: scaling,
	}, nil
}

func cloneShape(s []int) []int {
	return append([]int(nil), s...)
}
