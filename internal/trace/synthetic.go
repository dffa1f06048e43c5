package trace

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/fmriviz/internal/tensor"
)

// Synthetic computes activations of a small fixed network with seeded
// random weights. It gives every extractor something to work on without a
// recorded model.
type Synthetic struct {
	convW  []float32 // [convOut, inC, 3, 3]
	fc1W   []float32 // [fc1Out, pooled]
	fc2W   []float32 // [classes, fc1Out]
	layers []LayerSpec
}

const (
	inC     = 3
	side    = 8
	convOut = 4
	pooled  = convOut * (side / 2) * (side / 2)
	fc1Out  = 16
	classes = 10

	lrnSize  = 3
	lrnAlpha = 0.5
	lrnBeta  = 0.75
)

func NewSynthetic(seed int64) *Synthetic {
	rng := rand.New(rand.NewSource(seed))
	s := &Synthetic{
		convW: randomWeights(rng, convOut*inC*9, 0.4),
		fc1W:  randomWeights(rng, fc1Out*pooled, 0.2),
		fc2W:  randomWeights(rng, classes*fc1Out, 0.5),
	}
	s.layers = []LayerSpec{
		{Name: "data", Type: "Input", Shape: []int{1, inC, side, side}},
		{Name: "conv1", Type: "Convolution", Shape: []int{1, convOut, side, side},
			Params: []ParamSpec{{Tensor: "conv1.weight", Shape: []int{convOut, inC, 3, 3}}}},
		{Name: "relu1", Type: "ReLU", Shape: []int{1, convOut, side, side}},
		{Name: "pool1", Type: "Pooling", Shape: []int{1, convOut, side / 2, side / 2}},
		{Name: "norm1", Type: "LRN", Shape: []int{1, convOut, side / 2, side / 2}},
		{Name: "fc1", Type: "InnerProduct", Shape: []int{1, fc1Out},
			Params: []ParamSpec{{Tensor: "fc1.weight", Shape: []int{fc1Out, pooled}}}},
		{Name: "relu2", Type: "ReLU", Shape: []int{1, fc1Out}},
		{Name: "drop1", Type: "Dropout", Shape: []int{1, fc1Out}},
		{Name: "fc2", Type: "InnerProduct", Shape: []int{1, classes},
			Params: []ParamSpec{{Tensor: "fc2.weight", Shape: []int{classes, fc1Out}}}},
		{Name: "prob", Type: "Softmax", Shape: []int{1, classes}},
	}
	return s
}

func randomWeights(rng *rand.Rand, n int, scale float64) []float32 {
	w := make([]float32, n)
	for i := range w {
		w[i] = float32(rng.NormFloat64() * scale)
	}
	return w
}

// Layers describes the network in manifest form.
func (s *Synthetic) Layers() []LayerSpec { return s.layers }

// Weights returns the parameter tensors by name.
func (s *Synthetic) Weights() map[string]Tensor {
	return map[string]Tensor{
		"conv1.weight": {Shape: []int{convOut, inC, 3, 3}, Data: s.convW},
		"fc1.weight":   {Shape: []int{fc1Out, pooled}, Data: s.fc1W},
		"fc2.weight":   {Shape: []int{classes, fc1Out}, Data: s.fc2W},
	}
}

func (s *Synthetic) LayerMeta() map[string]tensor.Meta {
	weights := s.Weights()
	meta := make(map[string]tensor.Meta, len(s.layers))
	for _, l := range s.layers {
		m := tensor.Meta{Name: l.Name, Kind: tensor.ParseKind(l.Type)}
		for _, p := range l.Params {
			w := weights[p.Tensor]
			m.Params = append(m.Params, tensor.Param{Shape: w.Shape, Data: w.Data})
		}
		meta[l.Name] = m
	}
	return meta
}

// Inputs returns n input names.
func (s *Synthetic) Inputs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("sample-%d", i)
	}
	return out
}

// Simulate runs the network on an image derived from the input name.
func (s *Synthetic) Simulate(ctx context.Context, input string) ([]*tensor.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := inputImage(input)
	conv := s.convolve(data)
	relu1 := rectify(conv)
	pool := maxPool(relu1, convOut, side)
	norm := localResponse(pool, convOut, (side/2)*(side/2))
	fc1 := dense(s.fc1W, norm, fc1Out)
	relu2 := rectify(fc1)
	drop := append([]float32(nil), relu2...)
	fc2 := dense(s.fc2W, drop, classes)
	prob := softmax(fc2)

	values := [][]float32{data, conv, relu1, pool, norm, fc1, relu2, drop, fc2, prob}
	snaps := make([]*tensor.Snapshot, len(s.layers))
	for i, l := range s.layers {
		snap, err := tensor.NewSnapshot(l.Name, l.Shape, values[i])
		if err != nil {
			return nil, err
		}
		snaps[i] = snap
	}
	return snaps, nil
}

// inputImage draws a smooth pattern whose phase depends on the name.
func inputImage(name string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(name))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	fx, fy, phase := 0.3+rng.Float64(), 0.3+rng.Float64(), rng.Float64()*2*math.Pi

	img := make([]float32, inC*side*side)
	for c := 0; c < inC; c++ {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				v := math.Sin(fx*float64(x)+phase+float64(c)) * math.Cos(fy*float64(y)-phase)
				img[(c*side+y)*side+x] = float32(0.5 + 0.5*v)
			}
		}
	}
	return img
}

func (s *Synthetic) convolve(in []float32) []float32 {
	out := make([]float32, convOut*side*side)
	for o := 0; o < convOut; o++ {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				var sum float32
				for c := 0; c < inC; c++ {
					for ky := -1; ky <= 1; ky++ {
						for kx := -1; kx <= 1; kx++ {
							yy, xx := y+ky, x+kx
							if yy < 0 || yy >= side || xx < 0 || xx >= side {
								continue
							}
							w := s.convW[((o*inC+c)*3+ky+1)*3+kx+1]
							sum += w * in[(c*side+yy)*side+xx]
						}
					}
				}
				out[(o*side+y)*side+x] = sum
			}
		}
	}
	return out
}

func rectify(in []float32) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		if v > 0 {
			out[i] = v
		}
	}
	return out
}

func maxPool(in []float32, channels, n int) []float32 {
	half := n / 2
	out := make([]float32, channels*half*half)
	for c := 0; c < channels; c++ {
		for y := 0; y < half; y++ {
			for x := 0; x < half; x++ {
				m := float32(math.Inf(-1))
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						if v := in[(c*n+2*y+dy)*n+2*x+dx]; v > m {
							m = v
						}
					}
				}
				out[(c*half+y)*half+x] = m
			}
		}
	}
	return out
}

// localResponse normalizes across neighbouring channels.
func localResponse(in []float32, channels, plane int) []float32 {
	out := make([]float32, len(in))
	for c := 0; c < channels; c++ {
		for p := 0; p < plane; p++ {
			var sq float64
			for n := c - lrnSize/2; n <= c+lrnSize/2; n++ {
				if n < 0 || n >= channels {
					continue
				}
				v := float64(in[n*plane+p])
				sq += v * v
			}
			scale := math.Pow(1+lrnAlpha/lrnSize*sq, lrnBeta)
			out[c*plane+p] = float32(float64(in[c*plane+p]) / scale)
		}
	}
	return out
}

func dense(w, in []float32, outputs int) []float32 {
	x := widen(in)
	out := make([]float32, outputs)
	for o := range out {
		out[o] = float32(floats.Dot(widen(w[o*len(in):(o+1)*len(in)]), x))
	}
	return out
}

func softmax(in []float32) []float32 {
	x := widen(in)
	floats.AddConst(-floats.Max(x), x)
	for i := range x {
		x[i] = math.Exp(x[i])
	}
	floats.Scale(1/floats.Sum(x), x)

	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
