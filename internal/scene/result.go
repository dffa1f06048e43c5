package scene

import (
	"sort"

	"github.com/san-kum/fmriviz/internal/animation"
	"github.com/san-kum/fmriviz/internal/tensor"
)

// Entry pairs a layer with the animation leading into it. Animation is nil
// for the first layer and for transitions that are not animated.
type Entry struct {
	Visualization *LayerVisualization
	Animation     *animation.Animation
	// Interactions is the number of interactions behind Animation.
	Interactions int
	// Strengths holds the animated strengths, strongest first, for
	// statistics and plots.
	Strengths []float32
}

// Guess is one of the highest scoring outputs of the final layer.
type Guess struct {
	Index int
	Label string
	Score float32
}

// SampleResult is the complete scene for one input.
type SampleResult struct {
	Input  string
	Layers []Entry
	Top    []Guess
}

// Animations counts the layers that carry an animation.
func (r *SampleResult) Animations() int {
	n := 0
	for _, e := range r.Layers {
		if e.Animation != nil {
			n++
		}
	}
	return n
}

// topGuesses ranks the entries of a flat output layer.
func topGuesses(out *tensor.Snapshot, labels []string, n int) []Guess {
	if out == nil || out.Rank() != 2 {
		return nil
	}
	guesses := make([]Guess, out.NumEntries())
	for i, v := range out.Data {
		guesses[i] = Guess{Index: i, Score: v}
		if i < len(labels) {
			guesses[i].Label = labels[i]
		}
	}
	sort.SliceStable(guesses, func(a, b int) bool {
		return guesses[a].Score > guesses[b].Score
	})
	if len(guesses) > n {
		guesses = guesses[:n]
	}
	return guesses
}
