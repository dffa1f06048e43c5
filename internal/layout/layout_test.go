package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fmriviz/internal/tensor"
)

func TestColumns(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{1, 1},
		{4, 2},
		{7, 7},
		{10, 5},
		{12, 4},
		{96, 12},
		{4096, 64},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Columns(tt.n); got != tt.expected {
			t.Errorf("Columns(%d) = %d, want %d", tt.n, got, tt.expected)
		}
	}
}

func TestBuildSquare(t *testing.T) {
	for _, n := range []int{1, 6, 10, 13, 64, 1000} {
		l, err := Build(n, Square, FlatSpacing)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		cols := Columns(n)
		if n%cols != 0 {
			t.Errorf("n=%d: columns %d do not divide n", n, cols)
		}

		seen := make(map[[3]float64]bool)
		for i := 0; i < n; i++ {
			p := l.Position(i)
			if p[0] != 0 {
				t.Errorf("n=%d node %d: expected x=0, got %v", n, i, p[0])
			}
			if seen[p] {
				t.Errorf("n=%d node %d: duplicate position %v", n, i, p)
			}
			seen[p] = true
		}
	}
}

func TestBuildSquarePositions(t *testing.T) {
	l, _ := Build(6, Square, 2)
	want := [][3]float64{
		{0, 0, 0}, {0, 0, -2}, {0, 0, -4},
		{0, 2, 0}, {0, 2, -2}, {0, 2, -4},
	}
	for i, w := range want {
		if got := l.Position(i); got != w {
			t.Errorf("node %d: got %v, want %v", i, got, w)
		}
	}
}

func TestBuildLine(t *testing.T) {
	l, _ := Build(3, Line, 3)
	for i := 0; i < 3; i++ {
		p := l.Position(i)
		if p[0] != 0 || p[1] != 0 || p[2] != -3*float64(i) {
			t.Errorf("node %d: unexpected position %v", i, p)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(0, Square, 2)
	if !errors.Is(err, tensor.ErrEmptyLayout) {
		t.Errorf("expected ErrEmptyLayout, got %v", err)
	}
}

func TestNormalizer(t *testing.T) {
	tests := []struct {
		shape    []int
		expected int
		wantErr  bool
	}{
		{[]int{1, 4096}, 1, false},
		{[]int{1, 96, 55, 55}, 3025, false},
		{[]int{1, 2, 3}, 0, true},
		{[]int{10}, 0, true},
	}

	for _, tt := range tests {
		got, err := Normalizer(tt.shape)
		if tt.wantErr {
			if !errors.Is(err, tensor.ErrUnsupportedShape) {
				t.Errorf("shape %v: expected ErrUnsupportedShape, got %v", tt.shape, err)
			}
			continue
		}
		if got != tt.expected {
			t.Errorf("shape %v: got %d, want %d", tt.shape, got, tt.expected)
		}
	}
}

func TestNormalizerRoundTrip(t *testing.T) {
	shape := []int{1, 3, 4, 5}
	norm, _ := Normalizer(shape)
	count, _ := NodeCount(shape)
	if count != 3 {
		t.Fatalf("expected 3 nodes, got %d", count)
	}
	for i := 0; i < 3*4*5; i++ {
		node := i / norm
		if node < 0 || node >= count {
			t.Errorf("entry %d maps to node %d outside [0, %d)", i, node, count)
		}
	}
}

func TestTileVertices(t *testing.T) {
	v := TileVertices([]float64{0, 10, 20}, 2)
	want := []float64{
		0, 8, 18,
		0, 12, 18,
		0, 12, 22,
		0, 8, 22,
	}
	if len(v) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(v))
	}
	for i := range want {
		if math.Abs(v[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: got %v, want %v", i, v[i], want[i])
		}
	}
}

func TestTileTexCoords(t *testing.T) {
	tc := TileTexCoords(2)
	if len(tc) != 16 {
		t.Fatalf("expected 16 coords, got %d", len(tc))
	}
	if tc[1] != 0.5 || tc[3] != 0 || tc[9] != 1 {
		t.Errorf("unexpected strip coords: %v", tc)
	}
}
