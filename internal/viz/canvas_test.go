package viz

import (
	"strings"
	"testing"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(1, 3)

	if got := c.Grid[0][0]; got != blank|0x1|0x80 {
		t.Errorf("expected %U, got %U", blank|0x1|0x80, got)
	}
	if c.Grid[0][1] != blank {
		t.Errorf("second cell should be blank, got %U", c.Grid[0][1])
	}
}

func TestCanvasBounds(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(-1, 0)
	c.Set(0, -1)
	c.Set(4, 0)
	c.Set(0, 8)

	for _, row := range c.Grid {
		for _, r := range row {
			if r != blank {
				t.Fatalf("out of range pixel was drawn: %U", r)
			}
		}
	}
}

func TestCanvasPlotColor(t *testing.T) {
	c := NewCanvas(3, 1)
	c.Plot(0, 0, "#ff0000")
	c.Plot(2, 0, "#ff0000")
	c.Set(1, 1)

	if c.Colors[0][0] != "#ff0000" || c.Colors[0][1] != "#ff0000" {
		t.Errorf("unexpected colors %v", c.Colors[0])
	}
	if c.Colors[0][2] != "" {
		t.Errorf("uncolored cell got %q", c.Colors[0][2])
	}

	if !strings.Contains(c.Render(), string(c.Grid[0][2])) {
		t.Error("render lost the uncolored cell")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0, "")

	for i, r := range c.Grid[0] {
		if r != blank|0x1|0x8 {
			t.Errorf("cell %d: expected top row set, got %U", i, r)
		}
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Plot(1, 1, "#00ff00")
	c.Clear()

	if strings.Trim(c.String(), string(rune(blank))+"\n") != "" {
		t.Error("canvas not cleared")
	}
	if c.Colors[0][0] != "" {
		t.Error("colors not cleared")
	}
}
