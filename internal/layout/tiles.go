package layout

// tileCorners are the four corners of a unit tile in the layer plane.
var tileCorners = [12]float64{
	0, -1, -1,
	0, 1, -1,
	0, 1, 1,
	0, -1, 1,
}

// TileVertices expands every xyz position into the four corners of a
// tile, scaling the unit tile first.
func TileVertices(positions []float64, scaling float64) []float64 {
	n := len(positions) / 3
	out := make([]float64, 0, n*len(tileCorners))
	for i := 0; i < n; i++ {
		for c := 0; c < len(tileCorners); c++ {
			out = append(out, tileCorners[c]*scaling+positions[3*i+c%3])
		}
	}
	return out
}

// TileTexCoords assigns each of n tiles a horizontal strip of a shared
// texture, so tile i samples rows i/n to (i+1)/n.
func TileTexCoords(n int) []float32 {
	out := make([]float32, 0, 8*n)
	for i := 0; i < n; i++ {
		lo := float32(i) / float32(n)
		hi := float32(i+1) / float32(n)
		out = append(out,
			1, hi,
			1, lo,
			0, lo,
			0, hi,
		)
	}
	return out
}
