// Package viz is the terminal viewer for network activation scenes.
//
// Layers and the interactions flowing between them are projected through a
// [Camera] onto a braille [Canvas]. The side panel shows the selected
// layer's interaction statistics and a strength plot.
//
// # Key Bindings
//
//	n/p   - Next/previous sample
//	r     - Reload all samples
//	[ ]   - Select animated layer
//	x/y   - Tilt/rotate the camera
//	+/-   - Zoom
//	l     - Toggle interaction paths
//	Space - Pause the animation
//	t     - Cycle color themes
//	?     - Show full help
//
// Samples are built on a background worker. The model polls for the
// result once per frame and never blocks the render loop.
package viz
