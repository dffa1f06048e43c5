// Package events declares the structured signals emitted while scenes are
// built and loaded.
package events

import (
	"fmt"
	"strings"

	"github.com/zoobzio/capitan"
)

// Signals for scene events.
var (
	LoadStarted           = capitan.NewSignal("fmri.load.started", "background scene load started")
	LoadCompleted         = capitan.NewSignal("fmri.load.completed", "scene sequence installed")
	LoadFailed            = capitan.NewSignal("fmri.load.failed", "background scene load failed")
	SampleBuilt           = capitan.NewSignal("fmri.sample.built", "sample scene built")
	LayerVisualized       = capitan.NewSignal("fmri.layer.visualized", "layer visualization derived")
	InteractionsExtracted = capitan.NewSignal("fmri.interactions.extracted", "interactions extracted between layers")
	ExportWritten         = capitan.NewSignal("fmri.export.written", "sample export written to disk")
)

// All lists every signal in emission order of a typical run.
var All = []capitan.Signal{
	LoadStarted,
	LoadCompleted,
	LoadFailed,
	SampleBuilt,
	LayerVisualized,
	InteractionsExtracted,
	ExportWritten,
}

// Keys for event fields.
var (
	LoadIDKey     = capitan.NewStringKey("fmri.load.id")
	InputKey      = capitan.NewStringKey("fmri.input")
	LayerKey      = capitan.NewStringKey("fmri.layer")
	KindKey       = capitan.NewStringKey("fmri.layer.kind")
	StyleKey      = capitan.NewStringKey("fmri.layer.style")
	NodesKey      = capitan.NewIntKey("fmri.layer.nodes")
	LayersKey     = capitan.NewIntKey("fmri.layers")
	CountKey      = capitan.NewIntKey("fmri.interactions.count")
	SamplesKey    = capitan.NewIntKey("fmri.samples")
	DurationMsKey = capitan.NewIntKey("fmri.duration.ms")
	PathKey       = capitan.NewStringKey("fmri.path")
	ErrorKey      = capitan.NewStringKey("fmri.error")
)

// Format renders the known fields of an event on one line.
func Format(e *capitan.Event) string {
	var b strings.Builder
	b.WriteString(e.Signal().Name())

	str := func(label string, v string, ok bool) {
		if ok {
			fmt.Fprintf(&b, " %s=%s", label, v)
		}
	}
	num := func(label string, v int, ok bool) {
		if ok {
			fmt.Fprintf(&b, " %s=%d", label, v)
		}
	}

	v, ok := LoadIDKey.From(e)
	str("load", v, ok)
	v, ok = InputKey.From(e)
	str("input", v, ok)
	v, ok = LayerKey.From(e)
	str("layer", v, ok)
	v, ok = KindKey.From(e)
	str("kind", v, ok)
	v, ok = StyleKey.From(e)
	str("style", v, ok)
	v, ok = PathKey.From(e)
	str("path", v, ok)

	n, ok := NodesKey.From(e)
	num("nodes", n, ok)
	n, ok = LayersKey.From(e)
	num("layers", n, ok)
	n, ok = CountKey.From(e)
	num("interactions", n, ok)
	n, ok = SamplesKey.From(e)
	num("samples", n, ok)
	n, ok = DurationMsKey.From(e)
	num("ms", n, ok)

	v, ok = ErrorKey.From(e)
	str("error", v, ok)
	return b.String()
}
