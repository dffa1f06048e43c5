package config

// Presets are named color and density themes.
var Presets = map[string]*Options{
	"default": DefaultOptions(),
	"dark": withOptions(func(o *Options) {
		o.NeutralColor = Color{0.15, 0.15, 0.2, 1}
		o.PositiveColor = Color{0.3, 0.9, 1, 1}
		o.NegativeColor = Color{1, 0.4, 0.7, 1}
		o.PathColor = Color{0.6, 0.6, 1, 0.08}
	}),
	"print": withOptions(func(o *Options) {
		o.NeutralColor = Color{0.9, 0.9, 0.9, 1}
		o.PositiveColor = Color{0, 0.2, 0.8, 1}
		o.NegativeColor = Color{0.8, 0.1, 0, 1}
		o.PathColor = Color{0, 0, 0, 0.15}
		o.DrawPaths = true
	}),
	"dense": withOptions(func(o *Options) {
		o.InteractionLimit = 50000
		o.InteractionOpacity = 0.4
		o.LayerOpacity = 0.6
	}),
	"sparse": withOptions(func(o *Options) {
		o.InteractionLimit = 1000
		o.ActiveOnly = true
	}),
}

func withOptions(fn func(*Options)) *Options {
	o := DefaultOptions()
	fn(o)
	return o
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Options {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
