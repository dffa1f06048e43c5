package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fmriviz/internal/config"
	"github.com/san-kum/fmriviz/internal/export"
	"github.com/san-kum/fmriviz/internal/gui"
	"github.com/san-kum/fmriviz/internal/metrics"
	"github.com/san-kum/fmriviz/internal/scene"
	"github.com/san-kum/fmriviz/internal/storage"
	"github.com/san-kum/fmriviz/internal/trace"
	"github.com/san-kum/fmriviz/internal/viz"
)

func runView(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	nav, err := s.navigator(cmd.Context())
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(viz.NewModel(nav, s.build(), s.opts, s.title), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.Model); ok {
		return m.Err()
	}
	return nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	nav, err := s.navigator(cmd.Context())
	if err != nil {
		return err
	}
	return gui.Run(nav, s.build(), s.opts, s.title)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	results, err := s.pipeline.BuildAll(cmd.Context(), s.inputs)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	for i := range results {
		id, err := st.Save(cmd.Context(), &results[i], s.opts)
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", results[i].Input, filepath.Join(dataDir, id))
	}
	return nil
}

func listExports(cmd *cobra.Command, args []string) error {
	exports, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		fmt.Println("no exports")
		return nil
	}

	sort.Slice(exports, func(i, j int) bool { return exports[i].Timestamp.Before(exports[j].Timestamp) })
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tINPUT\tLAYERS\tTOP\tTIME")
	for _, e := range exports {
		top := "-"
		if len(e.Top) > 0 {
			top = guessLabel(scene.Guess{Index: e.Top[0].Index, Label: e.Top[0].Label, Score: e.Top[0].Score})
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", e.ID, e.Input, len(e.Layers), top, e.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runExportSVG(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	if phase < 0 || phase > 1 {
		return fmt.Errorf("phase must be in [0, 1], got %g", phase)
	}

	results, err := s.pipeline.BuildAll(cmd.Context(), s.inputs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	height := svgSize * 9 / 16
	for i := range results {
		r := &results[i]
		base := filepath.Join(outDir, sanitize(r.Input))

		f := scene.Compose(r, s.opts, phase, nil)
		cam := viz.NewCamera()
		cam.Fit(f.Bounds())
		if err := os.WriteFile(base+".svg", []byte(export.FrameToSVG(f, cam, svgSize, height)), 0644); err != nil {
			return err
		}

		if braille {
			c := viz.NewCanvas(svgSize/16, height/32)
			viz.DrawFrame(c, f, cam)
			if err := os.WriteFile(base+".braille.svg", []byte(export.CanvasToSVG(c, 4)), 0644); err != nil {
				return err
			}
		}

		for _, e := range r.Layers {
			plot := export.StrengthsToSVG(e.Strengths, 600, 200, s.opts.PositiveColor.String()[:7])
			if plot == "" {
				continue
			}
			path := fmt.Sprintf("%s.%s.strengths.svg", base, sanitize(e.Visualization.Name))
			if err := os.WriteFile(path, []byte(plot), 0644); err != nil {
				return err
			}
		}
		fmt.Printf("%s -> %s.svg\n", r.Input, base)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := s.only(args[0]); err != nil {
			return err
		}
	}

	results, err := s.pipeline.BuildAll(cmd.Context(), s.inputs)
	if err != nil {
		return err
	}

	for i := range results {
		printSample(&results[i])
	}
	return nil
}

func printSample(r *scene.SampleResult) {
	fmt.Printf("%s\n\n", r.Input)

	summaries := make(map[string]map[string]float64)
	for _, sum := range metrics.Summarize(r) {
		summaries[sum.Layer] = sum.Values
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAYER\tKIND\tSTYLE\tSHAPE\tNODES\tINTERACTIONS\tMEAN\tPEAK\tEXCITATION")
	for _, e := range r.Layers {
		v := e.Visualization
		row := fmt.Sprintf("%s\t%s\t%s\t%v\t%d\t%d", v.Name, v.Kind, v.Style, v.Shape, v.NodeCount(), e.Interactions)
		if m, ok := summaries[v.Name]; ok {
			row += fmt.Sprintf("\t%.4g\t%.4g\t%.2f", m["mean"], m["peak"], m["excitation"])
		} else {
			row += "\t-\t-\t-"
		}
		fmt.Fprintln(w, row)
	}
	w.Flush()

	if layerName != "" {
		for _, e := range r.Layers {
			if e.Visualization.Name == layerName && len(e.Strengths) > 1 {
				data := make([]float64, len(e.Strengths))
				for i, v := range e.Strengths {
					data[i] = float64(v)
				}
				fmt.Println()
				fmt.Println(asciigraph.Plot(data, asciigraph.Height(10), asciigraph.Width(70),
					asciigraph.Caption(layerName+" strength by rank")))
			}
		}
	}

	if len(r.Top) > 0 {
		fmt.Println("\ntop guesses:")
		for i, g := range r.Top {
			fmt.Printf("  %d. %-24s %.4f\n", i+1, guessLabel(g), g.Score)
		}
	}
	fmt.Println()
}

func guessLabel(g scene.Guess) string {
	if g.Label != "" {
		return g.Label
	}
	return fmt.Sprintf("#%d", g.Index)
}

func runOptions(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPTION\tTYPE\tDESCRIPTION")
	for _, f := range config.Describe() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.Type, f.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if writeOptions != "" {
		if err := config.Save(writeOptions, opts); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", writeOptions)
	}
	return nil
}

func runSynth(cmd *cobra.Command, args []string) error {
	synth := trace.NewSynthetic(seed)
	path, err := trace.Record(cmd.Context(), synth, args[0], synth.Inputs(samples))
	if err != nil {
		return err
	}
	fmt.Printf("recorded %d inputs -> %s\n", samples, path)
	return nil
}

func sanitize(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
