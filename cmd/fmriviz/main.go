package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	manifest   string
	seed       int64
	samples    int
	configFile string
	preset     string
	labelsFile string
	verbose    bool

	// export-svg
	outDir  string
	phase   float64
	svgSize int
	braille bool

	// inspect
	layerName string

	// options
	writeOptions string
)

// main registers the commands and runs the viewer when no subcommand is
// given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "fmriviz",
		Short:         "neural network activation viewer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				observe()
			}
		},
		RunE: runView,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".fmriviz", "export directory")
	pf.StringVar(&manifest, "manifest", "", "recorded trace manifest (yaml); synthetic network when empty")
	pf.Int64Var(&seed, "seed", 1, "synthetic network seed")
	pf.IntVar(&samples, "samples", 4, "number of synthetic inputs")
	pf.StringVar(&configFile, "config", "", "options file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset options")
	pf.StringVar(&labelsFile, "labels", "", "text file with one output label per line")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print scene events")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "browse samples in the terminal",
		RunE:  runView,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "browse samples in a 3D window",
		RunE:  runGUI,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "write scene metadata and interaction strengths for every sample",
		RunE:  runExport,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list exports",
		RunE:  listExports,
	}

	svgCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "render every sample to SVG",
		RunE:  runExportSVG,
	}
	svgCmd.Flags().StringVarP(&outDir, "out", "o", "svg", "output directory")
	svgCmd.Flags().Float64Var(&phase, "phase", 0.5, "animation phase in [0, 1]")
	svgCmd.Flags().IntVar(&svgSize, "size", 1024, "image width in pixels")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "also write the terminal rendering")

	inspectCmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "print per layer interaction statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().StringVar(&layerName, "layer", "", "plot the strengths of this layer")

	optionsCmd := &cobra.Command{
		Use:   "options",
		Short: "describe every option",
		RunE:  runOptions,
	}
	optionsCmd.Flags().StringVar(&writeOptions, "write", "", "save the effective options to this file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range listPresets() {
				fmt.Println(p)
			}
		},
	}

	synthCmd := &cobra.Command{
		Use:   "synth [dir]",
		Short: "record the synthetic network as a replayable trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runSynth,
	}

	rootCmd.AddCommand(viewCmd, guiCmd, exportCmd, listCmd, svgCmd, inspectCmd, optionsCmd, presetsCmd, synthCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}
