package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/export"
	"github.com/san-kum/softsim/internal/logging"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/particle"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/storage"
	"github.com/san-kum/softsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	dataDir    string
	configFile string
	preset     string
	mode       string
	logLevel   string
	step       float64
	duration   float64
	seed       int64
	// plot and export
	particleIdx int
	traceIdx    int
	format      string
	outFile     string
	width       int
	height      int
	// sweep
	numRuns  int
	parallel int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "softsim",
		Short:         "verlet cloth and plant simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".softsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	addSceneFlags(rootCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot max sag, or one particle's height, over a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particleIdx, "particle", particle.NoParticle, "particle index to plot (default: max sag)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run, or a snapshot of the configured scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}
	addSceneFlags(exportCmd)
	exportCmd.Flags().StringVar(&format, "format", "svg", "output format (svg, json, trajectory)")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().IntVar(&traceIdx, "particle", 0, "particle traced by the trajectory format")
	exportCmd.Flags().IntVar(&width, "width", 800, "svg width")
	exportCmd.Flags().IntVar(&height, "height", 400, "svg height")

	presetsCmd := &cobra.Command{
		Use:   "presets [mode]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the scene over a range of seeds in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs (0 for unlimited)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&mode, "mode", sim.ModeCloth.String(), "structure to simulate (cloth, plant)")
	cmd.Flags().Float64Var(&step, "step", config.DefaultStep, "fixed solver step")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (plant branches)")
}

// loadConfig layers defaults, preset, config file and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	flags := cmd.Flags()

	if preset != "" {
		searchMode := ""
		if flags.Changed("mode") {
			searchMode = mode
		}
		p, err := config.FindPreset(searchMode, preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if flags.Changed("mode") || (preset == "" && configFile == "") {
		cfg.Mode = mode
	}
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	return logging.New(os.Stderr, cfg.LogLevel)
}

func buildScene(cfg *config.Config, logger *log.Logger) (*sim.Scene, error) {
	sc, err := cfg.SceneConfig()
	if err != nil {
		return nil, err
	}
	return sim.NewScene(sc, logger)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	scene, err := buildScene(cfg, logger)
	if err != nil {
		return err
	}

	s := sim.New(scene, logger)
	for _, m := range metrics.Standard(cfg.Step) {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s simulation...\n", cfg.Mode)
	start := time.Now()

	result, err := s.Run(ctx, cfg.SimConfig())
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted, keeping partial result", "err", err)
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	runID, err := st.Save(storage.RunMetadata{
		Mode:     cfg.Mode,
		Preset:   preset,
		Seed:     cfg.Seed,
		Step:     cfg.Step,
		FrameDt:  cfg.FrameDt,
		Duration: cfg.Duration,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(result.Frames))
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.Dropped > 0 {
		fmt.Printf("dropped: %.4fs\n", result.Dropped)
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	printMetrics(os.Stdout, result.Metrics)

	if result.Failed() {
		return fmt.Errorf("simulation failed")
	}
	return nil
}

func printMetrics(w io.Writer, values map[string]float64) {
	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range metrics.Names() {
		if v, ok := values[name]; ok {
			fmt.Fprintf(w, "  %s: %.6f\n", name, v)
		}
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the alt screen owns the terminal, so only errors reach stderr
	logger, err := logging.New(os.Stderr, "error")
	if err != nil {
		return err
	}
	scene, err := buildScene(cfg, logger)
	if err != nil {
		return err
	}
	return viz.Run(scene, logger)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tPRESET\tTIME\tDURATION\tSTEP\tSTEPS\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if len(run.Errors) > 0 {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Mode,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Step,
			run.StepsTaken,
			status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mode: %s\n", meta.Mode)
	fmt.Printf("frames: %d\n\n", len(frames))

	data, caption, err := plotSeries(frames, particleIdx)
	if err != nil {
		return err
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

// plotSeries extracts either the height of one particle or the largest drop
// of any particle below its first recorded position.
func plotSeries(frames []sim.Frame, idx int) ([]float64, string, error) {
	data := make([]float64, len(frames))
	if idx != particle.NoParticle {
		if idx < 0 || idx >= len(frames[0].Points) {
			return nil, "", fmt.Errorf("particle %d out of range [0, %d)", idx, len(frames[0].Points))
		}
		for i, f := range frames {
			if idx < len(f.Points) {
				data[i] = f.Points[idx].Y
			}
		}
		return data, fmt.Sprintf("particle %d height", idx), nil
	}

	base := frames[0].Points
	for i, f := range frames {
		sag := 0.0
		for j, p := range f.Points {
			if j < len(base) {
				sag = max(sag, base[j].Y-p.Y)
			}
		}
		data[i] = sag
	}
	return data, "max sag", nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if len(args) == 0 {
		return exportSnapshot(cmd, w)
	}

	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", runID)
	}

	switch format {
	case "json":
		result := &sim.Result{
			Frames:     frames,
			Metrics:    meta.Metrics,
			StepsTaken: meta.StepsTaken,
			Dropped:    meta.Dropped,
		}
		return storage.ExportJSON(w, *meta, result)
	case "svg":
		data := particle.RenderData{Points: frames[len(frames)-1].Points}
		world, ok := data.Bounds()
		if !ok {
			return fmt.Errorf("run %s has no finite points", runID)
		}
		_, err := io.WriteString(w, export.RenderToSVG(data, pad(world, 0.05), width, height))
		return err
	case "trajectory":
		if traceIdx < 0 || traceIdx >= len(frames[0].Points) {
			return fmt.Errorf("particle %d out of range [0, %d)", traceIdx, len(frames[0].Points))
		}
		path := make([]r2.Vec, 0, len(frames))
		for _, f := range frames {
			if traceIdx < len(f.Points) {
				path = append(path, f.Points[traceIdx])
			}
		}
		_, err := io.WriteString(w, export.TrajectoryToSVG(path, width, height, "#00ff88"))
		return err
	}
	return fmt.Errorf("unknown format %q (svg, json, trajectory)", format)
}

// exportSnapshot runs the configured scene for the requested duration and
// writes its final state as SVG.
func exportSnapshot(cmd *cobra.Command, w io.Writer) error {
	if format != "svg" {
		return fmt.Errorf("snapshots only support svg, got %q", format)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	scene, err := buildScene(cfg, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if _, err := sim.New(scene, logger).Run(ctx, cfg.SimConfig()); err != nil {
		return err
	}
	_, err = io.WriteString(w, export.SceneToSVG(scene, width, height))
	return err
}

func pad(b r2.Box, frac float64) r2.Box {
	d := r2.Scale(frac, r2.Sub(b.Max, b.Min))
	d.X, d.Y = max(d.X, 1), max(d.Y, 1)
	return r2.Box{Min: r2.Sub(b.Min, d), Max: r2.Add(b.Max, d)}
}

func listPresets(cmd *cobra.Command, args []string) error {
	modes := config.Modes()
	if len(args) > 0 {
		modes = []string{strings.ToLower(args[0])}
	}
	for _, m := range modes {
		presets := config.ListPresets(m)
		if len(presets) == 0 {
			fmt.Printf("no presets for mode: %s\n", m)
			continue
		}
		fmt.Printf("presets for %s:\n", m)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	factory := func(seed int64) (*sim.Scene, error) {
		c := cfg.Clone()
		c.Seed = seed
		return buildScene(c, logger)
	}
	newMetrics := func() []sim.Metric { return metrics.Standard(cfg.Step) }

	ens := sim.NewEnsemble(factory, newMetrics, numRuns, cfg.Seed)
	ens.SetLimit(parallel)
	ens.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := ens.Run(ctx, cfg.SimConfig())
	if err != nil {
		return err
	}
	logger.Info("sweep complete", "runs", len(results), "elapsed", time.Since(start))

	names := metrics.Names()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "SEED\tSTEPS\t%s\tSTATUS\t\n", strings.ToUpper(strings.Join(names, "\t")))
	for i, res := range results {
		status := "ok"
		if res.Failed() {
			status = "failed"
		}
		fmt.Fprintf(w, "%d\t%d\t", cfg.Seed+int64(i), res.StepsTaken)
		for _, n := range names {
			fmt.Fprintf(w, "%.4g\t", res.Metrics[n])
		}
		fmt.Fprintf(w, "%s\t\n", status)
	}
	return w.Flush()
}
