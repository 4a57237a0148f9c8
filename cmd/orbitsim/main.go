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

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/automation"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	configFile    string
	runFrames     int
	compareFrames int
	benchFrames   int
	frameRate     int
	timeScale     float64
	subSteps      int
	integrator    string
	collisionMode string
	noCollision   bool
	noEscape      bool
	save          bool
	svgPath       string

	chaosDays   float64
	chaosDt     float64
	chaosOffset float64
	chaosBody   int

	mcTrials       int
	mcPerturbation float64
	mcFrames       int
	mcSeed         int64
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666677"))
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "env:", err)
	}

	rootCmd := &cobra.Command{
		Use:           "orbitsim",
		Short:         "gravitational n-body sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				Level:           level,
				ReportTimestamp: true,
				TimeFormat:      time.Kitchen,
				Prefix:          "orbitsim",
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker(sim.WithLogger(log.New(io.Discard)))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.GetEnv(config.EnvDataDir, config.DefaultDataDir), "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.GetEnv(config.EnvLogLevel, config.DefaultLogLevel), "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation headless",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	runCmd.Flags().IntVar(&runFrames, "frames", 3600, "frame budget")
	runCmd.Flags().BoolVar(&save, "save", false, "save a run summary to the data directory")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final trails to an svg file")
	overrideFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	overrideFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run with its energy plot",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.DescribePreset(name))
			}
			return w.Flush()
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export [preset]",
		Short: "print initial conditions as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := experiment.Resolve(args[0])
			if err != nil {
				return err
			}
			return storage.Export(os.Stdout, cfg)
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrator1] [integrator2] ...",
		Short: "compare energy drift across integrators",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().IntVar(&compareFrames, "frames", 3600, "frame budget")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark frame throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchPreset,
	}
	benchCmd.Flags().IntVar(&benchFrames, "frames", 2000, "frames per integrator")

	chaosCmd := &cobra.Command{
		Use:   "chaos [preset]",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.ExactArgs(1),
		RunE:  chaosPreset,
	}
	defaults := analysis.DefaultOptions()
	chaosCmd.Flags().Float64Var(&chaosDays, "days", defaults.Days, "simulated days")
	chaosCmd.Flags().Float64Var(&chaosDt, "dt", defaults.Dt, "step size in days")
	chaosCmd.Flags().Float64Var(&chaosOffset, "perturbation", defaults.Perturbation, "initial offset in AU")
	chaosCmd.Flags().IntVar(&chaosBody, "body", 0, "body to perturb")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "run perturbed copies of a preset and tally outcomes",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&mcTrials, "trials", 16, "number of trials")
	monteCarloCmd.Flags().Float64Var(&mcPerturbation, "perturbation", 0.01, "relative velocity perturbation")
	monteCarloCmd.Flags().IntVar(&mcFrames, "frames", 3600, "frame budget per trial")
	monteCarloCmd.Flags().Int64Var(&mcSeed, "seed", 0, "random seed (0 picks one)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, presetsCmd, exportCmd, compareCmd, benchCmd, chaosCmd, scenarioCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func overrideFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")
	cmd.Flags().Float64Var(&timeScale, "time-scale", config.DefaultTimeScale, "simulated days per wall second")
	cmd.Flags().IntVar(&subSteps, "substeps", config.DefaultSubSteps, "integration steps per frame")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().StringVar(&collisionMode, "collision-mode", "core", "collision mode (core, vdt)")
	cmd.Flags().BoolVar(&noCollision, "no-collision", false, "disable collision detection")
	cmd.Flags().BoolVar(&noEscape, "no-escape", false, "disable escape detection")
}

// loadConfig resolves the preset argument or --config file and applies
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case len(args) == 1:
		cfg, err = experiment.Resolve(args[0])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("need a preset or --config (presets: %s)", strings.Join(config.ListPresets(), ", "))
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if flags.Changed("time-scale") {
		cfg.TimeScale = timeScale
	}
	if flags.Changed("substeps") {
		cfg.SubSteps = subSteps
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("collision-mode") {
		cfg.Collision.Mode = collisionMode
	}
	if noCollision {
		cfg.Collision.Enabled = false
	}
	if noEscape {
		cfg.Escape.Enabled = false
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp, err := experiment.New(cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("running", "name", cfg.Name, "bodies", len(cfg.Bodies), "integrator", cfg.Integrator, "frames", runFrames)
	result, err := exp.Run(ctx, runFrames)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(strings.ToUpper(cfg.Name)))
	fmt.Printf("frames:    %d\n", result.Frames)
	fmt.Printf("sim time:  %.3f d (%.4f yr)\n", result.SimDays, result.SimDays/365.25)
	fmt.Printf("drift:     %.3e (max %.3e)\n", result.Drift, result.MaxDrift)
	fmt.Printf("elapsed:   %v\n", result.Elapsed.Round(time.Millisecond))

	halt := okStyle.Render(string(result.Halt))
	if result.Halt != sim.HaltFrames {
		halt = warnStyle.Render(string(result.Halt))
	}
	fmt.Printf("halt:      %s\n", halt)
	for _, ev := range result.Events {
		fmt.Printf("  %s %s\n", mutedStyle.Render(fmt.Sprintf("[frame %d, t=%.2fd]", ev.Frame, ev.SimTime)), ev.Message)
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id:    %s\n", runID)
	}

	if svgPath != "" {
		d := exp.Driver()
		cam := viz.NewCamera(1)
		cam.Fit(d.Positions())
		svg := viz.TrailsToSVG(d, cam, 800, 800, viz.GetTheme("cyberpunk"))
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("svg:       %s\n", svgPath)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if configFile == "" && len(args) == 0 {
		return viz.RunPicker(sim.WithLogger(log.New(io.Discard)))
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, sim.WithLogger(log.New(io.Discard)))
	if err != nil {
		return err
	}
	return viz.RunLive(exp.Driver(), cfg.Name, cfg.FrameRate)
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tINTEG\tBODIES\tFRAMES\tDAYS\tDRIFT\tHALT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.1f\t%.2e\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.Bodies,
			run.Frames,
			run.SimDays,
			run.Drift,
			run.Halt,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s (%s, %d bodies)\n", meta.Name, meta.Integrator, meta.Bodies)
	fmt.Printf("frames: %d, sim time %.2f d, halt %s\n", meta.Frames, meta.SimDays, meta.Halt)
	fmt.Printf("drift: %.3e (max %.3e)\n\n", meta.Drift, meta.MaxDrift)

	samples, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	if len(samples) > 1 {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = s.Energy
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Precision(8),
			asciigraph.Caption(fmt.Sprintf("total energy over %.1f days", samples[len(samples)-1].SimTime)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Printf("%s frame %d t=%.2fd: %s\n", ev.Kind, ev.Frame, ev.SimTime, ev.Message)
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := experiment.Resolve(args[0])
	if err != nil {
		return err
	}
	variants, err := experiment.Variants(cfg, args[1:]...)
	if err != nil {
		return err
	}

	quiet := log.New(io.Discard)
	exps := make([]*experiment.Experiment, 0, len(variants))
	for _, v := range variants {
		exp, err := experiment.New(v, sim.WithLogger(quiet))
		if err != nil {
			return err
		}
		exps = append(exps, exp)
	}

	results, err := experiment.RunAll(cmd.Context(), exps, compareFrames)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (%d frames)\n\n", cfg.Name, compareFrames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFRAMES\tDAYS\tDRIFT\tMAX DRIFT\tHALT\tTIME")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.2e\t%.2e\t%s\t%v\n",
			variants[i].Integrator, res.Frames, res.SimDays, res.Drift, res.MaxDrift, res.Halt,
			res.Elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func benchPreset(cmd *cobra.Command, args []string) error {
	cfg, err := experiment.Resolve(args[0])
	if err != nil {
		return err
	}
	variants, err := experiment.Variants(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s (%d bodies, %d sub-steps)\n\n", cfg.Name, len(cfg.Bodies), cfg.SubSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFRAMES\tTOTAL\tPER FRAME\tFRAMES/S")

	for _, v := range variants {
		// Detectors off so every variant runs the full budget.
		v.Collision.Enabled = false
		v.Escape.Enabled = false
		exp, err := experiment.New(v, sim.WithLogger(log.New(io.Discard)))
		if err != nil {
			return err
		}

		start := time.Now()
		res, err := exp.Run(cmd.Context(), benchFrames)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		per := elapsed / time.Duration(max(res.Frames, 1))
		fmt.Fprintf(w, "%s\t%d\t%v\t%v\t%.0f\n",
			v.Integrator, res.Frames, elapsed.Round(time.Microsecond), per, float64(res.Frames)/elapsed.Seconds())
	}
	return w.Flush()
}

func chaosPreset(cmd *cobra.Command, args []string) error {
	cfg, err := experiment.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	integ, err := integrators.ByName(cfg.Integrator)
	if err != nil {
		return err
	}

	opts := analysis.DefaultOptions()
	opts.Days = chaosDays
	opts.Dt = chaosDt
	opts.Perturbation = chaosOffset
	opts.Renorm = max(opts.Renorm, chaosOffset*1e4)
	opts.Body = dynamo.BodyIndex(chaosBody)

	ic := cfg.InitialConditions()
	logger.Debug("chaos", "name", cfg.Name, "body", ic.Name(opts.Body), "days", opts.Days, "dt", opts.Dt)
	div, err := analysis.LyapunovExponent(ic, integ, opts)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(strings.ToUpper(cfg.Name)))
	fmt.Printf("exponent:        %.4e /day\n", div.Exponent)
	fmt.Printf("lyapunov time:   %.4g d\n", div.LyapunovTime())
	fmt.Printf("renormalized:    %d times over %.1f d\n\n", div.Renormalizations, div.Days)

	if len(div.Series) > 1 {
		fmt.Println(asciigraph.Plot(div.Series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("running exponent estimate (1/day)"),
		))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), sc, logger)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(strings.ToUpper(sc.Name)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tINTEG\tFRAMES\tDAYS\tDRIFT\tHALT\tRUN ID")
	for _, r := range results {
		runID := "-"
		if sc.Steps[r.Step-1].Save {
			if runID, err = st.Save(r.Config, r.Result); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.1f\t%.2e\t%s\t%s\n",
			r.Step, r.Config.Name, r.Config.Integrator, r.Result.Frames, r.Result.SimDays, r.Result.Drift, r.Result.Halt, runID)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := experiment.Resolve(args[0])
	if err != nil {
		return err
	}

	mc := automation.MonteCarloConfig{
		Trials:       mcTrials,
		Perturbation: mcPerturbation,
		Frames:       mcFrames,
		Seed:         mcSeed,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), cfg, mc, log.New(io.Discard))
	if err != nil {
		return err
	}

	stats := automation.MonteCarloStats(results)
	fmt.Printf("%s: %d trials, velocities perturbed by up to %.2g%%\n\n", cfg.Name, len(results), mcPerturbation*100)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OUTCOME\tTRIALS\tSHARE")
	for _, halt := range []sim.HaltReason{sim.HaltFrames, sim.HaltCollision, sim.HaltEscape, sim.HaltInvalidState, sim.HaltCanceled} {
		if n := stats[halt]; n > 0 {
			fmt.Fprintf(w, "%s\t%d\t%.0f%%\n", halt, n, 100*float64(n)/float64(len(results)))
		}
	}
	return w.Flush()
}
