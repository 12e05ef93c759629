package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mkoven/pathmc/internal/analysis"
	"github.com/mkoven/pathmc/internal/config"
	"github.com/mkoven/pathmc/internal/driver"
	"github.com/mkoven/pathmc/internal/export"
	"github.com/mkoven/pathmc/internal/network"
	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/scenario"
	"github.com/mkoven/pathmc/internal/setup"
	"github.com/mkoven/pathmc/internal/storage"
	"github.com/mkoven/pathmc/internal/tui"
)

var (
	outPath    string
	configFile string
	steps      int
	saveEvery  int
	seed       int64
	schemeName string
	extraSteps int
	shots      int
	live       bool
	monitor    bool
	frameRate  int
	format     string
	bins       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pathmc",
		Short: "transition path sampling on toy potentials",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "bootstrap and run a sampling session",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSampling,
	}
	runCmd.Flags().StringVarP(&outPath, "out", "o", "pathmc.db", "output file")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().IntVarP(&steps, "steps", "n", 0, "monte carlo steps")
	runCmd.Flags().IntVar(&saveEvery, "save-every", 0, "persist every kth step")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().BoolVar(&live, "live", false, "draw the active paths while sampling")
	runCmd.Flags().BoolVar(&monitor, "monitor", false, "full-screen progress monitor")
	runCmd.Flags().IntVar(&frameRate, "fps", 15, "live view frame rate")

	equilibrateCmd := &cobra.Command{
		Use:   "equilibrate [input]",
		Short: "sample until fully decorrelated from the stored paths",
		Args:  cobra.ExactArgs(1),
		RunE:  equilibrate,
	}
	equilibrateCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")
	equilibrateCmd.MarkFlagRequired("out")
	equilibrateCmd.Flags().StringVar(&schemeName, "scheme", "default", "stored move scheme to use")
	equilibrateCmd.Flags().IntVar(&extraSteps, "extra-steps", 0, "additional steps after decorrelation")

	pathsamplingCmd := &cobra.Command{
		Use:   "pathsampling [input]",
		Short: "production sampling from stored initial conditions",
		Args:  cobra.ExactArgs(1),
		RunE:  pathsampling,
	}
	pathsamplingCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")
	pathsamplingCmd.MarkFlagRequired("out")
	pathsamplingCmd.Flags().IntVarP(&steps, "steps", "n", 0, "monte carlo steps")

	committorCmd := &cobra.Command{
		Use:   "committor [preset]",
		Short: "fire committor shots from the barrier",
		Args:  cobra.MaximumNArgs(1),
		RunE:  committor,
	}
	committorCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	committorCmd.Flags().IntVar(&shots, "shots", 0, "shots per snapshot")
	committorCmd.Flags().StringVarP(&outPath, "out", "o", "", "write shot records (json)")

	listCmd := &cobra.Command{
		Use:   "list [file]",
		Short: "summarize a run file",
		Args:  cobra.ExactArgs(1),
		RunE:  listRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "acceptance, path lengths, and crossing probabilities",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bins, "bins", 12, "histogram bins")

	plotCmd := &cobra.Command{
		Use:   "plot [file]",
		Short: "plot path lengths and the final path",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "export sampled paths",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "svg", "svg or json")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted multi-stage campaign",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in systems",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.PresetNames() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, equilibrateCmd, pathsamplingCmd, committorCmd,
		listCmd, analyzeCmd, plotCmd, exportCmd, scenarioCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig resolves preset, config file, and flag overrides in that
// order, flags winning.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.Preset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.PresetNames())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("steps") && steps > 0 {
		cfg.Run.Steps = steps
	}
	if cmd.Flags().Changed("save-every") {
		cfg.Run.SaveEvery = saveEvery
	}
	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed = seed
	}
	if cmd.Flags().Changed("shots") && shots > 0 {
		cfg.Committor.Shots = shots
	}
	return cfg, nil
}

func runSampling(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	sys, err := setup.Build(cfg)
	if err != nil {
		return err
	}

	store, err := storage.Create(outPath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := sys.SaveTo(store); err != nil {
		return err
	}

	ctx := context.Background()
	sampler := sys.Sampler(store)

	fmt.Printf("bootstrapping %d ensembles...\n", len(sys.Net.Ensembles()))
	ss, err := sampler.Bootstrap(ctx, sys.SeedCandidates(4))
	if err != nil {
		return err
	}
	if err := setup.SaveInitialConditions(store, ss); err != nil {
		return err
	}
	fmt.Printf("bootstrap complete (%d repair shots)\n", sampler.BootstrapRepairs())

	decorr, err := sampler.RunUntilDecorrelated(ctx)
	if err != nil {
		return err
	}
	if err := setup.SaveInitialConditions(store, sampler.Active()); err != nil {
		return err
	}
	fmt.Printf("decorrelated after %d steps\n", decorr)

	doRun := func() error {
		start := time.Now()
		result, err := sampler.Run(ctx, cfg.Run.Steps)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		if err := setup.SaveInitialConditions(store, sampler.Active()); err != nil {
			return err
		}
		fmt.Printf("completed %d steps in %v\n", result.Steps, elapsed)
		printResult(result)
		return nil
	}

	if monitor {
		return tui.RunWithMonitor(func(obs paths.Observer) error {
			sampler.AddObserver(obs)
			return doRun()
		})
	}
	if live {
		r := tui.NewLiveRenderer(sys.Engine.Potential(), frameRate)
		r.Start()
		defer r.Stop()
		sampler.AddObserver(r)
	}
	return doRun()
}

func equilibrate(cmd *cobra.Command, args []string) error {
	in, err := storage.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	sys, err := setup.FromStore(in)
	if err != nil {
		return err
	}
	if schemeName != "default" {
		return fmt.Errorf("unknown scheme %q (stored schemes: default)", schemeName)
	}
	ss, err := setup.LoadInitialConditions(in)
	if err != nil {
		return err
	}

	out, err := storage.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := sys.SaveTo(out); err != nil {
		return err
	}

	ctx := context.Background()
	sampler := sys.Sampler(out)
	sampler.SetActive(ss)

	n, err := sampler.RunUntilDecorrelated(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("decorrelated after %d steps\n", n)

	if extraSteps > 0 {
		if _, err := sampler.Run(ctx, extraSteps); err != nil {
			return err
		}
		fmt.Printf("ran %d extra steps\n", extraSteps)
	}
	return setup.SaveInitialConditions(out, sampler.Active())
}

func pathsampling(cmd *cobra.Command, args []string) error {
	in, err := storage.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	sys, err := setup.FromStore(in)
	if err != nil {
		return err
	}
	ss, err := setup.LoadInitialConditions(in)
	if err != nil {
		return err
	}
	n := steps
	if n <= 0 {
		n = sys.Config.Run.Steps
	}

	out, err := storage.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := sys.SaveTo(out); err != nil {
		return err
	}

	ctx := context.Background()
	sampler := sys.Sampler(out)
	sampler.SetActive(ss)

	start := time.Now()
	result, err := sampler.Run(ctx, n)
	if err != nil {
		return err
	}
	if err := setup.SaveInitialConditions(out, sampler.Active()); err != nil {
		return err
	}

	fmt.Printf("completed %d steps in %v\n", result.Steps, time.Since(start))
	printResult(result)
	return nil
}

func committor(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	sys, err := setup.Build(cfg)
	if err != nil {
		return err
	}

	// Shooting points spread across the barrier region; velocities are
	// randomized per shot.
	var snaps []*paths.Snapshot
	for _, x := range []float64{-0.2, -0.1, 0, 0.1, 0.2} {
		snaps = append(snaps, paths.NewSnapshot([]float64{x, 0}, []float64{0, 0}))
	}

	fmt.Printf("firing %d shots from %d snapshots...\n", cfg.Committor.Shots*len(snaps), len(snaps))
	records, err := sys.ParallelCommittor().Run(context.Background(), snaps, cfg.Committor.Shots)
	if err != nil {
		return err
	}

	byState := make(map[string]int)
	for _, r := range records {
		byState[r.State]++
	}
	for _, st := range sys.States {
		fmt.Printf("  %s: %d\n", st.Name(), byState[st.Name()])
	}
	if n := byState[""]; n > 0 {
		fmt.Printf("  unresolved: %d\n", n)
	}

	target := sys.States[len(sys.States)-1].Name()
	points := analysis.ShootingPointAnalysis(records, target)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "X\tSHOTS\tP(%s)\n", target)
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t%d\t%.3f\n", p.X, p.Shots, p.PB)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	centers, pb := analysis.CommittorProfile(points, 8)
	if len(pb) > 1 {
		fmt.Println(asciigraph.Plot(pb,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("P(%s) profile, x %.2f..%.2f",
				target, centers[0], centers[len(centers)-1]))))
	}

	if outPath != "" {
		return writeJSON(outPath, records)
	}
	return nil
}

func listRun(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("file: %s\n", args[0])
	fmt.Printf("steps: %d\n", store.Len())
	switch s := store.(type) {
	case *storage.SQLiteStore:
		id, err := s.RunID()
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	case *storage.FileStore:
		meta := s.Meta()
		fmt.Printf("run id: %s\n", meta.RunID)
		fmt.Printf("created: %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	tags := store.TagNames()
	if len(tags) > 0 {
		fmt.Println("tags:")
		for _, name := range tags {
			fmt.Printf("  %s\n", name)
		}
	}

	last, err := lastStep(store)
	if err != nil {
		return err
	}
	if last != nil {
		fmt.Println("ensembles:")
		for _, ens := range last.Active.Ensembles() {
			fmt.Printf("  %s (%d frames)\n", ens, last.Active[ens].Trajectory.Len())
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	steps, err := store.Steps()
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("no steps recorded")
	}

	fmt.Printf("steps: %d\n\n", len(steps))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MOVER\tTRIALS\tACCEPTED\tRATIO")
	for _, s := range analysis.Acceptance(steps) {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\n", s.Mover, s.Trials, s.Accepted, s.Ratio())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	last := steps[len(steps)-1]
	for _, ens := range last.Active.Ensembles() {
		ls := analysis.LengthDistribution(steps, ens)
		if ls.Count == 0 {
			continue
		}
		fmt.Printf("\n%s: %d paths, length %.1f +/- %.1f (range %g..%g)\n",
			ens, ls.Count, ls.Mean, ls.StdDev, ls.Min, ls.Max)

		lengths := analysis.PathLengths(steps, ens)
		_, counts := analysis.Histogram(lengths, bins)
		if len(counts) > 1 {
			fmt.Println(asciigraph.Plot(counts,
				asciigraph.Height(8),
				asciigraph.Width(60),
				asciigraph.Caption("path length distribution")))
		}
	}

	return printCrossing(store, steps)
}

// printCrossing reports interface crossing probabilities when the
// stored setup describes an interface network.
func printCrossing(store storage.Store, steps []*paths.Step) error {
	sys, err := setup.FromStore(store)
	if err != nil {
		return nil // older files without a setup tag
	}
	m, ok := sys.Net.(*network.MSTIS)
	if !ok {
		return nil
	}

	fmt.Println()
	for _, st := range m.States() {
		ladder := m.Ladder(st.Name())
		probs := analysis.LadderCrossing(steps, ladder)
		if len(probs) == 0 {
			continue
		}
		fmt.Printf("state %s crossing:\n", st.Name())
		for _, p := range probs {
			fmt.Printf("  %s -> %.3g  (%d/%d)\n", p.Ensemble, p.P(), p.Crossed, p.Samples)
		}
		fmt.Printf("  total: %.3g\n", analysis.TotalCrossing(probs))
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	steps, err := store.Steps()
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("no data to plot")
	}

	last := steps[len(steps)-1]
	ensembles := last.Active.Ensembles()

	for _, ens := range ensembles {
		series := make([]float64, len(steps))
		for i, s := range steps {
			series[i] = float64(s.Active[ens].Trajectory.Len())
		}
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("%s path length", ens))))
		fmt.Println()
	}

	// x trace of the final path of the first ensemble
	traj := last.Active[ensembles[0]].Trajectory
	trace := make([]float64, traj.Len())
	for i, s := range traj {
		trace[i] = s.Coords[0]
	}
	fmt.Println(asciigraph.Plot(trace,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("final %s path, x vs frame", ensembles[0]))))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "svg":
		return exportSVG(store)
	case "json":
		return exportJSON(store)
	}
	return fmt.Errorf("unknown format %q (svg or json)", format)
}

func exportSVG(store storage.Store) error {
	last, err := lastStep(store)
	if err != nil {
		return err
	}
	if last == nil {
		return fmt.Errorf("no paths to export")
	}

	plot := &export.Plot{}
	if sys, err := setup.FromStore(store); err == nil {
		plot.Potential = sys.Engine.Potential()
	}
	for _, ens := range last.Active.Ensembles() {
		plot.Paths = append(plot.Paths, last.Active[ens].Trajectory)
	}

	svg := plot.SVG()
	if outPath == "" {
		fmt.Println(svg)
		return nil
	}
	return os.WriteFile(outPath, []byte(svg), 0644)
}

func exportJSON(store storage.Store) error {
	steps, err := store.Steps()
	if err != nil {
		return err
	}

	summary := struct {
		Steps      int                            `json:"steps"`
		Acceptance []analysis.MoverStats          `json:"acceptance"`
		Lengths    map[string]analysis.LengthStats `json:"lengths"`
	}{
		Steps:      len(steps),
		Acceptance: analysis.Acceptance(steps),
		Lengths:    make(map[string]analysis.LengthStats),
	}
	if len(steps) > 0 {
		last := steps[len(steps)-1]
		for _, ens := range last.Active.Ensembles() {
			summary.Lengths[ens] = analysis.LengthDistribution(steps, ens)
		}
	}

	if outPath != "" {
		return writeJSON(outPath, summary)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario: %s\n", sc.Name)

	results, err := scenario.Run(context.Background(), sc)
	if err != nil {
		return err
	}
	for i, r := range results {
		switch r.Stage.Kind {
		case "committor":
			fmt.Printf("stage %d: %d shots -> %s\n", i+1, len(r.Records), r.Stage.Output)
		default:
			fmt.Printf("stage %d: %d steps -> %s\n", i+1, r.Steps, r.Stage.Output)
		}
	}
	return nil
}

func printResult(result *driver.Result) {
	movers := make([]string, 0, len(result.Trials))
	for name := range result.Trials {
		movers = append(movers, name)
	}
	sort.Strings(movers)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MOVER\tTRIALS\tACCEPTED\tRATIO")
	for _, name := range movers {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\n",
			name, result.Trials[name], result.Accepted[name], result.AcceptanceRatio(name))
	}
	w.Flush()
	if result.HookErrors > 0 {
		fmt.Printf("observer errors: %d\n", result.HookErrors)
	}
}

func lastStep(store storage.Store) (*paths.Step, error) {
	if store.Len() == 0 {
		return nil, nil
	}
	return store.StepAt(store.Len() - 1)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
