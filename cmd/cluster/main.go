package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/cluster/internal/analysis"
	"github.com/san-kum/cluster/internal/cluster"
	"github.com/san-kum/cluster/internal/config"
	"github.com/san-kum/cluster/internal/constants"
	"github.com/san-kum/cluster/internal/experiment"
	"github.com/san-kum/cluster/internal/export"
	"github.com/san-kum/cluster/internal/logging"
	"github.com/san-kum/cluster/internal/progress"
	"github.com/san-kum/cluster/internal/sim"
	"github.com/san-kum/cluster/internal/snapshot"
	"github.com/san-kum/cluster/internal/storage"
)

var (
	dataDir  string
	logLevel string
	logger   log.Logger = log.NewNopLogger()

	runFlags     configFlags
	compareFlags configFlags
	noStore      bool
	useTUI       bool

	// Snapshot views
	xAxis       int
	yAxis       int
	index       int
	bins        int
	particles   bool
	energyCurve bool
	outFile     string

	benchSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cluster",
		Short:         "self-gravitating particle cluster simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cluster", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runFlags.register(runCmd)
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "do not record the run in the data directory")
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "show the terminal progress view")

	compareCmd := &cobra.Command{
		Use:   "compare [method1] [method2] ...",
		Short: "compare integrators on identical initial conditions",
		RunE:  compareIntegrators,
	}
	compareFlags.register(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energies of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "energy statistics, spectrum and radial structure",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bins, "bins", 10, "radial profile bins")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "project a saved state onto two axes",
		Args:  cobra.ExactArgs(1),
		RunE:  viewSnapshot,
	}
	viewCmd.Flags().IntVar(&xAxis, "x-axis", 0, "position index for x-axis")
	viewCmd.Flags().IntVar(&yAxis, "y-axis", 1, "position index for y-axis")
	viewCmd.Flags().IntVar(&index, "index", -1, "saved state to show, negative counts from the end")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().BoolVar(&particles, "particles", false, "include per-particle states")
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a saved state, or the energy curve, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&xAxis, "x-axis", 0, "position index for x-axis")
	exportSVGCmd.Flags().IntVar(&yAxis, "y-axis", 1, "position index for y-axis")
	exportSVGCmd.Flags().IntVar(&index, "index", -1, "saved state to render, negative counts from the end")
	exportSVGCmd.Flags().BoolVar(&energyCurve, "energy", false, "render total energy against time instead")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark integrators",
		Args:  cobra.NoArgs,
		RunE:  benchIntegrators,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 20, "advances per configuration")

	rootCmd.AddCommand(runCmd, compareCmd, listCmd, plotCmd, analyzeCmd, viewCmd, exportCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := runFlags.resolve(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	var runID string
	if noStore {
		if cfg.SaveFile == "" {
			cfg.SaveFile = cfg.DefaultSaveFile()
		}
	} else {
		runID, err = st.Create(cfg.Method)
		if err != nil {
			return err
		}
		if cfg.SaveFile == "" {
			cfg.SaveFile = st.SnapshotPath(runID)
		}
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg).WithLogger(logger)
	if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
		return err
	}
	ens := exp.Ensemble()

	fmt.Printf("running %s: N=%d dim=%d R0=%g epsilon=%g dt=%g T=%g save-each=%d\n",
		ens.Integrator().Name(), ens.Len(), ens.Dim(), ens.Radius(), ens.Softening(), cfg.Dt, cfg.Duration, ens.SaveEach())
	fmt.Printf("G=%.6g (model units, G_SI=%.5e) t_dyn=%.4g\n", ens.G(), constants.GSI, ens.DynamicalTime())
	fmt.Printf("writing %s\n", cfg.SaveFile)

	var result *sim.Result
	if useTUI {
		title := fmt.Sprintf("%s N=%d", ens.Integrator().Name(), ens.Len())
		result, err = progress.Run(cmd.Context(), title, func(ctx context.Context, obs sim.Observer) (*sim.Result, error) {
			exp.GetSimulator().AddObserver(obs)
			return exp.Run(ctx)
		})
	} else {
		bar := progress.NewBar(os.Stdout, progress.DefaultLength)
		exp.GetSimulator().AddObserver(bar)
		result, err = exp.Run(cmd.Context())
		bar.Done()
	}
	if err != nil {
		return err
	}

	if !noStore {
		if err := st.Save(newMetadata(runID, cfg, ens), result); err != nil {
			return err
		}
	}

	final := result.Final()
	fmt.Printf("\ncompleted in %v\n", result.Elapsed)
	if runID != "" {
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy: %.6g -> %.6g (drift %.3e)\n", result.Summaries[0].Total, final.Total, result.EnergyDrift)
	fmt.Printf("bound: %d/%d\n", final.Bound, final.N)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func newMetadata(runID string, cfg *config.Config, ens *cluster.Ensemble) storage.RunMetadata {
	return storage.RunMetadata{
		ID:           runID,
		Integrator:   ens.Integrator().Name(),
		N:            ens.Len(),
		Dim:          ens.Dim(),
		Radius:       ens.Radius(),
		MeanMass:     cfg.MeanMass,
		Softening:    ens.Softening(),
		SaveEach:     ens.SaveEach(),
		G:            ens.G(),
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		MassSeed:     cfg.MassSeed,
		PositionSeed: cfg.PositionSeed,
	}
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, metrics[name])
	}
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := compareFlags.resolve(cmd)
	if err != nil {
		return err
	}
	methods := args
	if len(methods) == 0 {
		methods = []string{"rk4", "leapfrog"}
	}

	fmt.Printf("comparing %s: N=%d dt=%g T=%g epsilon=%g\n\n",
		strings.Join(methods, ", "), cfg.N, cfg.Dt, cfg.Duration, cfg.Softening())

	registry := experiment.NewRegistry()
	results, err := experiment.Compare(cmd.Context(), cfg, methods, registry)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tSTEPS\tTIME\tFINAL_E\tMAX_DRIFT\tFINAL_DRIFT\tDRIFT_RATE\tBOUND")

	series := make([][]float64, 0, len(results))
	for _, res := range results {
		stats := analysis.EnergyStatistics(res.Times(), res.Energies())
		final := res.Final()
		fmt.Fprintf(w, "%s\t%d\t%v\t%.6g\t%.3e\t%.3e\t%.3e\t%d/%d\n",
			res.Integrator,
			res.StepsTaken,
			res.Elapsed.Round(time.Millisecond),
			stats.Final,
			stats.MaxDrift,
			stats.FinalDrift,
			stats.DriftRate,
			final.Bound,
			final.N,
		)
		series = append(series, analysis.RelativeDrift(res.Energies()))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, s := range series {
		if !plottable(s) {
			fmt.Println("\nenergy drift is not finite, skipping plot")
			return nil
		}
	}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("relative energy drift: "+strings.Join(methods, ", ")),
	)
	fmt.Println()
	fmt.Println(graph)
	return nil
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
	fmt.Fprintln(w, "ID\tTIME\tINTEG\tN\tDT\tDURATION\tEPSILON\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%g\t%.3e\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.N,
			run.Dt,
			run.Duration,
			run.Softening,
			run.EnergyDrift,
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

	summaries, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("integrator: %s  N=%d  dt=%g\n", meta.Integrator, meta.N, meta.Dt)
	fmt.Printf("samples: %d\n\n", len(summaries))

	panels := []struct {
		caption string
		value   func(cluster.Summary) float64
	}{
		{"total energy", func(s cluster.Summary) float64 { return s.Total }},
		{"kinetic energy", func(s cluster.Summary) float64 { return s.Kinetic }},
		{"bound total energy", func(s cluster.Summary) float64 { return s.BoundTotal }},
		{"bound particles", func(s cluster.Summary) float64 { return float64(s.Bound) }},
	}

	for _, p := range panels {
		data := make([]float64, len(summaries))
		for i, s := range summaries {
			data[i] = p.value(s)
		}
		if !plottable(data) {
			fmt.Printf("%s: not finite, skipped\n\n", p.caption)
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func plottable(data []float64) bool {
	if len(data) == 0 {
		return false
	}
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	summaries, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return fmt.Errorf("no data")
	}

	times := make([]float64, len(summaries))
	energies := make([]float64, len(summaries))
	for i, s := range summaries {
		times[i], energies[i] = s.Time, s.Total
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("integrator: %s  N=%d  dt=%g  epsilon=%g\n\n", meta.Integrator, meta.N, meta.Dt, meta.Softening)

	stats := analysis.EnergyStatistics(times, energies)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "initial energy\t%.6g\n", stats.Initial)
	fmt.Fprintf(w, "final energy\t%.6g\n", stats.Final)
	fmt.Fprintf(w, "max drift\t%.3e\n", stats.MaxDrift)
	fmt.Fprintf(w, "final drift\t%.3e\n", stats.FinalDrift)
	fmt.Fprintf(w, "mean drift\t%.3e ± %.3e\n", stats.MeanDrift, stats.StdDrift)
	fmt.Fprintf(w, "drift rate\t%.3e per time unit\n", stats.DriftRate)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(energies) >= 4 && plottable(energies) {
		ps := analysis.EnergySpectrum(energies)
		plotData := ps[1:]
		graph := asciigraph.Plot(plotData,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("energy spectrum"),
		)
		fmt.Println()
		fmt.Println(graph)

		freq := analysis.DominantFrequency(ps, len(energies), times[1]-times[0])
		fmt.Printf("\ndominant frequency: %.4g\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.4g\n", 1/freq)
		}
	}

	if !st.HasSnapshots(runID) {
		return nil
	}
	_, records, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	fractions := analysis.BoundFractionSeries(records)
	fmt.Printf("\nbound fraction: %.3f -> %.3f over %d saved states\n",
		fractions[0], fractions[len(fractions)-1], len(records))

	last := records[len(records)-1]
	profile, err := analysis.RadialProfile(last, bins)
	if errors.Is(err, analysis.ErrEmptyRecord) {
		fmt.Println("final state has no finite positions")
		return nil
	}
	if errors.Is(err, analysis.ErrZeroExtent) {
		fmt.Println("final state has no radial extent")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nradial profile at t=%.4g\n", last.Time)
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "R_IN\tR_OUT\tCOUNT\tDENSITY")
	for i := range profile.Counts {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.0f\t%.4g\n", profile.Edges[i], profile.Edges[i+1], profile.Counts[i], profile.Density[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for _, f := range []float64{0.1, 0.5, 0.9} {
		r, err := analysis.LagrangianRadius(last, f)
		if err != nil {
			return err
		}
		fmt.Printf("r_%.0f%%: %.4g\n", f*100, r)
	}
	return nil
}

func viewSnapshot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	header, records, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	rec, err := selectRecord(records, header.Dim)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s  t=%.4g  E=%.6g  bound=%d/%d\n\n", runID, rec.Time, rec.Energy, rec.BoundCount(), len(rec.Particles))
	fmt.Print(analysis.ProjectionToASCII(rec, xAxis, yAxis, 70, 24))
	fmt.Printf("\nLegend: • = bound, · = unbound\n")
	return nil
}

// selectRecord picks the saved state named by --index and checks the axes.
func selectRecord(records []snapshot.Record, dim int) (snapshot.Record, error) {
	if len(records) == 0 {
		return snapshot.Record{}, fmt.Errorf("no saved states")
	}
	i := index
	if i < 0 {
		i += len(records)
	}
	if i < 0 || i >= len(records) {
		return snapshot.Record{}, fmt.Errorf("index %d out of range (%d saved states)", index, len(records))
	}
	if xAxis >= dim || yAxis >= dim || xAxis < 0 || yAxis < 0 {
		return snapshot.Record{}, fmt.Errorf("axes must be below dimension %d", dim)
	}
	return records[i], nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var svg string
	if energyCurve {
		summaries, err := st.LoadEnergy(runID)
		if err != nil {
			return err
		}
		times := make([]float64, len(summaries))
		energies := make([]float64, len(summaries))
		for i, s := range summaries {
			times[i], energies[i] = s.Time, s.Total
		}
		svg = export.SeriesToSVG(times, energies, 800, 400, "#00ccff")
	} else {
		header, records, err := st.LoadSnapshots(runID)
		if err != nil {
			return err
		}
		rec, err := selectRecord(records, header.Dim)
		if err != nil {
			return err
		}
		svg = export.SnapshotToSVG(rec, xAxis, yAxis, 600, 600, 2)
	}
	if svg == "" {
		return fmt.Errorf("nothing to render")
	}

	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile != "" {
		if err := st.ExportJSONFile(outFile, args[0], particles); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outFile)
		return nil
	}
	return st.ExportJSON(os.Stdout, args[0], particles)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHOD\tN\tR0\tDT\tDURATION\tEPSILON\tSAVE_EACH")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\t%g\t%g\t%d\n",
			name, p.Method, p.N, p.Radius, p.Dt, p.Duration, p.Softening(), p.SaveEach)
	}
	return w.Flush()
}

func benchIntegrators(cmd *cobra.Command, args []string) error {
	if benchSteps < 1 {
		return fmt.Errorf("steps must be positive, got %d", benchSteps)
	}
	registry := experiment.NewRegistry()
	sizes := []int{10, 50, 100, 200}

	fmt.Printf("benchmarking %d advances per configuration\n\n", benchSteps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tN\tSTEPS\tTIME\tSTEPS/SEC")

	for _, method := range []string{"rk4", "leapfrog", "euler"} {
		for _, n := range sizes {
			cfg := config.DefaultConfig()
			cfg.N = n
			cfg.Method = method
			cfg.Duration = float64(benchSteps-1) * cfg.Dt

			exp := experiment.New(cfg).WithLogger(logger)
			if err := exp.Setup(registry, nil); err != nil {
				return err
			}
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			stepsPerSec := float64(result.StepsTaken) / result.Elapsed.Seconds()
			fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n",
				method, n, result.StepsTaken, result.Elapsed, stepsPerSec)
			level.Debug(logger).Log("msg", "bench", "method", method, "n", n, "steps_per_sec", stepsPerSec)
		}
	}
	return w.Flush()
}
