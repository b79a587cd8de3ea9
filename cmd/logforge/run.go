package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/logforge/logforge/pkg/config"
	"github.com/logforge/logforge/pkg/naming"
	"github.com/logforge/logforge/pkg/pool"
	"github.com/logforge/logforge/pkg/publish"
	"github.com/logforge/logforge/pkg/runner"
	"github.com/logforge/logforge/pkg/telemetry"
	"github.com/logforge/logforge/pkg/tui"
	"github.com/logforge/logforge/pkg/watch"
)

// Run command flags
var (
	runNames       []string
	runProcesses   int
	runAllNames    bool
	runNamesFile   string
	runWorkers     int
	runCases       int
	runOutputDir   string
	runFormats     []string
	runCompression string
	runSeed        int64
	runOffline     bool
	runNoDiagrams  bool
	runPublish     bool
	runMinNodes    int
	runMaxNodes    int
	runMinEdges    int
	runMaxEdges    int
)

var runCmd = &cobra.Command{
	Use:   "run [process names...]",
	Short: "Generate event logs for a batch of processes",
	Long: `Generate one synthetic event log per process name on a worker pool.

Names come from the command line, from --names-file, or from the built-in
catalog (--processes N samples N names, --all-names takes every name).

Examples:
  logforge run --processes 5
  logforge run "Order Fulfillment" --cases 1000 --formats csv,parquet
  logforge run --names-file processes.txt --workers 10 --offline
  logforge run --all-names --seed 42`,
	RunE: runGenerate,
}

func init() {
	runCmd.Flags().StringArrayVar(&runNames, "name", nil, "Process name to generate (repeatable)")
	runCmd.Flags().IntVarP(&runProcesses, "processes", "p", 10, "Number of catalog names to sample when no names are given")
	runCmd.Flags().BoolVar(&runAllNames, "all-names", false, "Generate every name in the catalog")
	runCmd.Flags().StringVar(&runNamesFile, "names-file", "", "File with process names, one per line")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 0, "Worker count")
	runCmd.Flags().IntVar(&runCases, "cases", 0, "Cases per process")
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "Output directory")
	runCmd.Flags().StringSliceVar(&runFormats, "formats", nil, "Output formats (csv, xlsx, parquet, duckdb)")
	runCmd.Flags().StringVar(&runCompression, "compression", "", "Parquet compression (none, snappy, gzip, zstd, lz4)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Base random seed (0 = time-derived)")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "Disable the labeling service")
	runCmd.Flags().BoolVar(&runNoDiagrams, "no-diagrams", false, "Skip process diagram output")
	runCmd.Flags().BoolVar(&runPublish, "publish", false, "Upload artifacts to the configured bucket")
	runCmd.Flags().IntVar(&runMinNodes, "min-nodes", 0, "Minimum graph nodes")
	runCmd.Flags().IntVar(&runMaxNodes, "max-nodes", 0, "Maximum graph nodes")
	runCmd.Flags().IntVar(&runMinEdges, "min-edges", 0, "Minimum outgoing edges per node")
	runCmd.Flags().IntVar(&runMaxEdges, "max-edges", 0, "Maximum outgoing edges per node")
}

// applyRunFlags overrides config values with flags the user actually set.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Pool.Workers = runWorkers
	}
	if flags.Changed("cases") {
		cfg.Simulation.Cases = runCases
	}
	if flags.Changed("output") {
		cfg.Output.Dir = runOutputDir
	}
	if flags.Changed("formats") {
		cfg.Output.Formats = runFormats
	}
	if flags.Changed("compression") {
		cfg.Output.Compression = runCompression
	}
	if flags.Changed("seed") {
		cfg.Pool.Seed = runSeed
	}
	if runOffline {
		cfg.Labeler.Enabled = false
	}
	if runNoDiagrams {
		cfg.Output.Diagrams = false
	}
	if flags.Changed("publish") {
		cfg.Publish.Enabled = runPublish
	}
	if flags.Changed("min-nodes") {
		cfg.Generator.MinNodes = runMinNodes
	}
	if flags.Changed("max-nodes") {
		cfg.Generator.MaxNodes = runMaxNodes
	}
	if flags.Changed("min-edges") {
		cfg.Generator.MinOutDegree = runMinEdges
	}
	if flags.Changed("max-edges") {
		cfg.Generator.MaxOutDegree = runMaxEdges
	}
}

// resolveNames picks the batch in priority order: explicit names (--name
// flags plus positional args), then a names file, then a catalog sample
// seeded like the run itself.
func resolveNames(args []string, cfg *config.Config) ([]string, error) {
	if explicit := append(append([]string{}, runNames...), args...); len(explicit) > 0 {
		return explicit, nil
	}
	if runNamesFile != "" {
		return watch.ReadNames(runNamesFile)
	}
	if runAllNames {
		return naming.All(), nil
	}

	seed := cfg.Pool.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return naming.Sample(rand.New(rand.NewSource(seed)), runProcesses), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	log := newLogger(cfg)

	names, err := resolveNames(args, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.Telemetry.Enabled {
		otlpCfg := telemetry.DefaultOTLPConfig("logforge")
		otlpCfg.ServiceVersion = version
		if cfg.Telemetry.Endpoint != "" {
			otlpCfg.Endpoint = cfg.Telemetry.Endpoint
		}
		shutdown, err := telemetry.Init(ctx, otlpCfg)
		if err != nil {
			log.Warn("telemetry disabled", "error", err)
		} else {
			defer func() {
				flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer flushCancel()
				shutdown(flushCtx)
			}()
		}
	}

	r, err := runner.New(cfg, log)
	if err != nil {
		return err
	}

	if cfg.Publish.Enabled {
		pub, err := publish.New(ctx, publishConfig(cfg))
		if err != nil {
			return err
		}
		r.WithPublisher(pub)
	}

	tui.PrintBanner(version)

	if len(names) == 1 && cfg.Simulation.Cases > 1 {
		bar := tui.ShowProgress(int64(cfg.Simulation.Cases), "Generating cases")
		r.OnCases(func(done, total int) { _ = bar.Set(done) })
	} else {
		bar := tui.ShowProgress(int64(len(names)), "Generating processes")
		r.OnJob(func(pool.Result) { _ = bar.Add(1) })
	}

	start := time.Now()
	results, err := r.Run(ctx, names)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	tui.ClearLine()

	s := r.Metrics().Snapshot()
	tui.PrintRunReport(&tui.RunReport{
		Processes:        len(names),
		Succeeded:        s.ProcessesSucceeded,
		Failed:           s.ProcessesFailed,
		Cases:            s.Cases,
		Events:           s.Events,
		LabelerCalls:     s.LabelerCalls,
		LabelerFallbacks: s.LabelerFallbacks,
		TotalCost:        s.TotalCost,
		OutputBytes:      artifactBytes(r.Artifacts()),
		Elapsed:          elapsed,
		OutputDir:        cfg.Output.Dir,
	})

	if s.ProcessesFailed > 0 && int(s.ProcessesFailed) == len(results) {
		return fmt.Errorf("all %d processes failed", len(results))
	}
	return nil
}

func publishConfig(cfg *config.Config) publish.Config {
	p := publish.DefaultConfig(cfg.Publish.Bucket, cfg.Publish.Region)
	p.Endpoint = cfg.Publish.Endpoint
	p.Prefix = cfg.Publish.Prefix
	p.UsePathStyle = cfg.Publish.UsePathStyle
	p.AccessKeyID = cfg.Publish.AccessKeyID
	p.SecretAccessKey = cfg.Publish.SecretAccessKey
	p.SessionToken = cfg.Publish.SessionToken
	return p
}

func artifactBytes(paths []string) int64 {
	var total int64
	for _, p := range paths {
		if st, err := os.Stat(p); err == nil {
			total += st.Size()
		}
	}
	return total
}
