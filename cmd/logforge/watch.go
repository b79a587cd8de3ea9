package main

import (
	"github.com/spf13/cobra"

	"github.com/logforge/logforge/pkg/publish"
	"github.com/logforge/logforge/pkg/runner"
	"github.com/logforge/logforge/pkg/tui"
	"github.com/logforge/logforge/pkg/watch"
)

// Watch command flags
var (
	watchNamesFile string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a names file and generate logs for names as they appear",
	Long: `Watch a process names file (one name per line, #-comments allowed) and
generate event logs for its names: the existing names immediately, then
every batch of newly appended names until interrupted.

Example:
  logforge watch --names-file processes.txt --offline`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchNamesFile, "names-file", "", "File with process names, one per line (required)")
	watchCmd.Flags().BoolVar(&runOffline, "offline", false, "Disable the labeling service")
	watchCmd.MarkFlagRequired("names-file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runOffline {
		cfg.Labeler.Enabled = false
	}
	log := newLogger(cfg)

	w, err := watch.NewWatcher(watchNamesFile)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := signalContext()
	defer cancel()

	tui.PrintBanner(version)

	runBatch := func(names []string) {
		r, err := runner.New(cfg, log)
		if err != nil {
			log.Error("batch rejected", "error", err)
			return
		}
		if cfg.Publish.Enabled {
			pub, err := publish.New(ctx, publishConfig(cfg))
			if err != nil {
				log.Error("publisher unavailable", "error", err)
			} else {
				r.WithPublisher(pub)
			}
		}

		results, err := r.Run(ctx, names)
		if err != nil {
			log.Error("batch failed", "error", err)
			return
		}

		var failed int
		for _, res := range results {
			if res.Err != nil {
				failed++
			}
		}
		log.Info("batch finished", "processes", len(names), "failed", failed)
	}

	initial, err := w.Prime()
	if err != nil {
		return err
	}
	if len(initial) > 0 {
		log.Info("generating initial batch", "processes", len(initial))
		runBatch(initial)
	}

	w.OnNames = func(names []string) {
		log.Info("names added", "count", len(names))
		runBatch(names)
	}
	w.OnError = func(err error) {
		log.Error("watch error", "error", err)
	}

	log.Info("watching for new process names", "file", watchNamesFile)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
