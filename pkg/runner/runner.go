// Package runner wires the generation pipeline: process names in, event
// log artifacts out.
package runner

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/logforge/logforge/internal/model"
	"github.com/logforge/logforge/pkg/config"
	"github.com/logforge/logforge/pkg/errors"
	"github.com/logforge/logforge/pkg/graph"
	"github.com/logforge/logforge/pkg/labeler"
	"github.com/logforge/logforge/pkg/logging"
	"github.com/logforge/logforge/pkg/pool"
	"github.com/logforge/logforge/pkg/publish"
	"github.com/logforge/logforge/pkg/render"
	"github.com/logforge/logforge/pkg/schedule"
	"github.com/logforge/logforge/pkg/simulate"
	"github.com/logforge/logforge/pkg/sink"
	"github.com/logforge/logforge/pkg/telemetry"
)

// Runner generates one event log per process name on a worker pool.
type Runner struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *telemetry.Metrics
	pub     *publish.Publisher

	formats []sink.Format
	sinkCfg sink.Config
	week    schedule.WorkWeek
	start   time.Time
	end     time.Time
	runID   string

	onJob   func(pool.Result)
	onCases func(done, total int)

	mu        sync.Mutex
	artifacts []string
}

// New validates cfg and builds a runner. The logger may be nil.
func New(cfg *config.Config, log *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start, end, err := cfg.Simulation.DateRange()
	if err != nil {
		return nil, err
	}
	formats, err := sink.ParseFormats(cfg.Output.Formats)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Nop()
	}

	return &Runner{
		cfg:     cfg,
		log:     log,
		metrics: telemetry.NewMetrics(),
		formats: formats,
		sinkCfg: sink.Config{
			Compression: sink.ParseCompression(cfg.Output.Compression),
		},
		week:  cfg.Simulation.Week(),
		start: start,
		end:   end,
		runID: uuid.NewString(),
	}, nil
}

// WithPublisher attaches artifact publishing after local writes.
func (r *Runner) WithPublisher(p *publish.Publisher) *Runner {
	r.pub = p
	return r
}

// OnJob registers a callback invoked after each job finishes.
func (r *Runner) OnJob(fn func(pool.Result)) *Runner {
	r.onJob = fn
	return r
}

// OnCases registers a per-case progress callback. Useful for
// single-process runs; with many concurrent jobs the updates interleave.
func (r *Runner) OnCases(fn func(done, total int)) *Runner {
	r.onCases = fn
	return r
}

// Metrics returns the run's metrics collector.
func (r *Runner) Metrics() *telemetry.Metrics {
	return r.metrics
}

// RunID returns the identifier grouping this run's published artifacts.
func (r *Runner) RunID() string {
	return r.runID
}

// Artifacts returns the paths written so far.
func (r *Runner) Artifacts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.artifacts))
	copy(out, r.artifacts)
	return out
}

// Run generates one dataset per name and blocks until every job has
// finished. Job failures are reported in the results, not returned.
func (r *Runner) Run(ctx context.Context, names []string) ([]pool.Result, error) {
	if len(names) == 0 {
		return nil, errors.New(errors.CodeInvalidParameter, "no process names to generate")
	}
	if err := os.MkdirAll(r.cfg.Output.Dir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.CodeWriteFailed, "failed to create output directory").
			WithContext("dir", r.cfg.Output.Dir)
	}

	jobs := make([]pool.Job, 0, len(names))
	for _, n := range names {
		jobs = append(jobs, pool.NewJob(n))
	}
	queue := pool.NewQueue(jobs...)

	workers := r.cfg.Pool.Workers
	if workers < 1 {
		workers = 1
	}
	seed := r.cfg.Pool.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Every worker owns its random stream and labeler connector.
	rngs := make([]*rand.Rand, workers)
	labelers := make([]graph.Labeler, workers)
	for i := range rngs {
		rngs[i] = rand.New(rand.NewSource(seed + int64(i)))
		if r.cfg.Labeler.Enabled {
			labelers[i] = &countingLabeler{
				inner: labeler.NewChatClient(labeler.Config{
					Endpoint:    r.cfg.Labeler.Endpoint,
					Model:       r.cfg.Labeler.Model,
					Temperature: r.cfg.Labeler.Temperature,
					MaxTokens:   r.cfg.Labeler.MaxTokens,
					Timeout:     r.cfg.Labeler.Timeout,
				}),
				metrics: r.metrics,
			}
		}
	}

	r.log.Info("run starting",
		"run_id", r.runID,
		"processes", len(names),
		"workers", workers,
		"cases_per_process", r.cfg.Simulation.Cases,
		"labeler_enabled", r.cfg.Labeler.Enabled)

	p := pool.New(workers, r.log)
	if r.onJob != nil {
		p.OnResult(r.onJob)
	}

	results := p.Run(ctx, queue, func(ctx context.Context, workerID int, job pool.Job) error {
		return r.generate(ctx, job, rngs[workerID], labelers[workerID])
	})

	for _, res := range results {
		if res.Err != nil {
			r.metrics.JobFailed(res.Elapsed)
		} else {
			r.metrics.JobSucceeded(res.Elapsed)
		}
	}
	return results, nil
}

// generate runs the full pipeline for one process name, one child span
// per stage.
func (r *Runner) generate(ctx context.Context, job pool.Job, rng *rand.Rand, l graph.Labeler) error {
	ctx, span := telemetry.StartSpan(ctx, "generate_process",
		attribute.String("process", job.Name),
		attribute.String("job_id", job.ID))
	defer span.End()

	nameCtx, nameSpan := telemetry.StartSpan(ctx, "name")
	name := r.processName(nameCtx, job.Name, l)
	nameSpan.End()
	if name != job.Name {
		r.log.Debug("process renamed", "from", job.Name, "to", name)
	}

	gen := graph.NewGenerator(name, graph.Params{
		MinNodes:     r.cfg.Generator.MinNodes,
		MaxNodes:     r.cfg.Generator.MaxNodes,
		MinOutDegree: r.cfg.Generator.MinOutDegree,
		MaxOutDegree: r.cfg.Generator.MaxOutDegree,
	}, rng)
	if l != nil {
		gen.WithLabeler(l)
	}
	graphCtx, graphSpan := telemetry.StartSpan(ctx, "graph")
	g := gen.Generate(graphCtx)
	graphSpan.End()

	simCtx, simSpan := telemetry.StartSpan(ctx, "simulate")
	profile := simulate.BuildProfile(simCtx, l, name, rng)
	sim := simulate.New(name, g, profile, simulate.Config{
		Cases:     r.cfg.Simulation.Cases,
		StartDate: r.start,
		EndDate:   r.end,
		Week:      r.week,
	}, rng)
	if l != nil {
		sim.WithLabeler(l)
	}
	if r.onCases != nil {
		sim.OnProgress(r.onCases)
	}
	ds, err := sim.Dataset(simCtx)
	if err != nil {
		telemetry.RecordError(simCtx, err)
		simSpan.End()
		return err
	}
	simSpan.End()

	persistCtx, persistSpan := telemetry.StartSpan(ctx, "persist")
	defer persistSpan.End()

	written, err := r.write(persistCtx, ds, g)
	if err != nil {
		telemetry.RecordError(persistCtx, err)
		return err
	}

	sum := ds.Summarize()
	r.metrics.AddCases(int64(sum.Cases))
	r.metrics.AddEvents(int64(sum.Events))
	r.metrics.AddCost(sum.TotalCost)
	telemetry.SetSpanAttributes(ctx,
		attribute.Int("cases", sum.Cases),
		attribute.Int("events", sum.Events))

	r.log.Info("process generated",
		"process", name,
		"cases", sum.Cases,
		"events", sum.Events,
		"activities", sum.Activities,
		"files", len(written))
	r.log.Debug("dataset summary",
		"process", name,
		"resources", sum.Resources,
		"avg_events_per_case", sum.AvgEventsPerCase,
		"avg_case_duration", sum.AvgCaseDuration,
		"total_cost", sum.TotalCost,
		"first_event", sum.FirstTimestamp,
		"last_event", sum.LastTimestamp)

	if r.pub != nil {
		if err := r.pub.UploadArtifacts(persistCtx, r.runID, written); err != nil {
			telemetry.RecordError(persistCtx, err)
			return err
		}
		r.log.Info("artifacts published",
			"process", name,
			"bucket", r.pub.Bucket(),
			"files", len(written))
	}
	return nil
}

// write renders the dataset in every configured format, plus the process
// diagram when enabled.
func (r *Runner) write(ctx context.Context, ds *model.Dataset, g *graph.Graph) ([]string, error) {
	base := Filename(ds.ProcessName)

	var written []string
	for _, f := range r.formats {
		w, err := sink.For(f, r.sinkCfg)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(r.cfg.Output.Dir, base+f.Ext())
		if err := w.Write(ctx, ds, path); err != nil {
			return nil, err
		}
		written = append(written, path)
	}

	if r.cfg.Output.Diagrams {
		path := filepath.Join(r.cfg.Output.Dir, base+".dot")
		if err := render.WriteFile(g, path); err != nil {
			return nil, err
		}
		written = append(written, path)
	}

	r.mu.Lock()
	r.artifacts = append(r.artifacts, written...)
	r.mu.Unlock()

	return written, nil
}

// processName asks the labeler for an improved display name, keeping the
// candidate on any failure.
func (r *Runner) processName(ctx context.Context, candidate string, l graph.Labeler) string {
	if l == nil {
		return candidate
	}
	answer, err := l.Ask(ctx, labeler.ImprovedNamePrompt(candidate))
	if err != nil {
		return candidate
	}
	if name := graph.CleanName(answer); name != "" {
		return name
	}
	return candidate
}

// countingLabeler tracks call metrics around the wrapped connector.
type countingLabeler struct {
	inner   graph.Labeler
	metrics *telemetry.Metrics
}

func (c *countingLabeler) Ask(ctx context.Context, prompt string) (string, error) {
	c.metrics.LabelerCall()
	answer, err := c.inner.Ask(ctx, prompt)
	if err != nil {
		c.metrics.LabelerFallback()
	}
	return answer, err
}

// Filename converts a process name into a safe artifact base name:
// lowercase, spaces to underscores, quotes and path separators dropped.
func Filename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '/', '\\', ':':
			return -1
		}
		return r
	}, name)
	if name == "" {
		return "process"
	}
	return name
}
