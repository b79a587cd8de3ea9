package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/logforge/logforge/pkg/config"
	"github.com/logforge/logforge/pkg/errors"
	"github.com/logforge/logforge/pkg/logging"
	"github.com/logforge/logforge/pkg/pool"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Labeler.Enabled = false
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Formats = []string{"csv"}
	cfg.Output.Diagrams = true
	cfg.Pool.Workers = 3
	cfg.Pool.Seed = 7
	cfg.Simulation.Cases = 5
	cfg.Generator.MinNodes = 5
	cfg.Generator.MaxNodes = 7
	return cfg
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Order Fulfillment", "order_fulfillment"},
		{"  Handle Request  ", "handle_request"},
		{`Verify "Priority" Claims`, "verify_priority_claims"},
		{"Customer's Refund", "customers_refund"},
		{"a/b:c\\d", "abcd"},
		{"", "process"},
	}
	for _, tt := range tests {
		if got := Filename(tt.name); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRunOffline(t *testing.T) {
	cfg := testConfig(t)
	r, err := New(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var mu sync.Mutex
	finished := 0
	r.OnJob(func(pool.Result) {
		mu.Lock()
		finished++
		mu.Unlock()
	})

	names := []string{"Order Fulfillment", "Invoice Processing", "Claims Handling"}
	results, err := r.Run(context.Background(), names)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(names) {
		t.Fatalf("got %d results, want %d", len(results), len(names))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("job %q failed: %v", res.Job.Name, res.Err)
		}
	}
	if finished != len(names) {
		t.Errorf("OnJob fired %d times, want %d", finished, len(names))
	}

	s := r.Metrics().Snapshot()
	if s.ProcessesSucceeded != 3 || s.ProcessesFailed != 0 {
		t.Errorf("succeeded/failed = %d/%d, want 3/0", s.ProcessesSucceeded, s.ProcessesFailed)
	}
	if s.Cases != 15 {
		t.Errorf("Cases = %d, want 15", s.Cases)
	}
	if s.Events < 15 {
		t.Errorf("Events = %d, want at least one per case", s.Events)
	}
	if s.LabelerCalls != 0 {
		t.Errorf("LabelerCalls = %d, want 0 when disabled", s.LabelerCalls)
	}

	for _, name := range names {
		base := Filename(name)
		for _, ext := range []string{".csv", ".dot"} {
			path := filepath.Join(cfg.Output.Dir, base+ext)
			if _, err := os.Stat(path); err != nil {
				t.Errorf("missing artifact %s: %v", path, err)
			}
		}
	}
	if got := len(r.Artifacts()); got != 6 {
		t.Errorf("Artifacts() = %d paths, want 6", got)
	}
}

func TestRunSingleProcessCaseProgress(t *testing.T) {
	cfg := testConfig(t)
	r, err := New(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var lastDone, lastTotal int
	r.OnCases(func(done, total int) {
		lastDone, lastTotal = done, total
	})

	if _, err := r.Run(context.Background(), []string{"Order Fulfillment"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if lastTotal != cfg.Simulation.Cases {
		t.Errorf("progress total = %d, want %d", lastTotal, cfg.Simulation.Cases)
	}
	if lastDone != lastTotal {
		t.Errorf("progress done = %d, want %d", lastDone, lastTotal)
	}
}

func TestRunLabelerUnavailableFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Labeler.Enabled = true
	cfg.Labeler.Endpoint = srv.URL
	cfg.Pool.Workers = 1

	r, err := New(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := r.Run(context.Background(), []string{"Order Fulfillment"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("job failed despite fallbacks: %v", results[0].Err)
	}

	s := r.Metrics().Snapshot()
	if s.LabelerCalls == 0 {
		t.Error("expected labeler calls to be recorded")
	}
	if s.LabelerFallbacks != s.LabelerCalls {
		t.Errorf("fallbacks = %d, calls = %d, want all calls to fall back", s.LabelerFallbacks, s.LabelerCalls)
	}

	path := filepath.Join(cfg.Output.Dir, "order_fulfillment.csv")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("missing artifact %s: %v", path, err)
	}
}

func TestRunFailingJobDoesNotStopOthers(t *testing.T) {
	cfg := testConfig(t)

	// A directory squatting on the artifact path makes that job's csv
	// write fail while the other job proceeds.
	blocked := filepath.Join(cfg.Output.Dir, "alpha_process.csv")
	if err := os.MkdirAll(blocked, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	r, err := New(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := r.Run(context.Background(), []string{"Alpha Process", "Beta Process"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var failed, succeeded int
	for _, res := range results {
		if res.Err != nil {
			failed++
			if !errors.IsCode(res.Err, errors.CodeWriteFailed) {
				t.Errorf("failure code = %v, want %s", res.Err, errors.CodeWriteFailed)
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 1 {
		t.Fatalf("failed/succeeded = %d/%d, want 1/1", failed, succeeded)
	}

	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "beta_process.csv")); err != nil {
		t.Errorf("surviving job artifact missing: %v", err)
	}

	s := r.Metrics().Snapshot()
	if s.ProcessesFailed != 1 || s.ProcessesSucceeded != 1 {
		t.Errorf("metrics failed/succeeded = %d/%d, want 1/1", s.ProcessesFailed, s.ProcessesSucceeded)
	}
}

func TestRunSameSeedSameOutput(t *testing.T) {
	read := func(t *testing.T) []byte {
		cfg := testConfig(t)
		// One worker keeps the job on one seeded stream.
		cfg.Pool.Workers = 1
		r, err := New(cfg, logging.Nop())
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, err := r.Run(context.Background(), []string{"Order Fulfillment"}); err != nil {
			t.Fatalf("Run: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "order_fulfillment.csv"))
		if err != nil {
			t.Fatalf("read artifact: %v", err)
		}
		return data
	}

	first := read(t)
	second := read(t)
	if string(first) != string(second) {
		t.Error("same seed produced different event logs")
	}
}

func TestRunRejectsEmptyNames(t *testing.T) {
	r, err := New(testConfig(t), logging.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Run(context.Background(), nil); !errors.IsCode(err, errors.CodeInvalidParameter) {
		t.Errorf("err = %v, want %s", err, errors.CodeInvalidParameter)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Cases = 0
	if _, err := New(cfg, nil); !errors.IsCode(err, errors.CodeInvalidParameter) {
		t.Errorf("cases=0: err = %v, want %s", err, errors.CodeInvalidParameter)
	}

	cfg = testConfig(t)
	cfg.Output.Formats = []string{"yaml"}
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected error for unknown output format")
	}
}
