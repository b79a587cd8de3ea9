package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/logforge/logforge/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDateRange(t *testing.T) {
	s := SimulationConfig{StartDate: "2023-01-01", EndDate: "2023-12-31"}
	start, end, err := s.DateRange()
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	if start.Year() != 2023 || start.Month() != time.January || start.Day() != 1 {
		t.Errorf("start = %v", start)
	}
	if end.Month() != time.December || end.Day() != 31 {
		t.Errorf("end = %v", end)
	}
}

func TestDateRangeRejectsBadInput(t *testing.T) {
	cases := []SimulationConfig{
		{StartDate: "01/02/2023", EndDate: "2023-12-31"},
		{StartDate: "2023-01-01", EndDate: "soon"},
		{StartDate: "2023-12-31", EndDate: "2023-01-01"},
	}
	for _, s := range cases {
		if _, _, err := s.DateRange(); !errors.IsCode(err, errors.CodeInvalidDateRange) {
			t.Errorf("%+v: err = %v, want code %s", s, err, errors.CodeInvalidDateRange)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	mutations := map[string]func(*Config){
		"zero cases":        func(c *Config) { c.Simulation.Cases = 0 },
		"zero workers":      func(c *Config) { c.Pool.Workers = 0 },
		"zero min nodes":    func(c *Config) { c.Generator.MinNodes = 0 },
		"inverted nodes":    func(c *Config) { c.Generator.MaxNodes = c.Generator.MinNodes - 1 },
		"zero min degree":   func(c *Config) { c.Generator.MinOutDegree = 0 },
		"inverted degrees":  func(c *Config) { c.Generator.MaxOutDegree = 0 },
		"no output formats": func(c *Config) { c.Output.Formats = nil },
	}
	for name, mutate := range mutations {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); !errors.IsCode(err, errors.CodeInvalidParameter) {
			t.Errorf("%s: err = %v, want code %s", name, err, errors.CodeInvalidParameter)
		}
	}

	cfg := Default()
	cfg.Simulation.EndDate = "not a date"
	if err := cfg.Validate(); !errors.IsCode(err, errors.CodeInvalidDateRange) {
		t.Errorf("bad date: err = %v, want code %s", err, errors.CodeInvalidDateRange)
	}
}

func TestLoadFileMergesPartial(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	body := "simulation:\n  cases: 50\noutput:\n  dir: " + filepath.Join(tmp, "out") + "\n  diagrams: false\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	cfg := m.Get()
	if cfg.Simulation.Cases != 50 {
		t.Errorf("cases = %d, want 50", cfg.Simulation.Cases)
	}
	if cfg.Output.Diagrams {
		t.Error("diagrams still enabled after explicit false")
	}
	if cfg.Pool.Workers != 10 {
		t.Errorf("workers = %d, want default 10", cfg.Pool.Workers)
	}
	if len(m.GetPaths()) != 1 {
		t.Errorf("loaded paths = %v, want the one file", m.GetPaths())
	}
}

func TestLoadFileMissing(t *testing.T) {
	m := NewManager()
	err := m.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.IsCode(err, errors.CodeConfigRead) {
		t.Fatalf("err = %v, want code %s", err, errors.CodeConfigRead)
	}
}

func TestLoadFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output: ["), 0644); err != nil {
		t.Fatal(err)
	}
	m := NewManager()
	if err := m.LoadFile(path); !errors.IsCode(err, errors.CodeConfigRead) {
		t.Fatalf("err = %v, want code %s", err, errors.CodeConfigRead)
	}
}

func TestEnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	outDir := filepath.Join(tmp, "out")
	t.Setenv("HOME", tmp)
	t.Setenv("LOGFORGE_WORKERS", "3")
	t.Setenv("LOGFORGE_ENDPOINT", "http://model.internal:8080/v1/chat/completions")
	t.Setenv("LOGFORGE_OUTPUT_DIR", outDir)

	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := m.Get()
	if cfg.Pool.Workers != 3 {
		t.Errorf("workers = %d, want 3", cfg.Pool.Workers)
	}
	if cfg.Labeler.Endpoint != "http://model.internal:8080/v1/chat/completions" {
		t.Errorf("endpoint = %q", cfg.Labeler.Endpoint)
	}
	if cfg.Output.Dir != outDir {
		t.Errorf("output dir = %q, want %q", cfg.Output.Dir, outDir)
	}
	if _, err := os.Stat(outDir); err != nil {
		t.Errorf("output dir not created: %v", err)
	}
}

func TestWeekFromConfig(t *testing.T) {
	w := SimulationConfig{OpeningHour: 8, ClosingHour: 17}.Week()
	if w.Opening != 8 || w.Closing != 17 {
		t.Errorf("week = %+v, want 8..17", w)
	}
}
