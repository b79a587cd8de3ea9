// Package simulate walks process graphs to produce timestamped case and
// event data. A simulator binds one graph to one department profile and
// one random stream, so a fixed seed reproduces the full dataset.
package simulate

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/logforge/logforge/internal/model"
	"github.com/logforge/logforge/pkg/errors"
	"github.com/logforge/logforge/pkg/graph"
	"github.com/logforge/logforge/pkg/labeler"
	"github.com/logforge/logforge/pkg/schedule"
)

var (
	priorities = []string{"Low", "Medium", "High"}
	channels   = []string{"Web", "Phone", "Email", "In-Person"}
	statuses   = []string{"Completed", "Delayed", "Expedited"}
	systems    = []string{"System A", "System B", "System C"}
	categories = []string{"Type A", "Type B", "Type C"}
)

// Config bounds one simulation run.
type Config struct {
	// Cases is the number of cases to simulate.
	Cases int

	// StartDate and EndDate bound the instants at which cases may begin.
	// Event timestamps can run past EndDate when a case starts late.
	StartDate time.Time
	EndDate   time.Time

	// Week defines the working hours every timestamp respects.
	Week schedule.WorkWeek
}

// DefaultConfig covers one calendar year at 500 cases.
func DefaultConfig() Config {
	return Config{
		Cases:     500,
		StartDate: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
		Week:      schedule.Default(),
	}
}

// Simulator produces event logs by repeatedly walking a frozen process
// graph. The graph is read-only during simulation; all randomness comes
// from the simulator's own stream.
type Simulator struct {
	processName string
	graph       *graph.Graph
	profile     Profile
	cfg         Config
	rng         *rand.Rand
	labeler     graph.Labeler
	onProgress  func(done, total int)
}

// New builds a simulator for one process. A nil rng is seeded from the
// current time. An empty profile is replaced by the default departments.
func New(processName string, g *graph.Graph, profile Profile, cfg Config, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Cases < 1 {
		cfg.Cases = 1
	}
	if len(profile.Departments) == 0 {
		profile = BuildProfile(context.Background(), nil, processName, rng)
	}
	return &Simulator{
		processName: processName,
		graph:       g,
		profile:     profile,
		cfg:         cfg,
		rng:         rng,
	}
}

// WithLabeler attaches a naming service used for product categories.
// Without one, categories fall back to generic types.
func (s *Simulator) WithLabeler(l graph.Labeler) *Simulator {
	s.labeler = l
	return s
}

// OnProgress registers a callback invoked after each completed case.
func (s *Simulator) OnProgress(fn func(done, total int)) *Simulator {
	s.onProgress = fn
	return s
}

// Dataset simulates every case and assembles the complete event log.
func (s *Simulator) Dataset(ctx context.Context) (*model.Dataset, error) {
	cases := make([]model.Case, 0, s.cfg.Cases)
	for i := 1; i <= s.cfg.Cases; i++ {
		c, err := s.Case(ctx, fmt.Sprintf("CASE_%05d", i))
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
		if s.onProgress != nil {
			s.onProgress(i, s.cfg.Cases)
		}
	}
	return &model.Dataset{ProcessName: s.processName, Cases: cases}, nil
}

// Case simulates a single traversal from START to END. Every event keeps
// its start and completion inside working hours, and no event starts
// before the previous one completes.
func (s *Simulator) Case(ctx context.Context, id string) (model.Case, error) {
	path, err := s.walk()
	if err != nil {
		return model.Case{}, err
	}

	dept := s.profile.Departments[s.rng.Intn(len(s.profile.Departments))]
	attrs := s.caseAttributes(ctx, dept.Name)

	clock := s.caseStart()
	events := make([]model.Event, 0, len(path))
	for _, activity := range path {
		e := s.event(activity, dept)
		e.Timestamp = s.cfg.Week.AdvanceMinutes(clock, 0)
		e.CompleteTimestamp = s.cfg.Week.AdvanceMinutes(e.Timestamp, e.DurationMinutes)
		clock = e.CompleteTimestamp
		events = append(events, e)
	}

	return model.Case{ID: id, Attributes: attrs, Events: events}, nil
}

// walk draws one path through the graph, choosing uniformly among
// successors, and returns only the activity nodes. The guards fire on
// hand-built graphs that skipped Validate.
func (s *Simulator) walk() ([]string, error) {
	var path []string
	current := graph.Start
	for current != graph.End {
		if !s.graph.Contains(current) {
			return nil, errors.UnknownNode(current)
		}
		succ := s.graph.Successors(current)
		if len(succ) == 0 {
			return nil, errors.NoSuccessors(current)
		}
		current = succ[s.rng.Intn(len(succ))]
		if current != graph.Start && current != graph.End {
			path = append(path, current)
		}
	}
	return path, nil
}

func (s *Simulator) caseAttributes(ctx context.Context, department string) model.CaseAttributes {
	return model.CaseAttributes{
		CustomerID:      fmt.Sprintf("CUST_%d", 1000+s.rng.Intn(9000)),
		Priority:        choice(s.rng, priorities),
		Channel:         choice(s.rng, channels),
		Department:      department,
		ProductCategory: s.productCategory(ctx),
		Value:           round2(100 + s.rng.Float64()*9900),
	}
}

// productCategory asks the labeler for a category fitting the process,
// falling back to a generic type when the request fails.
func (s *Simulator) productCategory(ctx context.Context) string {
	if s.labeler != nil {
		if answer, err := s.labeler.Ask(ctx, labeler.CategoryPrompt(s.processName)); err == nil {
			if cleaned := graph.CleanName(answer); cleaned != "" {
				return cleaned
			}
		}
	}
	return choice(s.rng, categories)
}

func (s *Simulator) event(activity string, dept Department) model.Event {
	return model.Event{
		Activity:        activity,
		Resource:        choice(s.rng, dept.Resources),
		DurationMinutes: 30 + s.rng.Intn(451),
		Cost:            round2(dept.CostMin + s.rng.Float64()*(dept.CostMax-dept.CostMin)),
		Status:          choice(s.rng, statuses),
		System:          choice(s.rng, systems),
		Automated:       s.rng.Intn(2) == 1,
	}
}

// caseStart draws a uniform instant inside the configured date window.
func (s *Simulator) caseStart() time.Time {
	span := s.cfg.EndDate.Sub(s.cfg.StartDate)
	if span <= 0 {
		return s.cfg.StartDate
	}
	return s.cfg.StartDate.Add(time.Duration(s.rng.Float64() * float64(span)))
}

func choice(rng *rand.Rand, items []string) string {
	return items[rng.Intn(len(items))]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
