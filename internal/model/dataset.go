package model

import "time"

// Columns is the canonical column order of generated datasets. Every sink
// writes these sixteen columns in this order.
var Columns = []string{
	"case_id",
	"activity",
	"timestamp",
	"complete_timestamp",
	"customer_id",
	"priority",
	"channel",
	"department",
	"product_category",
	"value",
	"resource",
	"duration_minutes",
	"cost",
	"status",
	"system",
	"automated",
}

// Row is one flattened dataset record: an event joined with its case's
// attributes, in canonical column order.
type Row struct {
	CaseID            string
	Activity          string
	Timestamp         time.Time
	CompleteTimestamp time.Time
	CustomerID        string
	Priority          string
	Channel           string
	Department        string
	ProductCategory   string
	Value             float64
	Resource          string
	DurationMinutes   int
	Cost              float64
	Status            string
	System            string
	Automated         bool
}

// Dataset is the full output of one generation job: every case simulated
// for a single named process.
type Dataset struct {
	ProcessName string
	Cases       []Case
}

// Rows flattens the dataset into records ordered by case then by event
// start time. Case IDs are assigned in increasing order at generation
// time, so this matches a (case_id, timestamp) sort.
func (d *Dataset) Rows() []Row {
	n := 0
	for i := range d.Cases {
		n += len(d.Cases[i].Events)
	}

	rows := make([]Row, 0, n)
	for i := range d.Cases {
		c := &d.Cases[i]
		for _, e := range c.Events {
			rows = append(rows, Row{
				CaseID:            c.ID,
				Activity:          e.Activity,
				Timestamp:         e.Timestamp,
				CompleteTimestamp: e.CompleteTimestamp,
				CustomerID:        c.Attributes.CustomerID,
				Priority:          c.Attributes.Priority,
				Channel:           c.Attributes.Channel,
				Department:        c.Attributes.Department,
				ProductCategory:   c.Attributes.ProductCategory,
				Value:             c.Attributes.Value,
				Resource:          e.Resource,
				DurationMinutes:   e.DurationMinutes,
				Cost:              e.Cost,
				Status:            e.Status,
				System:            e.System,
				Automated:         e.Automated,
			})
		}
	}
	return rows
}

// Summary holds aggregate statistics over a dataset.
type Summary struct {
	Cases             int
	Events            int
	Activities        int
	Resources         int
	AvgEventsPerCase  float64
	AvgCaseDuration   time.Duration
	TotalCost         float64
	FirstTimestamp    time.Time
	LastTimestamp     time.Time
}

// Summarize computes aggregate statistics for the dataset.
func (d *Dataset) Summarize() Summary {
	var s Summary
	activities := make(map[string]struct{})
	resources := make(map[string]struct{})
	var totalDuration time.Duration

	for i := range d.Cases {
		c := &d.Cases[i]
		s.Cases++
		totalDuration += c.Duration()

		for _, e := range c.Events {
			s.Events++
			activities[e.Activity] = struct{}{}
			resources[e.Resource] = struct{}{}
			s.TotalCost += e.Cost

			if s.FirstTimestamp.IsZero() || e.Timestamp.Before(s.FirstTimestamp) {
				s.FirstTimestamp = e.Timestamp
			}
			if e.CompleteTimestamp.After(s.LastTimestamp) {
				s.LastTimestamp = e.CompleteTimestamp
			}
		}
	}

	s.Activities = len(activities)
	s.Resources = len(resources)
	if s.Cases > 0 {
		s.AvgEventsPerCase = float64(s.Events) / float64(s.Cases)
		s.AvgCaseDuration = totalDuration / time.Duration(s.Cases)
	}
	return s
}
