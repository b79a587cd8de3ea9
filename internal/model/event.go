// Package model defines core data structures for LogForge.
package model

import "time"

// TimestampLayout is the wall-clock format used in generated datasets.
const TimestampLayout = "2006-01-02 15:04:05"

// CaseAttributes holds the case-level attributes of a process instance.
// They are generated once per case and shared by all of its events.
type CaseAttributes struct {
	CustomerID      string
	Priority        string
	Channel         string
	Department      string
	ProductCategory string
	Value           float64
}

// Event represents a single executed activity within a case.
type Event struct {
	// Activity is the label of the executed process node.
	Activity string

	// Timestamp is the working-time instant the activity started.
	Timestamp time.Time

	// CompleteTimestamp is the working-time instant the activity finished.
	// Always >= Timestamp.
	CompleteTimestamp time.Time

	// Resource is the actor that performed the activity.
	Resource string

	// DurationMinutes is the simulated activity duration.
	DurationMinutes int

	// Cost of executing the activity, in the department's cost range.
	Cost float64

	Status    string
	System    string
	Automated bool
}

// Case is one simulated traversal of a process graph.
type Case struct {
	ID         string
	Attributes CaseAttributes
	Events     []Event
}

// Duration returns the wall-clock span from the first event's start to the
// last event's completion. Zero for a case with no events.
func (c *Case) Duration() time.Duration {
	if len(c.Events) == 0 {
		return 0
	}
	return c.Events[len(c.Events)-1].CompleteTimestamp.Sub(c.Events[0].Timestamp)
}
