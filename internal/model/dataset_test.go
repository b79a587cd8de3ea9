package model

import (
	"testing"
	"time"
)

func testDataset() *Dataset {
	t0 := time.Date(2023, 3, 6, 9, 0, 0, 0, time.UTC)
	return &Dataset{
		ProcessName: "Manage Orders",
		Cases: []Case{
			{
				ID: "CASE_00001",
				Attributes: CaseAttributes{
					CustomerID: "CUST_1234",
					Priority:   "High",
					Channel:    "Web",
					Department: "Sales",
					Value:      199.99,
				},
				Events: []Event{
					{Activity: "Receive Order", Timestamp: t0, CompleteTimestamp: t0.Add(30 * time.Minute), Resource: "Sales_Agent_1", Cost: 50},
					{Activity: "Check Stock", Timestamp: t0.Add(30 * time.Minute), CompleteTimestamp: t0.Add(90 * time.Minute), Resource: "Sales_Agent_2", Cost: 75},
				},
			},
			{
				ID: "CASE_00002",
				Attributes: CaseAttributes{
					CustomerID: "CUST_5678",
					Priority:   "Low",
					Channel:    "Phone",
					Department: "Operations",
					Value:      500,
				},
				Events: []Event{
					{Activity: "Receive Order", Timestamp: t0.Add(time.Hour), CompleteTimestamp: t0.Add(2 * time.Hour), Resource: "Operations_Agent_1", Cost: 100},
				},
			},
		},
	}
}

func TestDatasetRows(t *testing.T) {
	d := testDataset()
	rows := d.Rows()

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].CaseID != "CASE_00001" || rows[2].CaseID != "CASE_00002" {
		t.Error("Rows not grouped by case in order")
	}
	if rows[1].CustomerID != "CUST_1234" {
		t.Errorf("Case attributes not joined onto event row: %q", rows[1].CustomerID)
	}
	if rows[0].Activity != "Receive Order" {
		t.Errorf("Unexpected first activity %q", rows[0].Activity)
	}
}

func TestDatasetSummarize(t *testing.T) {
	d := testDataset()
	s := d.Summarize()

	if s.Cases != 2 || s.Events != 3 {
		t.Fatalf("Summary counts = %d cases / %d events, want 2/3", s.Cases, s.Events)
	}
	if s.Activities != 2 {
		t.Errorf("Distinct activities = %d, want 2", s.Activities)
	}
	if s.Resources != 3 {
		t.Errorf("Distinct resources = %d, want 3", s.Resources)
	}
	if s.TotalCost != 225 {
		t.Errorf("Total cost = %v, want 225", s.TotalCost)
	}
	if s.AvgEventsPerCase != 1.5 {
		t.Errorf("Avg events per case = %v, want 1.5", s.AvgEventsPerCase)
	}
	if s.LastTimestamp.Before(s.FirstTimestamp) {
		t.Error("Last timestamp precedes first")
	}
}

func TestColumnsOrder(t *testing.T) {
	if len(Columns) != 16 {
		t.Fatalf("Expected 16 canonical columns, got %d", len(Columns))
	}
	if Columns[0] != "case_id" || Columns[3] != "complete_timestamp" || Columns[15] != "automated" {
		t.Errorf("Canonical column order changed: %v", Columns)
	}
}
