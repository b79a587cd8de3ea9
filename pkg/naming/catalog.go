// Package naming provides the catalog of candidate process names used to
// seed generation jobs.
package naming

import "math/rand"

// Verb-first halves of candidate process names.
var firstWords = []string{
	"Submit", "Review", "Approve", "Verify", "Check",
	"Update", "Process", "Validate", "Evaluate", "Confirm",
	"Send", "Receive", "Forward", "Archive", "Generate",
	"Schedule", "Track", "Monitor", "Record", "Assign",
	"Initiate", "Complete", "Modify", "Register", "Create",
	"Assess", "Calculate", "Document", "File", "Handle",
	"Prepare", "Analyze", "Store", "Transfer", "Notify",
	"Log", "Enter", "Export", "Import", "Plan",
	"Route", "Sign", "Scan", "Print", "Match",
	"Collect", "Release", "Save", "Format", "Dispatch",
}

// Object halves of candidate process names.
var secondWords = []string{
	"Request", "Form", "Application", "Documents", "Dates",
	"Schedule", "Calendar", "Period", "Status", "Approval",
	"Records", "Details", "Information", "Notification", "Coverage",
	"Balance", "Duration", "Eligibility", "Submission", "Workflow",
	"Data", "History", "Authorization", "Confirmation", "Availability",
	"Policy", "Requirements", "Verification", "Certificate", "Permission",
	"Documentation", "Timeframe", "Evidence", "Proof", "Response",
	"Report", "Comments", "Feedback", "Reference", "Timeline",
	"Signature", "Attachments", "Compliance", "Guidelines", "Credentials",
	"Conditions", "Agreement", "Summary", "Statistics", "Validation",
}

// Total returns the number of distinct names the catalog can produce.
func Total() int {
	return len(firstWords) * len(secondWords)
}

// All returns every candidate name, verb-major order.
func All() []string {
	names := make([]string, 0, Total())
	for _, first := range firstWords {
		for _, second := range secondWords {
			names = append(names, first+" "+second)
		}
	}
	return names
}

// Sample returns n distinct names drawn from the catalog. If n exceeds the
// catalog size the full catalog is returned, shuffled.
func Sample(rng *rand.Rand, n int) []string {
	all := All()
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	if n < 0 {
		n = 0
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}
