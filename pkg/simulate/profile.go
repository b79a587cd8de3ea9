package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/logforge/logforge/pkg/graph"
	"github.com/logforge/logforge/pkg/labeler"
)

// Department groups the resources that execute activities and the cost
// band their work is billed in.
type Department struct {
	Name      string
	Resources []string
	CostMin   float64
	CostMax   float64
}

// DefaultDepartments is the fallback list used when no labeler is
// available or the departments request fails.
var DefaultDepartments = []string{"Sales", "Operations", "Customer Service", "Finance", "Legal"}

// Profile holds the per-process simulation inputs shared by every case.
type Profile struct {
	Departments []Department
}

// BuildProfile derives the departments involved in a process. With a
// labeler it asks the naming service; otherwise it falls back to
// DefaultDepartments. Each department gets 2-3 resources named after the
// first word of the department and a cost band that rises with its
// position in the list.
func BuildProfile(ctx context.Context, l graph.Labeler, processName string, rng *rand.Rand) Profile {
	names := DefaultDepartments
	if l != nil {
		if answer, err := l.Ask(ctx, labeler.DepartmentsPrompt(processName)); err == nil {
			if parsed := labeler.SplitList(answer); len(parsed) > 0 {
				names = parsed
			}
		}
	}

	departments := make([]Department, len(names))
	for i, name := range names {
		prefix := firstWord(name)
		resources := make([]string, 2+rng.Intn(2))
		for j := range resources {
			resources[j] = fmt.Sprintf("%s_Agent_%d", prefix, j+1)
		}
		departments[i] = Department{
			Name:      name,
			Resources: resources,
			CostMin:   50 + float64(i)*20,
			CostMax:   150 + float64(i)*20,
		}
	}
	return Profile{Departments: departments}
}

func firstWord(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return s
}
