package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Labeler is the external naming oracle used to give activities
// descriptive names. Implementations may block on the network and may
// fail; the relabel pass recovers every failure with a synthesized name.
type Labeler interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// maxNameAttempts bounds the retry loop for colliding activity names.
const maxNameAttempts = 3

// relabel walks the frozen structure in creation order and asks the
// labeler for a descriptive name per activity, then rebuilds the graph
// under the new names. Predecessor context uses already-assigned names;
// successor context still shows generic identifiers since later nodes are
// named after this one.
func (g *Generator) relabel(ctx context.Context, gr *Graph) {
	mapping := map[string]string{Start: Start, End: End}

	for _, node := range gr.Nodes() {
		if node == Start || node == End {
			continue
		}
		incoming := applyMapping(gr.Predecessors(node), mapping)
		outgoing := applyMapping(gr.Successors(node), mapping)
		mapping[node] = g.activityName(ctx, incoming, outgoing)
	}

	gr.rename(mapping)
}

func applyMapping(nodes []string, mapping map[string]string) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		if m, ok := mapping[n]; ok {
			out[i] = m
		} else {
			out[i] = n
		}
	}
	return out
}

// activityName requests a unique descriptive name. Collisions retry up to
// maxNameAttempts with an exclusion hint, then fall back to a counter
// suffix. A failed or unusable response falls back to the first free
// Activity_<n> identifier. The routine always returns a name.
func (g *Generator) activityName(ctx context.Context, incoming, outgoing []string) string {
	var last string
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		var exclusions []string
		if attempt > 1 {
			exclusions = g.exclusionList()
		}

		answer, err := g.labeler.Ask(ctx, g.activityPrompt(incoming, outgoing, exclusions))
		if err != nil {
			return g.fallbackName()
		}

		name := CleanName(answer)
		if name == "" {
			return g.fallbackName()
		}
		if _, used := g.usedNames[name]; !used {
			g.usedNames[name] = struct{}{}
			return name
		}
		last = name
	}

	for counter := 1; ; counter++ {
		name := fmt.Sprintf("%s %d", last, counter)
		if _, used := g.usedNames[name]; !used {
			g.usedNames[name] = struct{}{}
			return name
		}
	}
}

func (g *Generator) activityPrompt(incoming, outgoing, exclusions []string) string {
	after := Start
	if len(incoming) > 0 {
		after = strings.Join(incoming, ", ")
	}
	leadsTo := End
	if len(outgoing) > 0 {
		leadsTo = strings.Join(outgoing, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "In the process '%s', name an activity that:\n", g.processName)
	fmt.Fprintf(&sb, "- Comes after activities: %s\n", after)
	fmt.Fprintf(&sb, "- Leads to activities: %s", leadsTo)
	if len(exclusions) > 0 {
		fmt.Fprintf(&sb, "\nThe name must be different from: %s", strings.Join(exclusions, ", "))
	}
	sb.WriteString("\n\nReturn only the activity name (2-4 words maximum), no additional text or punctuation.")
	return sb.String()
}

// exclusionList returns the used activity names, sorted for a stable
// prompt, without the terminal identifiers.
func (g *Generator) exclusionList() []string {
	var names []string
	for n := range g.usedNames {
		if n != Start && n != End {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// fallbackName claims the first free Activity_<n> identifier.
func (g *Generator) fallbackName() string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("Activity_%d", i)
		if _, used := g.usedNames[name]; !used {
			g.usedNames[name] = struct{}{}
			return name
		}
	}
}

// CleanName normalizes a labeling-service response into a usable name:
// surrounding whitespace trimmed, embedded newlines collapsed to spaces,
// quote characters stripped.
func CleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")
	return strings.TrimSpace(s)
}
