package analytics

import (
	"sort"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

// Predicate is a binary activity test over a profile email.
type Predicate func(email string) bool

// BuildActivityMatrix buckets the user population into a 2x2 contingency
// table over two activity predicates. Only emails where at least one
// predicate holds are counted, once each, so the cell total equals the size
// of the union of the two true-sets.
func BuildActivityMatrix(labelA, labelB string, predA, predB Predicate, universe []string) *entities.ActivityMatrix {
	matrix := &entities.ActivityMatrix{LabelA: labelA, LabelB: labelB}

	for _, email := range universe {
		a, b := predA(email), predB(email)
		if !a && !b {
			continue
		}
		matrix.Cells[boolIndex(a)][boolIndex(b)]++
		matrix.Total++
	}
	return matrix
}

// CrossSurfaceMatrix is the reference 2x2 over the support and usage
// surfaces: "has ticket activity" against "has product usage".
func CrossSurfaceMatrix(profiles map[string]*entities.UnifiedUserProfile) *entities.ActivityMatrix {
	hasSupport := func(email string) bool {
		return profiles[email].Support.TotalTickets > 0
	}
	hasUsage := func(email string) bool {
		return profiles[email].Usage.TotalEvents > 0
	}
	return BuildActivityMatrix(SurfaceSupport, SurfaceUsage, hasSupport, hasUsage, sortedEmails(profiles))
}

// CountCombinations generalises the matrix to N binary surfaces, keyed by a
// stable label combination ("support+usage", "usage", ...). Emails where no
// predicate holds are skipped, matching the 2x2 behavior.
func CountCombinations(predicates map[string]Predicate, universe []string) map[string]int {
	labels := make([]string, 0, len(predicates))
	for label := range predicates {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	counts := make(map[string]int)
	for _, email := range universe {
		key := ""
		for _, label := range labels {
			if predicates[label](email) {
				if key != "" {
					key += "+"
				}
				key += label
			}
		}
		if key == "" {
			continue
		}
		counts[key]++
	}
	return counts
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
