package metrics

import (
	"regexp"
	"sort"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/store"
)

var grindTag = regexp.MustCompile(` \([A-Za-z]+\)`)

// DisplayProductName strips the pack size, the grind tag and the SKU suffix from a
// distributor product label: "Ethiopia COV 12oz (WB) - 1234" becomes "Ethiopia".
func DisplayProductName(name string) string {
	s := strings.ReplaceAll(name, "COV 12oz", "")
	s = grindTag.ReplaceAllString(s, "")
	if i := strings.Index(s, " - "); i >= 0 {
		s = s[:i]
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return strings.TrimSpace(name)
	}
	return s
}

// mergeByDisplayName folds totals whose keys share a display name and restores the
// total-desc, first-appearance order.
func mergeByDisplayName(totals []store.Total) []store.Total {
	index := make(map[string]int, len(totals))
	merged := make([]store.Total, 0, len(totals))
	for _, t := range totals {
		name := DisplayProductName(t.Key)
		i, ok := index[name]
		if !ok {
			index[name] = len(merged)
			merged = append(merged, store.Total{Key: name, Value: t.Value, FirstSeen: t.FirstSeen})
			continue
		}
		merged[i].Value += t.Value
		if t.FirstSeen < merged[i].FirstSeen {
			merged[i].FirstSeen = t.FirstSeen
		}
	}
	sortTotals(merged)
	return merged
}

func sortTotals(totals []store.Total) {
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Value != totals[j].Value {
			return totals[i].Value > totals[j].Value
		}
		return totals[i].FirstSeen < totals[j].FirstSeen
	})
}
