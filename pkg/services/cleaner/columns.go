package cleaner

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

var idAliases = map[domain.Field][]string{
	domain.FieldCustomerGroup: {"customer group", "group", "account group", "chain"},
	domain.FieldCustomer:      {"customer", "store", "customer name", "store name", "account", "location"},
	domain.FieldProduct:       {"product", "products", "sku", "item", "description", "product description", "item description"},
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// matchesAlias accepts an exact alias or a label that starts with one ("Product Description",
// "Store #"). A label that is exactly another identifier's alias is a swapped column.
func matchesAlias(field domain.Field, label string) bool {
	label = normalizeLabel(label)
	for other, aliases := range idAliases {
		if other != field && slices.Contains(aliases, label) {
			return false
		}
	}
	for _, alias := range idAliases[field] {
		if label == alias || strings.HasPrefix(label, alias+" ") {
			return true
		}
	}
	return false
}

var monthNames = func() map[string]int {
	names := make(map[string]int, 24)
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		names[full] = int(m)
		names[full[:3]] = int(m)
	}
	names["sept"] = 9
	return names
}()

func parseMonth(label string) (int, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if m, ok := monthNames[label]; ok {
		return m, true
	}
	if n, err := strconv.Atoi(label); err == nil && n >= 1 && n <= 12 {
		return n, true
	}
	return 0, false
}

func parseYear(label string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil || n < 1900 || n > 2999 {
		return 0, false
	}
	return n, true
}

// parseCombined reads "2024_January" or "January 2024" style labels.
func parseCombined(label string) (int, int, bool) {
	parts := strings.FieldsFunc(label, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-' || r == '/'
	})
	if len(parts) != 2 {
		return 0, 0, false
	}
	if y, ok := parseYear(parts[0]); ok {
		if m, ok := parseMonth(parts[1]); ok {
			return y, m, true
		}
	}
	if y, ok := parseYear(parts[1]); ok {
		if m, ok := parseMonth(parts[0]); ok {
			return y, m, true
		}
	}
	return 0, 0, false
}

// resolvePeriod maps the (forward-filled) year label and the month label of one column
// to a calendar month.
func resolvePeriod(yearLabel, monthLabel string) (int, int, bool) {
	if y, m, ok := parseCombined(monthLabel); ok {
		return y, m, true
	}
	if y, m, ok := parseCombined(yearLabel); ok {
		return y, m, true
	}
	y, ok := parseYear(yearLabel)
	if !ok {
		return 0, 0, false
	}
	m, ok := parseMonth(monthLabel)
	if !ok {
		return 0, 0, false
	}
	return y, m, true
}

// coerceValue turns a sales cell into whole units. Empty, non-numeric and negative cells
// are rejected.
func coerceValue(cell string) (int64, bool) {
	s := strings.TrimSpace(cell)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, n >= 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < 0 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}

func field(fields []string, col int) string {
	if col < 0 || col >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[col])
}
