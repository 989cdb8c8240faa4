package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Period is a set of months within one year. An empty Months slice means the whole year.
type Period struct {
	Year   int
	Months []int
}

func YearPeriod(year int) Period {
	return Period{Year: year}
}

func MonthPeriod(year, month int) Period {
	return Period{Year: year, Months: []int{month}}
}

// QuarterPeriod returns the three months of quarter q (1-4).
func QuarterPeriod(year, q int) Period {
	first := (q-1)*3 + 1
	return Period{Year: year, Months: []int{first, first + 1, first + 2}}
}

func (p Period) IsWholeYear() bool {
	return len(p.Months) == 0
}

func (p Period) Label() string {
	switch {
	case p.IsWholeYear():
		return fmt.Sprintf("%d", p.Year)
	case len(p.Months) == 1:
		return fmt.Sprintf("%s %d", time.Month(p.Months[0]), p.Year)
	case len(p.Months) == 3 && (p.Months[0]-1)%3 == 0 && p.Months[1] == p.Months[0]+1 && p.Months[2] == p.Months[0]+2:
		return fmt.Sprintf("Q%d %d", (p.Months[0]-1)/3+1, p.Year)
	}
	names := make([]string, 0, len(p.Months))
	for _, m := range p.Months {
		names = append(names, time.Month(m).String()[:3])
	}
	return fmt.Sprintf("%s %d", strings.Join(names, "/"), p.Year)
}

// GrowthRate is the percentage change of sales between two periods.
// Defined is false when the earlier total is zero; Percent is then 0 and must not be shown.
type GrowthRate struct {
	Subject      string
	Earlier      Period
	Later        Period
	EarlierTotal int64
	LaterTotal   int64
	Percent      float64
	Defined      bool
}

// NewGrowthRate computes (later - earlier) / earlier * 100 rounded to two decimals.
func NewGrowthRate(subject string, earlier, later Period, earlierTotal, laterTotal int64) GrowthRate {
	g := GrowthRate{
		Subject:      subject,
		Earlier:      earlier,
		Later:        later,
		EarlierTotal: earlierTotal,
		LaterTotal:   laterTotal,
	}
	if earlierTotal == 0 {
		return g
	}
	pct := float64(laterTotal-earlierTotal) / float64(earlierTotal) * 100
	g.Percent = math.Round(pct*100) / 100
	g.Defined = true
	return g
}

func (g GrowthRate) String() string {
	if !g.Defined {
		return "undefined"
	}
	return fmt.Sprintf("%.2f%%", g.Percent)
}
