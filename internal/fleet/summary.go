package fleet

import (
	"sort"

	"printhub/console/internal/models"
)

type ColorAverage struct {
	Color   string
	Average int
	Samples int
}

// Summary feeds the dashboard cards and charts.
type Summary struct {
	Total       int
	Reachable   int
	Unreachable int
	WithErrors  int
	LowToner    int
	ByMode      map[models.ConnectionMode]int
	Colors      []ColorAverage
}

func Summarize(entries []Entry, threshold int) Summary {
	s := Summary{
		Total:  len(entries),
		ByMode: make(map[models.ConnectionMode]int),
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, e := range entries {
		if e.Status.OK() {
			s.Reachable++
		} else {
			s.Unreachable++
		}
		if len(e.Errors) > 0 {
			s.WithErrors++
		}
		if e.ConnectionMode != "" {
			s.ByMode[e.ConnectionMode]++
		}

		low := false
		for color, level := range e.TonerLevels {
			sums[color] += level
			counts[color]++
			if level < threshold {
				low = true
			}
		}
		if low {
			s.LowToner++
		}
	}

	for color, n := range counts {
		s.Colors = append(s.Colors, ColorAverage{Color: color, Average: sums[color] / n, Samples: n})
	}
	sort.Slice(s.Colors, func(i, j int) bool { return s.Colors[i].Color < s.Colors[j].Color })
	return s
}
