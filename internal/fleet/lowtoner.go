package fleet

import (
	"sort"
	"time"

	"printhub/console/internal/models"
)

const DefaultLowTonerThreshold = 20

// LowToner returns one notification per (printer, color) whose level is below
// threshold. Nothing is suppressed between calls: a level that stays low is
// reported again on every pass.
func LowToner(entries []Entry, threshold int, now time.Time) []models.Notification {
	var out []models.Notification
	for _, e := range entries {
		colors := make([]string, 0, len(e.TonerLevels))
		for color := range e.TonerLevels {
			colors = append(colors, color)
		}
		sort.Strings(colors)

		for _, color := range colors {
			level := e.TonerLevels[color]
			if level >= threshold {
				continue
			}
			out = append(out, models.Notification{
				PrinterID:  e.ID,
				PrinterIP:  e.IP,
				Label:      e.Label(),
				Color:      color,
				Level:      level,
				DetectedAt: now,
			})
		}
	}
	return out
}
