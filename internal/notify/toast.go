package notify

import (
	"time"

	"printhub/console/internal/models"
)

const (
	TypeLowToner  = "low_toner"
	TypeRefreshed = "refreshed"
)

// Toast is what the dashboard socket and the recent alerts feed carry.
type Toast struct {
	Type       string    `json:"type"`
	PrinterID  int       `json:"printer_id"`
	Color      string    `json:"color"`
	Level      int       `json:"level"`
	Message    string    `json:"message"`
	DetectedAt time.Time `json:"detected_at"`
}

func ToastFor(n models.Notification) Toast {
	return Toast{
		Type:       TypeLowToner,
		PrinterID:  n.PrinterID,
		Color:      n.Color,
		Level:      n.Level,
		Message:    n.Message(),
		DetectedAt: n.DetectedAt,
	}
}

// Refreshed tells an open dashboard that a background pass finished.
func Refreshed(at time.Time) Toast {
	return Toast{
		Type:       TypeRefreshed,
		Message:    "Fleet refreshed at " + at.Format("15:04:05") + ", reload to update",
		DetectedAt: at,
	}
}
