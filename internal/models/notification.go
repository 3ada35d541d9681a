package models

import (
	"fmt"
	"time"
)

const NotificationTimeLayout = "2006-01-02 15:04:05"

// Notification is a low-toner alert for one (printer, color) pair.
type Notification struct {
	PrinterID  int       `json:"printer_id"`
	PrinterIP  string    `json:"printer_ip"`
	Label      string    `json:"label"`
	Color      string    `json:"color"`
	Level      int       `json:"level"`
	DetectedAt time.Time `json:"detected_at"`
}

func (n Notification) Message() string {
	return fmt.Sprintf("Low toner in %s: %s at %d%% - %s",
		n.Label, n.Color, n.Level, n.DetectedAt.Format(NotificationTimeLayout))
}
