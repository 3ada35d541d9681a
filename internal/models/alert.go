package models

import "time"

// Alert is a persisted low-toner notification.
type Alert struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	PrinterID  int       `json:"printer_id"`
	PrinterIP  string    `json:"printer_ip"`
	Label      string    `json:"label"`
	Color      string    `json:"color"`
	Level      int       `json:"level"`
	Message    string    `json:"message"`
	DetectedAt time.Time `json:"detected_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewAlert(username string, n Notification) Alert {
	return Alert{
		Username:   username,
		PrinterID:  n.PrinterID,
		PrinterIP:  n.PrinterIP,
		Label:      n.Label,
		Color:      n.Color,
		Level:      n.Level,
		Message:    n.Message(),
		DetectedAt: n.DetectedAt,
	}
}
