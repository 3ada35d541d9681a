package models

import "fmt"

type ConnectionMode string

const (
	ConnectionModeWeb  ConnectionMode = "web"
	ConnectionModeSNMP ConnectionMode = "snmp"
)

func (m ConnectionMode) Valid() bool {
	return m == ConnectionModeWeb || m == ConnectionModeSNMP
}

const DefaultSNMPCommunity = "public"

// Printer is the display record: base listing fields plus the telemetry of
// the last successful status fetch.
type Printer struct {
	ID             int            `json:"id" validate:"required,gt=0"`
	IP             string         `json:"ip" validate:"required"`
	Model          string         `json:"model,omitempty"`
	ConnectionMode ConnectionMode `json:"connection_mode,omitempty" validate:"omitempty,oneof=web snmp"`
	TonerLevels    map[string]int `json:"toner_levels,omitempty" validate:"omitempty,dive,gte=0,lte=100"`
	Errors         []string       `json:"errors,omitempty"`
	Department     string         `json:"department,omitempty"`
	Location       string         `json:"location,omitempty"`
}

// DisplayName falls back to "Printer" for devices the backend could not identify.
func (p Printer) DisplayName() string {
	if p.Model != "" {
		return p.Model
	}
	return "Printer"
}

// Label identifies the printer the way alerts do: model, IP, department and location.
func (p Printer) Label() string {
	return fmt.Sprintf("%s (%s, %s, %s)", p.DisplayName(), p.IP, orNA(p.Department), orNA(p.Location))
}

// WithoutTelemetry returns the base fields only.
func (p Printer) WithoutTelemetry() Printer {
	p.TonerLevels = nil
	p.Errors = nil
	return p
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
