package backend

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"printhub/console/internal/models"
)

const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// Caller issues authenticated requests with the bearer token of its source.
type Caller struct {
	client *Client
	tokens TokenSource
}

func (c *Caller) send(ctx context.Context, req request, out any) error {
	if c.tokens != nil {
		req.token = c.tokens.AccessToken()
	}
	return c.client.do(ctx, req, out)
}

type printerList struct {
	Printers []listedPrinter `json:"printers" validate:"required,dive"`
}

// listedPrinter holds the base fields of a listing record. Telemetry in the
// listing is ignored; it comes from the status endpoint.
type listedPrinter struct {
	ID             int                   `json:"id" validate:"required,gt=0"`
	IP             string                `json:"ip" validate:"required"`
	Model          string                `json:"model"`
	ConnectionMode models.ConnectionMode `json:"connection_mode" validate:"omitempty,oneof=web snmp"`
	Department     string                `json:"department"`
	Location       string                `json:"location"`
}

func (p listedPrinter) printer() models.Printer {
	return models.Printer{
		ID:             p.ID,
		IP:             p.IP,
		Model:          p.Model,
		ConnectionMode: p.ConnectionMode,
		Department:     p.Department,
		Location:       p.Location,
	}
}

// PrinterStatus is the body of the status endpoint. Base fields are pointers
// because the backend may or may not echo them.
type PrinterStatus struct {
	TonerLevels    map[string]int         `json:"toner_levels" validate:"omitempty,dive,gte=0,lte=100"`
	Errors         []string               `json:"errors"`
	IP             *string                `json:"ip,omitempty"`
	Model          *string                `json:"model,omitempty"`
	ConnectionMode *models.ConnectionMode `json:"connection_mode,omitempty" validate:"omitempty,oneof=web snmp"`
	Department     *string                `json:"department,omitempty"`
	Location       *string                `json:"location,omitempty"`
}

type AddPrinterInput struct {
	IP             string                `json:"ip"`
	Model          string                `json:"model,omitempty"`
	ConnectionMode models.ConnectionMode `json:"connection_mode"`
	SNMPCommunity  string                `json:"snmp_community"`
}

// WithDefaults fills the optional fields the way the add form does.
func (in AddPrinterInput) WithDefaults() AddPrinterInput {
	if in.ConnectionMode == "" {
		in.ConnectionMode = models.ConnectionModeWeb
	}
	if in.SNMPCommunity == "" {
		in.SNMPCommunity = models.DefaultSNMPCommunity
	}
	return in
}

var ErrIPRequired = errors.New("ip is required")

type scanRequest struct {
	Subnet string `json:"subnet"`
}

type scanResult struct {
	Discovered *int `json:"discovered" validate:"required,gte=0"`
}

func (c *Caller) ListPrinters(ctx context.Context, skip, limit int) ([]models.Printer, error) {
	if skip < 0 {
		skip = DefaultSkip
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var out printerList
	err := c.send(ctx, request{
		method: http.MethodGet,
		path:   "/printers/",
		query: map[string][]string{
			"skip":  {strconv.Itoa(skip)},
			"limit": {strconv.Itoa(limit)},
		},
	}, &out)
	if err != nil {
		return nil, err
	}

	printers := make([]models.Printer, 0, len(out.Printers))
	for _, p := range out.Printers {
		printers = append(printers, p.printer())
	}
	return printers, nil
}

func (c *Caller) PrinterStatus(ctx context.Context, id int) (PrinterStatus, error) {
	var out PrinterStatus
	err := c.send(ctx, request{
		method: http.MethodGet,
		path:   "/printers/" + strconv.Itoa(id) + "/status",
	}, &out)
	return out, err
}

func (c *Caller) AddPrinter(ctx context.Context, in AddPrinterInput) (models.Printer, error) {
	if in.IP == "" {
		return models.Printer{}, ErrIPRequired
	}
	body, err := jsonBody(in.WithDefaults())
	if err != nil {
		return models.Printer{}, err
	}

	var out models.Printer
	err = c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/printers/add",
		body:        body,
		contentType: "application/json",
	}, &out)
	return out, err
}

func (c *Caller) DeletePrinter(ctx context.Context, id int) error {
	return c.send(ctx, request{
		method: http.MethodDelete,
		path:   "/printers/" + strconv.Itoa(id),
	}, nil)
}

// Scan triggers discovery on subnet and returns how many printers were found.
func (c *Caller) Scan(ctx context.Context, subnet string) (int, error) {
	body, err := jsonBody(scanRequest{Subnet: subnet})
	if err != nil {
		return 0, err
	}

	var out scanResult
	if err := c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/printers/scan",
		body:        body,
		contentType: "application/json",
	}, &out); err != nil {
		return 0, err
	}
	return *out.Discovered, nil
}
