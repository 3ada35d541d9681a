// Package fleet lists printers, fetches their live status and merges the two
// into the collection the console renders.
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"printhub/console/internal/backend"
	"printhub/console/internal/models"
)

// PrinterAPI is the slice of the backend the refresh flow needs.
type PrinterAPI interface {
	ListPrinters(ctx context.Context, skip, limit int) ([]models.Printer, error)
	PrinterStatus(ctx context.Context, id int) (backend.PrinterStatus, error)
}

// StatusResult records how the status fetch of one printer went.
type StatusResult struct {
	FetchedAt time.Time
	Err       error
}

func (r StatusResult) OK() bool { return r.Err == nil }

func (r StatusResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	return backend.UserMessage(r.Err, "Status unavailable")
}

// Entry is one displayed printer plus the outcome of its status fetch.
type Entry struct {
	models.Printer
	Status StatusResult
}

type Service struct {
	limit       int
	concurrency int
	log         zerolog.Logger
	now         func() time.Time
}

func NewService(limit, concurrency int, log zerolog.Logger) *Service {
	if limit <= 0 {
		limit = backend.DefaultLimit
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Service{
		limit:       limit,
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
	}
}

// Refresh lists the fleet and fetches every printer's status concurrently.
// A failed status fetch never fails the pass: the entry keeps its base fields
// with empty telemetry and carries the failure in Status.
func (s *Service) Refresh(ctx context.Context, api PrinterAPI) ([]Entry, error) {
	printers, err := api.ListPrinters(ctx, backend.DefaultSkip, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list printers: %w", err)
	}

	entries := make([]Entry, len(printers))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, p := range printers {
		i, p := i, p
		g.Go(func() error {
			entries[i] = s.fetch(ctx, api, p)
			return nil
		})
	}
	_ = g.Wait()

	return entries, nil
}

// RefreshOne re-fetches the status of a single printer.
func (s *Service) RefreshOne(ctx context.Context, api PrinterAPI, base models.Printer) Entry {
	return s.fetch(ctx, api, base)
}

func (s *Service) fetch(ctx context.Context, api PrinterAPI, p models.Printer) Entry {
	base := p.WithoutTelemetry()
	st, err := api.PrinterStatus(ctx, p.ID)
	if err != nil {
		s.log.Debug().Err(err).Int("printer_id", p.ID).Str("ip", p.IP).Msg("printer status unavailable")
		return Entry{Printer: base, Status: StatusResult{FetchedAt: s.now(), Err: err}}
	}
	return Entry{Printer: Merge(base, st), Status: StatusResult{FetchedAt: s.now()}}
}

// Merge overwrites base with every field present in the status body.
func Merge(base models.Printer, st backend.PrinterStatus) models.Printer {
	merged := base
	if st.TonerLevels != nil {
		merged.TonerLevels = make(map[string]int, len(st.TonerLevels))
		for color, level := range st.TonerLevels {
			merged.TonerLevels[color] = level
		}
	}
	if st.Errors != nil {
		merged.Errors = append([]string(nil), st.Errors...)
	}
	if st.IP != nil {
		merged.IP = *st.IP
	}
	if st.Model != nil {
		merged.Model = *st.Model
	}
	if st.ConnectionMode != nil {
		merged.ConnectionMode = *st.ConnectionMode
	}
	if st.Department != nil {
		merged.Department = *st.Department
	}
	if st.Location != nil {
		merged.Location = *st.Location
	}
	return merged
}
