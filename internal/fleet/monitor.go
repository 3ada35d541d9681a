package fleet

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"printhub/console/internal/models"
)

var ErrUnknownPrinter = errors.New("printer not in collection")

// Publisher receives the low-toner notifications of a refresh pass.
type Publisher interface {
	Publish(ctx context.Context, owner models.Owner, notifications []models.Notification)
}

// Archiver stores a copy of a merged fleet snapshot.
type Archiver interface {
	Archive(ctx context.Context, owner models.Owner, entries []Entry, at time.Time) error
}

// Monitor runs refresh cycles against the per-session collections.
type Monitor struct {
	service   *Service
	registry  *Registry
	publisher Publisher
	archiver  Archiver
	threshold int
	log       zerolog.Logger
	now       func() time.Time
}

type MonitorOptions struct {
	Service   *Service
	Registry  *Registry
	Publisher Publisher
	Archiver  Archiver
	// Threshold falls back to DefaultLowTonerThreshold when not positive.
	Threshold int
	Log       zerolog.Logger
}

func NewMonitor(opts MonitorOptions) *Monitor {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultLowTonerThreshold
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Monitor{
		service:   opts.Service,
		registry:  registry,
		publisher: opts.Publisher,
		archiver:  opts.Archiver,
		threshold: threshold,
		log:       opts.Log,
		now:       time.Now,
	}
}

func (m *Monitor) Threshold() int { return m.threshold }

func (m *Monitor) Collection(owner models.Owner) *Collection {
	return m.registry.For(owner.SessionID)
}

// Forget drops the held collection. The next Loaded call re-fetches.
func (m *Monitor) Forget(owner models.Owner) {
	m.registry.Drop(owner.SessionID)
}

// Cycle runs the full listing + status pass, stores the merged result and
// emits low-toner notifications. A listing failure is logged and leaves the
// collection empty; the next cycle is the only recovery.
func (m *Monitor) Cycle(ctx context.Context, owner models.Owner, api PrinterAPI) ([]Entry, error) {
	coll := m.registry.For(owner.SessionID)

	entries, err := m.service.Refresh(ctx, api)
	now := m.now()
	if err != nil {
		m.log.Error().Err(err).Str("user", owner.Username).Msg("fleet refresh failed")
		coll.Fail(err, now)
		return nil, err
	}
	coll.Replace(entries, now)

	if notifications := LowToner(entries, m.threshold, now); len(notifications) > 0 && m.publisher != nil {
		m.publisher.Publish(ctx, owner, notifications)
	}

	if m.archiver != nil {
		if err := m.archiver.Archive(ctx, owner, entries, now); err != nil {
			m.log.Warn().Err(err).Str("user", owner.Username).Msg("archive fleet snapshot failed")
		}
	}

	m.log.Debug().
		Str("user", owner.Username).
		Int("printers", len(entries)).
		Msg("fleet refreshed")
	return entries, nil
}

// RefreshPrinter re-fetches one printer and replaces only its entry.
func (m *Monitor) RefreshPrinter(ctx context.Context, owner models.Owner, api PrinterAPI, id int) (Entry, error) {
	coll := m.registry.For(owner.SessionID)
	current, ok := coll.Get(id)
	if !ok {
		return Entry{}, ErrUnknownPrinter
	}

	entry := m.service.RefreshOne(ctx, api, current.Printer)
	coll.Upsert(entry)
	return entry, nil
}

// Loaded returns the held collection, running a cycle first when the session
// has none yet.
func (m *Monitor) Loaded(ctx context.Context, owner models.Owner, api PrinterAPI) ([]Entry, error) {
	coll := m.registry.For(owner.SessionID)
	if loaded, _, err := coll.State(); loaded {
		return coll.Snapshot(), err
	}
	return m.Cycle(ctx, owner, api)
}
