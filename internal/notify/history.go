package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"printhub/console/internal/models"
)

// History stores and lists past alerts.
type History interface {
	Insert(ctx context.Context, alert models.Alert) (models.Alert, error)
	ListByUser(ctx context.Context, username string, limit int) ([]models.Alert, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type MemoryHistory struct {
	mu     sync.Mutex
	nextID int64
	alerts []models.Alert
	now    func() time.Time
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{now: time.Now}
}

func (m *MemoryHistory) Insert(_ context.Context, alert models.Alert) (models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	alert.ID = m.nextID
	alert.CreatedAt = m.now()
	m.alerts = append(m.alerts, alert)
	return alert, nil
}

func (m *MemoryHistory) ListByUser(_ context.Context, username string, limit int) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Alert
	for _, a := range m.alerts {
		if a.Username == username {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryHistory) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.alerts[:0]
	var removed int64
	for _, a := range m.alerts {
		if a.DetectedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	m.alerts = kept
	return removed, nil
}
