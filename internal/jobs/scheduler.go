package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type mount struct {
	id    cron.EntryID
	every time.Duration
	refs  int
}

// Scheduler runs the periodic per-session refresh jobs plus any fixed
// maintenance jobs. Session jobs are keyed; mounting the same key again only
// adds a reference.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu     sync.Mutex
	mounts map[string]*mount
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		log:    log,
		mounts: make(map[string]*mount),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() context.CancelFunc {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		<-s.cron.Stop().Done()
		cancel()
	}()
	<-ctx.Done()
	return cancel
}

// Schedule registers a fixed job using a six-field cron spec.
func (s *Scheduler) Schedule(spec, name string, fn func()) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Debug().Str("job", name).Msg("running scheduled job")
		fn()
	})
	return err
}

// Mount starts fn every interval for key. A key that is already mounted keeps
// its schedule and gains a reference.
func (s *Scheduler) Mount(key string, every time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.mounts[key]; ok {
		m.refs++
		return
	}

	id := s.cron.Schedule(cron.Every(every), cron.FuncJob(fn))
	s.mounts[key] = &mount{id: id, every: every, refs: 1}
	s.log.Debug().Str("key", key).Dur("every", every).Msg("refresh mounted")
}

// Release drops one reference and cancels the job when none remain.
func (s *Scheduler) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mounts[key]
	if !ok {
		return
	}
	m.refs--
	if m.refs > 0 {
		return
	}
	s.cron.Remove(m.id)
	delete(s.mounts, key)
	s.log.Debug().Str("key", key).Msg("refresh unmounted")
}

// Unmount cancels the job for key regardless of outstanding references.
func (s *Scheduler) Unmount(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.mounts[key]; ok {
		s.cron.Remove(m.id)
		delete(s.mounts, key)
		s.log.Debug().Str("key", key).Msg("refresh unmounted")
	}
}

func (s *Scheduler) Mounted(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.mounts[key]
	return ok
}
