package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"printhub/console/internal/config"
	"printhub/console/internal/models"
	"printhub/console/internal/security"
)

// Credentials are what a successful login hands to the session.
type Credentials struct {
	Token string
	Role  models.UserRole
}

// Manager is the only writer of session credentials. Views read the session
// through From and never mutate the token or role themselves.
type Manager struct {
	store Store
	cfg   config.SessionConfig
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	onEnd []func(models.Owner)
}

func NewManager(store Store, cfg config.SessionConfig, log zerolog.Logger) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "printhub_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 8 * time.Hour
	}
	return &Manager{
		store: store,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// OnEnd registers a hook run when a session signs out.
func (m *Manager) OnEnd(fn func(models.Owner)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = append(m.onEnd, fn)
}

// Load returns the session referenced by the request cookie, or a fresh
// anonymous one. Fresh sessions are persisted on their first write.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.fresh(), nil
	}

	id, ok := security.VerifyValue(m.cfg.Secret, cookie.Value)
	if !ok {
		m.log.Debug().Msg("session cookie signature mismatch")
		return m.fresh(), nil
	}

	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return m.fresh(), nil
		}
		return nil, err
	}
	return s, nil
}

func (m *Manager) fresh() *Session {
	return newSession(ksuid.New().String(), m.now())
}

// SignIn stores the login result. The session id is rotated so a cookie
// issued before login cannot ride the authenticated session.
func (m *Manager) SignIn(ctx context.Context, w http.ResponseWriter, s *Session, username string, creds Credentials) error {
	if creds.Token == "" {
		return fmt.Errorf("sign in: empty token")
	}

	previous := s.ID
	s.ID = ksuid.New().String()
	s.Token = creds.Token
	s.Role = creds.Role
	s.Username = username
	s.TokenExpiresAt = nil

	if claims, err := security.ReadTokenClaims(creds.Token); err == nil {
		if claims.Subject != "" {
			s.Username = claims.Subject
		}
		if s.Role == "" && models.UserRole(claims.Role).Valid() {
			s.Role = models.UserRole(claims.Role)
		}
		s.TokenExpiresAt = claims.ExpiresAtTime()
	}

	if err := m.store.Delete(ctx, previous); err != nil {
		m.log.Warn().Err(err).Msg("drop pre-login session failed")
	}
	return m.save(ctx, w, s)
}

// SignOut clears token and role, removes the stored record and expires the cookie.
func (m *Manager) SignOut(ctx context.Context, w http.ResponseWriter, s *Session) error {
	owner := s.Owner()

	s.Token = ""
	s.Role = ""
	s.Username = ""
	s.TokenExpiresAt = nil
	s.Flash = nil

	if err := m.store.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	m.mu.Lock()
	hooks := append([]func(models.Owner){}, m.onEnd...)
	m.mu.Unlock()
	for _, fn := range hooks {
		fn(owner)
	}
	return nil
}

func (m *Manager) SetPreferences(ctx context.Context, w http.ResponseWriter, s *Session, darkMode, sidebarOpen bool) error {
	s.DarkMode = darkMode
	s.SidebarOpen = sidebarOpen
	return m.save(ctx, w, s)
}

func (m *Manager) SetFlash(ctx context.Context, w http.ResponseWriter, s *Session, kind FlashKind, message string) error {
	s.Flash = &Flash{Kind: kind, Message: message}
	return m.save(ctx, w, s)
}

// PopFlash returns and clears the pending flash message.
func (m *Manager) PopFlash(ctx context.Context, w http.ResponseWriter, s *Session) *Flash {
	if s.Flash == nil {
		return nil
	}
	f := s.Flash
	s.Flash = nil
	if err := m.save(ctx, w, s); err != nil {
		m.log.Warn().Err(err).Msg("clear flash failed")
	}
	return f
}

// StoredToken reads the token of a stored session each time it is asked,
// so work scheduled for a session sees a logout or a new login.
type StoredToken struct {
	store Store
	id    string
}

func (m *Manager) StoredToken(sessionID string) StoredToken {
	return StoredToken{store: m.store, id: sessionID}
}

func (t StoredToken) AccessToken() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := t.store.Get(ctx, t.id)
	if err != nil {
		return ""
	}
	return s.Token
}

func (m *Manager) save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if err := m.store.Put(ctx, s, m.cfg.TTL); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    security.SignValue(m.cfg.Secret, s.ID),
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
