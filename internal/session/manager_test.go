package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printhub/console/internal/config"
	"printhub/console/internal/models"
)

func newTestManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	m := NewManager(store, config.SessionConfig{
		CookieName: "ph",
		Secret:     "test-secret",
		TTL:        time.Hour,
	}, zerolog.Nop())
	return m, store
}

// requestWith replays the cookies set on rec into a new request.
func requestWith(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestLoadWithoutCookieIsAnonymous(t *testing.T) {
	m, _ := newTestManager()

	s, err := m.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
	assert.NotEmpty(t, s.ID)
	assert.True(t, s.DarkMode)
	assert.True(t, s.SidebarOpen)
}

func TestSignInPersistsTokenAndRole(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	s, err := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	anonymousID := s.ID

	rec := httptest.NewRecorder()
	require.NoError(t, m.SignIn(ctx, rec, s, "alice", Credentials{Token: "opaque", Role: models.UserRoleAdmin}))
	assert.NotEqual(t, anonymousID, s.ID, "session id must rotate on sign in")

	loaded, err := m.Load(ctx, requestWith(rec))
	require.NoError(t, err)
	assert.True(t, loaded.Authenticated())
	assert.True(t, loaded.IsAdmin())
	assert.Equal(t, "opaque", loaded.AccessToken())
	assert.Equal(t, "alice", loaded.Username)
}

func TestSignInReadsJWTClaims(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "bob", "exp": exp.Unix(), "type": "access",
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	s, _ := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, m.SignIn(ctx, httptest.NewRecorder(), s, "typed-name", Credentials{Token: token}))

	assert.Equal(t, "bob", s.Username)
	assert.Empty(t, s.Role)
	require.NotNil(t, s.TokenExpiresAt)
	assert.True(t, exp.Equal(*s.TokenExpiresAt))
}

func TestSignOutClearsSession(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	var ended []models.Owner
	m.OnEnd(func(o models.Owner) { ended = append(ended, o) })

	s, _ := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	require.NoError(t, m.SignIn(ctx, rec, s, "alice", Credentials{Token: "opaque", Role: models.UserRoleStaff}))
	signedInID := s.ID

	out := httptest.NewRecorder()
	require.NoError(t, m.SignOut(ctx, out, s))

	assert.Empty(t, s.Token)
	assert.Empty(t, s.Role)
	_, err := store.Get(ctx, signedInID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.Len(t, ended, 1)
	assert.Equal(t, signedInID, ended[0].SessionID)
	assert.Equal(t, "alice", ended[0].Username)

	// the old cookie no longer resolves to an authenticated session
	next, err := m.Load(ctx, requestWith(rec))
	require.NoError(t, err)
	assert.False(t, next.Authenticated())

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestTamperedCookieIsIgnored(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	s, _ := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, m.SignIn(ctx, httptest.NewRecorder(), s, "alice", Credentials{Token: "opaque"}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "ph", Value: s.ID + ".forged"})

	loaded, err := m.Load(ctx, req)
	require.NoError(t, err)
	assert.False(t, loaded.Authenticated())
	assert.NotEqual(t, s.ID, loaded.ID)
}

func TestFlashIsOneShot(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	s, _ := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetFlash(ctx, rec, s, FlashSuccess, "Discovered 3 printers"))

	loaded, _ := m.Load(ctx, requestWith(rec))
	f := m.PopFlash(ctx, httptest.NewRecorder(), loaded)
	require.NotNil(t, f)
	assert.Equal(t, "Discovered 3 printers", f.Message)

	again, _ := m.Load(ctx, requestWith(rec))
	assert.Nil(t, m.PopFlash(ctx, httptest.NewRecorder(), again))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(context.Background(), &Session{ID: "a"}, time.Minute))
	_, err := store.Get(context.Background(), "a")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotFound)
}
