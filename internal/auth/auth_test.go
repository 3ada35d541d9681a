package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printhub/console/internal/backend"
	"printhub/console/internal/config"
	"printhub/console/internal/models"
	"printhub/console/internal/session"
)

type fakeAuthenticator struct {
	loginResult backend.LoginResult
	loginErr    error
	registerErr error
	calls       int
}

func (f *fakeAuthenticator) Login(ctx context.Context, username, password string) (backend.LoginResult, error) {
	f.calls++
	return f.loginResult, f.loginErr
}

func (f *fakeAuthenticator) Register(ctx context.Context, username, password string) (backend.RegisterResult, error) {
	f.calls++
	return backend.RegisterResult{Username: username}, f.registerErr
}

func newFlow(b Authenticator) (*Flow, *session.Manager) {
	m := session.NewManager(session.NewMemoryStore(), config.SessionConfig{Secret: "s", TTL: time.Hour}, zerolog.Nop())
	return NewFlow(b, m, zerolog.Nop()), m
}

func TestValidate(t *testing.T) {
	tests := []struct {
		username string
		password string
		ok       bool
	}{
		{"abc", "123456", true},
		{"ab", "123456", false},
		{"abc", "12345", false},
		{"  ab  ", "123456", false},
		{"jön", "pässwö", true},
	}
	for _, tt := range tests {
		err := Validate(tt.username, tt.password)
		if tt.ok {
			assert.NoError(t, err, tt.username)
		} else {
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr, tt.username)
		}
	}
}

func TestLoginValidationBlocksSubmission(t *testing.T) {
	fake := &fakeAuthenticator{}
	flow, m := newFlow(fake)
	s, _ := m.Load(context.Background(), httptest.NewRequest("GET", "/", nil))

	res := flow.Login(context.Background(), httptest.NewRecorder(), s, "al", "secret1")
	assert.Equal(t, StateError, res.State)
	assert.Equal(t, "Username at least 3 chars, password at least 6", res.Message)
	assert.Zero(t, fake.calls)
	assert.False(t, s.Authenticated())
}

func TestLoginStoresTokenAndRole(t *testing.T) {
	fake := &fakeAuthenticator{loginResult: backend.LoginResult{AccessToken: "tok", Role: models.UserRoleAdmin}}
	flow, m := newFlow(fake)
	s, _ := m.Load(context.Background(), httptest.NewRequest("GET", "/", nil))

	res := flow.Login(context.Background(), httptest.NewRecorder(), s, "alice", "secret1")
	require.Equal(t, StateAuthenticated, res.State)
	assert.Equal(t, "tok", s.Token)
	assert.True(t, s.IsAdmin())
}

func TestLoginSurfacesServerDetail(t *testing.T) {
	fake := &fakeAuthenticator{loginErr: &backend.APIError{Status: 400, Detail: "Incorrect username or password"}}
	flow, m := newFlow(fake)
	s, _ := m.Load(context.Background(), httptest.NewRequest("GET", "/", nil))

	res := flow.Login(context.Background(), httptest.NewRecorder(), s, "alice", "secret1")
	assert.Equal(t, StateError, res.State)
	assert.Equal(t, "Incorrect username or password", res.Message)
	assert.False(t, s.Authenticated())
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	fake := &fakeAuthenticator{}
	flow, _ := newFlow(fake)

	res := flow.Register(context.Background(), "carol", "secret1")
	assert.Equal(t, StateAnonymous, res.State)
	assert.Equal(t, "Registered! Now login.", res.Message)
}

func TestRegisterFieldErrors(t *testing.T) {
	fake := &fakeAuthenticator{registerErr: &backend.APIError{Status: 422, Fields: []backend.FieldError{{Msg: "too short"}, {Msg: "taken"}}}}
	flow, _ := newFlow(fake)

	res := flow.Register(context.Background(), "carol", "secret1")
	assert.Equal(t, StateError, res.State)
	assert.Equal(t, "too short, taken", res.Message)
}
