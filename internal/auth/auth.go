// Package auth implements the login and registration flow.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"printhub/console/internal/backend"
	"printhub/console/internal/session"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

type State string

const (
	StateAnonymous     State = "anonymous"
	StateSubmitting    State = "submitting"
	StateAuthenticated State = "authenticated"
	StateError         State = "error"
)

// ValidationError is caught before anything is sent to the backend.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string       { return e.Message }
func (e *ValidationError) UserMessage() string { return e.Message }

func Validate(username, password string) error {
	if utf8.RuneCountInString(strings.TrimSpace(username)) < MinUsernameLength ||
		utf8.RuneCountInString(password) < MinPasswordLength {
		return &ValidationError{Message: fmt.Sprintf(
			"Username at least %d chars, password at least %d", MinUsernameLength, MinPasswordLength)}
	}
	return nil
}

// Authenticator is the anonymous part of the backend.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (backend.LoginResult, error)
	Register(ctx context.Context, username, password string) (backend.RegisterResult, error)
}

// Result is what the form renders after a submission.
type Result struct {
	State   State
	Message string
}

type Flow struct {
	backend  Authenticator
	sessions *session.Manager
	log      zerolog.Logger
}

func NewFlow(b Authenticator, sessions *session.Manager, log zerolog.Logger) *Flow {
	return &Flow{backend: b, sessions: sessions, log: log}
}

// Login validates, authenticates against the backend and stores the token and
// role in the session.
func (f *Flow) Login(ctx context.Context, w http.ResponseWriter, s *session.Session, username, password string) Result {
	username = strings.TrimSpace(username)
	if err := Validate(username, password); err != nil {
		return Result{State: StateError, Message: backend.UserMessage(err, "")}
	}

	res, err := f.backend.Login(ctx, username, password)
	if err != nil {
		f.log.Info().Err(err).Str("username", username).Msg("login rejected")
		return Result{State: StateError, Message: backend.UserMessage(err, "")}
	}

	role := res.Role
	if !role.Valid() {
		role = ""
	}
	if err := f.sessions.SignIn(ctx, w, s, username, session.Credentials{Token: res.AccessToken, Role: role}); err != nil {
		f.log.Error().Err(err).Msg("store session failed")
		return Result{State: StateError, Message: "Could not start session"}
	}

	f.log.Info().Str("username", s.Username).Str("role", string(s.Role)).Msg("user signed in")
	return Result{State: StateAuthenticated}
}

// Register creates the account and returns to the login form; it never signs in.
func (f *Flow) Register(ctx context.Context, username, password string) Result {
	username = strings.TrimSpace(username)
	if err := Validate(username, password); err != nil {
		return Result{State: StateError, Message: backend.UserMessage(err, "")}
	}

	if _, err := f.backend.Register(ctx, username, password); err != nil {
		f.log.Info().Err(err).Str("username", username).Msg("registration rejected")
		return Result{State: StateError, Message: backend.UserMessage(err, "")}
	}
	return Result{State: StateAnonymous, Message: "Registered! Now login."}
}
