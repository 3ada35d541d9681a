// Package session holds the per-browser console state: the backend access
// token, the caller's role and UI preferences.
package session

import (
	"time"

	"printhub/console/internal/models"
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

type Session struct {
	ID             string          `json:"id"`
	Token          string          `json:"token,omitempty"`
	Role           models.UserRole `json:"role,omitempty"`
	Username       string          `json:"username,omitempty"`
	TokenExpiresAt *time.Time      `json:"token_expires_at,omitempty"`
	DarkMode       bool            `json:"dark_mode"`
	SidebarOpen    bool            `json:"sidebar_open"`
	Flash          *Flash          `json:"flash,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:          id,
		DarkMode:    true,
		SidebarOpen: true,
		CreatedAt:   now,
	}
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

func (s *Session) IsAdmin() bool {
	return s.Authenticated() && s.Role == models.UserRoleAdmin
}

// AccessToken lets a session act as the backend client's token source.
func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	return s.Token
}

func (s *Session) Owner() models.Owner {
	return models.Owner{SessionID: s.ID, Username: s.Username}
}

func (s *Session) clone() *Session {
	c := *s
	if s.Flash != nil {
		f := *s.Flash
		c.Flash = &f
	}
	if s.TokenExpiresAt != nil {
		t := *s.TokenExpiresAt
		c.TokenExpiresAt = &t
	}
	return &c
}
