package views

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printhub/console/internal/fleet"
	"printhub/console/internal/models"
	"printhub/console/internal/notify"
	"printhub/console/internal/session"
)

func renderPage(t *testing.T, r *Renderer, name string, data Page) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, data).Render(w))
	return w.Body.String()
}

func TestAllPagesParse(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	for _, name := range []string{
		"login", "register", "dashboard", "printers", "printer",
		"add_printer", "printer_added", "settings", "confirm_delete_user", "error",
	} {
		assert.True(t, r.Has(name), name)
	}
}

func TestLoginUsesAuthLayout(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	page := NewPage(nil, "Login", "")
	page.Error = "Username at least 3 chars, password at least 6"
	page.Data = AuthData{Username: "al"}
	body := renderPage(t, r, "login", page)

	assert.Contains(t, body, `action="/login"`)
	assert.Contains(t, body, "Username at least 3 chars, password at least 6")
	assert.NotContains(t, body, `class="sidebar`)
}

func TestPrintersPageShowsFailureReason(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	s := &session.Session{Username: "alice", Role: models.UserRoleStaff, SidebarOpen: true}
	page := NewPage(s, "Printers", "printers")
	page.Data = PrintersData{
		Threshold: 20,
		Subnet:    "192.168.1.0/24",
		Entries: []fleet.Entry{
			{Printer: models.Printer{ID: 1, IP: "10.0.0.5", Model: "HP M404", TonerLevels: map[string]int{"black": 15}}},
			{Printer: models.Printer{ID: 2, IP: "10.0.0.6"}, Status: fleet.StatusResult{Err: errors.New("timeout")}},
		},
	}
	body := renderPage(t, r, "printers", page)

	assert.Contains(t, body, `class="sidebar"`)
	assert.Contains(t, body, "HP M404")
	assert.Contains(t, body, `class="low" style="width: 15%"`)
	assert.Contains(t, body, "Status unavailable")
	assert.Contains(t, body, `href="/printers/2"`)
}

func TestDashboardRendersRecentAlerts(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	page := NewPage(&session.Session{Username: "alice", DarkMode: true}, "Dashboard", "dashboard")
	page.Data = DashboardData{
		Threshold:    20,
		RefreshedAt:  time.Now().Add(-2 * time.Minute),
		RefreshEvery: 5 * time.Minute,
		Summary:      fleet.Summary{Total: 3, LowToner: 1, Colors: []fleet.ColorAverage{{Color: "black", Average: 40, Samples: 3}}},
		Recent:       []notify.Toast{{Message: "Low toner in Printer (10.0.0.5, N/A, N/A): black at 10% - 2024-03-01 09:30:00"}},
	}
	body := renderPage(t, r, "dashboard", page)

	assert.Contains(t, body, `class="dark"`)
	assert.Contains(t, body, "2 minutes ago")
	assert.Contains(t, body, "black at 10%")
	assert.Contains(t, body, "BLACK")
	assert.Contains(t, body, "/ws/notifications")
}

func TestSettingsHidesUsersFromStaff(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	data := SettingsData{Users: []models.User{{ID: 4, Username: "bob", Role: models.UserRoleStaff}}}

	staff := NewPage(&session.Session{Username: "carol", Token: "t", Role: models.UserRoleStaff}, "Settings", "settings")
	staff.Data = data
	assert.NotContains(t, renderPage(t, r, "settings", staff), "Add user")

	admin := NewPage(&session.Session{Username: "alice", Token: "t", Role: models.UserRoleAdmin}, "Settings", "settings")
	admin.Data = data
	body := renderPage(t, r, "settings", admin)
	assert.Contains(t, body, "Add user")
	assert.Contains(t, body, "/settings/users/4/delete")
}

func TestUnknownPageFallsBackToError(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	body := renderPage(t, r, "nope", Page{})
	assert.Contains(t, body, `unknown page &#34;nope&#34;`)
}

func TestTonerHelpers(t *testing.T) {
	assert.Equal(t, 0, tonerWidth(-5))
	assert.Equal(t, 100, tonerWidth(140))
	assert.Equal(t, "low", tonerClass(19, 20))
	assert.Equal(t, "mid", tonerClass(20, 20))
	assert.Equal(t, "ok", tonerClass(80, 20))
	assert.Equal(t, "1 printer", plural(1, "printer"))
	assert.Equal(t, "1,200 printers", plural(1200, "printer"))
	assert.Equal(t, "never", since(time.Time{}))
}
