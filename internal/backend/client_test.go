package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printhub/console/internal/config"
	"printhub/console/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func TestLoginSendsForm(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "secret1", r.PostForm.Get("password"))

		_, _ = io.WriteString(w, `{"access_token":"tok-1","token_type":"bearer","role":"admin"}`)
	}))

	res, err := client.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.AccessToken)
	assert.Equal(t, models.UserRoleAdmin, res.Role)
}

func TestLoginMissingTokenIsSchemaError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"token_type":"bearer"}`)
	}))

	_, err := client.Login(context.Background(), "alice", "secret1")
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "/login", schemaErr.Path)
}

func TestRegisterSendsJSON(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"username": "bob", "password": "secret1"}, body)
		_, _ = io.WriteString(w, `{"detail":"User registered","username":"bob"}`)
	}))

	res, err := client.Register(context.Background(), "bob", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bob", res.Username)
}

func TestCallerAttachesBearerToken(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		assert.Equal(t, "/printers/", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("skip"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"printers":[{"id":1,"ip":"10.0.0.5","connection_mode":"web"}]}`)
	}))

	token := "first"
	caller := client.With(tokenFunc(func() string { return token }))

	printers, err := caller.ListPrinters(context.Background(), -1, 0)
	require.NoError(t, err)
	require.Len(t, printers, 1)
	assert.Equal(t, "10.0.0.5", printers[0].IP)

	token = "second"
	_, err = caller.ListPrinters(context.Background(), DefaultSkip, DefaultLimit)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

type tokenFunc func() string

func (f tokenFunc) AccessToken() string { return f() }

func TestListPrintersRejectsBadShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing printers key", body: `{"items":[]}`},
		{name: "missing ip", body: `{"printers":[{"id":1}]}`},
		{name: "unknown connection mode", body: `{"printers":[{"id":1,"ip":"10.0.0.5","connection_mode":"ipp"}]}`},
		{name: "not json", body: `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			_, err := client.With(StaticToken("t")).ListPrinters(context.Background(), 0, 100)
			var schemaErr *SchemaError
			assert.ErrorAs(t, err, &schemaErr)
		})
	}
}

func TestListPrintersIgnoresListingTelemetry(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"printers":[
			{"id":1,"ip":"10.0.0.5","toner_levels":{"cyan":40}},
			{"id":2,"ip":"10.0.0.6","toner_levels":{"black":-2},"errors":["unknown"]}
		]}`)
	}))

	printers, err := client.With(StaticToken("t")).ListPrinters(context.Background(), 0, 100)
	require.NoError(t, err)
	require.Len(t, printers, 2)
	assert.Equal(t, 1, printers[0].ID)
	assert.Equal(t, 2, printers[1].ID)
	assert.Nil(t, printers[1].TonerLevels)
	assert.Nil(t, printers[1].Errors)
}

func TestPrinterStatusRejectsOutOfRangeToner(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"toner_levels":{"black":-2},"errors":[]}`)
	}))

	_, err := client.With(StaticToken("t")).PrinterStatus(context.Background(), 2)
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestPrinterStatusKeepsPresenceOfEchoedFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/printers/7/status", r.URL.Path)
		_, _ = io.WriteString(w, `{"toner_levels":{"black":80,"cyan":15},"errors":["Paper Jam"],"model":"HP M404"}`)
	}))

	st, err := client.With(StaticToken("t")).PrinterStatus(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"black": 80, "cyan": 15}, st.TonerLevels)
	assert.Equal(t, []string{"Paper Jam"}, st.Errors)
	require.NotNil(t, st.Model)
	assert.Equal(t, "HP M404", *st.Model)
	assert.Nil(t, st.IP)
}

func TestAddPrinterDefaults(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/printers/add", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{
			"ip":              "10.0.0.9",
			"connection_mode": "web",
			"snmp_community":  "public",
		}, body)
		_, _ = io.WriteString(w, `{"id":3,"ip":"10.0.0.9","connection_mode":"web"}`)
	}))

	p, err := client.With(StaticToken("t")).AddPrinter(context.Background(), AddPrinterInput{IP: "10.0.0.9"})
	require.NoError(t, err)
	assert.Equal(t, 3, p.ID)
}

func TestAddPrinterRequiresIP(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := client.With(StaticToken("t")).AddPrinter(context.Background(), AddPrinterInput{})
	assert.ErrorIs(t, err, ErrIPRequired)
}

func TestAddPrinterResponseWithoutIPIsSchemaError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":3,"connection_mode":"web"}`)
	}))
	_, err := client.With(StaticToken("t")).AddPrinter(context.Background(), AddPrinterInput{IP: "10.0.0.9"})
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestScan(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "192.168.1.0/24", body["subnet"])
		_, _ = io.WriteString(w, `{"discovered":4,"printers":[]}`)
	}))

	n, err := client.With(StaticToken("t")).Scan(context.Background(), "192.168.1.0/24")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestUsersEndpoints(t *testing.T) {
	var (
		mu      sync.Mutex
		deleted string
	)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/users":
			_, _ = io.WriteString(w, `[{"id":1,"username":"root","role":"admin"},{"id":2,"username":"kim","role":"staff"}]`)
		case r.Method == http.MethodPost && r.URL.Path == "/users":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "staff", body["role"])
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodDelete:
			mu.Lock()
			deleted = r.URL.Path
			mu.Unlock()
			_, _ = io.WriteString(w, `{"detail":"User deleted"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	caller := client.With(StaticToken("t"))

	users, err := caller.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.UserRoleAdmin, users[0].Role)

	require.NoError(t, caller.AddUser(context.Background(), AddUserInput{Username: "lee", Password: "secret1"}))
	require.NoError(t, caller.DeleteUser(context.Background(), 2))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/users/2", deleted)
}

func TestWrappedUserList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"users":[{"id":5,"username":"ana","role":"staff"}]}`)
	}))
	users, err := client.With(StaticToken("t")).ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ana", users[0].Username)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		fallback string
		want     string
	}{
		{name: "string detail", status: 400, body: `{"detail":"Incorrect username or password"}`, want: "Incorrect username or password"},
		{name: "field list", status: 422, body: `{"detail":[{"loc":["body","ip"],"msg":"field required"},{"msg":"bad mode"}]}`, want: "field required, bad mode"},
		{name: "no detail", status: 500, body: `oops`, want: "Error: 500"},
		{name: "no detail with fallback", status: 500, body: `{}`, fallback: "Add failed", want: "Add failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			err := client.With(StaticToken("t")).DeletePrinter(context.Background(), 1)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, UserMessage(err, tt.fallback))
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(config.BackendConfig{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "alice", "secret1")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "No server response. Check backend.", UserMessage(err, "Add failed"))
}

func TestUserMessageFallbacks(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "x"))
	assert.Equal(t, "Scan failed", UserMessage(errors.New("boom"), "Scan failed"))
	assert.Equal(t, "Unknown error", UserMessage(errors.New("boom"), ""))
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient(config.BackendConfig{BaseURL: "printers.local"})
	assert.Error(t, err)
}
