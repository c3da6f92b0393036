package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ovalhq/pavilion/internal/app"
	"github.com/ovalhq/pavilion/internal/captures"
	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/store/sqlite"
)

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// newTestService builds a Service on a throwaway sqlite database. Auth is
// disabled, so every request acts as an admin; guard tests flip it on and
// install fakeSessions.
func newTestService(t *testing.T) *app.Service {
	t.Helper()

	dir := t.TempDir()
	dsn := fmt.Sprintf(
		"file:%s?_busy_timeout=5000&_txlock=immediate",
		filepath.Join(dir, "scoreboard.db"),
	)
	st, err := sqlite.NewSQLiteStore(dsn, "../../migrations")
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { st.Close() })

	files, err := captures.NewStorage(filepath.Join(dir, "captures"))
	require.NoError(t, err, "Failed to create capture storage")

	config := &app.Config{}
	config.Server.Port = ":0"
	config.Auth.TokenHeader = "Authorization"
	config.Captures.Dir = filepath.Join(dir, "captures")

	return &app.Service{
		Config: config,
		Store:  st,
		Files:  files,
		Events: nopPublisher{},
	}
}

type fakeSessions struct {
	sessions map[string]*models.Session
}

func (f *fakeSessions) Create(_ context.Context, user *models.User) (string, error) {
	token := "tok-" + user.Username
	f.sessions[token] = &models.Session{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	return token, nil
}

func (f *fakeSessions) Fetch(_ context.Context, token string) (*models.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, app.ErrNoSession
	}
	return session, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessions) Close() error { return nil }

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}
