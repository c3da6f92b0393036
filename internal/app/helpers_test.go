package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ovalhq/pavilion/internal/captures"
	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/store/sqlite"
)

type publishedEvent struct {
	Type    string
	Payload any
}

// recordingPublisher captures broadcasts so tests can assert on what would
// have gone out over the wire.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: event, Payload: payload})
}

func (p *recordingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent{}, p.events...)
}

func (p *recordingPublisher) Last() *publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	e := p.events[len(p.events)-1]
	return &e
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// fakeSessions is the in-memory SessionStore double. Tokens are
// deterministic per user so tests can construct requests without a login
// round-trip.
type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*models.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, user *models.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := "tok-" + user.Username
	f.sessions[token] = &models.Session{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	return token, nil
}

func (f *fakeSessions) Fetch(_ context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	return session, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessions) Close() error { return nil }

// newTestService wires a Service onto a throwaway sqlite database with auth
// disabled, so every request acts as an admin.
func newTestService(t *testing.T) (*Service, *recordingPublisher) {
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

	config := &Config{}
	config.Server.Port = ":0"
	config.Auth.TokenHeader = "Authorization"
	config.Captures.Dir = filepath.Join(dir, "captures")

	events := &recordingPublisher{}
	return &Service{
		Config: config,
		Store:  st,
		Files:  files,
		Events: events,
	}, events
}
