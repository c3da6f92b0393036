package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovalhq/pavilion/internal/captures"
	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/store"
)

// Publisher receives an event for every successful aggregate mutation.
// The websocket hub implements it; tests use a recording double.
type Publisher interface {
	Publish(event string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

type Service struct {
	Config   *Config
	Store    store.ScoreboardStore
	Sessions SessionStore
	Files    *captures.Storage
	Events   Publisher
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	var sessions SessionStore
	if config.Server.EnableAuth {
		sessions, err = NewRedisSessions(
			config.Auth.RedisURL,
			time.Duration(config.Auth.SessionTTLHours)*time.Hour,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to init sessions: %w", err)
		}
	}

	files, err := captures.NewStorage(config.Captures.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to init capture storage: %w", err)
	}

	return &Service{
		Config:   config,
		Store:    st,
		Sessions: sessions,
		Files:    files,
		Events:   nopPublisher{},
	}, nil
}

// BearerToken pulls the session token from the Authorization header, or
// from the token query parameter for websocket upgrades.
func (s *Service) BearerToken(r *http.Request) string {
	header := r.Header.Get(s.Config.Auth.TokenHeader)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// Identify classifies the request's session. ErrNoSession means no usable
// token was attached; role checks are the caller's concern.
func (s *Service) Identify(r *http.Request) (*models.Session, error) {
	if !s.Config.Server.EnableAuth {
		return &models.Session{Username: "dev", Role: models.RoleAdmin}, nil
	}

	token := s.BearerToken(r)
	if token == "" {
		return nil, ErrNoSession
	}

	return s.Sessions.Fetch(r.Context(), token)
}

// RequireAdmin rejects before any mutation runs: ErrNoSession for missing
// identity, ErrForbidden for a non-admin one.
func (s *Service) RequireAdmin(r *http.Request) (*models.Session, error) {
	session, err := s.Identify(r)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	return session, nil
}

func (s *Service) Register(username, password, role string) error {
	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  password,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if _, err := s.Store.GetUserByUsername(username); err == nil {
		return fmt.Errorf("%w: username taken", ErrConflict)
	} else if err != store.ErrNotFound {
		return err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(digest)

	return s.Store.CreateUser(user)
}

func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if username == "" || password == "" {
		return "", nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Store.GetUserByUsername(username)
	if err == store.ErrNotFound {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !s.Config.Server.EnableAuth {
		return "dev", user, nil
	}

	token, err := s.Sessions.Create(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if !s.Config.Server.EnableAuth || token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, token)
}

func (s *Service) Close() error {
	var errs []error

	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.Sessions != nil {
		if err := s.Sessions.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sessions: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
