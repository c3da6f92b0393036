package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username" validate:"required,min=3"`
	Password  string    `db:"password" json:"-" validate:"required,min=4"`
	Role      string    `db:"role" json:"role" validate:"oneof=admin viewer"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Session is the identity attached to a request or websocket connection.
// It lives in redis, not in the relational store.
type Session struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	RequestCount int       `json:"request_count"`
	CreatedTime  time.Time `json:"created_dttm_utc"`
	LastSeenTime time.Time `json:"last_seen_dttm_utc"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func (u *User) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}
