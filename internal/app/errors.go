package app

import "errors"

// The error taxonomy handlers translate to HTTP statuses; camera.ErrUpstream
// rounds it out on the proxy side. Store-level failures that match none of
// these surface as opaque 500s.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNoSession          = errors.New("not logged in")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("admin access required")
	ErrConflict           = errors.New("already exists")
)
