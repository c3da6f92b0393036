package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	CaptureTypePhoto = "photo"
	CaptureTypeVideo = "video"

	CameraA = "camera_a"
	CameraB = "camera_b"
)

// Capture is capture metadata only; the bytes live on disk under the
// configured captures directory, addressed by Filename.
type Capture struct {
	ID                 string    `db:"id" json:"id"`
	Filename           string    `db:"filename" json:"filename"`
	Type               string    `db:"type" json:"type" validate:"oneof=photo video"`
	Source             string    `db:"source" json:"source" validate:"oneof=camera_a camera_b"`
	CapturedBy         string    `db:"captured_by" json:"captured_by"`
	CapturedByUsername string    `db:"captured_by_username" json:"captured_by_username,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

type CameraConfig struct {
	Source  string `db:"source" json:"source" validate:"oneof=camera_a camera_b"`
	URL     string `db:"url" json:"url" validate:"required,url"`
	Enabled bool   `db:"enabled" json:"enabled"`
}

func (c *Capture) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func (c *CameraConfig) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}
