package app

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/store"
)

var dataURLPrefix = regexp.MustCompile(`^data:(image|video)/\w+;base64,`)

// SaveCapture decodes the posted frame and stores file + metadata. A
// "video" capture persists a single representative frame; only the
// extension differs. Known limitation carried over from the original
// client-side stitching fallback.
func (s *Service) SaveCapture(session *models.Session, imageData, source, capType string) (*models.Capture, error) {
	if imageData == "" || source == "" {
		return nil, fmt.Errorf("%w: image data and source are required", ErrValidation)
	}
	if capType == "" {
		capType = models.CaptureTypePhoto
	}

	raw, err := base64.StdEncoding.DecodeString(dataURLPrefix.ReplaceAllString(imageData, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: image data is not valid base64", ErrValidation)
	}

	extension := "jpg"
	if capType == models.CaptureTypeVideo {
		extension = "webm"
	}

	capture := &models.Capture{
		ID:         uuid.NewString(),
		Filename:   fmt.Sprintf("%s_%d.%s", source, time.Now().UnixMilli(), extension),
		Type:       capType,
		Source:     source,
		CapturedBy: session.UserID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := capture.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.Files.Save(capture.Filename, raw); err != nil {
		return nil, err
	}
	if err := s.Store.CreateCapture(capture); err != nil {
		return nil, err
	}

	return capture, nil
}

func (s *Service) ListCaptures() ([]models.Capture, error) {
	return s.Store.ListCaptures()
}

// DeleteCapture removes the row first; the file removal is best-effort and
// the janitor sweep reconciles any leftover.
func (s *Service) DeleteCapture(id string) error {
	capture, err := s.Store.GetCapture(id)
	if err != nil {
		return err
	}

	if err := s.Store.DeleteCapture(id); err != nil {
		return err
	}

	if err := s.Files.Remove(capture.Filename); err != nil {
		logger.Error.Printf("Failed to remove capture file %s: %v", capture.Filename, err)
	}
	return nil
}

type CameraConfigPatch struct {
	URL     *string `json:"url,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

func (s *Service) CameraConfigs() ([]models.CameraConfig, error) {
	return s.Store.ListCameraConfigs()
}

// UpdateCameraConfigs merges patches into the persisted per-camera rows and
// broadcasts the resulting config. Camera config used to be process-wide
// mutable state; it lives in the settings table now.
func (s *Service) UpdateCameraConfigs(patches map[string]CameraConfigPatch) ([]models.CameraConfig, error) {
	if len(patches) == 0 {
		return nil, fmt.Errorf("%w: no camera settings given", ErrValidation)
	}

	for source, patch := range patches {
		if source != models.CameraA && source != models.CameraB {
			return nil, fmt.Errorf("%w: unknown camera %q", ErrValidation, source)
		}

		config, err := s.Store.GetCameraConfig(source)
		if err != nil {
			return nil, err
		}
		if patch.URL != nil {
			config.URL = *patch.URL
		}
		if patch.Enabled != nil {
			config.Enabled = *patch.Enabled
		}
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}

		if err := s.Store.SaveCameraConfig(config); err != nil {
			return nil, err
		}
	}

	configs, err := s.Store.ListCameraConfigs()
	if err != nil {
		return nil, err
	}

	s.Events.Publish(EventCameraConfig, configs)
	return configs, nil
}

// CameraStreamURL resolves a camera identity to its upstream stream URL.
// Unknown or disabled cameras read as not found.
func (s *Service) CameraStreamURL(source string) (string, error) {
	config, err := s.Store.GetCameraConfig(source)
	if err != nil {
		return "", err
	}
	if !config.Enabled {
		return "", fmt.Errorf("camera %s disabled: %w", source, store.ErrNotFound)
	}
	return config.URL, nil
}

// CameraSnapshotURL derives the single-frame endpoint from the stream URL.
func (s *Service) CameraSnapshotURL(source string) (string, error) {
	streamURL, err := s.CameraStreamURL(source)
	if err != nil {
		return "", err
	}
	return strings.Replace(streamURL, "/stream", "/snapshot", 1), nil
}
