package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/scoring"
	"github.com/ovalhq/pavilion/internal/store"
)

const (
	EventMatchCreated     = "match:created"
	EventMatchUpdated     = "match:updated"
	EventMatchDeleted     = "match:deleted"
	EventScorecardUpdated = "scorecard:updated"
	EventCameraConfig     = "camera:config-updated"
	EventMatchesInit      = "matches:init"
)

func (s *Service) CreateMatch(team1Name, team2Name, status string) (*models.Match, error) {
	if status == "" {
		status = models.StatusUpcoming
	}

	now := time.Now().UTC()
	match := &models.Match{
		ID:             uuid.NewString(),
		Team1Name:      team1Name,
		Team2Name:      team2Name,
		Status:         status,
		CurrentBatting: team1Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := match.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.Store.CreateMatch(match); err != nil {
		return nil, err
	}

	s.Events.Publish(EventMatchCreated, match)
	return match, nil
}

func (s *Service) GetMatch(id string) (*models.Match, error) {
	return s.Store.GetMatch(id)
}

func (s *Service) ListMatches() ([]models.Match, error) {
	return s.Store.ListMatches()
}

// UpdateMatch applies a whitelisted partial update. Unknown keys are
// dropped; an update left with no keys is a validation error and causes
// neither a write nor a broadcast.
func (s *Service) UpdateMatch(id string, updates map[string]any) (*models.Match, error) {
	fields := map[string]any{}
	for _, field := range models.MatchUpdatableFields {
		if v, ok := updates[field]; ok {
			fields[field] = v
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no valid fields to update", ErrValidation)
	}

	existing, err := s.Store.GetMatch(id)
	if err != nil {
		return nil, err
	}

	if err := validateMatchFields(existing, fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	match, err := s.Store.UpdateMatchFields(id, fields)
	if err != nil {
		return nil, err
	}

	s.Events.Publish(EventMatchUpdated, match)
	return match, nil
}

func (s *Service) DeleteMatch(id string) error {
	if err := s.Store.DeleteMatch(id); err != nil {
		return err
	}

	s.Events.Publish(EventMatchDeleted, map[string]string{"id": id})
	return nil
}

// QuickScore is the realtime increment path. A missing match is a silent
// no-op (no broadcast, nil result); an unknown team is rejected.
func (s *Service) QuickScore(matchID, team string, runs int, wicket bool) (*models.Match, error) {
	if team != "team1" && team != "team2" {
		return nil, fmt.Errorf("%w: team must be team1 or team2", ErrValidation)
	}

	match, err := s.Store.QuickScore(matchID, team, runs, wicket)
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.Events.Publish(EventMatchUpdated, match)
	return match, nil
}

// validateMatchFields range-checks the incoming values. The original
// implementation was permissive here; wickets outside [0,10], negative
// scores, and malformed overs are rejected deliberately.
func validateMatchFields(existing *models.Match, fields map[string]any) error {
	team1Name := existing.Team1Name
	team2Name := existing.Team2Name

	for _, key := range []string{"team1_name", "team2_name"} {
		if v, ok := fields[key]; ok {
			name, ok := v.(string)
			if !ok || name == "" {
				return fmt.Errorf("%s must be a non-empty string", key)
			}
			if key == "team1_name" {
				team1Name = name
			} else {
				team2Name = name
			}
		}
	}

	if v, ok := fields["status"]; ok {
		status, _ := v.(string)
		switch status {
		case models.StatusUpcoming, models.StatusLive, models.StatusCompleted:
		default:
			return fmt.Errorf("status must be one of upcoming, live, completed")
		}
	}

	if v, ok := fields["current_batting"]; ok {
		batting, isString := v.(string)
		if !isString {
			return fmt.Errorf("current_batting must be a string")
		}
		if batting != "" && batting != team1Name && batting != team2Name {
			return fmt.Errorf("current_batting must name one of the two teams")
		}
	}

	for _, key := range []string{"team1_score", "team2_score"} {
		if v, ok := fields[key]; ok {
			n, err := toNumber(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%s must be a non-negative number", key)
			}
		}
	}

	for _, key := range []string{"team1_wickets", "team2_wickets"} {
		if v, ok := fields[key]; ok {
			n, err := toNumber(v)
			if err != nil || n < 0 || n > 10 {
				return fmt.Errorf("%s must be between 0 and 10", key)
			}
		}
	}

	for _, key := range []string{"team1_overs", "team2_overs"} {
		if v, ok := fields[key]; ok {
			n, err := toNumber(v)
			if err != nil || !scoring.ValidOvers(n) {
				return fmt.Errorf("%s must be a valid overs.balls value", key)
			}
		}
	}

	return nil
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}
