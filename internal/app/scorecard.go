package app

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/scoring"
)

// AddBatsman creates an entry for an existing match. With no explicit
// position the store assigns count+1 for the (match, team) pair.
func (s *Service) AddBatsman(b *models.Batsman) (*models.Batsman, error) {
	if _, err := s.Store.GetMatch(b.MatchID); err != nil {
		return nil, err
	}

	b.ID = uuid.NewString()
	if b.Status == "" {
		b.Status = models.BatsmanYetToBat
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.Store.CreateBatsman(b); err != nil {
		return nil, err
	}

	s.publishScorecardDirty(b.MatchID)
	return b, nil
}

func (s *Service) UpdateBatsman(entryID string, updates map[string]any) (*models.Batsman, error) {
	fields := intersectFields(models.BatsmanUpdatableFields, updates)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no valid fields to update", ErrValidation)
	}

	if err := validateBatsmanFields(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	b, err := s.Store.UpdateBatsmanFields(entryID, fields)
	if err != nil {
		return nil, err
	}

	s.publishScorecardDirty(b.MatchID)
	return b, nil
}

func (s *Service) DeleteBatsman(entryID string) error {
	b, err := s.Store.GetBatsman(entryID)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteBatsman(entryID); err != nil {
		return err
	}

	s.publishScorecardDirty(b.MatchID)
	return nil
}

func (s *Service) AddBowler(b *models.Bowler) (*models.Bowler, error) {
	if _, err := s.Store.GetMatch(b.MatchID); err != nil {
		return nil, err
	}

	b.ID = uuid.NewString()
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !scoring.ValidOvers(b.Overs) {
		return nil, fmt.Errorf("%w: overs must be a valid overs.balls value", ErrValidation)
	}

	if err := s.Store.CreateBowler(b); err != nil {
		return nil, err
	}

	s.publishScorecardDirty(b.MatchID)
	return b, nil
}

func (s *Service) UpdateBowler(entryID string, updates map[string]any) (*models.Bowler, error) {
	fields := intersectFields(models.BowlerUpdatableFields, updates)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no valid fields to update", ErrValidation)
	}

	if err := validateBowlerFields(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	b, err := s.Store.UpdateBowlerFields(entryID, fields)
	if err != nil {
		return nil, err
	}

	s.publishScorecardDirty(b.MatchID)
	return b, nil
}

func (s *Service) DeleteBowler(entryID string) error {
	b, err := s.Store.GetBowler(entryID)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteBowler(entryID); err != nil {
		return err
	}

	s.publishScorecardDirty(b.MatchID)
	return nil
}

// FullScorecard groups each side's batsmen with the opposing side's
// bowlers: team1's batting card shows team2's bowling figures, and vice
// versa.
func (s *Service) FullScorecard(matchID string) (*models.Scorecard, error) {
	match, err := s.Store.GetMatch(matchID)
	if err != nil {
		return nil, err
	}

	team1Batsmen, err := s.Store.ListBatsmen(matchID, match.Team1Name)
	if err != nil {
		return nil, err
	}
	team2Batsmen, err := s.Store.ListBatsmen(matchID, match.Team2Name)
	if err != nil {
		return nil, err
	}
	team1Bowlers, err := s.Store.ListBowlers(matchID, match.Team1Name)
	if err != nil {
		return nil, err
	}
	team2Bowlers, err := s.Store.ListBowlers(matchID, match.Team2Name)
	if err != nil {
		return nil, err
	}

	return &models.Scorecard{
		Match: *match,
		Team1: models.TeamCard{
			Name:    match.Team1Name,
			Batsmen: team1Batsmen,
			Bowlers: team2Bowlers,
		},
		Team2: models.TeamCard{
			Name:    match.Team2Name,
			Batsmen: team2Batsmen,
			Bowlers: team1Bowlers,
		},
	}, nil
}

// Scorecard mutations broadcast a dirty signal carrying only the match id;
// clients re-fetch the full scorecard. Match mutations broadcast full
// records. The asymmetry is deliberate.
func (s *Service) publishScorecardDirty(matchID string) {
	s.Events.Publish(EventScorecardUpdated, map[string]string{"matchId": matchID})
}

func intersectFields(whitelist []string, updates map[string]any) map[string]any {
	fields := map[string]any{}
	for _, field := range whitelist {
		if v, ok := updates[field]; ok {
			fields[field] = v
		}
	}
	return fields
}

func validateBatsmanFields(fields map[string]any) error {
	if v, ok := fields["player_name"]; ok {
		name, isString := v.(string)
		if !isString || name == "" {
			return fmt.Errorf("player_name must be a non-empty string")
		}
	}

	if v, ok := fields["status"]; ok {
		status, _ := v.(string)
		switch status {
		case models.BatsmanYetToBat, models.BatsmanBatting, models.BatsmanNotOut, models.BatsmanOut:
		default:
			return fmt.Errorf("status must be one of yet_to_bat, batting, not_out, out")
		}
	}

	for _, key := range []string{"runs", "balls", "fours", "sixes", "batting_position"} {
		if v, ok := fields[key]; ok {
			n, err := toNumber(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%s must be a non-negative number", key)
			}
		}
	}

	return nil
}

func validateBowlerFields(fields map[string]any) error {
	if v, ok := fields["player_name"]; ok {
		name, isString := v.(string)
		if !isString || name == "" {
			return fmt.Errorf("player_name must be a non-empty string")
		}
	}

	if v, ok := fields["overs"]; ok {
		n, err := toNumber(v)
		if err != nil || !scoring.ValidOvers(n) {
			return fmt.Errorf("overs must be a valid overs.balls value")
		}
	}

	if v, ok := fields["wickets"]; ok {
		n, err := toNumber(v)
		if err != nil || n < 0 || n > 10 {
			return fmt.Errorf("wickets must be between 0 and 10")
		}
	}

	for _, key := range []string{"maidens", "runs_conceded", "bowling_position"} {
		if v, ok := fields[key]; ok {
			n, err := toNumber(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%s must be a non-negative number", key)
			}
		}
	}

	return nil
}
