package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/ovalhq/pavilion/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

type ScoreboardStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)

	CreateMatch(match *models.Match) error
	GetMatch(id string) (*models.Match, error)
	ListMatches() ([]models.Match, error)
	UpdateMatchFields(id string, fields map[string]any) (*models.Match, error)
	DeleteMatch(id string) error
	// QuickScore adds runs and optionally one wicket (clamped at 10) to the
	// named side in a single UPDATE, so the clamp holds under concurrent
	// writers. team is a column prefix, "team1" or "team2".
	QuickScore(id, team string, runs int, wicket bool) (*models.Match, error)

	CreateBatsman(b *models.Batsman) error
	GetBatsman(id string) (*models.Batsman, error)
	UpdateBatsmanFields(id string, fields map[string]any) (*models.Batsman, error)
	DeleteBatsman(id string) error
	ListBatsmen(matchID, teamName string) ([]models.Batsman, error)

	CreateBowler(b *models.Bowler) error
	GetBowler(id string) (*models.Bowler, error)
	UpdateBowlerFields(id string, fields map[string]any) (*models.Bowler, error)
	DeleteBowler(id string) error
	ListBowlers(matchID, teamName string) ([]models.Bowler, error)

	CreateCapture(c *models.Capture) error
	GetCapture(id string) (*models.Capture, error)
	ListCaptures() ([]models.Capture, error)
	DeleteCapture(id string) error
	ListCaptureFilenames() ([]string, error)

	ListCameraConfigs() ([]models.CameraConfig, error)
	GetCameraConfig(source string) (*models.CameraConfig, error)
	SaveCameraConfig(c *models.CameraConfig) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) CreateUser(user *models.User) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO users (id, username, password, role, created_at)
		VALUES (:id, :username, :password, :role, :created_at)
	`, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *BaseStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, username, password, role, created_at
		FROM users
		WHERE username = ?
	`)

	err := s.DB.Get(&user, query, username)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) GetUserByID(id string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, username, password, role, created_at
		FROM users
		WHERE id = ?
	`)

	err := s.DB.Get(&user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) CreateMatch(match *models.Match) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO matches (
			id, team1_name, team2_name,
			team1_score, team1_wickets, team1_overs,
			team2_score, team2_wickets, team2_overs,
			status, current_batting, created_at, updated_at
		) VALUES (
			:id, :team1_name, :team2_name,
			:team1_score, :team1_wickets, :team1_overs,
			:team2_score, :team2_wickets, :team2_overs,
			:status, :current_batting, :created_at, :updated_at
		)
	`, match)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (s *BaseStore) GetMatch(id string) (*models.Match, error) {
	var match models.Match
	query := s.Converter(`SELECT * FROM matches WHERE id = ?`)

	err := s.DB.Get(&match, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

func (s *BaseStore) ListMatches() ([]models.Match, error) {
	matches := []models.Match{}
	err := s.DB.Select(&matches, `SELECT * FROM matches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// UpdateMatchFields applies a partial update. Callers are responsible for
// restricting fields to the whitelist; keys end up in the SET clause.
func (s *BaseStore) UpdateMatchFields(id string, fields map[string]any) (*models.Match, error) {
	setClauses := make([]string, 0, len(fields)+1)
	values := make([]any, 0, len(fields)+2)

	for _, field := range models.MatchUpdatableFields {
		if v, ok := fields[field]; ok {
			setClauses = append(setClauses, fmt.Sprintf("%s = ?", field))
			values = append(values, v)
		}
	}
	if len(setClauses) == 0 {
		return nil, fmt.Errorf("no valid fields to update")
	}

	setClauses = append(setClauses, "updated_at = ?")
	values = append(values, time.Now().UTC(), id)

	query := s.Converter(fmt.Sprintf(
		"UPDATE matches SET %s WHERE id = ?",
		strings.Join(setClauses, ", "),
	))

	res, err := s.DB.Exec(query, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.GetMatch(id)
}

// DeleteMatch removes the match and its scorecard rows in one transaction.
// A failed scorecard cleanup is logged and does not block the match delete;
// the schema-level ON DELETE CASCADE covers it either way.
func (s *BaseStore) DeleteMatch(id string) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"scorecard_batsmen", "scorecard_bowlers"} {
		query := s.Converter(fmt.Sprintf("DELETE FROM %s WHERE match_id = ?", table))
		if _, err := tx.Exec(query, id); err != nil {
			logger.Error.Printf("Cascade cleanup of %s for match %s failed: %v", table, id, err)
		}
	}

	res, err := tx.Exec(s.Converter("DELETE FROM matches WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// CreateBatsman inserts an entry, assigning the next batting position for
// its (match, team) when none is given. Count and insert share a
// transaction so concurrent adds do not both read the same count.
func (s *BaseStore) CreateBatsman(b *models.Batsman) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback()

	if b.BattingPosition == 0 {
		var count int
		query := s.Converter(`
			SELECT COUNT(*) FROM scorecard_batsmen
			WHERE match_id = ? AND team_name = ?
		`)
		if err := tx.Get(&count, query, b.MatchID, b.TeamName); err != nil {
			return fmt.Errorf("failed to count batsmen: %w", err)
		}
		b.BattingPosition = count + 1
	}

	_, err = tx.NamedExec(`
		INSERT INTO scorecard_batsmen (
			id, match_id, team_name, player_name,
			runs, balls, fours, sixes,
			status, dismissal_info, batting_position
		) VALUES (
			:id, :match_id, :team_name, :player_name,
			:runs, :balls, :fours, :sixes,
			:status, :dismissal_info, :batting_position
		)
	`, b)
	if err != nil {
		return fmt.Errorf("failed to create batsman: %w", err)
	}

	return tx.Commit()
}

func (s *BaseStore) GetBatsman(id string) (*models.Batsman, error) {
	var b models.Batsman
	query := s.Converter(`SELECT * FROM scorecard_batsmen WHERE id = ?`)

	err := s.DB.Get(&b, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batsman: %w", err)
	}
	return &b, nil
}

func (s *BaseStore) UpdateBatsmanFields(id string, fields map[string]any) (*models.Batsman, error) {
	if err := s.updateEntryFields("scorecard_batsmen", id, models.BatsmanUpdatableFields, fields); err != nil {
		return nil, err
	}
	return s.GetBatsman(id)
}

func (s *BaseStore) DeleteBatsman(id string) error {
	return s.deleteEntry("scorecard_batsmen", id)
}

func (s *BaseStore) ListBatsmen(matchID, teamName string) ([]models.Batsman, error) {
	batsmen := []models.Batsman{}
	query := s.Converter(`
		SELECT * FROM scorecard_batsmen
		WHERE match_id = ? AND team_name = ?
		ORDER BY batting_position ASC, player_name ASC
	`)

	err := s.DB.Select(&batsmen, query, matchID, teamName)
	if err != nil {
		return nil, fmt.Errorf("failed to list batsmen: %w", err)
	}
	return batsmen, nil
}

func (s *BaseStore) CreateBowler(b *models.Bowler) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback()

	if b.BowlingPosition == 0 {
		var count int
		query := s.Converter(`
			SELECT COUNT(*) FROM scorecard_bowlers
			WHERE match_id = ? AND team_name = ?
		`)
		if err := tx.Get(&count, query, b.MatchID, b.TeamName); err != nil {
			return fmt.Errorf("failed to count bowlers: %w", err)
		}
		b.BowlingPosition = count + 1
	}

	_, err = tx.NamedExec(`
		INSERT INTO scorecard_bowlers (
			id, match_id, team_name, player_name,
			overs, maidens, runs_conceded, wickets, bowling_position
		) VALUES (
			:id, :match_id, :team_name, :player_name,
			:overs, :maidens, :runs_conceded, :wickets, :bowling_position
		)
	`, b)
	if err != nil {
		return fmt.Errorf("failed to create bowler: %w", err)
	}

	return tx.Commit()
}

func (s *BaseStore) GetBowler(id string) (*models.Bowler, error) {
	var b models.Bowler
	query := s.Converter(`SELECT * FROM scorecard_bowlers WHERE id = ?`)

	err := s.DB.Get(&b, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bowler: %w", err)
	}
	return &b, nil
}

func (s *BaseStore) UpdateBowlerFields(id string, fields map[string]any) (*models.Bowler, error) {
	if err := s.updateEntryFields("scorecard_bowlers", id, models.BowlerUpdatableFields, fields); err != nil {
		return nil, err
	}
	return s.GetBowler(id)
}

func (s *BaseStore) DeleteBowler(id string) error {
	return s.deleteEntry("scorecard_bowlers", id)
}

func (s *BaseStore) ListBowlers(matchID, teamName string) ([]models.Bowler, error) {
	bowlers := []models.Bowler{}
	query := s.Converter(`
		SELECT * FROM scorecard_bowlers
		WHERE match_id = ? AND team_name = ?
		ORDER BY bowling_position ASC, player_name ASC
	`)

	err := s.DB.Select(&bowlers, query, matchID, teamName)
	if err != nil {
		return nil, fmt.Errorf("failed to list bowlers: %w", err)
	}
	return bowlers, nil
}

func (s *BaseStore) updateEntryFields(table, id string, whitelist []string, fields map[string]any) error {
	setClauses := make([]string, 0, len(fields))
	values := make([]any, 0, len(fields)+1)

	for _, field := range whitelist {
		if v, ok := fields[field]; ok {
			setClauses = append(setClauses, fmt.Sprintf("%s = ?", field))
			values = append(values, v)
		}
	}
	if len(setClauses) == 0 {
		return fmt.Errorf("no valid fields to update")
	}
	values = append(values, id)

	query := s.Converter(fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = ?",
		table,
		strings.Join(setClauses, ", "),
	))

	res, err := s.DB.Exec(query, values...)
	if err != nil {
		return fmt.Errorf("failed to update %s entry: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) deleteEntry(table, id string) error {
	query := s.Converter(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table))
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s entry: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) CreateCapture(c *models.Capture) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO captures (id, filename, type, source, captured_by, created_at)
		VALUES (:id, :filename, :type, :source, :captured_by, :created_at)
	`, c)
	if err != nil {
		return fmt.Errorf("failed to create capture: %w", err)
	}
	return nil
}

func (s *BaseStore) GetCapture(id string) (*models.Capture, error) {
	var c models.Capture
	query := s.Converter(`
		SELECT id, filename, type, source, captured_by, created_at
		FROM captures
		WHERE id = ?
	`)

	err := s.DB.Get(&c, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}
	return &c, nil
}

// ListCaptures joins usernames in for display. captured_by is not a hard
// reference; a capture outlives its user, so the join is a LEFT JOIN.
func (s *BaseStore) ListCaptures() ([]models.Capture, error) {
	captures := []models.Capture{}
	err := s.DB.Select(&captures, `
		SELECT
			c.id, c.filename, c.type, c.source, c.captured_by, c.created_at,
			COALESCE(u.username, '') AS captured_by_username
		FROM captures c
		LEFT JOIN users u ON c.captured_by = u.id
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	return captures, nil
}

func (s *BaseStore) DeleteCapture(id string) error {
	return s.deleteEntry("captures", id)
}

func (s *BaseStore) ListCaptureFilenames() ([]string, error) {
	filenames := []string{}
	err := s.DB.Select(&filenames, `SELECT filename FROM captures`)
	if err != nil {
		return nil, fmt.Errorf("failed to list capture filenames: %w", err)
	}
	return filenames, nil
}

func (s *BaseStore) ListCameraConfigs() ([]models.CameraConfig, error) {
	configs := []models.CameraConfig{}
	err := s.DB.Select(&configs, `SELECT source, url, enabled FROM camera_configs ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list camera configs: %w", err)
	}
	return configs, nil
}

func (s *BaseStore) GetCameraConfig(source string) (*models.CameraConfig, error) {
	var c models.CameraConfig
	query := s.Converter(`SELECT source, url, enabled FROM camera_configs WHERE source = ?`)

	err := s.DB.Get(&c, query, source)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get camera config: %w", err)
	}
	return &c, nil
}

func (s *BaseStore) SaveCameraConfig(c *models.CameraConfig) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO camera_configs (source, url, enabled)
		VALUES (:source, :url, :enabled)
		ON CONFLICT(source) DO UPDATE SET
		url = excluded.url,
		enabled = excluded.enabled
	`, c)
	if err != nil {
		return fmt.Errorf("failed to save camera config: %w", err)
	}
	return nil
}
