package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

// QuickScore is the live-scoring fast path: one UPDATE keeps the wicket
// clamp atomic no matter how many increments race.
func (s *PostgresStore) QuickScore(id, team string, runs int, wicket bool) (*models.Match, error) {
	if team != "team1" && team != "team2" {
		return nil, fmt.Errorf("unknown team %q", team)
	}

	wicketInc := 0
	if wicket {
		wicketInc = 1
	}

	query := fmt.Sprintf(`
		UPDATE matches SET
			%[1]s_score = %[1]s_score + $1,
			%[1]s_wickets = LEAST(10, %[1]s_wickets + $2),
			updated_at = $3
		WHERE id = $4
	`, team)

	res, err := s.DB.Exec(query, runs, wicketInc, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to apply quick score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetMatch(id)
}
