package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StatusUpcoming  = "upcoming"
	StatusLive      = "live"
	StatusCompleted = "completed"
)

type Match struct {
	ID             string    `db:"id" json:"id"`
	Team1Name      string    `db:"team1_name" json:"team1_name" validate:"required"`
	Team2Name      string    `db:"team2_name" json:"team2_name" validate:"required"`
	Team1Score     int       `db:"team1_score" json:"team1_score" validate:"min=0"`
	Team1Wickets   int       `db:"team1_wickets" json:"team1_wickets" validate:"min=0,max=10"`
	Team1Overs     float64   `db:"team1_overs" json:"team1_overs" validate:"min=0"`
	Team2Score     int       `db:"team2_score" json:"team2_score" validate:"min=0"`
	Team2Wickets   int       `db:"team2_wickets" json:"team2_wickets" validate:"min=0,max=10"`
	Team2Overs     float64   `db:"team2_overs" json:"team2_overs" validate:"min=0"`
	Status         string    `db:"status" json:"status" validate:"oneof=upcoming live completed"`
	CurrentBatting string    `db:"current_batting" json:"current_batting"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// MatchUpdatableFields is the whitelist for partial match updates. Anything
// outside it is ignored; an update touching none of these is rejected.
var MatchUpdatableFields = []string{
	"team1_name", "team2_name",
	"team1_score", "team1_wickets", "team1_overs",
	"team2_score", "team2_wickets", "team2_overs",
	"status", "current_batting",
}

func (m *Match) Validate() error {
	validate := validator.New()
	return validate.Struct(m)
}
