package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	BatsmanYetToBat = "yet_to_bat"
	BatsmanBatting  = "batting"
	BatsmanNotOut   = "not_out"
	BatsmanOut      = "out"
)

type Batsman struct {
	ID              string `db:"id" json:"id"`
	MatchID         string `db:"match_id" json:"match_id" validate:"required"`
	TeamName        string `db:"team_name" json:"team_name" validate:"required"`
	PlayerName      string `db:"player_name" json:"player_name" validate:"required"`
	Runs            int    `db:"runs" json:"runs" validate:"min=0"`
	Balls           int    `db:"balls" json:"balls" validate:"min=0"`
	Fours           int    `db:"fours" json:"fours" validate:"min=0"`
	Sixes           int    `db:"sixes" json:"sixes" validate:"min=0"`
	Status          string `db:"status" json:"status" validate:"oneof=yet_to_bat batting not_out out"`
	DismissalInfo   string `db:"dismissal_info" json:"dismissal_info"`
	BattingPosition int    `db:"batting_position" json:"batting_position" validate:"min=0"`
}

// team_name on a bowler is the side the bowler plays for. The scorecard view
// attaches these rows to the opposing team's batting card.
type Bowler struct {
	ID              string  `db:"id" json:"id"`
	MatchID         string  `db:"match_id" json:"match_id" validate:"required"`
	TeamName        string  `db:"team_name" json:"team_name" validate:"required"`
	PlayerName      string  `db:"player_name" json:"player_name" validate:"required"`
	Overs           float64 `db:"overs" json:"overs" validate:"min=0"`
	Maidens         int     `db:"maidens" json:"maidens" validate:"min=0"`
	RunsConceded    int     `db:"runs_conceded" json:"runs_conceded" validate:"min=0"`
	Wickets         int     `db:"wickets" json:"wickets" validate:"min=0,max=10"`
	BowlingPosition int     `db:"bowling_position" json:"bowling_position" validate:"min=0"`
}

var BatsmanUpdatableFields = []string{
	"player_name", "runs", "balls", "fours", "sixes",
	"status", "dismissal_info", "batting_position",
}

var BowlerUpdatableFields = []string{
	"player_name", "overs", "maidens", "runs_conceded",
	"wickets", "bowling_position",
}

type TeamCard struct {
	Name    string    `json:"name"`
	Batsmen []Batsman `json:"batsmen"`
	Bowlers []Bowler  `json:"bowlers"`
}

type Scorecard struct {
	Match Match    `json:"match"`
	Team1 TeamCard `json:"team1"`
	Team2 TeamCard `json:"team2"`
}

func (b *Batsman) Validate() error {
	validate := validator.New()
	return validate.Struct(b)
}

func (b *Bowler) Validate() error {
	validate := validator.New()
	return validate.Struct(b)
}
