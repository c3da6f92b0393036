package app

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/store"
)

func TestAddBatsman(t *testing.T) {
	service, events := newTestService(t)

	match, err := service.CreateMatch("Lions", "Tigers", "")
	require.NoError(t, err)
	events.Reset()

	t.Run("defaults and dirty signal", func(t *testing.T) {
		created, err := service.AddBatsman(&models.Batsman{
			MatchID:    match.ID,
			TeamName:   "Lions",
			PlayerName: "R. Sharma",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, models.BatsmanYetToBat, created.Status)
		assert.Equal(t, 1, created.BattingPosition)

		last := events.Last()
		require.NotNil(t, last)
		assert.Equal(t, EventScorecardUpdated, last.Type)
		assert.Equal(t, map[string]string{"matchId": match.ID}, last.Payload)
	})

	t.Run("unknown match", func(t *testing.T) {
		events.Reset()
		_, err := service.AddBatsman(&models.Batsman{
			MatchID:    "no-such-id",
			TeamName:   "Lions",
			PlayerName: "R. Sharma",
		})
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Empty(t, events.Events())
	})

	t.Run("missing player name", func(t *testing.T) {
		_, err := service.AddBatsman(&models.Batsman{
			MatchID:  match.ID,
			TeamName: "Lions",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateBatsman(t *testing.T) {
	service, events := newTestService(t)

	match, err := service.CreateMatch("Lions", "Tigers", "")
	require.NoError(t, err)
	created, err := service.AddBatsman(&models.Batsman{
		MatchID:    match.ID,
		TeamName:   "Lions",
		PlayerName: "R. Sharma",
	})
	require.NoError(t, err)
	events.Reset()

	t.Run("only unknown keys", func(t *testing.T) {
		_, err := service.UpdateBatsman(created.ID, map[string]any{"team_name": "Tigers"})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, events.Events())
	})

	t.Run("negative runs", func(t *testing.T) {
		_, err := service.UpdateBatsman(created.ID, map[string]any{"runs": -1})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("bogus status", func(t *testing.T) {
		_, err := service.UpdateBatsman(created.ID, map[string]any{"status": "retired_hurt"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("valid update", func(t *testing.T) {
		got, err := service.UpdateBatsman(created.ID, map[string]any{
			"runs":           42,
			"balls":          28,
			"status":         models.BatsmanOut,
			"dismissal_info": "c Khan b Bumrah",
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got.Runs)
		assert.Equal(t, "c Khan b Bumrah", got.DismissalInfo)

		last := events.Last()
		require.NotNil(t, last)
		assert.Equal(t, EventScorecardUpdated, last.Type)
	})
}

func TestAddBowlerOversValidation(t *testing.T) {
	service, _ := newTestService(t)

	match, err := service.CreateMatch("Lions", "Tigers", "")
	require.NoError(t, err)

	_, err = service.AddBowler(&models.Bowler{
		MatchID:    match.ID,
		TeamName:   "Tigers",
		PlayerName: "J. Bumrah",
		Overs:      2.7,
	})
	assert.ErrorIs(t, err, ErrValidation)

	created, err := service.AddBowler(&models.Bowler{
		MatchID:    match.ID,
		TeamName:   "Tigers",
		PlayerName: "J. Bumrah",
		Overs:      2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.BowlingPosition)
}

func TestDeleteScorecardEntries(t *testing.T) {
	service, events := newTestService(t)

	match, err := service.CreateMatch("Lions", "Tigers", "")
	require.NoError(t, err)
	batsman, err := service.AddBatsman(&models.Batsman{
		MatchID:    match.ID,
		TeamName:   "Lions",
		PlayerName: "R. Sharma",
	})
	require.NoError(t, err)
	events.Reset()

	t.Run("delete existing", func(t *testing.T) {
		require.NoError(t, service.DeleteBatsman(batsman.ID))

		last := events.Last()
		require.NotNil(t, last)
		assert.Equal(t, EventScorecardUpdated, last.Type)
	})

	t.Run("delete non-existent", func(t *testing.T) {
		events.Reset()
		assert.ErrorIs(t, service.DeleteBatsman(batsman.ID), store.ErrNotFound)
		assert.ErrorIs(t, service.DeleteBowler("no-such-id"), store.ErrNotFound)
		assert.Empty(t, events.Events(), "failed delete must not broadcast")
	})
}

// Each side's card pairs its batsmen with the opposing side's bowlers.
func TestFullScorecardGrouping(t *testing.T) {
	service, _ := newTestService(t)

	match, err := service.CreateMatch("Lions", "Tigers", "")
	require.NoError(t, err)

	_, err = service.AddBatsman(&models.Batsman{
		MatchID: match.ID, TeamName: "Lions", PlayerName: "R. Sharma",
	})
	require.NoError(t, err)
	_, err = service.AddBatsman(&models.Batsman{
		MatchID: match.ID, TeamName: "Tigers", PlayerName: "S. Khan",
	})
	require.NoError(t, err)
	_, err = service.AddBowler(&models.Bowler{
		MatchID: match.ID, TeamName: "Tigers", PlayerName: "J. Bumrah",
	})
	require.NoError(t, err)
	_, err = service.AddBowler(&models.Bowler{
		MatchID: match.ID, TeamName: "Lions", PlayerName: "M. Starc",
	})
	require.NoError(t, err)

	scorecard, err := service.FullScorecard(match.ID)
	require.NoError(t, err)

	assert.Equal(t, match.ID, scorecard.Match.ID)
	assert.Equal(t, "Lions", scorecard.Team1.Name)

	require.Len(t, scorecard.Team1.Batsmen, 1)
	assert.Equal(t, "R. Sharma", scorecard.Team1.Batsmen[0].PlayerName)
	require.Len(t, scorecard.Team1.Bowlers, 1)
	assert.Equal(t, "J. Bumrah", scorecard.Team1.Bowlers[0].PlayerName)

	require.Len(t, scorecard.Team2.Batsmen, 1)
	assert.Equal(t, "S. Khan", scorecard.Team2.Batsmen[0].PlayerName)
	require.Len(t, scorecard.Team2.Bowlers, 1)
	assert.Equal(t, "M. Starc", scorecard.Team2.Bowlers[0].PlayerName)

	t.Run("unknown match", func(t *testing.T) {
		_, err := service.FullScorecard("no-such-id")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

// Concurrent adds to the same side must come out with distinct positions.
func TestConcurrentAddBatsmen(t *testing.T) {
	service, _ := newTestService(t)

	match, err := service.CreateMatch("Lions", "Tigers", "")
	require.NoError(t, err)

	const players = 8
	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := service.AddBatsman(&models.Batsman{
				MatchID:    match.ID,
				TeamName:   "Lions",
				PlayerName: fmt.Sprintf("player %d", n),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	batsmen, err := service.Store.ListBatsmen(match.ID, "Lions")
	require.NoError(t, err)
	require.Len(t, batsmen, players)

	positions := make([]int, 0, players)
	for _, b := range batsmen {
		positions = append(positions, b.BattingPosition)
	}
	sort.Ints(positions)
	for i, pos := range positions {
		assert.Equal(t, i+1, pos, "positions must be dense and unique")
	}
}
