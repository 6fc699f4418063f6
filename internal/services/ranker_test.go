package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		MaxRecommendations: 15,
		ValueWeights: config.ValueWeights{
			FantasyPointsPerGame: 0.4,
			Consistency:          0.25,
			Upside:               0.25,
			PositionScarcity:     0.1,
			InjuryRisk:           0.1,
		},
		PositionMultiplier: map[string]float64{
			"Goalie":     0.6,
			"Defense":    1.15,
			"Center":     1.0,
			"Left Wing":  1.0,
			"Right Wing": 1.0,
		},
	}
}

func newTestRanker(t *testing.T, cfg config.AnalysisConfig) *Ranker {
	t.Helper()
	engine := NewScoringEngine(testWeights())
	allStars := NewAllStarTable(nil, testLogger())
	return NewRanker(engine, allStars, cfg, testLogger())
}

func centerWithGoals(id int, name string, games int, goals float64) models.PlayerRecord {
	return models.PlayerRecord{
		ID:       id,
		Name:     name,
		Position: models.PositionCenter,
		Team:     "TST",
		Stats:    models.StatLine{GamesPlayed: games, Goals: goals},
	}
}

func TestScoreComputesPointsForEveryPlayer(t *testing.T) {
	ranker := newTestRanker(t, testAnalysisConfig())

	pool := []models.PlayerRecord{
		centerWithGoals(1, "A", 10, 5),
		centerWithGoals(2, "B", 0, 0),
	}

	scored := ranker.Score(pool)
	require.Len(t, scored, len(pool))

	assert.InDelta(t, 10.0, scored[0].Player.FantasyPoints, 1e-9)
	assert.InDelta(t, 1.0, scored[0].Player.FantasyPointsPerGame, 1e-9)
	assert.Equal(t, 5.0, scored[0].Analysis.ConsistencyRating)

	// A zero-games player still scores without dividing by zero.
	assert.InDelta(t, 0.0, scored[1].Player.FantasyPoints, 1e-9)
}

func TestScoreRetainsPlayersWhenScoringPanics(t *testing.T) {
	// A ranker with no scoring engine panics inside scorePlayer on every
	// record, standing in for a record that blows up mid-scoring.
	ranker := &Ranker{logger: testLogger()}

	pool := []models.PlayerRecord{
		centerWithGoals(1, "First", 10, 8),
		centerWithGoals(2, "Second", 10, 3),
	}

	scored := ranker.Score(pool)

	// The batch completes and every player survives with neutral values.
	require.Len(t, scored, len(pool))
	for i, rec := range scored {
		assert.Equal(t, pool[i].Name, rec.Player.Name)
		assert.Zero(t, rec.Player.FantasyPoints)
		assert.Zero(t, rec.Player.FantasyPointsPerGame)
		assert.Zero(t, rec.Analysis.ValueScore)
	}
}

func TestValueScoreMonotonicInFantasyPointsPerGame(t *testing.T) {
	ranker := newTestRanker(t, testAnalysisConfig())

	weaker := centerWithGoals(1, "Weaker", 10, 3)
	stronger := centerWithGoals(2, "Stronger", 10, 6)

	scored := ranker.Score([]models.PlayerRecord{weaker, stronger})

	weakScore := ranker.ValueScore(scored[0].Player, scored[0].Analysis)
	strongScore := ranker.ValueScore(scored[1].Player, scored[1].Analysis)
	assert.Greater(t, strongScore, weakScore)
}

func TestValueScoreNeverNegative(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.ValueWeights = config.ValueWeights{FantasyPointsPerGame: -1.0}
	ranker := newTestRanker(t, cfg)

	player := centerWithGoals(1, "P", 10, 10)
	player.FantasyPointsPerGame = 2.0

	assert.Equal(t, 0.0, ranker.ValueScore(player, models.AnalysisResult{}))
}

func TestValueScoreSmallSamplePenalty(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.ValueWeights = config.ValueWeights{FantasyPointsPerGame: 1.0}
	cfg.PositionMultiplier = nil
	ranker := newTestRanker(t, cfg)

	base := models.PlayerRecord{
		Name:                 "P",
		Position:             models.PositionCenter,
		FantasyPointsPerGame: 10.0,
	}

	tests := []struct {
		games    int
		expected float64
	}{
		{5, 10.0}, // no penalty at 5 games
		{4, 9.0},  // 10% penalty
		{1, 6.0},  // 40% penalty
		{0, 5.0},  // floored at 50%
	}

	for _, tt := range tests {
		player := base
		player.Stats.GamesPlayed = tt.games
		assert.InDelta(t, tt.expected, ranker.ValueScore(player, models.AnalysisResult{}), 1e-9, "games=%d", tt.games)
	}
}

func TestValueScoreAppliesPositionMultiplier(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.ValueWeights = config.ValueWeights{FantasyPointsPerGame: 1.0}
	ranker := newTestRanker(t, cfg)

	skater := models.PlayerRecord{
		Name:                 "Skater",
		Position:             models.PositionCenter,
		FantasyPointsPerGame: 10.0,
		Stats:                models.StatLine{GamesPlayed: 10},
	}
	goalie := skater
	goalie.Name = "Goalie"
	goalie.Position = models.PositionGoalie

	assert.InDelta(t, 10.0, ranker.ValueScore(skater, models.AnalysisResult{}), 1e-9)
	assert.InDelta(t, 6.0, ranker.ValueScore(goalie, models.AnalysisResult{}), 1e-9)
}

func TestValueScoreAddsAllStarBonus(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.ValueWeights = config.ValueWeights{FantasyPointsPerGame: 1.0}
	engine := NewScoringEngine(testWeights())
	allStars := NewAllStarTable(map[string]int{"Veteran Star": 6}, testLogger())
	ranker := NewRanker(engine, allStars, cfg, testLogger())

	player := models.PlayerRecord{
		Name:                 "Veteran Star",
		Position:             models.PositionCenter,
		FantasyPointsPerGame: 10.0,
		Stats:                models.StatLine{GamesPlayed: 10},
	}
	nobody := player
	nobody.Name = "Nobody"

	withBonus := ranker.ValueScore(player, models.AnalysisResult{})
	without := ranker.ValueScore(nobody, models.AnalysisResult{})
	assert.InDelta(t, 0.4, withBonus-without, 1e-9)
}

func TestRankFiltersSortsAndTruncates(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.MaxRecommendations = 2
	ranker := newTestRanker(t, cfg)

	pool := []models.PlayerRecord{
		centerWithGoals(1, "Mid", 10, 5),          // qualifies
		centerWithGoals(2, "Top", 10, 12),         // qualifies, best
		centerWithGoals(3, "Fringe", 10, 4),       // qualifies, truncated off
		centerWithGoals(4, "TooFewPoints", 10, 1), // below the points cutoff
		centerWithGoals(5, "NoGames", 0, 12),      // below the games cutoff
	}

	recs, thresholds := ranker.Rank(pool)

	// Max games in pool is 10, so the lenient early-season cutoffs apply.
	assert.Equal(t, Thresholds{MinGames: 1, MinTotalPoints: 5}, thresholds)

	require.Len(t, recs, 2)
	assert.Equal(t, "Top", recs[0].Player.Name)
	assert.Equal(t, "Mid", recs[1].Player.Name)
	assert.Greater(t, recs[0].Analysis.ValueScore, recs[1].Analysis.ValueScore)
}

func TestRankKeepsInputOrderOnTies(t *testing.T) {
	ranker := newTestRanker(t, testAnalysisConfig())

	pool := []models.PlayerRecord{
		centerWithGoals(1, "First", 10, 5),
		centerWithGoals(2, "Second", 10, 5),
	}

	recs, _ := ranker.Rank(pool)
	require.Len(t, recs, 2)
	assert.Equal(t, "First", recs[0].Player.Name)
	assert.Equal(t, "Second", recs[1].Player.Name)
	assert.Equal(t, recs[0].Analysis.ValueScore, recs[1].Analysis.ValueScore)
}

func TestRankEmptyPool(t *testing.T) {
	ranker := newTestRanker(t, testAnalysisConfig())

	recs, thresholds := ranker.Rank(nil)
	assert.Empty(t, recs)
	assert.Equal(t, Thresholds{MinGames: 3, MinTotalPoints: 10}, thresholds)
}
