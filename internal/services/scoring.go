package services

import (
	"math"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

// positionScarcity rates how hard each position is to fill off the wire
// (0-10, higher = scarcer). Used as a secondary scoring input, independent
// of the positional multiplier applied by the ranker.
var positionScarcity = map[models.Position]float64{
	models.PositionGoalie:    9.0,
	models.PositionCenter:    7.0,
	models.PositionLeftWing:  6.0,
	models.PositionRightWing: 6.0,
	models.PositionDefense:   5.0,
}

// injuryRiskScale maps classified injury status to a 0-10 risk rating
// (higher = worse).
var injuryRiskScale = map[models.InjuryStatus]float64{
	models.InjuryOut:          10.0,
	models.InjuryDoubtful:     8.0,
	models.InjuryQuestionable: 6.0,
	models.InjuryProbable:     3.0,
	models.InjuryHealthy:      1.0,
}

// ScoringEngine computes fantasy points and the derived per-player metrics.
// All methods are pure; the engine only carries the league weight table.
type ScoringEngine struct {
	weights models.ScoringWeights
}

// NewScoringEngine creates a scoring engine for the given league weights.
func NewScoringEngine(weights models.ScoringWeights) *ScoringEngine {
	return &ScoringEngine{weights: weights}
}

// FantasyPoints computes total fantasy points for a stat line under the
// league weights. Categories missing from either side contribute zero.
func (e *ScoringEngine) FantasyPoints(stats models.StatLine) float64 {
	total := 0.0
	for category, pointsPerUnit := range e.weights {
		total += stats.Category(category) * pointsPerUnit
	}
	return total
}

// FantasyPointsPerGame divides total fantasy points by games played,
// flooring the denominator at 1 so zero-game players never divide by zero.
func (e *ScoringEngine) FantasyPointsPerGame(stats models.StatLine) float64 {
	games := stats.GamesPlayed
	if games < 1 {
		games = 1
	}
	return e.FantasyPoints(stats) / float64(games)
}

// Consistency rates sample reliability on a 0-10 scale. Fewer than 5 games
// is too small a sample to judge, so it returns the neutral 5.0; beyond
// that the rating grows with games played. This is a placeholder heuristic,
// not a game-by-game variance model.
func (e *ScoringEngine) Consistency(stats models.StatLine) float64 {
	if stats.GamesPlayed < 5 {
		return 5.0
	}
	return math.Min(10.0, float64(stats.GamesPlayed)/2.0)
}

// Upside rates growth potential on a 0-10 scale from a handful of
// indicators: a hot shooting percentage, power-play usage, and a decent
// point total.
func (e *ScoringEngine) Upside(stats models.StatLine) float64 {
	indicators := 0.0

	if stats.ShotsOnGoal > 0 && stats.Goals/stats.ShotsOnGoal > 0.15 {
		indicators += 2
	}
	if stats.PowerplayPoints > 0 {
		indicators++
	}
	if stats.TotalPoints() > 10 {
		indicators++
	}

	return math.Min(10.0, indicators*2.5)
}

// InjuryRisk rates injury exposure on a 0-10 scale (higher = worse) from
// the classified status string.
func (e *ScoringEngine) InjuryRisk(player models.PlayerRecord) float64 {
	if risk, ok := injuryRiskScale[player.InjuryStatus()]; ok {
		return risk
	}
	return 1.0
}

// PositionScarcity rates how scarce the player's position is (0-10).
func (e *ScoringEngine) PositionScarcity(position models.Position) float64 {
	if scarcity, ok := positionScarcity[position]; ok {
		return scarcity
	}
	return 5.0
}

// Analyze computes the full metric set for a player. The value score is
// filled in later by the ranker, which owns the composite weights.
func (e *ScoringEngine) Analyze(player models.PlayerRecord) models.AnalysisResult {
	return models.AnalysisResult{
		ConsistencyRating: e.Consistency(player.Stats),
		UpsidePotential:   e.Upside(player.Stats),
		InjuryRisk:        e.InjuryRisk(player),
		PositionScarcity:  e.PositionScarcity(player.Position),
	}
}
