package services

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

// Ranker filters, scores, and orders the free-agent pool into the bounded
// recommendation list.
type Ranker struct {
	engine   *ScoringEngine
	allStars *AllStarTable
	weights  config.ValueWeights
	posMult  map[string]float64
	maxRecs  int
	logger   *logrus.Logger
}

// NewRanker creates a ranker with the injected analysis configuration.
func NewRanker(engine *ScoringEngine, allStars *AllStarTable, cfg config.AnalysisConfig, logger *logrus.Logger) *Ranker {
	return &Ranker{
		engine:   engine,
		allStars: allStars,
		weights:  cfg.ValueWeights,
		posMult:  cfg.PositionMultiplier,
		maxRecs:  cfg.MaxRecommendations,
		logger:   logger,
	}
}

// Score computes fantasy points and analysis metrics for every player in
// the pool. A failure on one record never aborts the batch: the player is
// retained with zeroed points and a neutral analysis, and a warning is
// logged.
func (r *Ranker) Score(pool []models.PlayerRecord) []models.Recommendation {
	scored := make([]models.Recommendation, 0, len(pool))

	for _, player := range pool {
		rec, err := r.scorePlayer(player)
		if err != nil {
			r.logger.WithError(err).WithFields(logrus.Fields{
				"player":   player.Name,
				"position": player.Position,
			}).Warn("Error processing player, retaining with neutral analysis")

			player.FantasyPoints = 0
			player.FantasyPointsPerGame = 0
			rec = models.Recommendation{Player: player}
		}
		scored = append(scored, rec)
	}

	return scored
}

// scorePlayer isolates per-record scoring so a panic on malformed data is
// contained to that record.
func (r *Ranker) scorePlayer(player models.PlayerRecord) (rec models.Recommendation, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scoring panicked: %v", p)
		}
	}()

	player.FantasyPoints = r.engine.FantasyPoints(player.Stats)
	player.FantasyPointsPerGame = r.engine.FantasyPointsPerGame(player.Stats)

	return models.Recommendation{
		Player:   player,
		Analysis: r.engine.Analyze(player),
	}, nil
}

// Rank filters the scored pool by the season-adaptive thresholds, computes
// value scores for the survivors, and returns the bounded, rank-ordered
// recommendation list together with the thresholds used.
func (r *Ranker) Rank(pool []models.PlayerRecord) ([]models.Recommendation, Thresholds) {
	scored := r.Score(pool)
	thresholds := SelectThresholds(pool)

	filtered := make([]models.Recommendation, 0, len(scored))
	for _, rec := range scored {
		// Both cutoffs apply, against total fantasy points rather than
		// the per-game rate.
		if rec.Player.Stats.GamesPlayed >= thresholds.MinGames &&
			rec.Player.FantasyPoints >= float64(thresholds.MinTotalPoints) {
			filtered = append(filtered, rec)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"min_games":        thresholds.MinGames,
		"min_total_points": thresholds.MinTotalPoints,
		"filtered":         len(filtered),
		"total":            len(scored),
	}).Info("Applied season-adaptive thresholds")

	for i := range filtered {
		filtered[i].Analysis.ValueScore = r.ValueScore(filtered[i].Player, filtered[i].Analysis)
	}

	// Stable sort keeps original input order on ties.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Analysis.ValueScore > filtered[j].Analysis.ValueScore
	})

	if len(filtered) > r.maxRecs {
		filtered = filtered[:r.maxRecs]
	}

	return filtered, thresholds
}

// ValueScore computes the composite value score for one player.
//
// Note: the injury-risk term enters with a positive weight against the
// higher-is-worse 0-10 risk scale, matching the documented formula. See
// DESIGN.md before changing the sign.
func (r *Ranker) ValueScore(player models.PlayerRecord, analysis models.AnalysisResult) float64 {
	score := 0.0
	score += player.FantasyPointsPerGame * r.weights.FantasyPointsPerGame
	score += analysis.ConsistencyRating * r.weights.Consistency
	score += analysis.UpsidePotential * r.weights.Upside
	score += analysis.PositionScarcity * r.weights.PositionScarcity
	score += analysis.InjuryRisk * r.weights.InjuryRisk

	// Roster-slot adjustment: goalies fill 2 starting slots vs 11 for
	// skaters, defensemen are scarcer than forwards.
	if mult, ok := r.posMult[string(player.Position)]; ok {
		score *= mult
	}

	score += r.allStars.Bonus(player.Name)

	// Small-sample penalty, growing as the sample shrinks.
	if games := player.Stats.GamesPlayed; games < 5 {
		penalty := 1.0 - float64(5-games)*0.1
		if penalty < 0.5 {
			penalty = 0.5
		}
		score *= penalty
	}

	if score < 0 {
		return 0
	}
	return score
}
