package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

// SwapEvaluator compares each rostered player against same-position free
// agents and classifies the result as Keep, Consider Swap, or Must Swap.
type SwapEvaluator struct {
	engine     *ScoringEngine
	allStars   *AllStarTable
	mustSwap   float64
	consider   float64
	maxTargets int
	logger     *logrus.Logger
}

// NewSwapEvaluator creates an evaluator with the injected thresholds.
func NewSwapEvaluator(engine *ScoringEngine, allStars *AllStarTable, cfg config.SwapConfig, logger *logrus.Logger) *SwapEvaluator {
	return &SwapEvaluator{
		engine:     engine,
		allStars:   allStars,
		mustSwap:   cfg.MustSwapScore,
		consider:   cfg.ConsiderSwapScore,
		maxTargets: cfg.MaxTargets,
		logger:     logger,
	}
}

// Evaluate runs the swap analysis for a full roster against the free-agent
// pool. Pool entries are expected to carry computed FP/G already; rostered
// players missing it get one computed from their stat line.
func (e *SwapEvaluator) Evaluate(runID, teamName string, roster []models.PlayerRecord, pool []models.PlayerRecord) models.SwapAnalysis {
	analysis := models.SwapAnalysis{
		RunID:           runID,
		GeneratedAt:     time.Now().UTC(),
		TeamName:        teamName,
		Recommendations: make([]models.SwapRecommendation, 0, len(roster)),
	}

	for _, player := range roster {
		analysis.Recommendations = append(analysis.Recommendations, e.EvaluatePlayer(player, pool))
	}

	return analysis
}

// EvaluatePlayer classifies one rostered player against the pool.
func (e *SwapEvaluator) EvaluatePlayer(player models.PlayerRecord, pool []models.PlayerRecord) models.SwapRecommendation {
	if player.FantasyPointsPerGame == 0 {
		player.FantasyPointsPerGame = e.engine.FantasyPointsPerGame(player.Stats)
	}

	targets, considered := e.findTargets(player, pool)
	if len(targets) == 0 {
		return models.SwapRecommendation{
			Player:    player,
			Verdict:   models.VerdictKeep,
			Rationale: e.keepRationale(player, pool, considered),
		}
	}

	best := targets[0]
	verdict := models.VerdictKeep
	switch {
	case best.SwapScore >= e.mustSwap:
		verdict = models.VerdictMustSwap
	case best.SwapScore >= e.consider:
		verdict = models.VerdictConsiderSwap
	}

	rationale := models.SwapRationale{
		Verdict:    verdict,
		TargetName: best.Player.Name,
		Delta:      best.Delta,
		Considered: considered,
	}
	if verdict == models.VerdictKeep {
		rationale.Factors = e.lowScoreFactors(player, best)
	}

	e.logger.WithFields(logrus.Fields{
		"player":     player.Name,
		"position":   player.Position,
		"verdict":    verdict,
		"swap_score": best.SwapScore,
		"target":     best.Player.Name,
	}).Debug("Evaluated swap candidate")

	return models.SwapRecommendation{
		Player:    player,
		Verdict:   verdict,
		Rationale: rationale,
		Targets:   targets,
	}
}

// findTargets returns up to maxTargets same-position free agents with
// strictly higher FP/G, ordered by improvement margin, plus the count of
// same-position agents considered.
func (e *SwapEvaluator) findTargets(player models.PlayerRecord, pool []models.PlayerRecord) ([]models.SwapTarget, int) {
	considered := 0
	targets := make([]models.SwapTarget, 0, e.maxTargets)

	for _, agent := range pool {
		if agent.Position != player.Position {
			continue
		}
		considered++
		if agent.FantasyPointsPerGame > player.FantasyPointsPerGame {
			delta := agent.FantasyPointsPerGame - player.FantasyPointsPerGame
			targets = append(targets, models.SwapTarget{
				Player: agent,
				Delta:  delta,
			})
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Delta > targets[j].Delta
	})
	if len(targets) > e.maxTargets {
		targets = targets[:e.maxTargets]
	}

	for i := range targets {
		targets[i].SwapScore = e.SwapScore(player, targets[i].Player)
	}

	return targets, considered
}

// SwapScore computes the score for replacing current with target. The base
// is the raw FP/G improvement; reliability, track record, and availability
// adjust it by fixed increments.
func (e *SwapEvaluator) SwapScore(current, target models.PlayerRecord) float64 {
	currentFPG := current.FantasyPointsPerGame
	if currentFPG == 0 {
		currentFPG = e.engine.FantasyPointsPerGame(current.Stats)
	}

	score := target.FantasyPointsPerGame - currentFPG

	// Larger samples are more trustworthy.
	switch games := target.Stats.GamesPlayed; {
	case games >= 5:
		score += 2
	case games >= 3:
		score += 1
	}

	// Historical track record tiers.
	switch bonus := e.allStars.Bonus(target.Name); {
	case bonus > 0.3:
		score += 3
	case bonus > 0.2:
		score += 2
	case bonus > 0.1:
		score += 1
	}

	switch target.InjuryStatus() {
	case models.InjuryOut:
		score -= 5
	case models.InjuryDoubtful:
		score -= 2
	case models.InjuryQuestionable:
		score -= 1
	}

	return score
}

// keepRationale explains a Keep verdict when no candidate cleared the
// strictly-higher FP/G filter, enumerating position depth so the verdict
// never reads as an unexamined default.
func (e *SwapEvaluator) keepRationale(player models.PlayerRecord, pool []models.PlayerRecord, considered int) models.SwapRationale {
	rationale := models.SwapRationale{
		Verdict:    models.VerdictKeep,
		Considered: considered,
	}

	var best *models.PlayerRecord
	for i := range pool {
		if pool[i].Position != player.Position {
			continue
		}
		if best == nil || pool[i].FantasyPointsPerGame > best.FantasyPointsPerGame {
			best = &pool[i]
		}
	}

	switch {
	case considered == 0:
		rationale.Factors = append(rationale.Factors,
			fmt.Sprintf("No %ss available in free agency", player.Position))
	case considered <= 3:
		rationale.Factors = append(rationale.Factors,
			fmt.Sprintf("Very limited %s options available (%d total)", player.Position, considered))
	default:
		rationale.Factors = append(rationale.Factors,
			fmt.Sprintf("Analyzed %d available %ss", considered, player.Position))
	}

	rationale.Factors = append(rationale.Factors, "No players with better FP/G found")

	if best != nil {
		rationale.Factors = append(rationale.Factors,
			fmt.Sprintf("Best available (%s) has %.1f FP/G vs your %.1f",
				best.Name, best.FantasyPointsPerGame, player.FantasyPointsPerGame))
	}

	if bonus := e.allStars.Bonus(player.Name); bonus > 0.1 {
		rationale.Factors = append(rationale.Factors,
			fmt.Sprintf("Strong historical track record (%.1f bonus)", bonus))
	}

	if status := player.InjuryStatus(); status != models.InjuryHealthy {
		rationale.Factors = append(rationale.Factors, fmt.Sprintf("Currently %s", status))
	}

	return rationale
}

// lowScoreFactors explains a Keep verdict where a nominally better target
// exists but the swap score stayed below the consider threshold.
func (e *SwapEvaluator) lowScoreFactors(player models.PlayerRecord, best models.SwapTarget) []string {
	var factors []string

	playerGames := player.Stats.GamesPlayed
	targetGames := best.Player.Stats.GamesPlayed
	if playerGames >= 5 && targetGames < 3 {
		factors = append(factors, "Your player has more reliable sample size")
	} else if targetGames >= 5 && playerGames < 3 {
		factors = append(factors, "Target has more reliable sample size")
	}

	playerBonus := e.allStars.Bonus(player.Name)
	targetBonus := e.allStars.Bonus(best.Player.Name)
	if playerBonus > targetBonus+0.1 {
		factors = append(factors, "Your player has stronger historical track record")
	} else if targetBonus > playerBonus+0.1 {
		factors = append(factors, "Target has stronger historical track record")
	}

	playerHealthy := player.InjuryStatus() == models.InjuryHealthy
	targetHealthy := best.Player.InjuryStatus() == models.InjuryHealthy
	if playerHealthy && !targetHealthy {
		factors = append(factors, "Your player is healthy, target is not")
	} else if targetHealthy && !playerHealthy {
		factors = append(factors, "Target is healthy, your player is not")
	}

	switch {
	case best.SwapScore < 0:
		factors = append(factors, "Swap would be a downgrade")
	case best.SwapScore < 2:
		factors = append(factors, "Minimal improvement, not worth the risk")
	default:
		factors = append(factors, "Small improvement, consider holding")
	}

	return factors
}
