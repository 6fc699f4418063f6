package services

import (
	"math"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

// Thresholds are the minimum games-played and total-fantasy-points cutoffs
// applied before ranking.
type Thresholds struct {
	MinGames       int `json:"min_games"`
	MinTotalPoints int `json:"min_total_points"`
}

// fallbackThresholds applies when the candidate pool is empty or reports no
// games at all.
var fallbackThresholds = Thresholds{MinGames: 3, MinTotalPoints: 10}

// SelectThresholds derives season-adaptive cutoffs from the maximum games
// played observed across the candidate pool. A fixed threshold either
// excludes everyone in week one or admits injury-replacement noise by
// midseason, so the cutoffs scale with season progress:
//
//   - early season (max 10 games): lenient, to catch breakouts
//   - mid season (11-30 games): moderate, roughly 0.8 points per game
//   - late season (31+ games): strict, roughly 1.0 points per game
func SelectThresholds(pool []models.PlayerRecord) Thresholds {
	maxGames := 0
	for _, p := range pool {
		if p.Stats.GamesPlayed > maxGames {
			maxGames = p.Stats.GamesPlayed
		}
	}

	if maxGames == 0 {
		return fallbackThresholds
	}

	switch {
	case maxGames <= 10:
		return Thresholds{MinGames: 1, MinTotalPoints: 5}
	case maxGames <= 30:
		return Thresholds{
			MinGames:       maxInt(3, roundInt(0.15*float64(maxGames))),
			MinTotalPoints: maxInt(10, roundInt(0.8*float64(maxGames))),
		}
	default:
		return Thresholds{
			MinGames:       maxInt(5, roundInt(0.2*float64(maxGames))),
			MinTotalPoints: maxInt(20, roundInt(1.0*float64(maxGames))),
		}
	}
}

func roundInt(f float64) int {
	return int(math.Round(f))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
