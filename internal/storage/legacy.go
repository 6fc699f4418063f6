package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

// Earlier pipeline versions persisted recommendations as a bare JSON array
// of flat player objects, with the value score appearing either at the top
// level or nested under "analysis" depending on the version. decodeRecommendations
// accepts both shapes and migrates legacy files into the canonical
// RecommendationSet so consumers never see schema drift.

type legacyRecommendation struct {
	ID                   int              `json:"id"`
	Name                 string           `json:"name"`
	Position             string           `json:"position"`
	Team                 string           `json:"team"`
	InjuryStatus         string           `json:"injury_status"`
	OwnershipPercentage  float64          `json:"ownership_percentage"`
	Stats                models.StatLine  `json:"stats"`
	LastYearStats        *models.StatLine `json:"last_year_stats"`
	FantasyPoints        float64          `json:"fantasy_points"`
	FantasyPointsPerGame float64          `json:"fantasy_points_per_game"`
	ValueScore           *float64         `json:"value_score"`
	Analysis             *legacyAnalysis  `json:"analysis"`
	AIInsight            string           `json:"ai_insight"`
}

type legacyAnalysis struct {
	ConsistencyRating float64 `json:"consistency_rating"`
	UpsidePotential   float64 `json:"upside_potential"`
	InjuryRisk        float64 `json:"injury_risk"`
	PositionScarcity  float64 `json:"position_scarcity"`
	ValueScore        float64 `json:"value_score"`
}

// decodeRecommendations decodes canonical snapshots directly and migrates
// legacy array files.
func decodeRecommendations(data []byte) (*models.RecommendationSet, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}

	if trimmed[0] == '[' {
		return migrateLegacy(trimmed)
	}

	var set models.RecommendationSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func migrateLegacy(data []byte) (*models.RecommendationSet, error) {
	var legacy []legacyRecommendation
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("failed to decode legacy snapshot: %w", err)
	}

	set := &models.RecommendationSet{
		Players: make([]models.Recommendation, 0, len(legacy)),
	}

	for _, l := range legacy {
		rec := models.Recommendation{
			Player: models.PlayerRecord{
				ID:                   l.ID,
				Name:                 l.Name,
				Position:             models.ParsePosition(l.Position),
				Team:                 l.Team,
				InjuryStatusRaw:      l.InjuryStatus,
				OwnershipPercentage:  l.OwnershipPercentage,
				Stats:                l.Stats,
				LastYearStats:        l.LastYearStats,
				FantasyPoints:        l.FantasyPoints,
				FantasyPointsPerGame: l.FantasyPointsPerGame,
			},
			AIInsight: l.AIInsight,
		}

		if l.Analysis != nil {
			rec.Analysis = models.AnalysisResult{
				ConsistencyRating: l.Analysis.ConsistencyRating,
				UpsidePotential:   l.Analysis.UpsidePotential,
				InjuryRisk:        l.Analysis.InjuryRisk,
				PositionScarcity:  l.Analysis.PositionScarcity,
				ValueScore:        l.Analysis.ValueScore,
			}
		}
		// A top-level value score wins over the nested one when present.
		if l.ValueScore != nil {
			rec.Analysis.ValueScore = *l.ValueScore
		}

		set.Players = append(set.Players, rec)
	}

	return set, nil
}
