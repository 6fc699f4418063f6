package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

func poolWithMaxGames(games ...int) []models.PlayerRecord {
	pool := make([]models.PlayerRecord, 0, len(games))
	for i, g := range games {
		pool = append(pool, models.PlayerRecord{
			ID:    i + 1,
			Stats: models.StatLine{GamesPlayed: g},
		})
	}
	return pool
}

func TestSelectThresholds(t *testing.T) {
	tests := []struct {
		name     string
		pool     []models.PlayerRecord
		expected Thresholds
	}{
		{
			name:     "empty pool falls back",
			pool:     nil,
			expected: Thresholds{MinGames: 3, MinTotalPoints: 10},
		},
		{
			name:     "all zero games falls back",
			pool:     poolWithMaxGames(0, 0, 0),
			expected: Thresholds{MinGames: 3, MinTotalPoints: 10},
		},
		{
			name:     "early season is lenient",
			pool:     poolWithMaxGames(2, 5, 10),
			expected: Thresholds{MinGames: 1, MinTotalPoints: 5},
		},
		{
			name: "boundary at 11 games enters midseason",
			pool: poolWithMaxGames(3, 11),
			// max(3, round(0.15*11)) and max(10, round(0.8*11))
			expected: Thresholds{MinGames: 3, MinTotalPoints: 10},
		},
		{
			name: "midseason scales with games",
			pool: poolWithMaxGames(30, 12),
			// max(3, round(4.5)) and max(10, round(24))
			expected: Thresholds{MinGames: 5, MinTotalPoints: 24},
		},
		{
			name: "late season is strict",
			pool: poolWithMaxGames(60),
			// max(5, round(12)) and max(20, round(60))
			expected: Thresholds{MinGames: 12, MinTotalPoints: 60},
		},
		{
			name: "late season floor",
			pool: poolWithMaxGames(31),
			// max(5, round(6.2)) and max(20, round(31))
			expected: Thresholds{MinGames: 6, MinTotalPoints: 31},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectThresholds(tt.pool))
		})
	}
}

func TestSelectThresholdsIgnoresOtherStats(t *testing.T) {
	// Only games played drives the selection, never points.
	pool := []models.PlayerRecord{
		{Stats: models.StatLine{GamesPlayed: 8, Goals: 40, Assists: 40}},
	}
	assert.Equal(t, Thresholds{MinGames: 1, MinTotalPoints: 5}, SelectThresholds(pool))
}
