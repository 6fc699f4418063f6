package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Position
	}{
		{"center abbreviation", "C", PositionCenter},
		{"center full name", "Center", PositionCenter},
		{"left wing abbreviation", "LW", PositionLeftWing},
		{"right wing full name", "Right Wing", PositionRightWing},
		{"defense abbreviation", "D", PositionDefense},
		{"defenseman variant", "Defenseman", PositionDefense},
		{"goalie abbreviation", "G", PositionGoalie},
		{"goalkeeper variant", "Goalkeeper", PositionGoalie},
		{"surrounding whitespace", "  C  ", PositionCenter},
		{"empty string", "", PositionUnknown},
		{"unrecognized", "Forward", PositionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePosition(tt.raw))
		})
	}
}

func TestClassifyInjuryStatus(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected InjuryStatus
	}{
		{"empty is healthy", "", InjuryHealthy},
		{"active is healthy", "ACTIVE", InjuryHealthy},
		{"out", "OUT", InjuryOut},
		{"day to day out", "Injured - out week to week", InjuryOut},
		{"doubtful", "Doubtful", InjuryDoubtful},
		{"questionable", "QUESTIONABLE", InjuryQuestionable},
		{"probable", "probable", InjuryProbable},
		{"unknown text is healthy", "suspension", InjuryHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyInjuryStatus(tt.raw))
		})
	}
}

func TestStatLineCategory(t *testing.T) {
	stats := StatLine{
		GamesPlayed:     10,
		Goals:           5,
		Assists:         8,
		PowerplayPoints: 3,
		Wins:            2,
		Saves:           120,
	}

	assert.Equal(t, 5.0, stats.Category("goals"))
	assert.Equal(t, 8.0, stats.Category("assists"))
	assert.Equal(t, 3.0, stats.Category("powerplay_points"))
	assert.Equal(t, 2.0, stats.Category("wins"))
	assert.Equal(t, 120.0, stats.Category("saves"))

	// Unknown categories contribute zero instead of erroring.
	assert.Equal(t, 0.0, stats.Category("corsi_for"))
	assert.Equal(t, 0.0, stats.Category(""))
}

func TestStatLineTotalPoints(t *testing.T) {
	stats := StatLine{Goals: 12, Assists: 18}
	assert.Equal(t, 30.0, stats.TotalPoints())
}

func TestPositionAbbreviation(t *testing.T) {
	assert.Equal(t, "C", PositionCenter.Abbreviation())
	assert.Equal(t, "LW", PositionLeftWing.Abbreviation())
	assert.Equal(t, "RW", PositionRightWing.Abbreviation())
	assert.Equal(t, "D", PositionDefense.Abbreviation())
	assert.Equal(t, "G", PositionGoalie.Abbreviation())
	assert.Equal(t, "?", PositionUnknown.Abbreviation())
}

func TestPlayerRecordInjuryStatus(t *testing.T) {
	player := PlayerRecord{Name: "Test Player", InjuryStatusRaw: "DAY_TO_DAY - questionable"}
	assert.Equal(t, InjuryQuestionable, player.InjuryStatus())

	healthy := PlayerRecord{Name: "Healthy Player"}
	assert.Equal(t, InjuryHealthy, healthy.InjuryStatus())
}
