package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

func TestAllStarBonusTiers(t *testing.T) {
	table := NewAllStarTable(map[string]int{
		"Elite Player":  7,
		"High Player":   3,
		"Medium Player": 2,
		"Low Player":    1,
	}, testLogger())

	assert.Equal(t, 0.4, table.Bonus("Elite Player"))
	assert.Equal(t, 0.35, table.Bonus("High Player"))
	assert.Equal(t, 0.3, table.Bonus("Medium Player"))
	assert.Equal(t, 0.2, table.Bonus("Low Player"))
	assert.Equal(t, 0.0, table.Bonus("Nobody"))
}

func TestAllStarBonusExactTierBoundaries(t *testing.T) {
	table := NewAllStarTable(map[string]int{
		"Five": 5,
		"Four": 4,
	}, testLogger())

	assert.Equal(t, 0.4, table.Bonus("Five"))
	assert.Equal(t, 0.35, table.Bonus("Four"))
}

func TestLoadAllStarTableMissingFile(t *testing.T) {
	table := LoadAllStarTable(filepath.Join(t.TempDir(), "missing.json"), testLogger())

	assert.Equal(t, 0, table.Size())
	assert.Equal(t, 0.0, table.Bonus("Anyone"))
}

func TestLoadAllStarTableMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all_star_appearances.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	table := LoadAllStarTable(path, testLogger())

	assert.Equal(t, 0, table.Size())
	assert.Equal(t, 0.0, table.Bonus("Anyone"))
}

func TestLoadAllStarTableValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all_star_appearances.json")
	doc := `{
  "all_star_appearances": {"Sidney Example": 6, "Rookie Guy": 1},
  "last_updated": "2026-01-15",
  "season": "2025-26"
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	table := LoadAllStarTable(path, testLogger())

	assert.Equal(t, 2, table.Size())
	assert.Equal(t, 6, table.Appearances("Sidney Example"))
	assert.Equal(t, 0.4, table.Bonus("Sidney Example"))
	assert.Equal(t, 0.2, table.Bonus("Rookie Guy"))
}
