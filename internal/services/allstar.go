package services

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
)

// AllStarTable maps player names to career All-Star appearance counts and
// converts them to the historical value-score bonus. The table is externally
// maintained and read-only here; if the file is missing or malformed every
// lookup returns a zero bonus rather than blocking scoring.
type AllStarTable struct {
	appearances map[string]int
	logger      *logrus.Logger
}

// allStarFile is the on-disk document shape.
type allStarFile struct {
	Appearances map[string]int `json:"all_star_appearances"`
	LastUpdated string         `json:"last_updated"`
	Season      string         `json:"season"`
}

// LoadAllStarTable reads the appearance table from path. Any failure
// degrades to an empty table with a logged warning.
func LoadAllStarTable(path string, logger *logrus.Logger) *AllStarTable {
	table := &AllStarTable{
		appearances: map[string]int{},
		logger:      logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Warn("All-Star data file not found, using empty table")
		return table
	}

	var file allStarFile
	if err := json.Unmarshal(data, &file); err != nil {
		logger.WithError(err).WithField("path", path).Warn("Failed to parse All-Star data, using empty table")
		return table
	}

	if file.Appearances != nil {
		table.appearances = file.Appearances
	}

	logger.WithFields(logrus.Fields{
		"players":      len(table.appearances),
		"last_updated": file.LastUpdated,
	}).Debug("Loaded All-Star appearance table")

	return table
}

// NewAllStarTable builds a table from an in-memory appearance map.
func NewAllStarTable(appearances map[string]int, logger *logrus.Logger) *AllStarTable {
	if appearances == nil {
		appearances = map[string]int{}
	}
	return &AllStarTable{appearances: appearances, logger: logger}
}

// Appearances returns the recorded All-Star appearance count for the player.
// Names are matched exactly as they appear in the table.
func (t *AllStarTable) Appearances(playerName string) int {
	return t.appearances[playerName]
}

// Bonus converts the player's appearance count to the value-score bonus via
// a monotonic step function.
func (t *AllStarTable) Bonus(playerName string) float64 {
	switch appearances := t.Appearances(playerName); {
	case appearances >= 5:
		return 0.4 // Elite tier
	case appearances >= 3:
		return 0.35 // High tier
	case appearances >= 2:
		return 0.3 // Medium tier
	case appearances >= 1:
		return 0.2 // Low tier
	default:
		return 0.0
	}
}

// Size returns how many players the table covers.
func (t *AllStarTable) Size() int {
	return len(t.appearances)
}
