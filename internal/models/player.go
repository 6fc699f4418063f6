package models

import (
	"strings"
	"time"
)

// Position is the canonical player position. Raw feeds mix abbreviations
// ("G", "C", "D") with full names; everything is normalized to this enum at
// the ingestion boundary so downstream components never see both forms.
type Position string

const (
	PositionCenter    Position = "Center"
	PositionLeftWing  Position = "Left Wing"
	PositionRightWing Position = "Right Wing"
	PositionDefense   Position = "Defense"
	PositionGoalie    Position = "Goalie"
	PositionUnknown   Position = "Unknown"
)

// ParsePosition normalizes a raw position string to the canonical enum.
func ParsePosition(raw string) Position {
	switch strings.TrimSpace(raw) {
	case "C", "Center":
		return PositionCenter
	case "LW", "Left Wing":
		return PositionLeftWing
	case "RW", "Right Wing":
		return PositionRightWing
	case "D", "Defense", "Defenseman":
		return PositionDefense
	case "G", "Goalie", "Goalkeeper":
		return PositionGoalie
	default:
		return PositionUnknown
	}
}

// Abbreviation returns the short form used by scarcity tables and reports.
func (p Position) Abbreviation() string {
	switch p {
	case PositionCenter:
		return "C"
	case PositionLeftWing:
		return "LW"
	case PositionRightWing:
		return "RW"
	case PositionDefense:
		return "D"
	case PositionGoalie:
		return "G"
	default:
		return "?"
	}
}

// InjuryStatus is the classified form of the free-text status string the
// upstream feed reports.
type InjuryStatus string

const (
	InjuryHealthy      InjuryStatus = "healthy"
	InjuryProbable     InjuryStatus = "probable"
	InjuryQuestionable InjuryStatus = "questionable"
	InjuryDoubtful     InjuryStatus = "doubtful"
	InjuryOut          InjuryStatus = "out"
)

// ClassifyInjuryStatus maps a raw status string to the classified scale.
// Unknown or empty strings classify as healthy.
func ClassifyInjuryStatus(raw string) InjuryStatus {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "out"):
		return InjuryOut
	case strings.Contains(s, "doubtful"):
		return InjuryDoubtful
	case strings.Contains(s, "questionable"):
		return InjuryQuestionable
	case strings.Contains(s, "probable"):
		return InjuryProbable
	default:
		return InjuryHealthy
	}
}

// StatLine holds a player's counting stats for one season. Missing upstream
// fields default to zero; per-game rates always divide by max(GamesPlayed, 1).
type StatLine struct {
	GamesPlayed       int     `json:"games_played"`
	Goals             float64 `json:"goals"`
	Assists           float64 `json:"assists"`
	PlusMinus         float64 `json:"plus_minus"`
	PowerplayPoints   float64 `json:"powerplay_points"`
	ShorthandedPoints float64 `json:"shorthanded_points"`
	ShotsOnGoal       float64 `json:"shots_on_goal"`
	Hits              float64 `json:"hits"`
	Blocks            float64 `json:"blocks"`
	FaceoffsWon       float64 `json:"faceoffs_won"`
	PenaltyMinutes    float64 `json:"penalty_minutes"`

	// Goaltender categories.
	Wins           float64 `json:"wins"`
	GoalsAgainst   float64 `json:"goals_against"`
	Saves          float64 `json:"saves"`
	Shutouts       float64 `json:"shutouts"`
	OvertimeLosses float64 `json:"overtime_losses"`
}

// Category returns the named stat value. Unknown categories return zero so a
// weight-table mismatch yields zero contribution rather than an error.
func (s StatLine) Category(name string) float64 {
	switch name {
	case "goals":
		return s.Goals
	case "assists":
		return s.Assists
	case "plus_minus":
		return s.PlusMinus
	case "powerplay_points":
		return s.PowerplayPoints
	case "shorthanded_points":
		return s.ShorthandedPoints
	case "shots_on_goal":
		return s.ShotsOnGoal
	case "hits":
		return s.Hits
	case "blocks":
		return s.Blocks
	case "faceoffs_won":
		return s.FaceoffsWon
	case "penalty_minutes":
		return s.PenaltyMinutes
	case "wins":
		return s.Wins
	case "goals_against":
		return s.GoalsAgainst
	case "saves":
		return s.Saves
	case "shutouts":
		return s.Shutouts
	case "overtime_losses":
		return s.OvertimeLosses
	default:
		return 0
	}
}

// TotalPoints returns goals plus assists.
func (s StatLine) TotalPoints() float64 {
	return s.Goals + s.Assists
}

// ScoringWeights maps stat category names to signed league point values. The
// key set is fixed by league settings and shared with every consumer that
// computes fantasy points.
type ScoringWeights map[string]float64

// PlayerRecord is one player as seen by a single pipeline run. Records are
// built fresh from the upstream feed on every run and never mutated after
// scoring.
type PlayerRecord struct {
	ID                  int      `json:"id"`
	Name                string   `json:"name"`
	Position            Position `json:"position"`
	Team                string   `json:"team"`
	InjuryStatusRaw     string   `json:"injury_status"`
	OwnershipPercentage float64  `json:"ownership_percentage"`

	Stats         StatLine  `json:"stats"`
	LastYearStats *StatLine `json:"last_year_stats,omitempty"`

	FantasyPoints        float64 `json:"fantasy_points"`
	FantasyPointsPerGame float64 `json:"fantasy_points_per_game"`
}

// InjuryStatus returns the classified injury status.
func (p PlayerRecord) InjuryStatus() InjuryStatus {
	return ClassifyInjuryStatus(p.InjuryStatusRaw)
}

// AnalysisResult holds the derived metrics attached to a player after
// scoring. Computed once per run and immutable thereafter.
type AnalysisResult struct {
	ConsistencyRating float64 `json:"consistency_rating"`
	UpsidePotential   float64 `json:"upside_potential"`
	InjuryRisk        float64 `json:"injury_risk"`
	PositionScarcity  float64 `json:"position_scarcity"`
	ValueScore        float64 `json:"value_score"`
}

// Recommendation pairs a scored player with its analysis and the optional
// AI narrative.
type Recommendation struct {
	Player    PlayerRecord   `json:"player"`
	Analysis  AnalysisResult `json:"analysis"`
	AIInsight string         `json:"ai_insight,omitempty"`
}

// RecommendationSet is the ordered output of one ranking run. Insertion
// order is rank order (descending value score); the set is bounded and
// persisted as an immutable timestamped snapshot.
type RecommendationSet struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	TeamName    string           `json:"team_name"`
	MinGames    int              `json:"min_games"`
	MinPoints   int              `json:"min_total_points"`
	Players     []Recommendation `json:"players"`
}

// TeamInfo is the authenticated user's fantasy team.
type TeamInfo struct {
	TeamName string         `json:"team_name"`
	TeamID   int            `json:"team_id"`
	Record   string         `json:"record"`
	Points   float64        `json:"points"`
	Roster   []PlayerRecord `json:"roster"`
}

// LeagueTeam is another team's roster, collected for comparison purposes.
type LeagueTeam struct {
	TeamName string         `json:"team_name"`
	TeamID   int            `json:"team_id"`
	Roster   []PlayerRecord `json:"roster"`
}

// StandingsEntry is one row of the league standings.
type StandingsEntry struct {
	TeamName string  `json:"team_name"`
	TeamID   int     `json:"team_id"`
	Record   string  `json:"record"`
	Points   float64 `json:"points"`
	Rank     int     `json:"rank"`
}
