package providers

import "github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"

// Wire types for the ESPN fantasy hockey API (lm-api-reads views). Every
// field is optional on the wire; absent values decode to zero and the
// converters treat zero as "not reported".

type leagueResponse struct {
	ID              int          `json:"id"`
	ScoringPeriodID int          `json:"scoringPeriodId"`
	SeasonID        int          `json:"seasonId"`
	Status          leagueStatus `json:"status"`
	Teams           []espnTeam   `json:"teams"`
}

type leagueStatus struct {
	CurrentMatchupPeriod int  `json:"currentMatchupPeriod"`
	IsActive             bool `json:"isActive"`
}

type espnTeam struct {
	ID           int        `json:"id"`
	Abbreviation string     `json:"abbrev"`
	Name         string     `json:"name"`
	Location     string     `json:"location"`
	Nickname     string     `json:"nickname"`
	PlayoffSeed  int        `json:"playoffSeed"`
	Points       float64    `json:"points"`
	Roster       espnRoster `json:"roster"`
	Record       espnRecord `json:"record"`
}

// displayName handles both naming schemes ESPN has used: a single "name"
// field on newer seasons, location+nickname on older ones.
func (t espnTeam) displayName() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Location != "" || t.Nickname != "" {
		name := t.Location
		if name != "" && t.Nickname != "" {
			name += " "
		}
		return name + t.Nickname
	}
	return t.Abbreviation
}

type espnRoster struct {
	Entries []rosterEntry `json:"entries"`
}

type espnRecord struct {
	Overall recordDetails `json:"overall"`
}

type recordDetails struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	Percentage    float64 `json:"percentage"`
	PointsFor     float64 `json:"pointsFor"`
	PointsAgainst float64 `json:"pointsAgainst"`
}

type rosterEntry struct {
	PlayerPoolEntry playerPoolEntry `json:"playerPoolEntry"`
	LineupSlotID    int             `json:"lineupSlotId"`
}

type playersResponse struct {
	Players []playerPoolEntry `json:"players"`
}

type playerPoolEntry struct {
	ID               int        `json:"id"`
	OnTeamID         int        `json:"onTeamId"`
	Player           espnPlayer `json:"player"`
	AppliedStatTotal float64    `json:"appliedStatTotal"`
}

type espnPlayer struct {
	ID                int           `json:"id"`
	FullName          string        `json:"fullName"`
	DefaultPositionID int           `json:"defaultPositionId"`
	ProTeamID         int           `json:"proTeamId"`
	Ownership         espnOwnership `json:"ownership"`
	Stats             []espnStat    `json:"stats"`
	InjuryStatus      string        `json:"injuryStatus"`
}

type espnOwnership struct {
	PercentOwned float64 `json:"percentOwned"`
}

type espnStat struct {
	SeasonID        int                `json:"seasonId"`
	StatSourceID    int                `json:"statSourceId"`
	StatSplitTypeID int                `json:"statSplitTypeId"`
	ScoringPeriodID int                `json:"scoringPeriodId"`
	AppliedTotal    float64            `json:"appliedTotal"`
	Stats           map[string]float64 `json:"stats"`
}

// ESPN fantasy hockey position IDs.
var positionByID = map[int]models.Position{
	1: models.PositionCenter,
	2: models.PositionLeftWing,
	3: models.PositionRightWing,
	4: models.PositionDefense,
	5: models.PositionGoalie,
}

// ESPN fantasy hockey stat IDs for the categories the league scores,
// plus the games counters used for per-game rates.
const (
	statIDGoals             = "1"
	statIDAssists           = "2"
	statIDPlusMinus         = "4"
	statIDPenaltyMinutes    = "5"
	statIDPowerplayPoints   = "8"
	statIDShorthandedPoints = "11"
	statIDFaceoffsWon       = "13"
	statIDShotsOnGoal       = "19"
	statIDHits              = "27"
	statIDBlocks            = "28"
	statIDGamesPlayed       = "30"
	statIDGamesStarted      = "31"
	statIDWins              = "32"
	statIDOvertimeLosses    = "34"
	statIDGoalsAgainst      = "35"
	statIDSaves             = "37"
	statIDShutouts          = "39"
)

// NHL pro team abbreviations by ESPN team ID. Unknown IDs render as an
// empty team, which downstream treats as unaffiliated.
var proTeamByID = map[int]string{
	1: "BOS", 2: "BUF", 3: "CGY", 4: "CHI", 5: "DET", 6: "EDM", 7: "CAR",
	8: "LAK", 9: "DAL", 10: "MTL", 11: "NJD", 12: "NYI", 13: "NYR",
	14: "OTT", 15: "PHI", 16: "PIT", 17: "COL", 18: "SJS", 19: "STL",
	20: "TBL", 21: "TOR", 22: "VAN", 23: "WSH", 24: "ARI", 25: "ANA",
	26: "FLA", 27: "NSH", 28: "WPG", 29: "CBJ", 30: "MIN", 37: "VGK",
	124292: "SEA", 129764: "UTA",
}

func positionFromID(id int) models.Position {
	if pos, ok := positionByID[id]; ok {
		return pos
	}
	return models.PositionUnknown
}

func proTeamAbbrev(id int) string {
	return proTeamByID[id]
}
