package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

const testSeason = 2026

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

func newTestClient(t *testing.T, serverURL string) *ESPNClient {
	t.Helper()
	return NewESPNClient(config.ESPNConfig{
		BaseURL:        serverURL,
		LeagueID:       12345,
		TeamID:         3,
		Season:         testSeason,
		RequestTimeout: 5 * time.Second,
		FreeAgentLimit: 50,
	}, testLogger())
}

func leagueFixture() map[string]interface{} {
	return map[string]interface{}{
		"id":       12345,
		"seasonId": testSeason,
		"teams": []map[string]interface{}{
			{
				"id":          3,
				"abbrev":      "TT",
				"name":        "Test Team",
				"playoffSeed": 2,
				"record": map[string]interface{}{
					"overall": map[string]interface{}{
						"wins": 10, "losses": 4, "ties": 2, "pointsFor": 412.5,
					},
				},
				"roster": map[string]interface{}{
					"entries": []map[string]interface{}{
						{
							"playerPoolEntry": map[string]interface{}{
								"player": map[string]interface{}{
									"id":                101,
									"fullName":          "Rostered Center",
									"defaultPositionId": 1,
									"proTeamId":         21,
									"injuryStatus":      "ACTIVE",
									"ownership":         map[string]interface{}{"percentOwned": 98.5},
									"stats": []map[string]interface{}{
										{
											"seasonId":        testSeason,
											"statSourceId":    0,
											"statSplitTypeId": 0,
											"stats": map[string]float64{
												"1": 8, "2": 12, "19": 40, "30": 15,
											},
										},
										{
											"seasonId":        testSeason - 1,
											"statSourceId":    0,
											"statSplitTypeId": 0,
											"stats": map[string]float64{
												"1": 30, "2": 40, "30": 80,
											},
										},
									},
								},
							},
						},
					},
				},
			},
			{
				"id":          1,
				"location":    "Legacy",
				"nickname":    "Naming",
				"playoffSeed": 1,
				"record": map[string]interface{}{
					"overall": map[string]interface{}{
						"wins": 12, "losses": 2, "ties": 2, "pointsFor": 480.0,
					},
				},
			},
		},
	}
}

func TestGetMyTeam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apis/v3/games/fhl/seasons/2026/segments/0/leagues/12345", r.URL.Path)
		json.NewEncoder(w).Encode(leagueFixture())
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	team, err := client.GetMyTeam(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Test Team", team.TeamName)
	assert.Equal(t, 3, team.TeamID)
	assert.Equal(t, "10-4-2", team.Record)
	assert.Equal(t, 412.5, team.Points)
	require.Len(t, team.Roster, 1)

	player := team.Roster[0]
	assert.Equal(t, "Rostered Center", player.Name)
	assert.Equal(t, models.PositionCenter, player.Position)
	assert.Equal(t, "TOR", player.Team)
	assert.Equal(t, 98.5, player.OwnershipPercentage)

	// Current-season actuals populate the stat line.
	assert.Equal(t, 15, player.Stats.GamesPlayed)
	assert.Equal(t, 8.0, player.Stats.Goals)
	assert.Equal(t, 12.0, player.Stats.Assists)
	assert.Equal(t, 40.0, player.Stats.ShotsOnGoal)

	// Prior-season actuals land separately.
	require.NotNil(t, player.LastYearStats)
	assert.Equal(t, 80, player.LastYearStats.GamesPlayed)
	assert.Equal(t, 30.0, player.LastYearStats.Goals)
}

func TestGetMyTeamNotFound(t *testing.T) {
	fixture := leagueFixture()
	fixture["teams"] = []map[string]interface{}{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fixture)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetMyTeam(context.Background())
	assert.ErrorContains(t, err, "not found")
}

func TestGetLeagueStandingsOrderedByRank(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(leagueFixture())
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	standings, err := client.GetLeagueStandings(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 2)

	// The seed-1 team sorts first despite appearing second in the feed,
	// and the legacy location+nickname naming still resolves.
	assert.Equal(t, "Legacy Naming", standings[0].TeamName)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, "Test Team", standings[1].TeamName)
	assert.Equal(t, "12-2-2", standings[0].Record)
}

func TestGetFreeAgents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The player view must be scoped by the fantasy filter header.
		filter := r.Header.Get("X-Fantasy-Filter")
		assert.Contains(t, filter, "FREEAGENT")
		assert.Contains(t, filter, "WAIVERS")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"players": []map[string]interface{}{
				{
					"player": map[string]interface{}{
						"id":                201,
						"fullName":          "Available Goalie",
						"defaultPositionId": 5,
						"proTeamId":         6,
						"stats": []map[string]interface{}{
							{
								"seasonId":        testSeason,
								"statSourceId":    0,
								"statSplitTypeId": 0,
								// Goalies report games started, not games played.
								"stats": map[string]float64{"31": 12, "32": 7, "37": 310},
							},
						},
					},
				},
				{
					"player": map[string]interface{}{
						"id":                202,
						"fullName":          "Available Winger",
						"defaultPositionId": 2,
						"proTeamId":         22,
					},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	pool, err := client.GetFreeAgents(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, pool, 2)

	goalie := pool[0]
	assert.Equal(t, models.PositionGoalie, goalie.Position)
	assert.Equal(t, "EDM", goalie.Team)
	assert.Equal(t, 12, goalie.Stats.GamesPlayed) // falls back to games started
	assert.Equal(t, 7.0, goalie.Stats.Wins)

	// A player with no stats block decodes to a zeroed line.
	winger := pool[1]
	assert.Equal(t, models.PositionLeftWing, winger.Position)
	assert.Equal(t, 0, winger.Stats.GamesPlayed)
	assert.Nil(t, winger.LastYearStats)
}

func TestGetFreeAgentsPositionFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"players": []map[string]interface{}{
				{"player": map[string]interface{}{"id": 1, "fullName": "C1", "defaultPositionId": 1}},
				{"player": map[string]interface{}{"id": 2, "fullName": "D1", "defaultPositionId": 4}},
				{"player": map[string]interface{}{"id": 3, "fullName": "C2", "defaultPositionId": 1}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	pool, err := client.GetFreeAgents(context.Background(), models.PositionCenter)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	for _, p := range pool {
		assert.Equal(t, models.PositionCenter, p.Position)
	}
}

func TestFetchRejectedCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetMyTeam(context.Background())
	assert.ErrorContains(t, err, "rejected credentials")
}

func TestMakeRequestSendsAuthCookies(t *testing.T) {
	var gotS2, gotSWID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("espn_s2"); err == nil {
			gotS2 = c.Value
		}
		if c, err := r.Cookie("SWID"); err == nil {
			gotSWID = c.Value
		}
		json.NewEncoder(w).Encode(leagueFixture())
	}))
	defer server.Close()

	client := NewESPNClient(config.ESPNConfig{
		BaseURL:        server.URL,
		LeagueID:       12345,
		TeamID:         3,
		Season:         testSeason,
		S2:             "secret-token",
		SWID:           "{ABC-123}",
		RequestTimeout: 5 * time.Second,
	}, testLogger())

	_, err := client.GetMyTeam(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret-token", gotS2)
	assert.Equal(t, "{ABC-123}", gotSWID)
}

func TestSelectSeasonStats(t *testing.T) {
	stats := []espnStat{
		{SeasonID: testSeason, StatSourceID: 1, StatSplitTypeID: 0}, // projection, skipped
		{SeasonID: testSeason, StatSourceID: 0, StatSplitTypeID: 1}, // split, skipped
		{SeasonID: testSeason, StatSourceID: 0, StatSplitTypeID: 0, AppliedTotal: 42},
	}

	selected := selectSeasonStats(stats, testSeason)
	require.NotNil(t, selected)
	assert.Equal(t, 42.0, selected.AppliedTotal)

	assert.Nil(t, selectSeasonStats(stats, testSeason-1))
}
