package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

// ESPNClient fetches league, roster, and free-agent data from the ESPN
// fantasy hockey API. Private leagues authenticate with the espn_s2 and
// SWID cookies; public leagues need neither.
type ESPNClient struct {
	httpClient     *http.Client
	logger         *logrus.Logger
	baseURL        string
	s2             string
	swid           string
	leagueID       int
	teamID         int
	season         int
	freeAgentLimit int
	rateLimiter    *time.Ticker
	circuitBreaker *gobreaker.CircuitBreaker
	retryAttempts  int
	mu             sync.Mutex
}

// NewESPNClient creates a client in the configured league and season.
func NewESPNClient(cfg config.ESPNConfig, logger *logrus.Logger) *ESPNClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "espn-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Info("ESPN API circuit breaker state changed")
		},
	})

	if cfg.S2 != "" && cfg.SWID != "" {
		logger.Info("ESPN client configured with private-league authentication")
	} else {
		logger.Info("ESPN client configured for a public league")
	}

	return &ESPNClient{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger:         logger,
		baseURL:        cfg.BaseURL,
		s2:             cfg.S2,
		swid:           cfg.SWID,
		leagueID:       cfg.LeagueID,
		teamID:         cfg.TeamID,
		season:         cfg.Season,
		freeAgentLimit: cfg.FreeAgentLimit,
		rateLimiter:    time.NewTicker(500 * time.Millisecond),
		circuitBreaker: cb,
		retryAttempts:  3,
	}
}

func (c *ESPNClient) leagueURL() string {
	return fmt.Sprintf("%s/apis/v3/games/fhl/seasons/%d/segments/0/leagues/%d",
		c.baseURL, c.season, c.leagueID)
}

// GetMyTeam returns the configured team's roster and record.
func (c *ESPNClient) GetMyTeam(ctx context.Context) (*models.TeamInfo, error) {
	var league leagueResponse
	if err := c.fetch(ctx, c.leagueURL()+"?view=mTeam&view=mRoster", "", &league); err != nil {
		return nil, fmt.Errorf("failed to fetch league teams: %w", err)
	}

	for _, team := range league.Teams {
		if team.ID != c.teamID {
			continue
		}

		info := &models.TeamInfo{
			TeamName: team.displayName(),
			TeamID:   team.ID,
			Record: fmt.Sprintf("%d-%d-%d",
				team.Record.Overall.Wins, team.Record.Overall.Losses, team.Record.Overall.Ties),
			Points: team.Record.Overall.PointsFor,
			Roster: c.convertRoster(team.Roster.Entries),
		}

		c.logger.WithFields(logrus.Fields{
			"team":        info.TeamName,
			"roster_size": len(info.Roster),
			"record":      info.Record,
		}).Info("Fetched my team")
		return info, nil
	}

	return nil, fmt.Errorf("team with ID %d not found in league %d", c.teamID, c.leagueID)
}

// GetAllTeams returns every roster in the league for comparison purposes.
func (c *ESPNClient) GetAllTeams(ctx context.Context) ([]models.LeagueTeam, error) {
	var league leagueResponse
	if err := c.fetch(ctx, c.leagueURL()+"?view=mTeam&view=mRoster", "", &league); err != nil {
		return nil, fmt.Errorf("failed to fetch league rosters: %w", err)
	}

	teams := make([]models.LeagueTeam, 0, len(league.Teams))
	for _, team := range league.Teams {
		teams = append(teams, models.LeagueTeam{
			TeamName: team.displayName(),
			TeamID:   team.ID,
			Roster:   c.convertRoster(team.Roster.Entries),
		})
	}

	return teams, nil
}

// GetLeagueStandings returns the standings ordered by rank.
func (c *ESPNClient) GetLeagueStandings(ctx context.Context) ([]models.StandingsEntry, error) {
	var league leagueResponse
	if err := c.fetch(ctx, c.leagueURL()+"?view=mTeam&view=mStandings", "", &league); err != nil {
		return nil, fmt.Errorf("failed to fetch standings: %w", err)
	}

	standings := make([]models.StandingsEntry, 0, len(league.Teams))
	for _, team := range league.Teams {
		standings = append(standings, models.StandingsEntry{
			TeamName: team.displayName(),
			TeamID:   team.ID,
			Record: fmt.Sprintf("%d-%d-%d",
				team.Record.Overall.Wins, team.Record.Overall.Losses, team.Record.Overall.Ties),
			Points: team.Record.Overall.PointsFor,
			Rank:   team.PlayoffSeed,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Rank < standings[j].Rank
	})
	return standings, nil
}

// GetFreeAgents returns available players, optionally filtered by position.
func (c *ESPNClient) GetFreeAgents(ctx context.Context, position models.Position) ([]models.PlayerRecord, error) {
	filter := buildFreeAgentFilter(c.freeAgentLimit)

	var resp playersResponse
	if err := c.fetch(ctx, c.leagueURL()+"?view=kona_player_info", filter, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch free agents: %w", err)
	}

	pool := make([]models.PlayerRecord, 0, len(resp.Players))
	for _, entry := range resp.Players {
		player := c.convertPlayer(entry.Player)
		if position != "" && player.Position != position {
			continue
		}
		pool = append(pool, player)
	}

	c.logger.WithFields(logrus.Fields{
		"count":    len(pool),
		"position": position,
	}).Info("Fetched free agents")
	return pool, nil
}

// buildFreeAgentFilter produces the X-Fantasy-Filter header that scopes the
// player view to unrostered players.
func buildFreeAgentFilter(limit int) string {
	filter := map[string]interface{}{
		"players": map[string]interface{}{
			"filterStatus": map[string]interface{}{
				"value": []string{"FREEAGENT", "WAIVERS"},
			},
			"limit": limit,
			"sortPercOwned": map[string]interface{}{
				"sortAsc":      false,
				"sortPriority": 1,
			},
		},
	}

	data, _ := json.Marshal(filter)
	return string(data)
}

// convertRoster maps roster entries into domain player records.
func (c *ESPNClient) convertRoster(entries []rosterEntry) []models.PlayerRecord {
	roster := make([]models.PlayerRecord, 0, len(entries))
	for _, entry := range entries {
		roster = append(roster, c.convertPlayer(entry.PlayerPoolEntry.Player))
	}
	return roster
}

// convertPlayer normalizes one wire player. Positions are resolved at this
// boundary; stat lines default every missing category to zero.
func (c *ESPNClient) convertPlayer(p espnPlayer) models.PlayerRecord {
	record := models.PlayerRecord{
		ID:                  p.ID,
		Name:                p.FullName,
		Position:            positionFromID(p.DefaultPositionID),
		Team:                proTeamAbbrev(p.ProTeamID),
		InjuryStatusRaw:     p.InjuryStatus,
		OwnershipPercentage: p.Ownership.PercentOwned,
	}

	if current := selectSeasonStats(p.Stats, c.season); current != nil {
		record.Stats = convertStatLine(current.Stats)
	}
	if prior := selectSeasonStats(p.Stats, c.season-1); prior != nil {
		line := convertStatLine(prior.Stats)
		record.LastYearStats = &line
	}

	return record
}

// selectSeasonStats picks the season-total actuals entry (statSourceId 0,
// statSplitTypeId 0) for the given season.
func selectSeasonStats(stats []espnStat, season int) *espnStat {
	for i := range stats {
		s := &stats[i]
		if s.SeasonID == season && s.StatSourceID == 0 && s.StatSplitTypeID == 0 {
			return s
		}
	}
	return nil
}

// convertStatLine maps ESPN stat IDs to the domain stat line. Goalies
// report games started rather than games played.
func convertStatLine(stats map[string]float64) models.StatLine {
	gamesPlayed := int(stats[statIDGamesPlayed])
	if gamesPlayed == 0 {
		gamesPlayed = int(stats[statIDGamesStarted])
	}

	return models.StatLine{
		GamesPlayed:       gamesPlayed,
		Goals:             stats[statIDGoals],
		Assists:           stats[statIDAssists],
		PlusMinus:         stats[statIDPlusMinus],
		PowerplayPoints:   stats[statIDPowerplayPoints],
		ShorthandedPoints: stats[statIDShorthandedPoints],
		ShotsOnGoal:       stats[statIDShotsOnGoal],
		Hits:              stats[statIDHits],
		Blocks:            stats[statIDBlocks],
		FaceoffsWon:       stats[statIDFaceoffsWon],
		PenaltyMinutes:    stats[statIDPenaltyMinutes],
		Wins:              stats[statIDWins],
		GoalsAgainst:      stats[statIDGoalsAgainst],
		Saves:             stats[statIDSaves],
		Shutouts:          stats[statIDShutouts],
		OvertimeLosses:    stats[statIDOvertimeLosses],
	}
}

// fetch performs a GET through the circuit breaker with rate limiting and
// bounded retries.
func (c *ESPNClient) fetch(ctx context.Context, rawURL, fantasyFilter string, target interface{}) error {
	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, c.makeRequest(ctx, rawURL, fantasyFilter, target)
	})
	return err
}

func (c *ESPNClient) makeRequest(ctx context.Context, rawURL, fantasyFilter string, target interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.rateLimiter.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
		if err != nil {
			return err
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "fantasy-hockey-pipeline/1.0.0")
		if fantasyFilter != "" {
			req.Header.Set("X-Fantasy-Filter", fantasyFilter)
		}
		if c.s2 != "" && c.swid != "" {
			req.AddCookie(&http.Cookie{Name: "espn_s2", Value: url.QueryEscape(c.s2)})
			req.AddCookie(&http.Cookie{Name: "SWID", Value: c.swid})
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}
			if err := json.Unmarshal(body, target); err != nil {
				c.logger.WithFields(logrus.Fields{
					"url":             rawURL,
					"response_length": len(body),
				}).WithError(err).Error("Failed to decode ESPN response")
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("ESPN rejected credentials (status %d), check espn_s2/SWID", resp.StatusCode)
		case http.StatusNotFound:
			return fmt.Errorf("league %d not found for season %d", c.leagueID, c.season)
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limit exceeded")
		default:
			lastErr = fmt.Errorf("API request failed with status %d", resp.StatusCode)
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)
}

// IsHealthy reports whether the circuit breaker is closed.
func (c *ESPNClient) IsHealthy() bool {
	return c.circuitBreaker.State() == gobreaker.StateClosed
}
