package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/storage"
)

// DataProvider is the upstream league data source consumed by a run.
type DataProvider interface {
	GetMyTeam(ctx context.Context) (*models.TeamInfo, error)
	GetAllTeams(ctx context.Context) ([]models.LeagueTeam, error)
	GetLeagueStandings(ctx context.Context) ([]models.StandingsEntry, error)
	GetFreeAgents(ctx context.Context, position models.Position) ([]models.PlayerRecord, error)
}

// RunResult is the terse outcome of one pipeline invocation.
type RunResult struct {
	RunID                string    `json:"run_id"`
	Timestamp            time.Time `json:"timestamp"`
	TeamName             string    `json:"team_name"`
	RecommendationsCount int       `json:"recommendations_count"`
	TopRecommendation    string    `json:"top_recommendation,omitempty"`
}

// Pipeline orchestrates one batch analysis run: fetch, score, rank, swap
// evaluation, narrative generation, persistence.
type Pipeline struct {
	provider  DataProvider
	engine    *ScoringEngine
	ranker    *Ranker
	swaps     *SwapEvaluator
	narrative *NarrativeGenerator
	store     *storage.Store
	cache     *CacheService
	logger    *logrus.Logger

	runTimeout      time.Duration
	quickCheckLimit int
}

// NewPipeline wires the run components together.
func NewPipeline(
	provider DataProvider,
	engine *ScoringEngine,
	ranker *Ranker,
	swaps *SwapEvaluator,
	narrative *NarrativeGenerator,
	store *storage.Store,
	cache *CacheService,
	cfg config.PipelineConfig,
	logger *logrus.Logger,
) *Pipeline {
	return &Pipeline{
		provider:        provider,
		engine:          engine,
		ranker:          ranker,
		swaps:           swaps,
		narrative:       narrative,
		store:           store,
		cache:           cache,
		logger:          logger,
		runTimeout:      cfg.RunTimeout,
		quickCheckLimit: cfg.QuickCheckLimit,
	}
}

// RunFullAnalysis executes the whole pipeline once. A fetch failure or an
// empty roster or pool aborts the run before anything is persisted; a
// persistence failure marks the run failed. The run is bounded by the
// configured wall-clock timeout.
func (p *Pipeline) RunFullAnalysis(ctx context.Context) (*RunResult, error) {
	runID := uuid.New().String()
	startedAt := time.Now()
	log := p.logger.WithField("run_id", runID)

	ctx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	log.Info("Starting fantasy hockey pipeline analysis")

	log.Info("Step 1: Collecting data from ESPN")
	team, err := p.provider.GetMyTeam(ctx)
	if err != nil {
		return nil, fmt.Errorf("data collection failed: %w", err)
	}
	pool, err := p.provider.GetFreeAgents(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("data collection failed: %w", err)
	}
	standings, err := p.provider.GetLeagueStandings(ctx)
	if err != nil {
		return nil, fmt.Errorf("data collection failed: %w", err)
	}
	allTeams, err := p.provider.GetAllTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("data collection failed: %w", err)
	}
	if len(team.Roster) == 0 || len(pool) == 0 {
		return nil, fmt.Errorf("data collection returned empty roster or free-agent pool")
	}

	log.Info("Step 2: Analyzing players and generating recommendations")
	p.scoreRoster(team.Roster)
	ranked, thresholds := p.ranker.Rank(pool)

	set := models.RecommendationSet{
		RunID:       runID,
		GeneratedAt: startedAt.UTC(),
		TeamName:    team.TeamName,
		MinGames:    thresholds.MinGames,
		MinPoints:   thresholds.MinTotalPoints,
		Players:     ranked,
	}

	log.Info("Step 3: Evaluating roster swaps")
	scoredPool := p.scoredPool(pool)
	swapAnalysis := p.swaps.Evaluate(runID, team.TeamName, team.Roster, scoredPool)

	log.Info("Step 4: Generating AI insights")
	p.narrative.Annotate(ctx, set.Players, *team)

	log.Info("Step 5: Saving analysis results")
	summary := p.buildSummary(startedAt, team, set, standings)
	if err := p.persist(startedAt, team, scoredPool, standings, allTeams, set, swapAnalysis, summary); err != nil {
		return nil, fmt.Errorf("persistence failed: %w", err)
	}
	p.primeCache(ctx, team, scoredPool, standings, set, swapAnalysis, summary)

	result := &RunResult{
		RunID:                runID,
		Timestamp:            startedAt,
		TeamName:             team.TeamName,
		RecommendationsCount: len(set.Players),
	}
	if len(set.Players) > 0 {
		result.TopRecommendation = set.Players[0].Player.Name
	}

	log.WithFields(logrus.Fields{
		"team":            result.TeamName,
		"recommendations": result.RecommendationsCount,
		"duration":        time.Since(startedAt).String(),
	}).Info("Pipeline analysis completed")
	return result, nil
}

// QuickCheck analyzes a truncated free-agent pool for immediate insights.
// Nothing is persisted.
func (p *Pipeline) QuickCheck(ctx context.Context) (*models.RecommendationSet, error) {
	runID := uuid.New().String()
	log := p.logger.WithField("run_id", runID)

	ctx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	log.Info("Running quick fantasy hockey check")

	team, err := p.provider.GetMyTeam(ctx)
	if err != nil {
		return nil, fmt.Errorf("quick check failed: %w", err)
	}
	pool, err := p.provider.GetFreeAgents(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("quick check failed: %w", err)
	}
	if len(team.Roster) == 0 || len(pool) == 0 {
		return nil, fmt.Errorf("quick check failed: no data available")
	}

	if len(pool) > p.quickCheckLimit {
		pool = pool[:p.quickCheckLimit]
	}
	ranked, thresholds := p.ranker.Rank(pool)

	return &models.RecommendationSet{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		TeamName:    team.TeamName,
		MinGames:    thresholds.MinGames,
		MinPoints:   thresholds.MinTotalPoints,
		Players:     ranked,
	}, nil
}

// Cleanup applies the snapshot retention policy.
func (p *Pipeline) Cleanup() error {
	_, err := p.store.Cleanup()
	return err
}

// scoreRoster fills computed fantasy points on rostered players so swap
// comparisons and reports see the same numbers as the ranker.
func (p *Pipeline) scoreRoster(roster []models.PlayerRecord) {
	for i := range roster {
		roster[i].FantasyPoints = p.engine.FantasyPoints(roster[i].Stats)
		roster[i].FantasyPointsPerGame = p.engine.FantasyPointsPerGame(roster[i].Stats)
	}
}

func (p *Pipeline) scoredPool(pool []models.PlayerRecord) []models.PlayerRecord {
	scored := make([]models.PlayerRecord, len(pool))
	copy(scored, pool)
	p.scoreRoster(scored)
	return scored
}

// persist writes every snapshot for the run. Raw data first, then analysis
// outputs, then the digest and markdown report.
func (p *Pipeline) persist(
	startedAt time.Time,
	team *models.TeamInfo,
	pool []models.PlayerRecord,
	standings []models.StandingsEntry,
	allTeams []models.LeagueTeam,
	set models.RecommendationSet,
	swapAnalysis models.SwapAnalysis,
	summary models.RunSummary,
) error {
	if err := p.store.SaveRaw(storage.CategoryTeamData, startedAt, team); err != nil {
		return err
	}
	if err := p.store.SaveRaw(storage.CategoryFreeAgents, startedAt, pool); err != nil {
		return err
	}
	if err := p.store.SaveRaw(storage.CategoryStandings, startedAt, standings); err != nil {
		return err
	}
	if err := p.store.SaveRaw(storage.CategoryAllTeams, startedAt, allTeams); err != nil {
		return err
	}
	if err := p.store.SaveRecommendations(set); err != nil {
		return err
	}
	if err := p.store.SaveSwapAnalysis(swapAnalysis); err != nil {
		return err
	}
	if err := p.store.SaveSummary(summary); err != nil {
		return err
	}
	return p.store.SaveReport(p.buildReport(team, set, startedAt), startedAt)
}

// primeCache refreshes the dashboard cache with this run's output so the
// API serves it immediately instead of waiting out the previous TTLs.
// Every write fails open.
func (p *Pipeline) primeCache(
	ctx context.Context,
	team *models.TeamInfo,
	pool []models.PlayerRecord,
	standings []models.StandingsEntry,
	set models.RecommendationSet,
	swapAnalysis models.SwapAnalysis,
	summary models.RunSummary,
) {
	if !p.cache.Enabled() {
		return
	}
	p.cache.SetRoster(ctx, team)
	p.cache.SetFreeAgents(ctx, "", pool)
	p.cache.SetStandings(ctx, standings)
	p.cache.SetRecommendations(ctx, set)
	p.cache.SetSwapAnalysis(ctx, swapAnalysis)
	p.cache.SetSummary(ctx, summary)
}

// buildSummary produces the compact per-run digest.
func (p *Pipeline) buildSummary(startedAt time.Time, team *models.TeamInfo, set models.RecommendationSet, standings []models.StandingsEntry) models.RunSummary {
	summary := models.RunSummary{
		RunID:                set.RunID,
		Timestamp:            startedAt.UTC(),
		TeamName:             team.TeamName,
		TeamRecord:           team.Record,
		RecommendationsCount: len(set.Players),
	}

	top := set.Players
	if len(top) > 5 {
		top = top[:5]
	}
	for _, rec := range top {
		summary.TopRecommendations = append(summary.TopRecommendations, models.SummaryEntry{
			Name:                 rec.Player.Name,
			Position:             rec.Player.Position,
			Team:                 rec.Player.Team,
			ValueScore:           rec.Analysis.ValueScore,
			FantasyPointsPerGame: rec.Player.FantasyPointsPerGame,
		})
	}

	if len(standings) > 5 {
		standings = standings[:5]
	}
	summary.LeagueStandings = standings

	return summary
}

// buildReport renders the markdown analysis report.
func (p *Pipeline) buildReport(team *models.TeamInfo, set models.RecommendationSet, startedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Fantasy Hockey Analysis Report\n")
	fmt.Fprintf(&b, "## Team: %s\n", team.TeamName)
	fmt.Fprintf(&b, "## Record: %s\n", team.Record)
	fmt.Fprintf(&b, "## Analysis Date: %s\n\n", startedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "## Top Pickup Recommendations\n\n")

	for i, rec := range set.Players {
		fmt.Fprintf(&b, "### %d. %s (%s) - %s\n", i+1, rec.Player.Name, rec.Player.Position, rec.Player.Team)
		fmt.Fprintf(&b, "- **Fantasy Points/Game**: %.2f\n", rec.Player.FantasyPointsPerGame)
		fmt.Fprintf(&b, "- **Value Score**: %.1f\n", rec.Analysis.ValueScore)
		fmt.Fprintf(&b, "- **Consistency**: %.1f/10\n", rec.Analysis.ConsistencyRating)
		fmt.Fprintf(&b, "- **Upside**: %.1f/10\n", rec.Analysis.UpsidePotential)
		fmt.Fprintf(&b, "- **Injury Risk**: %.1f/10\n", rec.Analysis.InjuryRisk)
		fmt.Fprintf(&b, "- **Ownership**: %.1f%%\n\n", rec.Player.OwnershipPercentage)

		insight := rec.AIInsight
		if insight == "" {
			insight = "No AI analysis available"
		}
		fmt.Fprintf(&b, "**AI Insight**: %s\n\n---\n\n", insight)
	}

	return b.String()
}
