package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/storage"
)

// SnapshotCache sits in front of the snapshot store. A disabled cache
// misses every Get and swallows every Set, so handlers can call it
// unconditionally. Implemented by services.CacheService.
type SnapshotCache interface {
	GetRecommendations(ctx context.Context, dest interface{}) bool
	SetRecommendations(ctx context.Context, set interface{})
	GetRoster(ctx context.Context, dest interface{}) bool
	SetRoster(ctx context.Context, team interface{})
	GetSwapAnalysis(ctx context.Context, dest interface{}) bool
	SetSwapAnalysis(ctx context.Context, analysis interface{})
	GetFreeAgents(ctx context.Context, position string, dest interface{}) bool
	SetFreeAgents(ctx context.Context, position string, pool interface{})
	GetStandings(ctx context.Context, dest interface{}) bool
	SetStandings(ctx context.Context, standings interface{})
	GetSummary(ctx context.Context, dest interface{}) bool
	SetSummary(ctx context.Context, summary interface{})
}

// SnapshotHandler serves the latest persisted pipeline snapshots to the
// dashboard, reading through Redis when available and falling back to
// disk. The server is a pure consumer: it never triggers runs, and a
// failed run means it keeps serving the previous snapshot.
type SnapshotHandler struct {
	store  *storage.Store
	cache  SnapshotCache
	logger *logrus.Logger
}

// NewSnapshotHandler creates a snapshot handler.
func NewSnapshotHandler(store *storage.Store, cache SnapshotCache, logger *logrus.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// GetRecommendations serves the latest recommendation set.
func (h *SnapshotHandler) GetRecommendations(c *gin.Context) {
	ctx := c.Request.Context()

	var cached models.RecommendationSet
	if h.cache.GetRecommendations(ctx, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	set, err := h.store.LatestRecommendations()
	if err != nil {
		h.notFound(c, "recommendations", err)
		return
	}
	h.cache.SetRecommendations(ctx, set)
	c.JSON(http.StatusOK, set)
}

// GetRoster serves the latest roster snapshot.
func (h *SnapshotHandler) GetRoster(c *gin.Context) {
	ctx := c.Request.Context()

	var cached models.TeamInfo
	if h.cache.GetRoster(ctx, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	team, err := h.store.LatestTeamData()
	if err != nil {
		h.notFound(c, "roster", err)
		return
	}
	h.cache.SetRoster(ctx, team)
	c.JSON(http.StatusOK, team)
}

// GetSwaps serves the latest swap analysis.
func (h *SnapshotHandler) GetSwaps(c *gin.Context) {
	ctx := c.Request.Context()

	var cached models.SwapAnalysis
	if h.cache.GetSwapAnalysis(ctx, &cached) {
		h.renderSwaps(c, &cached)
		return
	}

	analysis, err := h.store.LatestSwapAnalysis()
	if err != nil {
		h.notFound(c, "swap analysis", err)
		return
	}
	h.cache.SetSwapAnalysis(ctx, analysis)
	h.renderSwaps(c, analysis)
}

func (h *SnapshotHandler) renderSwaps(c *gin.Context, analysis *models.SwapAnalysis) {
	// Rationales are persisted structured; the dashboard wants text too.
	type renderedSwap struct {
		Player    interface{} `json:"player"`
		Verdict   string      `json:"verdict"`
		Rationale string      `json:"rationale"`
		Targets   interface{} `json:"targets,omitempty"`
	}

	rendered := make([]renderedSwap, 0, len(analysis.Recommendations))
	for _, rec := range analysis.Recommendations {
		rendered = append(rendered, renderedSwap{
			Player:    rec.Player,
			Verdict:   string(rec.Verdict),
			Rationale: rec.Rationale.Render(),
			Targets:   rec.Targets,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":          analysis.RunID,
		"generated_at":    analysis.GeneratedAt,
		"team_name":       analysis.TeamName,
		"recommendations": rendered,
	})
}

// GetFreeAgents serves the latest free agent pool snapshot.
func (h *SnapshotHandler) GetFreeAgents(c *gin.Context) {
	ctx := c.Request.Context()

	var cached []models.PlayerRecord
	if h.cache.GetFreeAgents(ctx, "", &cached) {
		c.JSON(http.StatusOK, gin.H{
			"count":   len(cached),
			"players": cached,
		})
		return
	}

	pool, err := h.store.LatestFreeAgents()
	if err != nil {
		h.notFound(c, "free agent", err)
		return
	}
	h.cache.SetFreeAgents(ctx, "", pool)
	c.JSON(http.StatusOK, gin.H{
		"count":   len(pool),
		"players": pool,
	})
}

// GetStandings serves the latest league standings.
func (h *SnapshotHandler) GetStandings(c *gin.Context) {
	ctx := c.Request.Context()

	var cached []models.StandingsEntry
	if h.cache.GetStandings(ctx, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	standings, err := h.store.LatestStandings()
	if err != nil {
		h.notFound(c, "standings", err)
		return
	}
	h.cache.SetStandings(ctx, standings)
	c.JSON(http.StatusOK, standings)
}

// GetSummary serves the latest run summary.
func (h *SnapshotHandler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var cached models.RunSummary
	if h.cache.GetSummary(ctx, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	summary, err := h.store.LatestSummary()
	if err != nil {
		h.notFound(c, "summary", err)
		return
	}
	h.cache.SetSummary(ctx, summary)
	c.JSON(http.StatusOK, summary)
}

func (h *SnapshotHandler) notFound(c *gin.Context, what string, err error) {
	h.logger.WithError(err).WithField("snapshot", what).Warn("Snapshot unavailable")
	c.JSON(http.StatusNotFound, gin.H{
		"error": "no " + what + " snapshot available, run the pipeline first",
	})
}
