package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

// PlaceholderNarrative is substituted whenever text generation fails or the
// client is unconfigured. Narrative text is decorative; it never blocks a
// run.
const PlaceholderNarrative = "AI analysis unavailable"

// NarrativeGenerator attaches short AI-written pickup analyses to the
// top-ranked recommendations.
type NarrativeGenerator struct {
	client      *OpenAIClient
	cache       *CacheService
	logger      *logrus.Logger
	topInsights int
}

// NewNarrativeGenerator creates a generator. Cache may be a disabled
// CacheService; it is consulted by prompt hash before any API call.
func NewNarrativeGenerator(client *OpenAIClient, cache *CacheService, topInsights int, logger *logrus.Logger) *NarrativeGenerator {
	return &NarrativeGenerator{
		client:      client,
		cache:       cache,
		logger:      logger,
		topInsights: topInsights,
	}
}

// Annotate fills AIInsight on up to topInsights leading recommendations.
// Every failure path substitutes the placeholder and continues.
func (g *NarrativeGenerator) Annotate(ctx context.Context, recs []models.Recommendation, team models.TeamInfo) {
	if !g.client.Configured() {
		g.logger.Info("OpenAI client not configured, skipping narrative generation")
		for i := range recs {
			recs[i].AIInsight = PlaceholderNarrative
		}
		return
	}

	limit := g.topInsights
	if limit > len(recs) {
		limit = len(recs)
	}

	for i := range recs {
		if i >= limit {
			recs[i].AIInsight = PlaceholderNarrative
			continue
		}

		narrativeCtx := models.NarrativeContext{
			Player:     recs[i].Player,
			Analysis:   recs[i].Analysis,
			TeamName:   team.TeamName,
			TeamRecord: team.Record,
			RosterSize: len(team.Roster),
		}
		recs[i].AIInsight = g.Generate(ctx, narrativeCtx)
	}
}

// Generate produces the narrative for one player context.
func (g *NarrativeGenerator) Generate(ctx context.Context, narrativeCtx models.NarrativeContext) string {
	prompt := buildPlayerPrompt(narrativeCtx)
	hash := promptHash(prompt)

	if cached, ok := g.cache.GetNarrative(ctx, hash); ok {
		return cached
	}

	text, err := g.client.Complete(ctx, playerAnalysisSystemPrompt, prompt)
	if err != nil {
		g.logger.WithError(err).WithField("player", narrativeCtx.Player.Name).
			Warn("Narrative generation failed, using placeholder")
		return PlaceholderNarrative
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return PlaceholderNarrative
	}

	g.cache.SetNarrative(ctx, hash, text)
	return text
}

func promptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
