package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

func disabledCache() *CacheService {
	return NewCacheService(config.RedisConfig{Enabled: false}, testLogger())
}

func testNarrativeContext() models.NarrativeContext {
	return models.NarrativeContext{
		Player: models.PlayerRecord{
			Name:                 "Breakout Guy",
			Position:             models.PositionCenter,
			Team:                 "TOR",
			FantasyPointsPerGame: 2.4,
			Stats:                models.StatLine{GamesPlayed: 12, Goals: 6, Assists: 8},
		},
		Analysis: models.AnalysisResult{
			ConsistencyRating: 6.0,
			UpsidePotential:   7.5,
			InjuryRisk:        1.0,
			PositionScarcity:  7.0,
			ValueScore:        3.4,
		},
		TeamName:   "Test Team",
		TeamRecord: "5-3-1",
		RosterSize: 16,
	}
}

func newChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		resp := ChatResponse{
			ID:    "chatcmpl-test",
			Model: req.Model,
			Choices: []ChatChoice{
				{Message: ChatMessage{Role: "assistant", Content: content}},
			},
			Usage: ChatUsage{PromptTokens: 100, CompletionTokens: 40, TotalTokens: 140},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateReturnsCompletionText(t *testing.T) {
	server := newChatServer(t, "  Strong two-way center trending up.  ")
	defer server.Close()

	client := NewOpenAIClient(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-3.5-turbo",
	}, testLogger())
	generator := NewNarrativeGenerator(client, disabledCache(), 5, testLogger())

	text := generator.Generate(context.Background(), testNarrativeContext())
	assert.Equal(t, "Strong two-way center trending up.", text)
}

func TestGenerateFallsBackOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 401 is terminal, the client must not retry it.
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "bad key", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-3.5-turbo",
	}, testLogger())
	generator := NewNarrativeGenerator(client, disabledCache(), 5, testLogger())

	text := generator.Generate(context.Background(), testNarrativeContext())
	assert.Equal(t, PlaceholderNarrative, text)
}

func TestGenerateFallsBackOnEmptyCompletion(t *testing.T) {
	server := newChatServer(t, "   ")
	defer server.Close()

	client := NewOpenAIClient(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-3.5-turbo",
	}, testLogger())
	generator := NewNarrativeGenerator(client, disabledCache(), 5, testLogger())

	text := generator.Generate(context.Background(), testNarrativeContext())
	assert.Equal(t, PlaceholderNarrative, text)
}

func TestAnnotateUnconfiguredClientUsesPlaceholders(t *testing.T) {
	client := NewOpenAIClient(config.OpenAIConfig{}, testLogger())
	require.False(t, client.Configured())

	generator := NewNarrativeGenerator(client, disabledCache(), 5, testLogger())

	recs := []models.Recommendation{
		{Player: models.PlayerRecord{Name: "A"}},
		{Player: models.PlayerRecord{Name: "B"}},
	}
	team := models.TeamInfo{TeamName: "Test Team", Record: "5-3-1"}

	generator.Annotate(context.Background(), recs, team)

	for _, rec := range recs {
		assert.Equal(t, PlaceholderNarrative, rec.AIInsight)
	}
}

func TestAnnotateBoundsInsightCount(t *testing.T) {
	server := newChatServer(t, "Pick him up.")
	defer server.Close()

	client := NewOpenAIClient(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-3.5-turbo",
	}, testLogger())
	generator := NewNarrativeGenerator(client, disabledCache(), 1, testLogger())

	recs := []models.Recommendation{
		{Player: models.PlayerRecord{Name: "A", Position: models.PositionCenter}},
		{Player: models.PlayerRecord{Name: "B", Position: models.PositionCenter}},
	}
	team := models.TeamInfo{TeamName: "Test Team", Record: "5-3-1"}

	generator.Annotate(context.Background(), recs, team)

	assert.Equal(t, "Pick him up.", recs[0].AIInsight)
	assert.Equal(t, PlaceholderNarrative, recs[1].AIInsight)
}

func TestBuildPlayerPromptIncludesContext(t *testing.T) {
	prompt := buildPlayerPrompt(testNarrativeContext())

	assert.Contains(t, prompt, "Breakout Guy")
	assert.Contains(t, prompt, "Center")
	assert.Contains(t, prompt, "Test Team")
	assert.Contains(t, prompt, "5-3-1")
}
