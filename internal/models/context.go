package models

import "time"

// NarrativeContext is the structured context handed to the narrative
// generator for one player. The narrative service renders it into a prompt;
// the returned commentary is consumed opaquely.
type NarrativeContext struct {
	Player   PlayerRecord   `json:"player"`
	Analysis AnalysisResult `json:"analysis"`

	TeamName   string `json:"team_name"`
	TeamRecord string `json:"team_record"`
	RosterSize int    `json:"roster_size"`
}

// RunSummary is the compact per-run digest persisted alongside the full
// recommendation snapshot.
type RunSummary struct {
	RunID                string           `json:"run_id"`
	Timestamp            time.Time        `json:"timestamp"`
	TeamName             string           `json:"team_name"`
	TeamRecord           string           `json:"team_record"`
	RecommendationsCount int              `json:"recommendations_count"`
	TopRecommendations   []SummaryEntry   `json:"top_recommendations"`
	LeagueStandings      []StandingsEntry `json:"league_standings"`
}

// SummaryEntry is one line of the run summary.
type SummaryEntry struct {
	Name                 string   `json:"name"`
	Position             Position `json:"position"`
	Team                 string   `json:"team"`
	ValueScore           float64  `json:"value_score"`
	FantasyPointsPerGame float64  `json:"fantasy_points_per_game"`
}
