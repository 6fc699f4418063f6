package services

import (
	"fmt"
	"strings"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/models"
)

const playerAnalysisSystemPrompt = "You are a fantasy hockey expert providing player analysis and pickup recommendations. " +
	"Provide a brief 2-3 sentence explanation of why this player would be a good pickup, " +
	"focusing on recent performance, consistency, and fantasy value."

// buildPlayerPrompt renders the structured narrative context into the user
// prompt sent to the model.
func buildPlayerPrompt(ctx models.NarrativeContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Player Analysis Request:\n\n")
	fmt.Fprintf(&b, "Player: %s (%s)\n", ctx.Player.Name, ctx.Player.Position)
	fmt.Fprintf(&b, "Team: %s\n", ctx.Player.Team)
	fmt.Fprintf(&b, "Games Played: %d\n", ctx.Player.Stats.GamesPlayed)
	fmt.Fprintf(&b, "Fantasy Points per Game: %.2f\n", ctx.Player.FantasyPointsPerGame)
	fmt.Fprintf(&b, "Ownership: %.1f%%\n", ctx.Player.OwnershipPercentage)
	fmt.Fprintf(&b, "Injury Status: %s\n\n", ctx.Player.InjuryStatus())

	fmt.Fprintf(&b, "My Team Context:\n")
	fmt.Fprintf(&b, "Team Name: %s\n", ctx.TeamName)
	fmt.Fprintf(&b, "Current Record: %s\n", ctx.TeamRecord)
	fmt.Fprintf(&b, "Roster Size: %d\n\n", ctx.RosterSize)

	fmt.Fprintf(&b, "Analysis Metrics:\n")
	fmt.Fprintf(&b, "Consistency: %.1f/10\n", ctx.Analysis.ConsistencyRating)
	fmt.Fprintf(&b, "Upside: %.1f/10\n", ctx.Analysis.UpsidePotential)
	fmt.Fprintf(&b, "Injury Risk: %.1f/10\n", ctx.Analysis.InjuryRisk)
	fmt.Fprintf(&b, "Position Scarcity: %.1f/10\n", ctx.Analysis.PositionScarcity)
	fmt.Fprintf(&b, "Value Score: %.1f\n\n", ctx.Analysis.ValueScore)

	fmt.Fprintf(&b, "Please provide a brief analysis of this player's fantasy value and whether they would be a good pickup for my team.")

	return b.String()
}
