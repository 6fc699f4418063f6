package models

import (
	"fmt"
	"strings"
	"time"
)

// SwapVerdict classifies the outcome of comparing a rostered player against
// the available free agents at the same position.
type SwapVerdict string

const (
	VerdictKeep         SwapVerdict = "Keep"
	VerdictConsiderSwap SwapVerdict = "Consider Swap"
	VerdictMustSwap     SwapVerdict = "Must Swap"
)

// SwapRationale is the structured explanation behind a verdict. The swap
// evaluator produces this record once; rendering it as text happens only at
// the presentation boundary, never the other way around.
type SwapRationale struct {
	Verdict    SwapVerdict `json:"verdict"`
	TargetName string      `json:"target_name,omitempty"`
	// Delta is the raw FP/G improvement over the rostered player,
	// excluding sample and historical bonuses.
	Delta   float64  `json:"delta,omitempty"`
	Factors []string `json:"factors,omitempty"`
	// Considered is how many same-position free agents were evaluated.
	Considered int `json:"considered"`
}

// Render produces the human-readable rationale string surfaced by the
// dashboard and reports.
func (r SwapRationale) Render() string {
	var parts []string

	switch r.Verdict {
	case VerdictMustSwap:
		parts = append(parts, fmt.Sprintf("Strong upgrade available: %s (%+.1f FP/G improvement)", r.TargetName, r.Delta))
	case VerdictConsiderSwap:
		parts = append(parts, fmt.Sprintf("Moderate upgrade: %s (%+.1f FP/G improvement)", r.TargetName, r.Delta))
	default:
		if r.TargetName != "" {
			parts = append(parts, fmt.Sprintf("Best option (%s) only %+.1f FP/G improvement", r.TargetName, r.Delta))
		}
	}

	parts = append(parts, r.Factors...)

	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("Analyzed %d same-position free agents, none qualified", r.Considered))
	}

	return strings.Join(parts, " | ")
}

// SwapTarget is one candidate free agent with its computed swap score.
type SwapTarget struct {
	Player    PlayerRecord `json:"player"`
	SwapScore float64      `json:"swap_score"`
	Delta     float64      `json:"delta"`
}

// SwapRecommendation is the evaluation result for one rostered player.
type SwapRecommendation struct {
	Player    PlayerRecord  `json:"player"`
	Verdict   SwapVerdict   `json:"verdict"`
	Rationale SwapRationale `json:"rationale"`
	Targets   []SwapTarget  `json:"targets,omitempty"`
}

// SwapAnalysis is the full roster evaluation persisted per run.
type SwapAnalysis struct {
	RunID           string               `json:"run_id"`
	GeneratedAt     time.Time            `json:"generated_at"`
	TeamName        string               `json:"team_name"`
	Recommendations []SwapRecommendation `json:"recommendations"`
}
