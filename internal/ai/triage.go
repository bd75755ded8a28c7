package ai

import (
	"fmt"
	"strings"
)

// Triage thresholds. Confidence and edge are fractions, volume is USD.
const (
	TriageMinVolume     = 1000.0
	TriageMinConfidence = 0.50
	TriageMinEdge       = 0.05
)

var resolvedPhrases = []string{
	"already happened",
	"has occurred",
	"confirmed",
	"announced",
	"completed",
	"finished",
	"resolved",
	"event took place",
	"already resolved",
}

// EventStatusOccurred marks a market whose underlying event already happened.
const EventStatusOccurred = "OCCURRED"

type TriageInput struct {
	Volume         float64
	Confidence     float64
	Edge           float64
	Recommendation string
	Reasoning      string
	// EventStatus is OCCURRED once research confirms the event happened.
	EventStatus string
	// Status is the gathered facts' current-status text.
	Status string
}

type TriageResult struct {
	Passed  bool
	Reasons []string
}

// Triage gates which analyzed markets deserve deep research. It always runs;
// a market failing any rule is filtered with the reasons recorded.
func Triage(in TriageInput) TriageResult {
	var reasons []string
	if in.Volume < TriageMinVolume {
		reasons = append(reasons, fmt.Sprintf("volume too low ($%.0f < $%.0f)", in.Volume, TriageMinVolume))
	}
	if in.Confidence < TriageMinConfidence {
		reasons = append(reasons, fmt.Sprintf("confidence too low (%.2f < %.2f)", in.Confidence, TriageMinConfidence))
	}
	if abs(in.Edge) < TriageMinEdge {
		reasons = append(reasons, fmt.Sprintf("edge too small (%.3f < %.3f)", abs(in.Edge), TriageMinEdge))
	}
	if in.EventStatus == EventStatusOccurred {
		reasons = append(reasons, "event already occurred")
	} else if phrase, found := resolvedPhrase(in.Status); found {
		reasons = append(reasons, "market may already be resolved: "+phrase)
	} else if phrase, found := resolvedPhrase(in.Reasoning); found {
		reasons = append(reasons, "market may already be resolved: "+phrase)
	}
	return TriageResult{Passed: len(reasons) == 0, Reasons: reasons}
}

func resolvedPhrase(reasoning string) (string, bool) {
	lower := strings.ToLower(reasoning)
	for _, phrase := range resolvedPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
