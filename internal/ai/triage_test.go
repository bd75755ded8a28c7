package ai

import (
	"strings"
	"testing"
)

func passingTriage() TriageInput {
	return TriageInput{
		Volume:         5000,
		Confidence:     0.70,
		Edge:           0.10,
		Recommendation: "BUY_YES",
		Reasoning:      "strong polling lead and liquid book",
	}
}

func TestTriage_Passes(t *testing.T) {
	res := Triage(passingTriage())
	if !res.Passed {
		t.Fatalf("expected pass, reasons=%v", res.Reasons)
	}
}

func TestTriage_LowVolume(t *testing.T) {
	in := passingTriage()
	in.Volume = 500
	res := Triage(in)
	if res.Passed {
		t.Fatalf("expected filter on $500 volume")
	}
	if len(res.Reasons) != 1 || !strings.Contains(res.Reasons[0], "volume") {
		t.Fatalf("reasons=%v want a volume reason", res.Reasons)
	}
}

func TestTriage_LowConfidence(t *testing.T) {
	in := passingTriage()
	in.Confidence = 0.40
	res := Triage(in)
	if res.Passed || !strings.Contains(res.Reasons[0], "confidence") {
		t.Fatalf("reasons=%v want a confidence reason", res.Reasons)
	}
}

func TestTriage_SmallEdgeEitherSign(t *testing.T) {
	in := passingTriage()
	in.Edge = -0.02
	res := Triage(in)
	if res.Passed || !strings.Contains(res.Reasons[0], "edge") {
		t.Fatalf("reasons=%v want an edge reason", res.Reasons)
	}
	in.Edge = -0.10
	if res := Triage(in); !res.Passed {
		t.Fatalf("a large negative edge is tradable, reasons=%v", res.Reasons)
	}
}

func TestTriage_ResolvedLanguage(t *testing.T) {
	in := passingTriage()
	in.Reasoning = "The merger has occurred and the market should settle YES."
	res := Triage(in)
	if res.Passed {
		t.Fatalf("expected filter on resolved language")
	}
	if !strings.Contains(res.Reasons[0], "already be resolved") {
		t.Fatalf("reasons=%v want resolved reason", res.Reasons)
	}
}

func TestTriage_EventOccurred(t *testing.T) {
	in := passingTriage()
	in.EventStatus = EventStatusOccurred
	res := Triage(in)
	if res.Passed {
		t.Fatalf("expected filter on occurred event")
	}
	if len(res.Reasons) != 1 || res.Reasons[0] != "event already occurred" {
		t.Fatalf("reasons=%v want the occurred reason", res.Reasons)
	}
}

func TestTriage_ResolvedStatusBeforeReasoning(t *testing.T) {
	in := passingTriage()
	in.Status = "Result confirmed by the official tally"
	in.Reasoning = "The vote finished last week."
	res := Triage(in)
	if res.Passed {
		t.Fatalf("expected filter on resolved status")
	}
	if !strings.Contains(res.Reasons[0], "confirmed") {
		t.Fatalf("reasons=%v want the status phrase, not the reasoning one", res.Reasons)
	}
}

func TestTriage_AccumulatesReasons(t *testing.T) {
	res := Triage(TriageInput{Volume: 100, Confidence: 0.10, Edge: 0.01})
	if res.Passed {
		t.Fatalf("expected filter")
	}
	if len(res.Reasons) != 3 {
		t.Fatalf("reasons=%v want all three rules reported", res.Reasons)
	}
}
