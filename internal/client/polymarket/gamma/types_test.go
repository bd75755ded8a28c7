package gamma

import (
	"encoding/json"
	"testing"
)

func TestFloat_AcceptsNumberAndString(t *testing.T) {
	var payload struct {
		A Float `json:"a"`
		B Float `json:"b"`
		C Float `json:"c"`
	}
	raw := []byte(`{"a": 12.5, "b": "340.25", "c": null}`)
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.A != 12.5 || payload.B != 340.25 || payload.C != 0 {
		t.Fatalf("got %+v", payload)
	}
}

func TestStringList_ArrayAndEncodedString(t *testing.T) {
	var direct StringList
	if err := json.Unmarshal([]byte(`["Yes","No"]`), &direct); err != nil {
		t.Fatalf("array form: %v", err)
	}
	if len(direct) != 2 || direct[0] != "Yes" {
		t.Fatalf("got %v", direct)
	}

	// The gamma API double-encodes outcomePrices and clobTokenIds.
	var encoded StringList
	if err := json.Unmarshal([]byte(`"[\"0.65\", \"0.35\"]"`), &encoded); err != nil {
		t.Fatalf("encoded form: %v", err)
	}
	prices := encoded.Floats()
	if len(prices) != 2 || prices[0] != 0.65 || prices[1] != 0.35 {
		t.Fatalf("prices=%v", prices)
	}

	var empty StringList
	if err := json.Unmarshal([]byte(`""`), &empty); err != nil {
		t.Fatalf("empty string form: %v", err)
	}
	if empty != nil {
		t.Fatalf("empty string should parse to nil, got %v", empty)
	}
}

func TestParseMarkets_ToleratesWrapper(t *testing.T) {
	bare := []byte(`[{"id":"1","question":"Q"}]`)
	markets, err := parseMarkets(bare)
	if err != nil || len(markets) != 1 {
		t.Fatalf("bare form: %v %v", markets, err)
	}

	wrapped := []byte(`{"data":[{"id":"2","question":"Q2"}]}`)
	markets, err = parseMarkets(wrapped)
	if err != nil || len(markets) != 1 || markets[0].ID != "2" {
		t.Fatalf("wrapped form: %v %v", markets, err)
	}
}
