package copytrade

import (
	"math"
	"testing"
	"time"
)

func TestConsolidate_DeduplicatesAndGroups(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fills := []Fill{
		{TxHash: "0xa", Asset: "tok1", Side: "BUY", Size: 10, USDCSize: 5, Timestamp: ts},
		// Exact duplicate of the first fill (same tx, asset, timestamp).
		{TxHash: "0xa", Asset: "tok1", Side: "BUY", Size: 10, USDCSize: 5, Timestamp: ts},
		{TxHash: "0xb", Asset: "tok1", Side: "BUY", Size: 20, USDCSize: 11, Timestamp: ts.Add(time.Minute)},
		{TxHash: "0xc", Asset: "tok1", Side: "SELL", Size: 5, USDCSize: 3, Timestamp: ts},
		{TxHash: "0xd", Asset: "tok2", Side: "BUY", Size: 8, USDCSize: 4, Timestamp: ts},
	}
	groups := Consolidate(fills)
	if len(groups) != 3 {
		t.Fatalf("groups=%d want=3", len(groups))
	}

	buy := groups[0]
	if buy.Asset != "tok1" || buy.Side != "BUY" {
		t.Fatalf("groups[0]=%+v want tok1 BUY first", buy)
	}
	if buy.Size != 30 || buy.USDCSize != 16 || buy.FillCount != 2 {
		t.Fatalf("tok1 BUY=%+v want size 30, usdc 16, fills 2 after dedup", buy)
	}
	if !buy.LastSeen.Equal(ts.Add(time.Minute)) {
		t.Fatalf("last_seen=%v want latest fill time", buy.LastSeen)
	}

	if groups[1].Side != "SELL" || groups[2].Asset != "tok2" {
		t.Fatalf("deterministic ordering broken: %+v", groups)
	}
}

func TestConsolidated_AvgPrice(t *testing.T) {
	g := Consolidated{Size: 30, USDCSize: 16}
	want := 16.0 / 30.0
	if math.Abs(g.AvgPrice()-want) > 1e-12 {
		t.Fatalf("avg=%v want=%v", g.AvgPrice(), want)
	}
	if (Consolidated{}).AvgPrice() != 0 {
		t.Fatalf("empty group avg price should be 0")
	}
}

func TestCopyAmount(t *testing.T) {
	if got := CopyAmount(3, 5, 0.10); got != 3 {
		t.Fatalf("amount=%v want leader's full spend under the cap", got)
	}
	got := CopyAmount(50, 5, 0.10)
	want := 5 + 50*0.10
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("amount=%v want=%v (cap plus overflow share)", got, want)
	}
	if got := CopyAmount(50, 5, 0); got != 5 {
		t.Fatalf("amount=%v want hard cap with zero extra", got)
	}
}
