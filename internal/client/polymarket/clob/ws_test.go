package clob

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func TestMarketStream_SubscribeAndDeliver(t *testing.T) {
	subs := make(chan MarketSubscribeRequest, 1)
	pongs := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()

		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		var sub MarketSubscribeRequest
		if err := json.Unmarshal(data, &sub); err != nil {
			return
		}
		subs <- sub

		if err := c.Write(ctx, websocket.MessageText, []byte(`{"type":"ping"}`)); err != nil {
			return
		}
		_, data, err = c.Read(ctx)
		if err != nil {
			return
		}
		pongs <- string(data)

		book := `{"event_type":"book","asset_id":"tok1",` +
			`"bids":[{"price":"0.42","size":"100"}],"asks":[{"price":"0.47","size":"100"}]}`
		_ = c.Write(ctx, websocket.MessageText, []byte(book))
		<-ctx.Done()
	}))
	defer srv.Close()

	stream := NewMarketStream(MarketStreamOptions{
		URL:               srv.URL,
		AssetIDs:          []string{"tok1"},
		HeartbeatInterval: time.Minute,
		RefreshInterval:   time.Minute,
		BackoffMin:        10 * time.Millisecond,
		BackoffMax:        20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs := make(chan MarketEnvelope, 4)
	done := make(chan error, 1)
	go func() {
		done <- stream.Run(ctx, func(env MarketEnvelope, raw []byte) {
			msgs <- env
		})
	}()

	select {
	case sub := <-subs:
		if sub.Type != "market" {
			t.Fatalf("subscribe type=%q want=market", sub.Type)
		}
		if len(sub.AssetsIDs) != 1 || sub.AssetsIDs[0] != "tok1" {
			t.Fatalf("subscribe assets=%v want=[tok1]", sub.AssetsIDs)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no subscribe request received")
	}

	select {
	case pong := <-pongs:
		if pong != `{"event_type":"pong"}` {
			t.Fatalf("ping reply=%q want a pong envelope", pong)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no pong reply to the server ping")
	}

	select {
	case env := <-msgs:
		if env.EventType != "book" || env.AssetID != "tok1" {
			t.Fatalf("delivered event_type=%q asset=%q want book on tok1", env.EventType, env.AssetID)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no book message delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("run returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}

func TestIsPingPayload(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`{"event_type":"PING"}`, true},
		{`ping`, true},
		{`{"type":"ping"}`, true},
		{`{"event_type":"book","asset_id":"tok1"}`, false},
		{``, false},
	}
	for _, c := range cases {
		var env MarketEnvelope
		_ = json.Unmarshal([]byte(c.raw), &env)
		if got := isPingPayload(env, []byte(c.raw)); got != c.want {
			t.Fatalf("isPingPayload(%q)=%v want=%v", c.raw, got, c.want)
		}
	}
}

func TestNextBackoff_DoublesAndCaps(t *testing.T) {
	if got := nextBackoff(time.Second, 30*time.Second); got != 2*time.Second {
		t.Fatalf("backoff=%v want=2s", got)
	}
	if got := nextBackoff(20*time.Second, 30*time.Second); got != 30*time.Second {
		t.Fatalf("backoff=%v want the 30s cap", got)
	}
}

func TestDiffSets(t *testing.T) {
	current := setFromSlice([]string{"a", "b", " ", ""})
	if len(current) != 2 {
		t.Fatalf("set=%v want blanks dropped", current)
	}
	next := setFromSlice([]string{"b", "c", "d"})
	added, removed := diffSets(current, next)
	sort.Strings(added)
	if len(added) != 2 || added[0] != "c" || added[1] != "d" {
		t.Fatalf("added=%v want=[c d]", added)
	}
	if len(removed) != 1 || removed[0] != "a" {
		t.Fatalf("removed=%v want=[a]", removed)
	}
}
