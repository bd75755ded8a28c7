package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newWatchConfigRouter(repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := &WatchConfigHandler{Repo: repo}
	h.Register(engine)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWatchConfigHandler_CreateAndGet(t *testing.T) {
	repo := newStubRepo()
	engine := newWatchConfigRouter(repo)

	rec := doRequest(t, engine, http.MethodPost, "/api/v1/watch-configs",
		`{"token_id":"tok1","entry_price":0.6,"size":100,"take_profit_pct":0.25,"stop_loss_pct":0.3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(repo.watchConfigs) != 1 {
		t.Fatalf("configs=%d want=1", len(repo.watchConfigs))
	}

	var created struct {
		Data struct {
			ID string `json:"ID"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doRequest(t, engine, http.MethodGet, "/api/v1/watch-configs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status=%d", rec.Code)
	}
}

func TestWatchConfigHandler_ConflictOnDuplicateToken(t *testing.T) {
	repo := newStubRepo()
	engine := newWatchConfigRouter(repo)

	body := `{"token_id":"tok1","entry_price":0.6,"size":100,"take_profit_pct":0.25}`
	if rec := doRequest(t, engine, http.MethodPost, "/api/v1/watch-configs", body); rec.Code != http.StatusOK {
		t.Fatalf("first create status=%d", rec.Code)
	}
	rec := doRequest(t, engine, http.MethodPost, "/api/v1/watch-configs", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create status=%d want=409", rec.Code)
	}
}

func TestWatchConfigHandler_CreateRejectsMissingTargets(t *testing.T) {
	engine := newWatchConfigRouter(newStubRepo())
	rec := doRequest(t, engine, http.MethodPost, "/api/v1/watch-configs",
		`{"token_id":"tok1","entry_price":0.6,"size":100}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want=400 without tp or sl", rec.Code)
	}
}

func TestWatchConfigHandler_DeleteIdempotent(t *testing.T) {
	repo := newStubRepo()
	engine := newWatchConfigRouter(repo)

	rec := doRequest(t, engine, http.MethodDelete, "/api/v1/watch-configs/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing status=%d want=404", rec.Code)
	}

	if r := doRequest(t, engine, http.MethodPost, "/api/v1/watch-configs",
		`{"token_id":"tok1","entry_price":0.6,"size":100,"take_profit_pct":0.25}`); r.Code != http.StatusOK {
		t.Fatalf("create status=%d", r.Code)
	}
	var id string
	for k := range repo.watchConfigs {
		id = k
	}

	if r := doRequest(t, engine, http.MethodDelete, "/api/v1/watch-configs/"+id, ""); r.Code != http.StatusOK {
		t.Fatalf("first delete status=%d", r.Code)
	}
	// The second delete finds nothing; the state does not change and the
	// handler reports not found rather than erroring.
	if r := doRequest(t, engine, http.MethodDelete, "/api/v1/watch-configs/"+id, ""); r.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d want=404", r.Code)
	}
	if len(repo.watchConfigs) != 0 {
		t.Fatalf("configs=%d want=0", len(repo.watchConfigs))
	}
}

func TestWatchConfigHandler_DeleteAll(t *testing.T) {
	repo := newStubRepo()
	engine := newWatchConfigRouter(repo)

	for _, body := range []string{
		`{"token_id":"tok1","entry_price":0.6,"size":100,"take_profit_pct":0.25}`,
		`{"token_id":"tok2","entry_price":0.7,"size":50,"stop_loss_pct":0.3}`,
	} {
		if r := doRequest(t, engine, http.MethodPost, "/api/v1/watch-configs", body); r.Code != http.StatusOK {
			t.Fatalf("create status=%d body=%s", r.Code, r.Body.String())
		}
	}

	rec := doRequest(t, engine, http.MethodDelete, "/api/v1/watch-configs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete all status=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(repo.watchConfigs) != 0 {
		t.Fatalf("configs=%d want=0 after delete all", len(repo.watchConfigs))
	}
}
