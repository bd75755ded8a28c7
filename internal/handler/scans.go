package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"polyscout/internal/repository"
	"polyscout/internal/scanner"
)

type ScanHandler struct {
	Scanner *scanner.Scanner
	Repo    repository.Repository
}

func (h *ScanHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/scans")
	g.POST("", h.trigger)
	g.GET("", h.list)
	g.GET("/:scan_id", h.get)
	g.DELETE("/:scan_id", h.remove)
}

type triggerScanRequest struct {
	RiskProfile        string  `json:"risk_profile"`
	PortfolioUSD       float64 `json:"portfolio_usd"`
	FixedAmountUSD     float64 `json:"fixed_amount_usd"`
	MinProfitPct       float64 `json:"min_profit_pct"`
	MinHoursToExpiry   float64 `json:"min_hours_to_expiry"`
	MaxHoursToExpiry   float64 `json:"max_hours_to_expiry"`
	MaxMarkets         int     `json:"max_markets"`
	EnableAI           *bool   `json:"enable_ai"`
	EnableDeepResearch bool    `json:"enable_deep_research"`
	EnableFacts        bool    `json:"enable_facts"`
}

// @Summary Run a scan
// @Tags scans
// @Accept json
// @Produce json
// @Param request body triggerScanRequest false "scan parameters"
// @Success 200 {object} scanner.Result
// @Router /api/v1/scans [post]
func (h *ScanHandler) trigger(c *gin.Context) {
	if h.Scanner == nil {
		Error(c, http.StatusServiceUnavailable, "scanner not configured", nil)
		return
	}
	var req triggerScanRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	params := scanner.Params{
		RiskProfile:        req.RiskProfile,
		PortfolioUSD:       req.PortfolioUSD,
		FixedAmountUSD:     req.FixedAmountUSD,
		MinProfitPct:       req.MinProfitPct,
		MinHoursToExpiry:   req.MinHoursToExpiry,
		MaxHoursToExpiry:   req.MaxHoursToExpiry,
		MaxMarkets:         req.MaxMarkets,
		EnableAI:           req.EnableAI == nil || *req.EnableAI,
		EnableDeepResearch: req.EnableDeepResearch,
		EnableFacts:        req.EnableFacts,
		ScanType:           "api",
	}
	result, err := h.Scanner.Scan(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

// @Summary List scan history
// @Tags scans
// @Produce json
// @Param type query string false "scan type"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} map[string]any
// @Router /api/v1/scans [get]
func (h *ScanHandler) list(c *gin.Context) {
	items, err := h.Repo.ListScanRecords(c.Request.Context(), repository.ListScansParams{
		ScanType: strings.TrimSpace(c.Query("type")),
		Limit:    intQuery(c, "limit", 50),
		Offset:   intQuery(c, "offset", 0),
	})
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Get one scan
// @Tags scans
// @Produce json
// @Param scan_id path string true "scan id"
// @Success 200 {object} map[string]any
// @Router /api/v1/scans/{scan_id} [get]
func (h *ScanHandler) get(c *gin.Context) {
	item, err := h.Repo.GetScanRecordByScanID(c.Request.Context(), c.Param("scan_id"))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "scan not found", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete one scan
// @Tags scans
// @Produce json
// @Param scan_id path string true "scan id"
// @Success 200 {object} map[string]any
// @Router /api/v1/scans/{scan_id} [delete]
func (h *ScanHandler) remove(c *gin.Context) {
	deleted, err := h.Repo.DeleteScanRecord(c.Request.Context(), c.Param("scan_id"))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if !deleted {
		Error(c, http.StatusNotFound, "scan not found", nil)
		return
	}
	Ok(c, gin.H{"deleted": true}, nil)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
