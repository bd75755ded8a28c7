package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"polyscout/internal/monitor"
	"polyscout/internal/repository"
)

type WatchConfigHandler struct {
	Repo repository.Repository
}

func (h *WatchConfigHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/watch-configs")
	g.POST("", h.create)
	g.GET("", h.list)
	g.DELETE("", h.removeAll)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.remove)
}

type createWatchConfigRequest struct {
	TokenID        string  `json:"token_id" binding:"required"`
	MarketQuestion string  `json:"market_question"`
	EntryPrice     float64 `json:"entry_price" binding:"required"`
	Size           float64 `json:"size" binding:"required"`
	TakeProfitPct  float64 `json:"take_profit_pct"`
	StopLossPct    float64 `json:"stop_loss_pct"`
}

// @Summary Create a take-profit/stop-loss watch
// @Tags watch-configs
// @Accept json
// @Produce json
// @Param request body createWatchConfigRequest true "watch config"
// @Success 200 {object} map[string]any
// @Router /api/v1/watch-configs [post]
func (h *WatchConfigHandler) create(c *gin.Context) {
	var req createWatchConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	existing, err := h.Repo.GetWatchConfigByTokenID(c.Request.Context(), req.TokenID)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if existing != nil {
		Error(c, http.StatusConflict, "watch config already exists for token", map[string]any{"config_id": existing.ID})
		return
	}
	cfg, err := monitor.BuildConfig(req.TokenID, req.MarketQuestion,
		req.EntryPrice, req.Size, req.TakeProfitPct, req.StopLossPct)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := h.Repo.CreateWatchConfig(c.Request.Context(), cfg); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, cfg, nil)
}

// @Summary List watch configs
// @Tags watch-configs
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/watch-configs [get]
func (h *WatchConfigHandler) list(c *gin.Context) {
	items, err := h.Repo.ListWatchConfigs(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Get one watch config
// @Tags watch-configs
// @Produce json
// @Param id path string true "config id"
// @Success 200 {object} map[string]any
// @Router /api/v1/watch-configs/{id} [get]
func (h *WatchConfigHandler) get(c *gin.Context) {
	item, err := h.Repo.GetWatchConfigByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "watch config not found", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete a watch config
// @Tags watch-configs
// @Produce json
// @Param id path string true "config id"
// @Success 200 {object} map[string]any
// @Router /api/v1/watch-configs/{id} [delete]
func (h *WatchConfigHandler) remove(c *gin.Context) {
	deleted, err := h.Repo.DeleteWatchConfig(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if !deleted {
		Error(c, http.StatusNotFound, "watch config not found", nil)
		return
	}
	Ok(c, gin.H{"deleted": true}, nil)
}

// @Summary Delete all watch configs
// @Tags watch-configs
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/watch-configs [delete]
func (h *WatchConfigHandler) removeAll(c *gin.Context) {
	items, err := h.Repo.ListWatchConfigs(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	deleted := 0
	for _, item := range items {
		ok, err := h.Repo.DeleteWatchConfig(c.Request.Context(), item.ID)
		if err != nil {
			Error(c, http.StatusInternalServerError, err.Error(), map[string]any{"deleted": deleted})
			return
		}
		if ok {
			deleted++
		}
	}
	Ok(c, gin.H{"deleted": deleted}, nil)
}
