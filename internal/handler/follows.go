package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"polyscout/internal/config"
	"polyscout/internal/ids"
	"polyscout/internal/models"
	"polyscout/internal/repository"
)

type FollowHandler struct {
	Repo   repository.Repository
	Config config.CopyTradeConfig
}

func (h *FollowHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/follows")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.remove)
	g.POST("/:id/enable", h.enable)
	g.POST("/:id/disable", h.disable)
	g.GET("/:id/trades", h.trades)
}

type createFollowRequest struct {
	Wallet    string   `json:"wallet" binding:"required"`
	Nickname  string   `json:"nickname"`
	MaxAmount *float64 `json:"max_amount"`
	ExtraPct  *float64 `json:"extra_pct"`
}

// @Summary Follow a trader wallet
// @Tags follows
// @Accept json
// @Produce json
// @Param request body createFollowRequest true "follow"
// @Success 200 {object} map[string]any
// @Router /api/v1/follows [post]
func (h *FollowHandler) create(c *gin.Context) {
	var req createFollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	wallet := strings.ToLower(strings.TrimSpace(req.Wallet))
	existing, err := h.Repo.GetTraderFollowByWallet(c.Request.Context(), wallet)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if existing != nil {
		Error(c, http.StatusConflict, "wallet already followed", map[string]any{"follow_id": existing.ID})
		return
	}
	maxAmount := h.Config.DefaultMaxAmount
	if req.MaxAmount != nil && *req.MaxAmount > 0 {
		maxAmount = *req.MaxAmount
	}
	extraPct := h.Config.DefaultExtraPct
	if req.ExtraPct != nil && *req.ExtraPct >= 0 {
		extraPct = *req.ExtraPct
	}
	item := &models.TraderFollow{
		ID:        ids.New(6),
		Wallet:    wallet,
		Nickname:  req.Nickname,
		MaxAmount: maxAmount,
		ExtraPct:  extraPct,
		Active:    true,
	}
	if err := h.Repo.CreateTraderFollow(c.Request.Context(), item); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary List followed wallets
// @Tags follows
// @Produce json
// @Param active query bool false "active only"
// @Success 200 {object} map[string]any
// @Router /api/v1/follows [get]
func (h *FollowHandler) list(c *gin.Context) {
	activeOnly := strings.EqualFold(c.Query("active"), "true")
	items, err := h.Repo.ListTraderFollows(c.Request.Context(), activeOnly)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary Get one follow
// @Tags follows
// @Produce json
// @Param id path string true "follow id"
// @Success 200 {object} map[string]any
// @Router /api/v1/follows/{id} [get]
func (h *FollowHandler) get(c *gin.Context) {
	item, err := h.Repo.GetTraderFollowByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "follow not found", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary Unfollow a wallet
// @Tags follows
// @Produce json
// @Param id path string true "follow id"
// @Success 200 {object} map[string]any
// @Router /api/v1/follows/{id} [delete]
func (h *FollowHandler) remove(c *gin.Context) {
	deleted, err := h.Repo.DeleteTraderFollow(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if !deleted {
		Error(c, http.StatusNotFound, "follow not found", nil)
		return
	}
	Ok(c, gin.H{"deleted": true}, nil)
}

// @Summary Enable a follow
// @Tags follows
// @Produce json
// @Param id path string true "follow id"
// @Success 200 {object} map[string]any
// @Router /api/v1/follows/{id}/enable [post]
func (h *FollowHandler) enable(c *gin.Context) {
	h.setActive(c, true)
}

// @Summary Disable a follow
// @Tags follows
// @Produce json
// @Param id path string true "follow id"
// @Success 200 {object} map[string]any
// @Router /api/v1/follows/{id}/disable [post]
func (h *FollowHandler) disable(c *gin.Context) {
	h.setActive(c, false)
}

func (h *FollowHandler) setActive(c *gin.Context, active bool) {
	updated, err := h.Repo.SetTraderFollowActive(c.Request.Context(), strings.TrimSpace(c.Param("id")), active)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if !updated {
		Error(c, http.StatusNotFound, "follow not found", nil)
		return
	}
	Ok(c, gin.H{"active": active}, nil)
}

// @Summary Trades detected and executed for one follow
// @Tags follows
// @Produce json
// @Param id path string true "follow id"
// @Success 200 {object} map[string]any
// @Router /api/v1/follows/{id}/trades [get]
func (h *FollowHandler) trades(c *gin.Context) {
	follow, err := h.Repo.GetTraderFollowByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if follow == nil {
		Error(c, http.StatusNotFound, "follow not found", nil)
		return
	}
	params := repository.ListTradesParams{
		Wallet: follow.Wallet,
		Limit:  intQuery(c, "limit", 100),
		Offset: intQuery(c, "offset", 0),
	}
	detected, err := h.Repo.ListDetectedTrades(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	executed, err := h.Repo.ListExecutedTrades(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"detected": detected, "executed": executed}, nil)
}
