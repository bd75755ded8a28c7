package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polyscout/internal/repository"
)

type DaemonHandler struct {
	Repo repository.Repository
}

func (h *DaemonHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/daemons", h.list)
}

// @Summary Daemon ownership status
// @Tags daemons
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/daemons [get]
func (h *DaemonHandler) list(c *gin.Context) {
	items, err := h.Repo.ListDaemonStates(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
