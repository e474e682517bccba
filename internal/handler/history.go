package handler

import (
	"github.com/gin-gonic/gin"

	"hedgeblotter/internal/models"
	"hedgeblotter/internal/service"
	"hedgeblotter/internal/session"
)

type HistoryHandler struct {
	Sessions *session.Manager
	Blotter  *service.Blotter
}

func (h *HistoryHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.GET("/history", h.list)
	api.GET("/history/summary", h.summary)
}

func (h *HistoryHandler) list(c *gin.Context) {
	st := state(c, h.Sessions)
	st.Lock()
	history := append([]models.ClosedTrade{}, st.History...)
	st.Unlock()
	Ok(c, history, map[string]any{"count": len(history)})
}

func (h *HistoryHandler) summary(c *gin.Context) {
	st := state(c, h.Sessions)
	Ok(c, h.Blotter.HistorySummary(st), nil)
}
