package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	DataDir string
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) ready(c *gin.Context) {
	info, err := os.Stat(h.DataDir)
	if err != nil || !info.IsDir() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "data_dir_missing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
