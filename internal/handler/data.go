package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hedgeblotter/internal/service"
	"hedgeblotter/internal/session"
	"hedgeblotter/internal/store"
)

type DataHandler struct {
	Sessions *session.Manager
	Blotter  *service.Blotter
	Store    *store.CSVStore
	Logger   *zap.Logger
}

func (h *DataHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.POST("/data/save", h.save)
	api.POST("/data/backup", h.backup)
	api.GET("/data/summary", h.summary)
}

func (h *DataHandler) save(c *gin.Context) {
	st := state(c, h.Sessions)
	if err := h.Blotter.Save(st); err != nil {
		Error(c, http.StatusInternalServerError, "save failed: "+err.Error(), nil)
		return
	}
	Ok(c, gin.H{"saved": true}, nil)
}

func (h *DataHandler) backup(c *gin.Context) {
	copies, err := h.Store.Backup()
	if err != nil {
		Error(c, http.StatusInternalServerError, "backup failed: "+err.Error(), nil)
		return
	}
	h.Logger.Info("backup created", zap.Strings("files", copies))
	Ok(c, gin.H{"files": copies}, nil)
}

func (h *DataHandler) summary(c *gin.Context) {
	Ok(c, h.Store.Summary(), nil)
}
