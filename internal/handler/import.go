package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hedgeblotter/internal/normalize"
	"hedgeblotter/internal/service"
	"hedgeblotter/internal/session"
)

type ImportHandler struct {
	Sessions *session.Manager
	Importer *service.Importer
}

func (h *ImportHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.POST("/import/vanilla", h.importSchema(normalize.SchemaVanilla))
	api.POST("/import/exotic", h.importSchema(normalize.SchemaExotic))
	api.POST("/import/vanilla/commit", h.commit(normalize.SchemaVanilla))
	api.POST("/import/exotic/commit", h.commit(normalize.SchemaExotic))
	api.GET("/recon", h.recon)
}

// importSchema accepts a multipart upload under the "file" field, runs
// schema normalization, and stages the rows for preview.
func (h *ImportHandler) importSchema(schema normalize.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			Error(c, http.StatusBadRequest, "file is required: "+err.Error(), nil)
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			Error(c, http.StatusBadRequest, "could not open upload: "+err.Error(), nil)
			return
		}
		defer f.Close()

		st := state(c, h.Sessions)
		preview, err := h.Importer.Import(st, schema, f, fileHeader.Filename)
		if err != nil {
			Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		var meta map[string]any
		if preview.RowCount == 0 {
			meta = map[string]any{"warnings": []string{"file contained no data rows"}}
		}
		Ok(c, preview, meta)
	}
}

func (h *ImportHandler) commit(schema normalize.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := state(c, h.Sessions)
		count, err := h.Importer.Commit(st, schema)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		Ok(c, gin.H{"committed": count}, nil)
	}
}

func (h *ImportHandler) recon(c *gin.Context) {
	st := state(c, h.Sessions)
	result := h.Importer.Recon(st)
	Ok(c, result, map[string]any{
		"summary": fmt.Sprintf("%d matched, %d only in risk system, %d only manual",
			len(result.MatchedIDs()), len(result.OnlyMARS), len(result.OnlyManual)),
	})
}
