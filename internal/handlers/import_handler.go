package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/rfp-manager/internal/services"
)

type ImportHandler struct {
	Importer *services.ImportService
}

func NewImportHandler(importer *services.ImportService) *ImportHandler {
	return &ImportHandler{Importer: importer}
}

// SyncBoond runs one import cycle and reports what it did.
func (h *ImportHandler) SyncBoond(c *gin.Context) {
	report, err := h.Importer.Sync(c.Request.Context())
	if err != nil {
		if err == services.ErrImportDisabled {
			respondError(c, err)
			return
		}
		respondUpstream(c, "Boond import failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
