package handlers

import (
	"encoding/json"
	"net/http"

	"smartpyme-api/middleware"
	"smartpyme-api/models"

	"github.com/gin-gonic/gin"
)

// SettingRequest sets one key. Kind is only needed for keys that do not exist yet.
type SettingRequest struct {
	Kind  models.SettingKind `json:"kind" binding:"omitempty,oneof=string number boolean json"`
	Value json.RawMessage    `json:"value" binding:"required"`
}

func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, settings)
}

func (h *Handler) UpdateSetting(c *gin.Context) {
	var req SettingRequest
	if !bind(c, &req) {
		return
	}
	setting, err := h.settings.Set(c.Request.Context(), middleware.GetTenantID(c), c.Param("key"), req.Kind, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, setting)
}
