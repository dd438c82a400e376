package handlers

import (
	"net/http"

	"smartpyme-api/models"
	"smartpyme-api/services"

	"github.com/gin-gonic/gin"
)

// PlatformTenantRequest updates any tenant field, including plan and limits.
// A negative limit removes the override.
type PlatformTenantRequest struct {
	TenantProfileRequest
	Plan        *models.Plan `json:"plan" binding:"omitempty,oneof=basic professional enterprise"`
	MaxUsers    *int         `json:"max_users"`
	MaxProducts *int         `json:"max_products"`
}

func (h *Handler) PlatformListTenants(c *gin.Context) {
	tenants, err := h.tenants.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	type row struct {
		models.Tenant
		Usage *services.Usage `json:"usage"`
	}
	out := make([]row, 0, len(tenants))
	for _, t := range tenants {
		usage, err := h.tenants.Usage(c.Request.Context(), t.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, row{Tenant: t, Usage: usage})
	}
	ok(c, http.StatusOK, out)
}

func (h *Handler) PlatformUpdateTenant(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req PlatformTenantRequest
	if !bind(c, &req) {
		return
	}
	tenant, err := h.tenants.Update(c.Request.Context(), models.TenantID(id), services.TenantUpdate{
		Name:         req.Name,
		Plan:         req.Plan,
		MaxUsers:     req.MaxUsers,
		MaxProducts:  req.MaxProducts,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		LogoURL:      req.LogoURL,
		PrimaryColor: req.PrimaryColor,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, tenant)
}

func (h *Handler) PlatformToggleTenant(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	tenant, err := h.tenants.ToggleActive(c.Request.Context(), models.TenantID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, tenant)
}

func (h *Handler) PlatformDeleteTenant(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.tenants.Delete(c.Request.Context(), models.TenantID(id)); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": id})
}
