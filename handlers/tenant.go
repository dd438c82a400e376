package handlers

import (
	"net/http"

	"smartpyme-api/middleware"
	"smartpyme-api/models"
	"smartpyme-api/services"

	"github.com/gin-gonic/gin"
)

type AdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type SignupRequest struct {
	Name         string       `json:"name" binding:"required,max=120"`
	Slug         string       `json:"slug" binding:"omitempty,slug"`
	Plan         models.Plan  `json:"plan" binding:"omitempty,oneof=basic professional enterprise"`
	Email        string       `json:"email" binding:"omitempty,email"`
	Phone        string       `json:"phone"`
	Address      string       `json:"address"`
	LogoURL      string       `json:"logo_url"`
	PrimaryColor string       `json:"primary_color" binding:"max=20"`
	Admin        AdminRequest `json:"admin" binding:"required"`
}

// TenantProfileRequest holds the fields a tenant admin may change about their own tenant
type TenantProfileRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=120"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	LogoURL      *string `json:"logo_url"`
	PrimaryColor *string `json:"primary_color" binding:"omitempty,max=20"`
}

// Signup creates a tenant together with its first admin and returns a session for that admin
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bind(c, &req) {
		return
	}
	tenant, admin, err := h.tenants.Create(c.Request.Context(), services.CreateTenantInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Plan:         req.Plan,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		LogoURL:      req.LogoURL,
		PrimaryColor: req.PrimaryColor,
		Admin: services.AdminCredentials{
			Name:     req.Admin.Name,
			Email:    req.Admin.Email,
			Password: req.Admin.Password,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	session, err := h.sessionFor(admin, tenant)
	if err != nil {
		respondError(c, err)
		return
	}
	session["tenant"] = tenant
	ok(c, http.StatusCreated, session)
}

func (h *Handler) GetTenant(c *gin.Context) {
	tenant, err := h.tenants.Get(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, tenant)
}

// UpdateTenant changes branding and contact data. Plan and limits are platform-only.
func (h *Handler) UpdateTenant(c *gin.Context) {
	var req TenantProfileRequest
	if !bind(c, &req) {
		return
	}
	tenant, err := h.tenants.Update(c.Request.Context(), middleware.GetTenantID(c), services.TenantUpdate{
		Name:         req.Name,
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

// GetLimits reports users and products in use against the tenant's limits
func (h *Handler) GetLimits(c *gin.Context) {
	usage, err := h.tenants.Usage(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, usage)
}
