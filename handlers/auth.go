package handlers

import (
	"fmt"
	"net/http"

	"smartpyme-api/middleware"
	"smartpyme-api/models"
	"smartpyme-api/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	TenantSlug string `json:"tenant_slug" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

func (h *Handler) sessionFor(user *models.User, tenant *models.Tenant) (gin.H, error) {
	token, err := middleware.GenerateToken(user, h.cfg.JWTSecret, h.cfg.JWTHours)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return gin.H{
		"token":  token,
		"user":   user,
		"tenant": tenant.Public(),
	}, nil
}

// Login authenticates a user of one tenant and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}
	user, tenant, err := h.users.Authenticate(c.Request.Context(), req.TenantSlug, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	session, err := h.sessionFor(user, tenant)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, session)
}

// RegisterCustomer creates a customer account on a storefront and logs it in
func (h *Handler) RegisterCustomer(c *gin.Context) {
	tenant, found := h.storefront(c)
	if !found {
		return
	}
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.RegisterCustomer(c.Request.Context(), tenant.ID, services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	session, err := h.sessionFor(user, tenant)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, session)
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	user, err := h.users.Get(c.Request.Context(), tenantID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	tenant, err := h.tenants.Get(c.Request.Context(), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user.Role == models.RoleCustomer {
		ok(c, http.StatusOK, gin.H{"user": user, "tenant": tenant.Public()})
		return
	}
	ok(c, http.StatusOK, gin.H{"user": user, "tenant": tenant})
}
