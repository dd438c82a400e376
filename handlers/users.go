package handlers

import (
	"net/http"

	"smartpyme-api/middleware"
	"smartpyme-api/models"
	"smartpyme-api/services"

	"github.com/gin-gonic/gin"
)

type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required,max=120"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Phone    string      `json:"phone"`
	Role     models.Role `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Name     *string      `json:"name" binding:"omitempty,min=1,max=120"`
	Phone    *string      `json:"phone"`
	Password *string      `json:"password" binding:"omitempty,min=6"`
	Role     *models.Role `json:"role"`
	Active   *bool        `json:"active"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.Create(c.Request.Context(), middleware.GetTenantID(c), services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, user)
}

// ListUsers supports ?role=admin|employee|customer
func (h *Handler) ListUsers(c *gin.Context) {
	var role *models.Role
	if raw := c.Query("role"); raw != "" {
		r, err := models.ParseRole(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid role filter", nil)
			return
		}
		role = &r
	}
	users, err := h.users.List(c.Request.Context(), middleware.GetTenantID(c), role)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req UpdateUserRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), middleware.GetTenantID(c), id, services.UpdateUserInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

// DeleteUser reports whether the user was removed or only deactivated
func (h *Handler) DeleteUser(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	deactivated, err := h.users.Delete(c.Request.Context(), middleware.GetTenantID(c), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id, "deactivated": deactivated})
}
