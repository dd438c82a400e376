package handlers

import (
	"context"
	"net/http"
	"time"

	"smartpyme-api/models"
	"smartpyme-api/services"
	"smartpyme-api/statemachine"

	"github.com/gin-gonic/gin"
)

// storefront resolves :tenant_slug. Unknown and inactive tenants are both 404.
func (h *Handler) storefront(c *gin.Context) (*models.Tenant, bool) {
	tenant, err := h.tenants.ResolveStorefront(c.Request.Context(), c.Param("tenant_slug"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return tenant, true
}

// GetStorefront returns the public profile and settings of a tenant
func (h *Handler) GetStorefront(c *gin.Context) {
	tenant, found := h.storefront(c)
	if !found {
		return
	}
	settings, err := h.settings.List(c.Request.Context(), tenant.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"tenant": tenant.Public(), "settings": settings})
}

// GetStorefrontCategories lists active categories (public)
func (h *Handler) GetStorefrontCategories(c *gin.Context) {
	tenant, found := h.storefront(c)
	if !found {
		return
	}
	categories, err := h.catalog.ListCategories(c.Request.Context(), tenant.ID, true)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, categories)
}

// GetStorefrontProducts lists active products, filtered by category or search (public)
func (h *Handler) GetStorefrontProducts(c *gin.Context) {
	tenant, found := h.storefront(c)
	if !found {
		return
	}
	categoryID, valid := queryUint(c, "category_id")
	if !valid {
		return
	}
	active := true
	products, err := h.catalog.ListProducts(c.Request.Context(), tenant.ID, services.ProductFilter{
		CategoryID: categoryID,
		Active:     &active,
		Search:     c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, products)
}

func (h *Handler) GetStorefrontProduct(c *gin.Context) {
	tenant, found := h.storefront(c)
	if !found {
		return
	}
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), tenant.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !product.Active {
		fail(c, http.StatusNotFound, "product not found", nil)
		return
	}
	ok(c, http.StatusOK, product)
}

// GetStateMachineInfo returns the order lifecycle for clients and docs
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	terminal := []models.OrderStatus{}
	for _, s := range models.AllStatuses {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	ok(c, http.StatusOK, gin.H{
		"statuses":        models.AllStatuses,
		"transitions":     statemachine.GetAllTransitions(),
		"terminal_states": terminal,
	})
}

// Health pings the database
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	dbStatus := "connected"
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "error"
	}
	status := http.StatusOK
	if dbStatus != "connected" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":  map[bool]string{true: "healthy", false: "unhealthy"}[status == http.StatusOK],
		"service": "smartpyme-api",
		"db":      dbStatus,
	})
}
