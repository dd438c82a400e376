package handlers

import (
	"net/http"

	"smartpyme-api/middleware"
	"smartpyme-api/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Catalog writes accept JSON or multipart/form-data; the multipart form may
// carry an "image" file.

type CategoryRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=100"`
	Description string `json:"description" form:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" form:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" form:"description"`
	Active      *bool   `json:"active" form:"active"`
}

type ProductRequest struct {
	CategoryID  uint            `json:"category_id" form:"category_id" binding:"required"`
	Name        string          `json:"name" form:"name" binding:"required,max=150"`
	Description string          `json:"description" form:"description"`
	Price       decimal.Decimal `json:"price" form:"price" binding:"required,gt=0"`
	Stock       int             `json:"stock" form:"stock" binding:"min=0"`
}

type UpdateProductRequest struct {
	CategoryID  *uint            `json:"category_id" form:"category_id"`
	Name        *string          `json:"name" form:"name" binding:"omitempty,min=1,max=150"`
	Description *string          `json:"description" form:"description"`
	Price       *decimal.Decimal `json:"price" form:"price"`
	Stock       *int             `json:"stock" form:"stock" binding:"omitempty,min=0"`
	Active      *bool            `json:"active" form:"active"`
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !bind(c, &req) {
		return
	}
	img, f, valid := imageUpload(c)
	if !valid {
		return
	}
	if f != nil {
		defer f.Close()
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), middleware.GetTenantID(c), services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	}, img)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, category)
}

// ListCategories supports ?active=true|false
func (h *Handler) ListCategories(c *gin.Context) {
	active, valid := queryBool(c, "active")
	if !valid {
		return
	}
	categories, err := h.catalog.ListCategories(c.Request.Context(), middleware.GetTenantID(c), active != nil && *active)
	if err != nil {
		respondError(c, err)
		return
	}
	if active != nil && !*active {
		inactive := categories[:0]
		for _, cat := range categories {
			if !cat.Active {
				inactive = append(inactive, cat)
			}
		}
		categories = inactive
	}
	ok(c, http.StatusOK, categories)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	category, err := h.catalog.GetCategory(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req UpdateCategoryRequest
	if !bind(c, &req) {
		return
	}
	img, f, valid := imageUpload(c)
	if !valid {
		return
	}
	if f != nil {
		defer f.Close()
	}
	category, err := h.catalog.UpdateCategory(c.Request.Context(), middleware.GetTenantID(c), id, services.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	}, img)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !bind(c, &req) {
		return
	}
	img, f, valid := imageUpload(c)
	if !valid {
		return
	}
	if f != nil {
		defer f.Close()
	}
	product, err := h.catalog.CreateProduct(c.Request.Context(), middleware.GetTenantID(c), services.ProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}, img)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, product)
}

// ListProducts supports ?category_id=, ?active= and ?search=
func (h *Handler) ListProducts(c *gin.Context) {
	categoryID, valid := queryUint(c, "category_id")
	if !valid {
		return
	}
	active, valid := queryBool(c, "active")
	if !valid {
		return
	}
	products, err := h.catalog.ListProducts(c.Request.Context(), middleware.GetTenantID(c), services.ProductFilter{
		CategoryID: categoryID,
		Active:     active,
		Search:     c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"count": len(products), "products": products})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req UpdateProductRequest
	if !bind(c, &req) {
		return
	}
	img, f, valid := imageUpload(c)
	if !valid {
		return
	}
	if f != nil {
		defer f.Close()
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(), middleware.GetTenantID(c), id, services.ProductUpdate{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      req.Active,
	}, img)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": id})
}
