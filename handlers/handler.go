package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"smartpyme-api/config"
	"smartpyme-api/middleware"
	"smartpyme-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves every API route. Handlers only bind, authorize and
// translate; the rules live in the services.
type Handler struct {
	cfg      *config.Config
	db       *gorm.DB
	tenants  *services.TenantService
	users    *services.UserService
	catalog  *services.CatalogService
	orders   *services.OrderService
	settings *services.SettingsService
}

type Services struct {
	Tenants  *services.TenantService
	Users    *services.UserService
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Settings *services.SettingsService
}

func New(cfg *config.Config, db *gorm.DB, svc Services) *Handler {
	return &Handler{
		cfg:      cfg,
		db:       db,
		tenants:  svc.Tenants,
		users:    svc.Users,
		catalog:  svc.Catalog,
		orders:   svc.Orders,
		settings: svc.Settings,
	}
}

func (h *Handler) actor(c *gin.Context) services.Actor {
	return services.Actor{UserID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

// imageUpload returns the optional "image" part of a multipart request. The
// caller must close the returned file when it is not nil.
func imageUpload(c *gin.Context) (*services.ImageUpload, multipart.File, bool) {
	if c.ContentType() != "multipart/form-data" {
		return nil, nil, true
	}
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, true
		}
		fail(c, http.StatusBadRequest, "Invalid image upload", nil)
		return nil, nil, false
	}
	f, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid image upload", nil)
		return nil, nil, false
	}
	return &services.ImageUpload{Ext: filepath.Ext(header.Filename), Reader: f}, f, true
}
