package routes

import (
	"smartpyme-api/handlers"
	"smartpyme-api/metrics"
	"smartpyme-api/middleware"
	"smartpyme-api/models"

	"github.com/gin-gonic/gin"
)

// Options carries what the route table needs besides the handlers
type Options struct {
	JWTSecret   []byte
	PlatformKey string
	UploadDir   string
	Tenants     middleware.TenantLookup
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/tenants", h.Signup)
		public.POST("/auth/login", h.Login)
		public.GET("/estados", h.GetStateMachineInfo)

		// Storefront, resolved by slug
		catalog := public.Group("/catalogo/:tenant_slug")
		catalog.GET("", h.GetStorefront)
		catalog.GET("/categorias", h.GetStorefrontCategories)
		catalog.GET("/productos", h.GetStorefrontProducts)
		catalog.GET("/productos/:id", h.GetStorefrontProduct)
		catalog.POST("/registro", h.RegisterCustomer)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(opts.JWTSecret), middleware.TenantActive(opts.Tenants))
	{
		admin := middleware.RoleRequired(models.RoleAdmin)
		staff := middleware.RoleRequired(models.StaffRoles...)

		auth.GET("/perfil", h.GetProfile)

		auth.GET("/tenant", staff, h.GetTenant)
		auth.PUT("/tenant", admin, h.UpdateTenant)
		auth.GET("/tenant/limites", staff, h.GetLimits)

		users := auth.Group("/usuarios", admin)
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)

		categories := auth.Group("/categorias", staff)
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", admin, h.CreateCategory)
		categories.PUT("/:id", admin, h.UpdateCategory)
		categories.DELETE("/:id", admin, h.DeleteCategory)

		products := auth.Group("/productos", staff)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)

		orders := auth.Group("/pedidos")
		orders.POST("", middleware.RoleRequired(models.RoleCustomer), h.PlaceOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id/estado", h.UpdateOrderStatus)
		orders.GET("/:id/historial", h.GetOrderHistory)

		settings := auth.Group("/configuracion", admin)
		settings.GET("", h.ListSettings)
		settings.PUT("/:key", h.UpdateSetting)
	}

	// ── Platform administration ────────────────────────────────────
	platform := r.Group("/api/platform", middleware.PlatformKeyRequired(opts.PlatformKey))
	{
		platform.GET("/tenants", h.PlatformListTenants)
		platform.PUT("/tenants/:id", h.PlatformUpdateTenant)
		platform.PATCH("/tenants/:id/toggle", h.PlatformToggleTenant)
		platform.DELETE("/tenants/:id", h.PlatformDeleteTenant)
	}
}
