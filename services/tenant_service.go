package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"smartpyme-api/apperrors"
	"smartpyme-api/metrics"
	"smartpyme-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultCategoryName is the category every new tenant starts with
const DefaultCategoryName = "General"

type AdminCredentials struct {
	Name     string
	Email    string
	Password string
}

type CreateTenantInput struct {
	Name         string
	Slug         string
	Plan         models.Plan
	MaxUsers     *int
	MaxProducts  *int
	Email        string
	Phone        string
	Address      string
	LogoURL      string
	PrimaryColor string
	Admin        AdminCredentials
}

// TenantUpdate changes the non-nil fields. A negative limit clears the
// override (plan default for users, unlimited for products).
type TenantUpdate struct {
	Name         *string
	Plan         *models.Plan
	MaxUsers     *int
	MaxProducts  *int
	Email        *string
	Phone        *string
	Address      *string
	LogoURL      *string
	PrimaryColor *string
}

type TenantService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTenantService(db *gorm.DB, log *zap.Logger) *TenantService {
	return &TenantService{db: db, log: log}
}

func validateLimit(field string, v *int) error {
	if v != nil && *v < 0 {
		return apperrors.Field(field, field+" must be zero or greater")
	}
	return nil
}

// Create stores the tenant, its first admin, a default category and the
// default settings in one transaction. Any failure leaves nothing behind.
func (s *TenantService) Create(ctx context.Context, in CreateTenantInput) (*models.Tenant, *models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, nil, apperrors.Field("name", "name is required")
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	if !ValidSlug(in.Slug) {
		return nil, nil, apperrors.Field("slug", "slug must contain only lowercase letters, digits and single dashes")
	}
	if in.Plan == "" {
		in.Plan = models.PlanBasic
	}
	if !in.Plan.Valid() {
		return nil, nil, apperrors.Field("plan", "plan must be basic, professional or enterprise")
	}
	if err := validateLimit("max_users", in.MaxUsers); err != nil {
		return nil, nil, err
	}
	if err := validateLimit("max_products", in.MaxProducts); err != nil {
		return nil, nil, err
	}
	if in.Admin.Email == "" || len(in.Admin.Password) < 6 {
		return nil, nil, apperrors.Validation("admin email and a password of at least 6 characters are required",
			apperrors.Cause{Field: "admin.email", Message: "required"},
			apperrors.Cause{Field: "admin.password", Message: "min 6 characters"})
	}

	hash, err := hashPassword(in.Admin.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash admin password: %w", err)
	}

	tenant := models.Tenant{
		Slug:         in.Slug,
		Name:         in.Name,
		Plan:         in.Plan,
		MaxUsers:     in.MaxUsers,
		MaxProducts:  in.MaxProducts,
		Active:       true,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		LogoURL:      in.LogoURL,
		PrimaryColor: in.PrimaryColor,
	}
	admin := models.User{
		Name:         in.Admin.Name,
		Email:        normalizeEmail(in.Admin.Email),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Active:       true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Tenant{}).Where("slug = ?", tenant.Slug).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return apperrors.Conflict("slug %q is already in use", tenant.Slug)
		}

		if err := tx.Create(&tenant).Error; err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}

		admin.TenantID = tenant.ID
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		category := models.Category{
			TenantID: tenant.ID,
			Name:     DefaultCategoryName,
			Active:   true,
		}
		if err := tx.Create(&category).Error; err != nil {
			return fmt.Errorf("create default category: %w", err)
		}

		defaults := models.DefaultSettings()
		keys := make([]string, 0, len(defaults))
		for k := range defaults {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			row, err := models.NewTenantSetting(tenant.ID, k, defaults[k])
			if err != nil {
				return err
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create setting %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.TenantsCreated.Inc()
	s.log.Info("tenant created",
		zap.Uint("tenant_id", uint(tenant.ID)),
		zap.String("slug", tenant.Slug),
		zap.String("plan", string(tenant.Plan)),
	)
	return &tenant, &admin, nil
}

// GetBySlug is an exact, case-sensitive lookup that ignores the active flag.
func (s *TenantService) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var t models.Tenant
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("tenant")
		}
		return nil, err
	}
	return &t, nil
}

// ResolveStorefront resolves a slug for public paths; inactive tenants are not found.
func (s *TenantService) ResolveStorefront(ctx context.Context, slug string) (*models.Tenant, error) {
	t, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, apperrors.NotFound("tenant")
	}
	return t, nil
}

func (s *TenantService) Get(ctx context.Context, id models.TenantID) (*models.Tenant, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return loadTenant(s.db.WithContext(ctx), id)
}

func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := s.db.WithContext(ctx).Order("id asc").Find(&tenants).Error
	return tenants, err
}

// ToggleActive flips the activation flag. Child rows are untouched.
func (s *TenantService) ToggleActive(ctx context.Context, id models.TenantID) (*models.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Active = !t.Active
	if err := s.db.WithContext(ctx).Model(t).Update("active", t.Active).Error; err != nil {
		return nil, fmt.Errorf("toggle tenant: %w", err)
	}
	s.log.Info("tenant activation changed", zap.Uint("tenant_id", uint(id)), zap.Bool("active", t.Active))
	return t, nil
}

func (s *TenantService) Update(ctx context.Context, id models.TenantID, in TenantUpdate) (*models.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Field("name", "name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Plan != nil {
		if !in.Plan.Valid() {
			return nil, apperrors.Field("plan", "plan must be basic, professional or enterprise")
		}
		updates["plan"] = *in.Plan
	}
	if in.MaxUsers != nil {
		updates["max_users"] = limitValue(*in.MaxUsers)
	}
	if in.MaxProducts != nil {
		updates["max_products"] = limitValue(*in.MaxProducts)
	}
	for col, v := range map[string]*string{
		"email":         in.Email,
		"phone":         in.Phone,
		"address":       in.Address,
		"logo_url":      in.LogoURL,
		"primary_color": in.PrimaryColor,
	} {
		if v != nil {
			updates[col] = *v
		}
	}
	if len(updates) == 0 {
		return t, nil
	}

	if err := s.db.WithContext(ctx).Model(t).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update tenant: %w", err)
	}
	return s.Get(ctx, id)
}

func limitValue(n int) any {
	if n < 0 {
		return nil
	}
	return n
}

// Delete removes a tenant that owns no rows at all. Tenants with data can only
// be deactivated.
func (s *TenantService) Delete(ctx context.Context, id models.TenantID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		for _, model := range []any{
			&models.User{}, &models.Category{}, &models.Product{},
			&models.Order{}, &models.TenantSetting{},
		} {
			var n int64
			if err := tx.Model(model).Scopes(forTenant(id)).Count(&n).Error; err != nil {
				return err
			}
			total += n
		}
		if total > 0 {
			return apperrors.HasDependents("tenant", "rows", total)
		}
		return tx.Delete(&models.Tenant{}, "id = ?", id).Error
	})
}

// Usage reports current counts against the tenant's limits
func (s *TenantService) Usage(ctx context.Context, id models.TenantID) (*Usage, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return usageFor(s.db.WithContext(ctx), id)
}
