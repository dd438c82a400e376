package services

import (
	"smartpyme-api/apperrors"
	"smartpyme-api/metrics"
	"smartpyme-api/models"

	"gorm.io/gorm"
)

func intPtr(n int) *int { return &n }

// planUserLimits is the fallback when a tenant has no max_users of its own.
// A nil entry means unlimited.
var planUserLimits = map[models.Plan]*int{
	models.PlanBasic:        intPtr(2),
	models.PlanProfessional: intPtr(5),
	models.PlanEnterprise:   nil,
}

// UserLimit returns the effective staff limit for t; nil means unlimited.
// The tenant's own override always wins over the plan default.
func UserLimit(t *models.Tenant) *int {
	if t.MaxUsers != nil {
		return t.MaxUsers
	}
	return planUserLimits[t.Plan]
}

// ProductLimit returns the product limit for t; nil means unlimited.
func ProductLimit(t *models.Tenant) *int {
	return t.MaxProducts
}

// countActiveStaff counts active admins and employees. Customers never count.
func countActiveStaff(tx *gorm.DB, tenant models.TenantID) (int64, error) {
	var n int64
	err := tx.Model(&models.User{}).Scopes(forTenant(tenant)).
		Where("role IN ? AND active = ?", models.StaffRoles, true).
		Count(&n).Error
	return n, err
}

// countProducts counts every product row, active or not.
func countProducts(tx *gorm.DB, tenant models.TenantID) (int64, error) {
	var n int64
	err := tx.Model(&models.Product{}).Scopes(forTenant(tenant)).Count(&n).Error
	return n, err
}

func loadTenant(tx *gorm.DB, tenant models.TenantID) (*models.Tenant, error) {
	var t models.Tenant
	if err := tx.First(&t, "id = ?", tenant).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("tenant")
		}
		return nil, err
	}
	return &t, nil
}

// checkStaffLimit fails with a LimitExceededError when one more active staff
// user would exceed the tenant's limit.
func checkStaffLimit(tx *gorm.DB, tenant models.TenantID) error {
	t, err := loadTenant(tx, tenant)
	if err != nil {
		return err
	}
	max := UserLimit(t)
	if max == nil {
		return nil
	}
	current, err := countActiveStaff(tx, tenant)
	if err != nil {
		return err
	}
	if current >= int64(*max) {
		metrics.LimitRejections.WithLabelValues("users").Inc()
		return &apperrors.LimitExceededError{Resource: "users", Current: current, Max: *max}
	}
	return nil
}

func checkProductLimit(tx *gorm.DB, tenant models.TenantID) error {
	t, err := loadTenant(tx, tenant)
	if err != nil {
		return err
	}
	max := ProductLimit(t)
	if max == nil {
		return nil
	}
	current, err := countProducts(tx, tenant)
	if err != nil {
		return err
	}
	if current >= int64(*max) {
		metrics.LimitRejections.WithLabelValues("products").Inc()
		return &apperrors.LimitExceededError{Resource: "products", Current: current, Max: *max}
	}
	return nil
}

// ResourceUsage is the current count and limit of one resource; Max nil means unlimited.
type ResourceUsage struct {
	Current int64 `json:"current"`
	Max     *int  `json:"max"`
}

type Usage struct {
	Plan     models.Plan   `json:"plan"`
	Users    ResourceUsage `json:"users"`
	Products ResourceUsage `json:"products"`
}

func usageFor(tx *gorm.DB, tenant models.TenantID) (*Usage, error) {
	t, err := loadTenant(tx, tenant)
	if err != nil {
		return nil, err
	}
	users, err := countActiveStaff(tx, tenant)
	if err != nil {
		return nil, err
	}
	products, err := countProducts(tx, tenant)
	if err != nil {
		return nil, err
	}
	return &Usage{
		Plan:     t.Plan,
		Users:    ResourceUsage{Current: users, Max: UserLimit(t)},
		Products: ResourceUsage{Current: products, Max: ProductLimit(t)},
	}, nil
}
