package models

import (
	"errors"
	"time"
)

// TenantID identifies the tenant that owns a row. Every scoped query takes one
// explicitly; the zero value is never a valid scope.
type TenantID uint

// ErrMissingTenant is returned when a scoped operation receives the zero TenantID.
var ErrMissingTenant = errors.New("tenant scope is required")

// Validate reports whether id can be used as a query scope.
func (id TenantID) Validate() error {
	if id == 0 {
		return ErrMissingTenant
	}
	return nil
}

// Plan is the subscription tier of a tenant
type Plan string

const (
	PlanBasic        Plan = "basic"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// Valid reports whether p is one of the known plans
func (p Plan) Valid() bool {
	switch p {
	case PlanBasic, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

type Tenant struct {
	ID           TenantID  `json:"id" gorm:"primaryKey"`
	Slug         string    `json:"slug" gorm:"uniqueIndex;size:80;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Plan         Plan      `json:"plan" gorm:"size:20;not null"`
	MaxUsers     *int      `json:"max_users"`    // nil: plan default applies
	MaxProducts  *int      `json:"max_products"` // nil: unlimited
	Active       bool      `json:"active" gorm:"not null"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	LogoURL      string    `json:"logo_url"`
	PrimaryColor string    `json:"primary_color" gorm:"size:20"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicTenant is the storefront view of a tenant; limits and plan stay private.
type PublicTenant struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	LogoURL      string `json:"logo_url"`
	PrimaryColor string `json:"primary_color"`
}

func (t Tenant) Public() PublicTenant {
	return PublicTenant{
		Slug:         t.Slug,
		Name:         t.Name,
		Email:        t.Email,
		Phone:        t.Phone,
		Address:      t.Address,
		LogoURL:      t.LogoURL,
		PrimaryColor: t.PrimaryColor,
	}
}
