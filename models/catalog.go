package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// NameKey is the case-folded form of a catalog name. Uniqueness checks compare
// on it because SQLite's lower() only folds ASCII.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TenantID    TenantID  `json:"tenant_id" gorm:"not null;index;index:idx_categories_tenant_name,priority:1"`
	Name        string    `json:"name" gorm:"not null"`
	NameKey     string    `json:"-" gorm:"not null;index:idx_categories_tenant_name,priority:2"`
	Description string    `json:"description"`
	ImagePath   string    `json:"image_path"`
	Active      bool      `json:"active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	c.NameKey = NameKey(c.Name)
	return nil
}

// Product names are unique per tenant, case-insensitively. That rule is enforced by
// the catalog service rather than a database constraint.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	TenantID    TenantID        `json:"tenant_id" gorm:"not null;index;index:idx_products_tenant_name,priority:1"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	Category    *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name        string          `json:"name" gorm:"not null"`
	NameKey     string          `json:"-" gorm:"not null;index:idx_products_tenant_name,priority:2"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock       int             `json:"stock" gorm:"not null"`
	ImagePath   string          `json:"image_path"`
	Active      bool            `json:"active" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.NameKey = NameKey(p.Name)
	return nil
}
