package services

import (
	"context"
	"strings"

	"smartpyme-api/apperrors"
	"smartpyme-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductInput struct {
	CategoryID  uint
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

type ProductUpdate struct {
	CategoryID  *uint
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Active      *bool
}

// ProductFilter narrows ListProducts. Zero values do not filter.
type ProductFilter struct {
	CategoryID *uint
	Active     *bool
	Search     string
}

func validatePrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return apperrors.Field("price", "price must be greater than zero")
	}
	return nil
}

func validateStock(n int) error {
	if n < 0 {
		return apperrors.Field("stock", "stock cannot be negative")
	}
	return nil
}

func categoryInTenant(tx *gorm.DB, tenant models.TenantID, id uint) error {
	var n int64
	if err := tx.Model(&models.Category{}).Scopes(forTenant(tenant)).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperrors.Field("category_id", "category does not exist")
	}
	return nil
}

// CreateProduct checks category ownership, the per-tenant name rule and the
// product limit before inserting.
func (s *CatalogService) CreateProduct(ctx context.Context, tenant models.TenantID, in ProductInput, img *ImageUpload) (*models.Product, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Field("name", "name is required")
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if err := validateStock(in.Stock); err != nil {
		return nil, err
	}

	p := models.Product{
		TenantID:    tenant,
		CategoryID:  in.CategoryID,
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Active:      true,
	}
	_, err := s.writeWithImage(ctx, img, func(path string) error {
		p.ImagePath = path
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := categoryInTenant(tx, tenant, in.CategoryID); err != nil {
				return err
			}
			taken, err := nameTaken(tx, &models.Product{}, tenant, name, 0)
			if err != nil {
				return err
			}
			if taken {
				return apperrors.Conflict("a product named %q already exists", name)
			}
			if err := checkProductLimit(tx, tenant); err != nil {
				return err
			}
			return tx.Create(&p).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, tenant models.TenantID, f ProductFilter) ([]models.Product, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(forTenant(tenant)).Preload("Category")
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	if f.Search != "" {
		q = q.Where("lower(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	var list []models.Product
	err := q.Order("name asc").Find(&list).Error
	return list, err
}

func (s *CatalogService) GetProduct(ctx context.Context, tenant models.TenantID, id uint) (*models.Product, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	var p models.Product
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenant)).Preload("Category").First(&p, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("product")
		}
		return nil, err
	}
	return &p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, tenant models.TenantID, id uint, in ProductUpdate, img *ImageUpload) (*models.Product, error) {
	p, err := s.GetProduct(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	oldImage := p.ImagePath

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Field("name", "name cannot be empty")
		}
		updates["name"] = name
		updates["name_key"] = models.NameKey(name)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return nil, err
		}
		updates["price"] = *in.Price
	}
	if in.Stock != nil {
		if err := validateStock(*in.Stock); err != nil {
			return nil, err
		}
		updates["stock"] = *in.Stock
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if in.CategoryID != nil {
		updates["category_id"] = *in.CategoryID
	}

	newImage, err := s.writeWithImage(ctx, img, func(path string) error {
		if path != "" {
			updates["image_path"] = path
		}
		if len(updates) == 0 {
			return nil
		}
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if in.CategoryID != nil {
				if err := categoryInTenant(tx, tenant, *in.CategoryID); err != nil {
					return err
				}
			}
			if name, ok := updates["name"].(string); ok {
				taken, err := nameTaken(tx, &models.Product{}, tenant, name, id)
				if err != nil {
					return err
				}
				if taken {
					return apperrors.Conflict("a product named %q already exists", name)
				}
			}
			return tx.Model(&models.Product{}).Scopes(forTenant(tenant)).
				Where("id = ?", id).Updates(updates).Error
		})
	})
	if err != nil {
		return nil, err
	}
	if newImage != "" && oldImage != "" {
		s.removeImage(oldImage)
	}
	return s.GetProduct(ctx, tenant, id)
}

// DeleteProduct refuses while any order line references the product;
// deactivate it instead.
func (s *CatalogService) DeleteProduct(ctx context.Context, tenant models.TenantID, id uint) error {
	p, err := s.GetProduct(ctx, tenant, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperrors.HasDependents("product", "order lines", n)
		}
		return tx.Scopes(forTenant(tenant)).Delete(&models.Product{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	s.removeImage(p.ImagePath)
	return nil
}
