package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"smartpyme-api/apperrors"
	"smartpyme-api/models"
	"smartpyme-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImageUpload is an image received with a create or update request
type ImageUpload struct {
	Ext    string
	Reader io.Reader
}

// CatalogService owns categories and products of each tenant
type CatalogService struct {
	db     *gorm.DB
	images storage.ImageStore
	log    *zap.Logger
}

func NewCatalogService(db *gorm.DB, images storage.ImageStore, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, images: images, log: log}
}

// writeWithImage stores upload (if any) and runs write with the new path. When
// write fails the new file is removed again. This is best effort: a crash
// between the two steps can still leave an orphan.
func (s *CatalogService) writeWithImage(ctx context.Context, upload *ImageUpload, write func(path string) error) (string, error) {
	var path string
	if upload != nil {
		p, err := s.images.Save(ctx, upload.Ext, upload.Reader)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedType) {
				return "", apperrors.Field("image", "image must be jpg, png, gif or webp")
			}
			return "", err
		}
		path = p
	}
	if err := write(path); err != nil {
		if path != "" {
			s.removeImage(path)
		}
		return "", err
	}
	return path, nil
}

func (s *CatalogService) removeImage(path string) {
	if path == "" {
		return
	}
	if err := s.images.Delete(path); err != nil {
		s.log.Warn("image file not removed", zap.String("path", path), zap.Error(err))
	}
}

type CategoryInput struct {
	Name        string
	Description string
}

type CategoryUpdate struct {
	Name        *string
	Description *string
	Active      *bool
}

func (s *CatalogService) CreateCategory(ctx context.Context, tenant models.TenantID, in CategoryInput, img *ImageUpload) (*models.Category, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Field("name", "name is required")
	}

	c := models.Category{
		TenantID:    tenant,
		Name:        name,
		Description: in.Description,
		Active:      true,
	}
	_, err := s.writeWithImage(ctx, img, func(path string) error {
		c.ImagePath = path
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			taken, err := nameTaken(tx, &models.Category{}, tenant, name, 0)
			if err != nil {
				return err
			}
			if taken {
				return apperrors.Conflict("a category named %q already exists", name)
			}
			return tx.Create(&c).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, tenant models.TenantID, onlyActive bool) ([]models.Category, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(forTenant(tenant))
	if onlyActive {
		q = q.Where("active = ?", true)
	}
	var list []models.Category
	err := q.Order("name asc").Find(&list).Error
	return list, err
}

func (s *CatalogService) GetCategory(ctx context.Context, tenant models.TenantID, id uint) (*models.Category, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	var c models.Category
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenant)).First(&c, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("category")
		}
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, tenant models.TenantID, id uint, in CategoryUpdate, img *ImageUpload) (*models.Category, error) {
	c, err := s.GetCategory(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	oldImage := c.ImagePath

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
	if in.Active != nil {
		updates["active"] = *in.Active
	}

	newImage, err := s.writeWithImage(ctx, img, func(path string) error {
		if path != "" {
			updates["image_path"] = path
		}
		if len(updates) == 0 {
			return nil
		}
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if name, ok := updates["name"].(string); ok {
				taken, err := nameTaken(tx, &models.Category{}, tenant, name, id)
				if err != nil {
					return err
				}
				if taken {
					return apperrors.Conflict("a category named %q already exists", name)
				}
			}
			return tx.Model(&models.Category{}).Scopes(forTenant(tenant)).
				Where("id = ?", id).Updates(updates).Error
		})
	})
	if err != nil {
		return nil, err
	}
	if newImage != "" && oldImage != "" {
		s.removeImage(oldImage)
	}
	return s.GetCategory(ctx, tenant, id)
}

// DeleteCategory refuses while any product of the tenant references the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, tenant models.TenantID, id uint) error {
	c, err := s.GetCategory(ctx, tenant, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Scopes(forTenant(tenant)).
			Where("category_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperrors.HasDependents("category", "products", n)
		}
		return tx.Scopes(forTenant(tenant)).Delete(&models.Category{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	s.removeImage(c.ImagePath)
	return nil
}
