package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"smartpyme-api/apperrors"
	"smartpyme-api/models"

	"gorm.io/gorm"
)

// SettingView is a decoded setting as returned to clients
type SettingView struct {
	Key       string              `json:"key"`
	Kind      models.SettingKind  `json:"kind"`
	Value     models.SettingValue `json:"value"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func toView(row models.TenantSetting) (SettingView, error) {
	v, err := row.Decode()
	if err != nil {
		return SettingView{}, fmt.Errorf("setting %s: %w", row.Key, err)
	}
	return SettingView{Key: row.Key, Kind: row.Kind, Value: v, UpdatedAt: row.UpdatedAt}, nil
}

func (s *SettingsService) List(ctx context.Context, tenant models.TenantID) ([]SettingView, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	var rows []models.TenantSetting
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenant)).Order("setting_key asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]SettingView, 0, len(rows))
	for _, r := range rows {
		v, err := toView(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *SettingsService) Get(ctx context.Context, tenant models.TenantID, key string) (*SettingView, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	row, err := findSetting(s.db.WithContext(ctx), tenant, key)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperrors.NotFound("setting")
	}
	v, err := toView(*row)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Set stores raw under key. Existing keys keep their kind; kind is only
// required when the key is new.
func (s *SettingsService) Set(ctx context.Context, tenant models.TenantID, key string, kind models.SettingKind, raw json.RawMessage) (*SettingView, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.Field("key", "key is required")
	}

	var saved models.TenantSetting
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findSetting(tx, tenant, key)
		if err != nil {
			return err
		}
		if existing != nil {
			if kind != "" && kind != existing.Kind {
				return apperrors.Field("kind", fmt.Sprintf("setting %s is of kind %s", key, existing.Kind))
			}
			kind = existing.Kind
		} else if kind == "" {
			return apperrors.Field("kind", "kind is required for a new setting")
		}

		value, err := models.SettingValueFromJSON(kind, raw)
		if err != nil {
			return apperrors.Field("value", err.Error())
		}
		row, err := models.NewTenantSetting(tenant, key, value)
		if err != nil {
			return apperrors.Field("value", err.Error())
		}
		if existing != nil {
			row.ID = existing.ID
		}
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		saved = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	v, err := toView(saved)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func findSetting(tx *gorm.DB, tenant models.TenantID, key string) (*models.TenantSetting, error) {
	var row models.TenantSetting
	err := tx.Scopes(forTenant(tenant)).Where("setting_key = ?", key).First(&row).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// settingBool reads a boolean setting, falling back when it is not set.
func settingBool(tx *gorm.DB, tenant models.TenantID, key string, fallback bool) (bool, error) {
	row, err := findSetting(tx, tenant, key)
	if err != nil || row == nil {
		return fallback, err
	}
	v, err := row.Decode()
	if err != nil {
		return fallback, err
	}
	if v.Kind != models.KindBoolean {
		return fallback, nil
	}
	return v.Bool, nil
}
