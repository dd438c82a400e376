package services

import (
	"context"
	"fmt"
	"strings"

	"smartpyme-api/apperrors"
	"smartpyme-api/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     models.Role
}

type UpdateUserInput struct {
	Name     *string
	Phone    *string
	Password *string
	Role     *models.Role
	Active   *bool
}

type UserService struct {
	db      *gorm.DB
	tenants *TenantService
	log     *zap.Logger
}

func NewUserService(db *gorm.DB, tenants *TenantService, log *zap.Logger) *UserService {
	return &UserService{db: db, tenants: tenants, log: log}
}

// Create adds a user to tenant. Staff roles are checked against the tenant's
// user limit in the same transaction as the insert; customers never are.
func (s *UserService) Create(ctx context.Context, tenant models.TenantID, in CreateUserInput) (*models.User, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, apperrors.Field("role", "role must be admin, employee or customer")
	}
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" {
		return nil, apperrors.Field("email", "email is required")
	}
	if len(in.Password) < 6 {
		return nil, apperrors.Field("password", "password must have at least 6 characters")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		TenantID:     tenant,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        in.Phone,
		Active:       true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Scopes(forTenant(tenant)).
			Where("email = ?", user.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperrors.Conflict("email %s is already registered", user.Email)
		}
		if user.Role.IsStaff() {
			if err := checkStaffLimit(tx, tenant); err != nil {
				return err
			}
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		s.log.Debug("user not created", zap.Uint("tenant_id", uint(tenant)), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// RegisterCustomer is the storefront signup path. It always creates a customer.
func (s *UserService) RegisterCustomer(ctx context.Context, tenant models.TenantID, in CreateUserInput) (*models.User, error) {
	in.Role = models.RoleCustomer
	return s.Create(ctx, tenant, in)
}

func (s *UserService) Get(ctx context.Context, tenant models.TenantID, id uint) (*models.User, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	var u models.User
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenant)).First(&u, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("user")
		}
		return nil, err
	}
	return &u, nil
}

// List returns the tenant's users, optionally restricted to one role
func (s *UserService) List(ctx context.Context, tenant models.TenantID, role *models.Role) ([]models.User, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(forTenant(tenant))
	if role != nil {
		q = q.Where("role = ?", *role)
	}
	var users []models.User
	err := q.Order("id asc").Find(&users).Error
	return users, err
}

// Update applies the non-nil fields. Becoming active staff (by promotion or
// reactivation) goes through the user limit check again.
func (s *UserService) Update(ctx context.Context, tenant models.TenantID, id uint, in UpdateUserInput) (*models.User, error) {
	u, err := s.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Password != nil {
		if len(*in.Password) < 6 {
			return nil, apperrors.Field("password", "password must have at least 6 characters")
		}
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = hash
	}

	newRole, newActive := u.Role, u.Active
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperrors.Field("role", "role must be admin, employee or customer")
		}
		newRole = *in.Role
		updates["role"] = newRole
	}
	if in.Active != nil {
		newActive = *in.Active
		updates["active"] = newActive
	}
	if len(updates) == 0 {
		return u, nil
	}

	wasCounted := u.Role.IsStaff() && u.Active
	willCount := newRole.IsStaff() && newActive

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if willCount && !wasCounted {
			if err := checkStaffLimit(tx, tenant); err != nil {
				return err
			}
		}
		return tx.Model(&models.User{}).Scopes(forTenant(tenant)).
			Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, tenant, id)
}

// Delete hard-deletes users nothing refers to. Users referenced by orders or
// order history are deactivated instead; deactivated reports which happened.
func (s *UserService) Delete(ctx context.Context, tenant models.TenantID, id, actorID uint) (deactivated bool, err error) {
	if id == actorID {
		return false, apperrors.Validation("you cannot delete your own account")
	}
	if _, err := s.Get(ctx, tenant, id); err != nil {
		return false, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders, history int64
		if err := tx.Model(&models.Order{}).Scopes(forTenant(tenant)).
			Where("customer_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.OrderStatusHistory{}).
			Where("changed_by = ?", id).Count(&history).Error; err != nil {
			return err
		}
		if orders+history > 0 {
			deactivated = true
			return tx.Model(&models.User{}).Scopes(forTenant(tenant)).
				Where("id = ?", id).Update("active", false).Error
		}
		return tx.Scopes(forTenant(tenant)).Delete(&models.User{}, "id = ?", id).Error
	})
	return deactivated, err
}

// Authenticate checks credentials of a user of the tenant identified by slug.
// Inactive tenants and inactive users cannot sign in.
func (s *UserService) Authenticate(ctx context.Context, slug, email, password string) (*models.User, *models.Tenant, error) {
	invalid := apperrors.Unauthorized("invalid email or password")

	tenant, err := s.tenants.ResolveStorefront(ctx, slug)
	if err != nil {
		return nil, nil, invalid
	}

	var u models.User
	err = s.db.WithContext(ctx).Scopes(forTenant(tenant.ID)).
		Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil, invalid
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, invalid
	}
	if !u.Active {
		return nil, nil, apperrors.Unauthorized("account is deactivated")
	}
	return &u, tenant, nil
}
