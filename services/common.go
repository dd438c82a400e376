package services

import (
	"errors"
	"regexp"
	"strings"

	"smartpyme-api/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// passwordCost is lowered by tests
var passwordCost = bcrypt.DefaultCost

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// forTenant restricts a query to rows owned by tenant
func forTenant(tenant models.TenantID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenant)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// nameTaken reports whether another row of model in tenant already uses name,
// compared on the case-folded name_key.
func nameTaken(tx *gorm.DB, model any, tenant models.TenantID, name string, excludeID uint) (bool, error) {
	q := tx.Model(model).Scopes(forTenant(tenant)).Where("name_key = ?", models.NameKey(name))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlug     = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify derives a URL-safe slug from a display name
func Slugify(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func ValidSlug(slug string) bool {
	return len(slug) <= 80 && slugPattern.MatchString(slug)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
