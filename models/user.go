package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role is the fixed set of user roles. The numeric values are what gets persisted.
type Role int

const (
	RoleAdmin    Role = 1
	RoleEmployee Role = 2
	RoleCustomer Role = 3
)

var roleNames = map[Role]string{
	RoleAdmin:    "admin",
	RoleEmployee: "employee",
	RoleCustomer: "customer",
}

// ParseRole converts the wire name of a role into a Role
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// IsStaff reports whether the role counts against the tenant's user limit
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleEmployee
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", r)
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// StaffRoles are the roles counted by the user limit
var StaffRoles = []Role{RoleAdmin, RoleEmployee}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TenantID     TenantID  `json:"tenant_id" gorm:"not null;uniqueIndex:idx_users_tenant_email,priority:1"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex:idx_users_tenant_email,priority:2"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"not null"`
	Phone        string    `json:"phone"`
	Active       bool      `json:"active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
