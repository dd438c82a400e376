package services

import (
	"context"
	"fmt"
	"testing"

	"smartpyme-api/apperrors"
	"smartpyme-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLimit_PlanDefaultsAndOverride(t *testing.T) {
	basic := &models.Tenant{Plan: models.PlanBasic}
	require.NotNil(t, UserLimit(basic))
	assert.Equal(t, 2, *UserLimit(basic))

	pro := &models.Tenant{Plan: models.PlanProfessional}
	assert.Equal(t, 5, *UserLimit(pro))

	assert.Nil(t, UserLimit(&models.Tenant{Plan: models.PlanEnterprise}))

	override := &models.Tenant{Plan: models.PlanBasic, MaxUsers: intPtr(10)}
	assert.Equal(t, 10, *UserLimit(override), "tenant override wins over plan")

	capped := &models.Tenant{Plan: models.PlanEnterprise, MaxUsers: intPtr(1)}
	assert.Equal(t, 1, *UserLimit(capped))

	assert.Nil(t, ProductLimit(&models.Tenant{Plan: models.PlanBasic}), "no plan default for products")
}

func TestStaffLimit_BasicPlan(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)

	env.seedUser(t, tenant.ID, "emp1@acme.test", models.RoleEmployee)

	_, err := env.users.Create(ctx, tenant.ID, CreateUserInput{
		Name: "Emp 2", Email: "emp2@acme.test", Password: "secret123", Role: models.RoleEmployee,
	})
	var limit *apperrors.LimitExceededError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, "users", limit.Resource)
	assert.Equal(t, int64(2), limit.Current)
	assert.Equal(t, 2, limit.Max)

	// customers never count against the limit
	customer := env.seedUser(t, tenant.ID, "buyer@acme.test", models.RoleCustomer)
	assert.Equal(t, models.RoleCustomer, customer.Role)

	usage, err := env.tenants.Usage(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), usage.Users.Current)
	assert.Equal(t, 2, *usage.Users.Max)
}

func TestStaffLimit_OverrideWins(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	_, err := env.tenants.Update(ctx, tenant.ID, TenantUpdate{MaxUsers: intPtr(3)})
	require.NoError(t, err)

	env.seedUser(t, tenant.ID, "emp1@acme.test", models.RoleEmployee)
	env.seedUser(t, tenant.ID, "emp2@acme.test", models.RoleEmployee)

	_, err = env.users.Create(ctx, tenant.ID, CreateUserInput{
		Name: "Emp 3", Email: "emp3@acme.test", Password: "secret123", Role: models.RoleAdmin,
	})
	var limit *apperrors.LimitExceededError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, 3, limit.Max)
}

func TestStaffLimit_EnterpriseUnlimited(t *testing.T) {
	env := newEnv(t)
	tenant, _ := env.seedTenant(t, "Big Corp", models.PlanEnterprise)
	for i := 0; i < 8; i++ {
		env.seedUser(t, tenant.ID, fmt.Sprintf("emp%d@big.test", i), models.RoleEmployee)
	}
	usage, err := env.tenants.Usage(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), usage.Users.Current)
	assert.Nil(t, usage.Users.Max)
}

func TestStaffLimit_InactiveStaffNotCounted(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	emp := env.seedUser(t, tenant.ID, "emp1@acme.test", models.RoleEmployee)

	inactive := false
	_, err := env.users.Update(ctx, tenant.ID, emp.ID, UpdateUserInput{Active: &inactive})
	require.NoError(t, err)

	env.seedUser(t, tenant.ID, "emp2@acme.test", models.RoleEmployee)

	// reactivating the first one would exceed the limit
	active := true
	_, err = env.users.Update(ctx, tenant.ID, emp.ID, UpdateUserInput{Active: &active})
	var limit *apperrors.LimitExceededError
	assert.ErrorAs(t, err, &limit)
}

func TestStaffLimit_PromotionChecked(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	env.seedUser(t, tenant.ID, "emp1@acme.test", models.RoleEmployee)
	customer := env.seedUser(t, tenant.ID, "buyer@acme.test", models.RoleCustomer)

	role := models.RoleEmployee
	_, err := env.users.Update(ctx, tenant.ID, customer.ID, UpdateUserInput{Role: &role})
	var limit *apperrors.LimitExceededError
	require.ErrorAs(t, err, &limit)

	got, err := env.users.Get(ctx, tenant.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, got.Role)
}

func TestStaffLimit_PerTenant(t *testing.T) {
	env := newEnv(t)
	acme, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	other, _ := env.seedTenant(t, "Other", models.PlanBasic)

	env.seedUser(t, acme.ID, "emp@acme.test", models.RoleEmployee)
	env.seedUser(t, other.ID, "emp@other.test", models.RoleEmployee)
}

func TestProductLimit_CountsInactiveProducts(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanEnterprise)
	_, err := env.tenants.Update(ctx, tenant.ID, TenantUpdate{MaxProducts: intPtr(2)})
	require.NoError(t, err)
	cat := env.defaultCategory(t, tenant.ID)

	p1, err := env.catalog.CreateProduct(ctx, tenant.ID, ProductInput{
		CategoryID: cat.ID, Name: "Tea", Price: decimal.RequireFromString("2.50"), Stock: 5,
	}, nil)
	require.NoError(t, err)
	_, err = env.catalog.CreateProduct(ctx, tenant.ID, ProductInput{
		CategoryID: cat.ID, Name: "Coffee", Price: decimal.RequireFromString("3.00"), Stock: 5,
	}, nil)
	require.NoError(t, err)

	inactive := false
	_, err = env.catalog.UpdateProduct(ctx, tenant.ID, p1.ID, ProductUpdate{Active: &inactive}, nil)
	require.NoError(t, err)

	_, err = env.catalog.CreateProduct(ctx, tenant.ID, ProductInput{
		CategoryID: cat.ID, Name: "Juice", Price: decimal.RequireFromString("4.00"), Stock: 5,
	}, nil)
	var limit *apperrors.LimitExceededError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, "products", limit.Resource)
	assert.Equal(t, int64(2), limit.Current)
	assert.Equal(t, 2, limit.Max)
}
