package services

import (
	"context"
	"strings"
	"testing"

	"smartpyme-api/apperrors"
	"smartpyme-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func png(body string) *ImageUpload {
	return &ImageUpload{Ext: ".png", Reader: strings.NewReader(body)}
}

func TestCategoryNames_UniquePerTenantIgnoringCase(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	acme, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	other, _ := env.seedTenant(t, "Other", models.PlanBasic)

	_, err := env.catalog.CreateCategory(ctx, acme.ID, CategoryInput{Name: "Drinks"}, nil)
	require.NoError(t, err)

	_, err = env.catalog.CreateCategory(ctx, acme.ID, CategoryInput{Name: "  dRINKS "}, nil)
	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = env.catalog.CreateCategory(ctx, other.ID, CategoryInput{Name: "Drinks"}, nil)
	assert.NoError(t, err, "another tenant may reuse the name")

	_, err = env.catalog.CreateCategory(ctx, acme.ID, CategoryInput{Name: "   "}, nil)
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateCategory_RenameConflictAndImageReplace(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)

	drinks, err := env.catalog.CreateCategory(ctx, tenant.ID, CategoryInput{Name: "Drinks"}, png("v1"))
	require.NoError(t, err)
	require.NotEmpty(t, drinks.ImagePath)
	first := drinks.ImagePath

	general := DefaultCategoryName
	_, err = env.catalog.UpdateCategory(ctx, tenant.ID, drinks.ID, CategoryUpdate{Name: &general}, nil)
	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)

	updated, err := env.catalog.UpdateCategory(ctx, tenant.ID, drinks.ID, CategoryUpdate{}, png("v2"))
	require.NoError(t, err)
	assert.NotEqual(t, first, updated.ImagePath)
	assert.False(t, env.images.Exists(first), "replaced image is removed")
	assert.True(t, env.images.Exists(updated.ImagePath))
}

func TestDeleteCategory_RefusedWhileReferenced(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	cat := env.defaultCategory(t, tenant.ID)

	p, err := env.catalog.CreateProduct(ctx, tenant.ID, ProductInput{
		CategoryID: cat.ID, Name: "Tea", Price: decimal.NewFromInt(2), Stock: 1,
	}, nil)
	require.NoError(t, err)

	err = env.catalog.DeleteCategory(ctx, tenant.ID, cat.ID)
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "1 dependent products")

	require.NoError(t, env.catalog.DeleteProduct(ctx, tenant.ID, p.ID))
	require.NoError(t, env.catalog.DeleteCategory(ctx, tenant.ID, cat.ID))
}

func TestDeleteProduct_RefusedWhileOrdered(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.place(t, 1)

	err := f.env.catalog.DeleteProduct(ctx, f.tenant.ID, f.product.ID)
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "1 dependent order lines")

	still, err := f.env.catalog.GetProduct(ctx, f.tenant.ID, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Empanada", still.Name)
	assert.Equal(t, int64(1), countRows(t, f.env.db, &models.OrderItem{}))
}

func TestProductNames_FoldNonASCIICase(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	acme, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	other, _ := env.seedTenant(t, "Other", models.PlanBasic)
	cat := env.defaultCategory(t, acme.ID)

	_, err := env.catalog.CreateProduct(ctx, acme.ID, ProductInput{
		CategoryID: cat.ID, Name: "Ñoquis", Price: decimal.NewFromInt(5),
	}, nil)
	require.NoError(t, err)

	var conflict *apperrors.ConflictError
	_, err = env.catalog.CreateProduct(ctx, acme.ID, ProductInput{
		CategoryID: cat.ID, Name: "ñoquis", Price: decimal.NewFromInt(5),
	}, nil)
	assert.ErrorAs(t, err, &conflict)

	flan, err := env.catalog.CreateProduct(ctx, acme.ID, ProductInput{
		CategoryID: cat.ID, Name: "Flan casero", Price: decimal.NewFromInt(3),
	}, nil)
	require.NoError(t, err)
	renamed := "ÑOQUIS"
	_, err = env.catalog.UpdateProduct(ctx, acme.ID, flan.ID, ProductUpdate{Name: &renamed}, nil)
	assert.ErrorAs(t, err, &conflict, "rename onto a folded duplicate")

	_, err = env.catalog.CreateCategory(ctx, acme.ID, CategoryInput{Name: "Pastas Caseras"}, nil)
	require.NoError(t, err)
	_, err = env.catalog.CreateCategory(ctx, acme.ID, CategoryInput{Name: "pastas caseras"}, nil)
	assert.ErrorAs(t, err, &conflict)
	_, err = env.catalog.CreateCategory(ctx, acme.ID, CategoryInput{Name: "Café"}, nil)
	require.NoError(t, err)
	_, err = env.catalog.CreateCategory(ctx, acme.ID, CategoryInput{Name: "CAFÉ"}, nil)
	assert.ErrorAs(t, err, &conflict)

	otherCat := env.defaultCategory(t, other.ID)
	_, err = env.catalog.CreateProduct(ctx, other.ID, ProductInput{
		CategoryID: otherCat.ID, Name: "ñoquis", Price: decimal.NewFromInt(5),
	}, nil)
	assert.NoError(t, err, "another tenant may reuse the name")
}

func TestCatalog_CrossTenantAccessIsNotFound(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	acme, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	other, _ := env.seedTenant(t, "Other", models.PlanBasic)
	cat := env.defaultCategory(t, acme.ID)

	p, err := env.catalog.CreateProduct(ctx, acme.ID, ProductInput{
		CategoryID: cat.ID, Name: "Tea", Price: decimal.NewFromInt(2), Stock: 1,
	}, nil)
	require.NoError(t, err)

	var nf *apperrors.NotFoundError
	_, err = env.catalog.GetProduct(ctx, other.ID, p.ID)
	assert.ErrorAs(t, err, &nf)
	_, err = env.catalog.GetCategory(ctx, other.ID, cat.ID)
	assert.ErrorAs(t, err, &nf)
	assert.ErrorAs(t, env.catalog.DeleteProduct(ctx, other.ID, p.ID), &nf)

	list, err := env.catalog.ListProducts(ctx, other.ID, ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// a product cannot point at another tenant's category
	_, err = env.catalog.CreateProduct(ctx, other.ID, ProductInput{
		CategoryID: cat.ID, Name: "Tea", Price: decimal.NewFromInt(2),
	}, nil)
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCreateProduct_Validation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	cat := env.defaultCategory(t, tenant.ID)

	cases := map[string]ProductInput{
		"zero price":     {CategoryID: cat.ID, Name: "A", Price: decimal.Zero},
		"negative price": {CategoryID: cat.ID, Name: "A", Price: decimal.NewFromInt(-1)},
		"negative stock": {CategoryID: cat.ID, Name: "A", Price: decimal.NewFromInt(1), Stock: -1},
		"blank name":     {CategoryID: cat.ID, Name: " ", Price: decimal.NewFromInt(1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.catalog.CreateProduct(ctx, tenant.ID, in, nil)
			var verr *apperrors.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestCreateProduct_FailedWriteRemovesImage(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	cat := env.defaultCategory(t, tenant.ID)

	_, err := env.catalog.CreateProduct(ctx, tenant.ID, ProductInput{
		CategoryID: cat.ID, Name: "Tea", Price: decimal.NewFromInt(2),
	}, png("tea"))
	require.NoError(t, err)
	assert.Equal(t, 1, env.images.count())

	_, err = env.catalog.CreateProduct(ctx, tenant.ID, ProductInput{
		CategoryID: cat.ID, Name: "TEA", Price: decimal.NewFromInt(2),
	}, png("dup"))
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, env.images.count(), "image of the rejected product is removed")

	_, err = env.catalog.CreateProduct(ctx, tenant.ID, ProductInput{
		CategoryID: cat.ID, Name: "Cake", Price: decimal.NewFromInt(2),
	}, &ImageUpload{Ext: ".exe", Reader: strings.NewReader("x")})
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestListProducts_Filters(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	general := env.defaultCategory(t, tenant.ID)
	drinks, err := env.catalog.CreateCategory(ctx, tenant.ID, CategoryInput{Name: "Drinks"}, nil)
	require.NoError(t, err)

	for _, in := range []ProductInput{
		{CategoryID: drinks.ID, Name: "Green Tea", Price: decimal.NewFromInt(2)},
		{CategoryID: drinks.ID, Name: "Black Coffee", Price: decimal.NewFromInt(3)},
		{CategoryID: general.ID, Name: "Tea Cups", Price: decimal.NewFromInt(9)},
	} {
		_, err := env.catalog.CreateProduct(ctx, tenant.ID, in, nil)
		require.NoError(t, err)
	}

	byCategory, err := env.catalog.ListProducts(ctx, tenant.ID, ProductFilter{CategoryID: &drinks.ID})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	search, err := env.catalog.ListProducts(ctx, tenant.ID, ProductFilter{Search: "TEA"})
	require.NoError(t, err)
	require.Len(t, search, 2)
	assert.Equal(t, "Green Tea", search[0].Name)
	assert.Equal(t, "Tea Cups", search[1].Name)
	require.NotNil(t, search[0].Category)
	assert.Equal(t, "Drinks", search[0].Category.Name)

	active := true
	all, err := env.catalog.ListProducts(ctx, tenant.ID, ProductFilter{Active: &active})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateProduct(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	tenant, _ := env.seedTenant(t, "Acme", models.PlanBasic)
	cat := env.defaultCategory(t, tenant.ID)

	p, err := env.catalog.CreateProduct(ctx, tenant.ID, ProductInput{
		CategoryID: cat.ID, Name: "Tea", Price: decimal.NewFromInt(2), Stock: 3,
	}, nil)
	require.NoError(t, err)

	price := decimal.RequireFromString("2.75")
	stock := 10
	updated, err := env.catalog.UpdateProduct(ctx, tenant.ID, p.ID, ProductUpdate{Price: &price, Stock: &stock}, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, 10, updated.Stock)

	bad := decimal.Zero
	_, err = env.catalog.UpdateProduct(ctx, tenant.ID, p.ID, ProductUpdate{Price: &bad}, nil)
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}
