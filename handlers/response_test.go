package handlers

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugValidationIsRegistered(t *testing.T) {
	type form struct {
		Slug string `json:"slug" binding:"omitempty,slug"`
	}
	assert.NoError(t, binding.Validator.ValidateStruct(&form{Slug: "acme-foods"}))
	assert.NoError(t, binding.Validator.ValidateStruct(&form{}))

	err := binding.Validator.ValidateStruct(&form{Slug: "Bad Slug"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "slug", verrs[0].Field())
	assert.Equal(t, "slug", verrs[0].Tag())
}

func TestDecimalValidatesAsNumber(t *testing.T) {
	type form struct {
		Price decimal.Decimal `json:"price" binding:"required,gt=0"`
	}
	assert.NoError(t, binding.Validator.ValidateStruct(&form{Price: decimal.RequireFromString("2.25")}))
	assert.Error(t, binding.Validator.ValidateStruct(&form{Price: decimal.Zero}))
}
