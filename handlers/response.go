package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"smartpyme-api/apperrors"
	"smartpyme-api/logger"
	"smartpyme-api/models"
	"smartpyme-api/services"
	"smartpyme-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// decimal.Decimal is a struct; validate it as its float value so that
	// required and gt work on prices.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return services.ValidSlug(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register slug validation: %v", err))
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"success": false, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}

// respondError maps service errors onto status codes. Anything unknown is
// logged and answered with an opaque 500.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		limitErr      *apperrors.LimitExceededError
		conflictErr   *apperrors.ConflictError
		forbiddenErr  *apperrors.ForbiddenError
		unauthErr     *apperrors.UnauthorizedError
		transitionErr *statemachine.TransitionError
	)
	switch {
	case errors.As(err, &validationErr):
		fail(c, http.StatusBadRequest, validationErr.Message, gin.H{"causes": validationErr.Causes})
	case errors.As(err, &notFoundErr):
		fail(c, http.StatusNotFound, notFoundErr.Error(), nil)
	case errors.As(err, &limitErr):
		fail(c, http.StatusForbidden, limitErr.Error(), gin.H{
			"resource": limitErr.Resource,
			"current":  limitErr.Current,
			"max":      limitErr.Max,
		})
	case errors.As(err, &conflictErr):
		fail(c, http.StatusConflict, conflictErr.Message, nil)
	case errors.As(err, &forbiddenErr):
		fail(c, http.StatusForbidden, forbiddenErr.Message, nil)
	case errors.As(err, &unauthErr):
		fail(c, http.StatusUnauthorized, unauthErr.Message, nil)
	case errors.As(err, &transitionErr):
		fail(c, http.StatusUnprocessableEntity, transitionErr.Error(), gin.H{
			"current_status":    transitionErr.From,
			"requested_status":  transitionErr.To,
			"valid_transitions": statemachine.ValidTransitionsFrom(transitionErr.From),
		})
	case errors.Is(err, models.ErrMissingTenant):
		fail(c, http.StatusUnauthorized, err.Error(), nil)
	default:
		logger.FromGin(c).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		fail(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// bind decodes the body by content type. Validation failures become field
// causes; malformed bodies a plain 400.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			causes := make([]apperrors.Cause, 0, len(verrs))
			for _, fe := range verrs {
				causes = append(causes, apperrors.Cause{Field: fe.Field(), Message: describeTag(fe)})
			}
			fail(c, http.StatusBadRequest, "Validation failed", gin.H{"causes": causes})
			return false
		}
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return false
	}
	return true
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "slug":
		return "must contain only lowercase letters, digits and single dashes"
	}
	return "failed " + fe.Tag() + " validation"
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid "+name+" filter", nil)
		return nil, false
	}
	return &b, true
}

func queryUint(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid "+name+" filter", nil)
		return nil, false
	}
	v := uint(n)
	return &v, true
}
