package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/BrightonDube/BizPilot2-sub004/internal/apierror"
	"github.com/BrightonDube/BizPilot2-sub004/internal/middleware"
	"github.com/BrightonDube/BizPilot2-sub004/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQueryAndValidate binds query parameters and runs validator tags,
// mirroring bindAndValidate for GET endpoints.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// identity pulls the caller's business and user ids out of the JWT claims.
// Returns false and writes a 401 if the claims are absent or malformed;
// this only happens when a route is wired without the auth middleware.
func identity(c *gin.Context) (businessID, userID uuid.UUID, ok bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("authentication required"))
		return uuid.Nil, uuid.Nil, false
	}
	businessID, err := uuid.Parse(claims.BusinessID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid business claim"))
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid user claim"))
		return uuid.Nil, uuid.Nil, false
	}
	return businessID, userID, true
}

// writeError maps a service error onto the HTTP status taxonomy. Busy
// signals become 503 with Retry-After so well-behaved clients back off
// instead of hammering a contended register.
func writeError(c *gin.Context, err error) {
	switch model.KindOf(err) {
	case model.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case model.KindNotFound:
		// Cross-tenant hits answer exactly like a missing row.
		if errors.Is(err, model.ErrTenantMismatch) {
			c.JSON(http.StatusNotFound, apierror.New(model.ErrSessionNotFound.Error()))
			return
		}
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case model.KindConflict:
		if model.Retryable(err) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusServiceUnavailable, apierror.New("register busy, retry shortly"))
			return
		}
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
