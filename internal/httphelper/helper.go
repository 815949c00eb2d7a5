package httphelper

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/schema"
)

// Authenticator guards admin only routes.
type Authenticator interface {
	Middleware() gin.HandlerFunc
}

func BindJSON[T any](ctx *gin.Context) (T, bool) { //nolint:ireturn
	var value T
	if err := ctx.ShouldBindJSON(&value); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			SetError(ctx, NewAPIError(http.StatusBadRequest, validationErrs))
		} else {
			SetError(ctx, NewAPIError(http.StatusBadRequest, ErrBadRequest))
		}

		return value, false
	}

	return value, true
}

// Decoder is a package global because it caches meta-data about structs, and an
// instance can be shared safely. Unknown keys are ignored so unrelated query params
// never fail a bind.
var Decoder = newDecoder() //nolint:gochecknoglobals

func newDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return decoder
}

func BindQuery(ctx *gin.Context, target any) bool {
	if errBind := Decoder.Decode(target, ctx.Request.URL.Query()); errBind != nil {
		SetError(ctx,
			NewAPIErrorf(http.StatusBadRequest,
				errors.Join(errBind, ErrBadRequest),
				"Could not decode query params"))

		return false
	}

	return true
}

func GetUUIDParam(ctx *gin.Context, key string) (uuid.UUID, bool) {
	valueStr := ctx.Param(key)
	if valueStr == "" {
		SetError(ctx, NewAPIErrorf(http.StatusBadRequest, ErrParamKeyMissing,
			"Cannot read value for param: %s", key))

		return uuid.UUID{}, false
	}

	value, errParse := uuid.FromString(valueStr)
	if errParse != nil {
		SetError(ctx, NewAPIErrorf(http.StatusBadRequest, errors.Join(errParse, ErrParamParse),
			"Must be a valid UUID: %s", key))

		return uuid.UUID{}, false
	}

	return value, true
}

// ConfirmedDelete enforces the explicit confirm flag destructive endpoints require,
// writing the error response when it is absent.
func ConfirmedDelete(ctx *gin.Context) bool {
	if ctx.Query("confirm") != "true" {
		SetError(ctx, NewAPIErrorf(http.StatusBadRequest, ErrParamInvalid,
			"Deletion requires confirm=true"))

		return false
	}

	return true
}

func GetIntParam(ctx *gin.Context, key string) (int, bool) {
	valueStr := ctx.Param(key)
	if valueStr == "" {
		SetError(ctx, NewAPIErrorf(http.StatusBadRequest, ErrParamKeyMissing,
			"Cannot read value for param: %s", key))

		return 0, false
	}

	value, errParse := strconv.Atoi(valueStr)
	if errParse != nil {
		SetError(ctx, NewAPIErrorf(http.StatusBadRequest, errors.Join(errParse, ErrParamParse),
			"Must be a valid integer: %s", key))

		return 0, false
	}

	if value < 0 {
		SetError(ctx, NewAPIErrorf(http.StatusBadRequest, ErrParamInvalid,
			"Integer value cannot be negative: %s", key))

		return 0, false
	}

	return value, true
}
