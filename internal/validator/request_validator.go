package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"storefront/internal/usecase"

	"github.com/go-playground/validator/v10"
)

// echo.Validator の実装。c.Validate(&req) から呼ばれる
type RequestValidator struct {
	v *validator.Validate
}

func New() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラーのフィールド名は JSON のキー（productId など）
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &RequestValidator{v: v}
}

// 最初の1件だけ ValidationError にして返す
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return usecase.NewValidationError("", err.Error())
	}
	fe := fieldErrs[0]
	return usecase.NewValidationError(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
