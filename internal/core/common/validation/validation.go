// Package validation turns go-playground struct tag failures into the
// field-level AppError the API and the client report.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
			_, ok := domain.LookupRole(fl.Field().String())
			return ok
		})
		_ = validate.RegisterValidation("project_role", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseProjectRole(fl.Field().String())
			return ok
		})
		_ = validate.RegisterValidation("project_status", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseProjectStatus(fl.Field().String())
			return ok
		})
		_ = validate.RegisterValidation("approval_decision", func(fl validator.FieldLevel) bool {
			s, ok := domain.ParseApprovalStatus(fl.Field().String())
			return ok && s.IsTerminal()
		})
	})
	return validate
}

// Struct validates v and reports the first failing field, in declaration order.
func Struct(v interface{}) *internal.AppError {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	fe := ve[0]
	return internal.NewValidationFieldError(fe.Field(), message(fe), code(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "user_role":
		return fmt.Sprintf("%s must be one of employee, manager, admin", fe.Field())
	case "project_role":
		return fmt.Sprintf("%s must be one of DEVELOPER, TESTER, LEAD", fe.Field())
	case "project_status":
		return fmt.Sprintf("%s must be one of ACTIVE, ON_HOLD, COMPLETED", fe.Field())
	case "approval_decision":
		return fmt.Sprintf("%s must be APPROVED or REJECTED", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func code(fe validator.FieldError) internal.ErrorCode {
	switch fe.Tag() {
	case "required":
		return internal.ErrCodeRequired
	case "user_role", "project_role":
		return internal.ErrCodeInvalidRole
	default:
		return internal.ErrCodeInvalidValue
	}
}
