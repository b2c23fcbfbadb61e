package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"event_management/internal/domain"
	apperrors "event_management/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{8,20}$`)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// report json field names instead of struct field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	vr := &Validator{validate: v}
	vr.registerRules()
	return vr
}

func (v *Validator) registerRules() {
	v.validate.RegisterValidation("event_type", func(fl validator.FieldLevel) bool {
		return domain.ValidEventType(fl.Field().String())
	})
	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return domain.ValidRole(fl.Field().String())
	})
	v.validate.RegisterValidation("audit_action", func(fl validator.FieldLevel) bool {
		return domain.ValidAuditAction(fl.Field().String())
	})
	v.validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DateLayout, fl.Field().String())
		return err == nil
	})
	v.validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.TimeLayout, fl.Field().String())
		return err == nil
	})
	v.validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
}

// Validate runs the struct rules and folds every failure into a single
// validation error.
func (v *Validator) Validate(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Validation(err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return apperrors.Validation(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "event_type":
		return fmt.Sprintf("%s must be one of workshop, lecture, seminar", field)
	case "user_role":
		return fmt.Sprintf("%s must be one of student, teacher, organizer", field)
	case "audit_action":
		return fmt.Sprintf("%s must be one of CREATE, UPDATE, DELETE, READ", field)
	case "date":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "clock":
		return fmt.Sprintf("%s must be a time in HH:MM format", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and digits", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
