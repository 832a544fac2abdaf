package validator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	ierr "github.com/pharmalink/ledger/internal/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator with the ledger's custom rules registered
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("decimal_gte0", decimalNonNegative)
		_ = validate.RegisterValidation("decimal_gt0", decimalPositive)
	})
	return validate
}

// ValidateRequest validates a DTO and converts field errors to a validation error
func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var messages []string

		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range validationErrs {
				msg := fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
				details[fe.Field()] = msg
				messages = append(messages, msg)
			}
		} else {
			messages = append(messages, err.Error())
		}

		return ierr.WithError(err).
			WithHint(strings.Join(messages, "; ")).
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func decimalNonNegative(fl validator.FieldLevel) bool {
	d, ok := asDecimal(fl)
	return ok && !d.IsNegative()
}

func decimalPositive(fl validator.FieldLevel) bool {
	d, ok := asDecimal(fl)
	return ok && d.IsPositive()
}

func asDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, true
		}
		return *v, true
	}
	return decimal.Zero, false
}
