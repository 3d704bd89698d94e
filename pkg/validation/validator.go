package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// Validator returns the shared validator with the custom tags registered
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		registerCustom(validate)
	})
	return validate
}

// RegisterGinValidators registers the custom tags on gin's binding engine so
// that `binding:"currency"` works in request structs.
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	registerCustom(v)
	return nil
}

func registerCustom(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return IsCurrencyCode(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// jsonFieldName reports fields by their JSON (or form) name
func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// IsCurrencyCode reports whether code is a known ISO-4217 code in any case
func IsCurrencyCode(code string) bool {
	if !currencyPattern.MatchString(code) {
		return false
	}
	return Validator().Var(strings.ToUpper(code), "iso4217") == nil
}

// ValidateStruct runs the struct's `validate` tags. Failures are returned as
// *ValidationError.
func ValidateStruct(s interface{}) error {
	if err := Validator().Struct(s); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return NewValidationError(errs)
		}
		return err
	}
	return nil
}

// FromBindingError converts a gin binding error into a *ValidationError when
// it carries field errors, and returns it unchanged otherwise.
func FromBindingError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return NewValidationError(errs)
	}
	return err
}
