package inventory

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

var reasons = map[string]string{
	"required": "must not be empty",
	"notblank": "must not be empty",
	"email":    "must be a plain e-mail address",
	"gt":       "must be a positive integer",
	"gte":      "must not be negative",
}

// check validates the struct tags of v and reports the first failure as a
// *ValidationError.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	reason, ok := reasons[fe.Tag()]
	if !ok {
		reason = "failed " + fe.Tag() + " check"
	}
	return invalid(fe.Field(), reason)
}
