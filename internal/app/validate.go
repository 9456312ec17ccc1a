package app

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	val "github.com/go-playground/validator/v10"

	"hotel_desk/internal/domain"
)

// Vietnamese mobile numbers: 0 or +84, a carrier prefix digit, 8 more digits.
var phonePattern = regexp.MustCompile(`^(0|\+84)[35789][0-9]{8}$`)

var validate *val.Validate

// validator tag -> field code reported to the dashboard
var tagCodes = map[string]string{
	"required": domain.CodeRequired,
	"gtfield":  domain.CodeInvalidDateRange,
	"min":      domain.CodeNameTooShort,
	"vnphone":  domain.CodeInvalidPhone,
	"gt":       domain.CodeInvalidGuestCount,
	"gte":      domain.CodeNegative,
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("vnphone", func(fl val.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

// validateForm runs every rule on form and reports all failing fields at
// once, nil when the form is valid.
func validateForm(form any) *domain.ValidationError {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs val.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.ValidationError{Fields: map[string]string{"form": domain.CodeInvalid}}
	}
	out := &domain.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		code, ok := tagCodes[fe.Tag()]
		if !ok {
			code = domain.CodeInvalid
		}
		out.Fields[fe.Field()] = code
	}
	return out
}

// withField adds a field code to verr, allocating it if needed.
func withField(verr *domain.ValidationError, field, code string) *domain.ValidationError {
	if verr == nil {
		verr = &domain.ValidationError{Fields: map[string]string{}}
	}
	verr.Fields[field] = code
	return verr
}
