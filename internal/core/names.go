package core

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

var names = newNameValidator()

func newNameValidator() *validator.Validate {
	v := validator.New()
	// letterdigit accepts Unicode letters and decimal digits only, so
	// superscripts and roman numerals are rejected.
	err := v.RegisterValidation("letterdigit", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	})
	if err != nil {
		panic(err)
	}
	return v
}

// ValidName reports whether name may be used as a nickname or channel name:
// non-empty and made only of letters and digits.
func ValidName(name string) bool {
	return names.Var(name, "required,letterdigit") == nil
}
