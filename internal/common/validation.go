package common

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FiniteTag rejects NaN and infinite floats.
const FiniteTag = "finite"

// MustRegisterValidation registers fn under tag and panics if the validator
// refuses it, like regexp.MustCompile.
func MustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// RegisterFinite adds the "finite" tag to v.
func RegisterFinite(v *validator.Validate) {
	MustRegisterValidation(v, FiniteTag, func(fl validator.FieldLevel) bool {
		return IsFinite(fl.Field().Float())
	})
}
