package common

import (
	"math"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestMustRegisterValidation_PanicsOnRejectedTag(t *testing.T) {
	v := validator.New()

	assert.Panics(t, func() {
		MustRegisterValidation(v, "", func(validator.FieldLevel) bool { return true })
	})
}

func TestRegisterFinite(t *testing.T) {
	v := validator.New()
	assert.NotPanics(t, func() { RegisterFinite(v) })

	type reading struct {
		Value *float64 `validate:"required,finite"`
	}
	val := func(f float64) *float64 { return &f }

	assert.NoError(t, v.Struct(reading{Value: val(42.5)}))
	assert.NoError(t, v.Struct(reading{Value: val(-3)}))
	assert.Error(t, v.Struct(reading{Value: val(math.NaN())}))
	assert.Error(t, v.Struct(reading{Value: val(math.Inf(1))}))
	assert.Error(t, v.Struct(reading{}))
}
