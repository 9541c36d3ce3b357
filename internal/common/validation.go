// File: internal/common/validation.go
package common

import (
	"sync"

	"ecowas_fisheries_backend/internal/country"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the project's custom binding tags to gin's validator.
// Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("country_code", func(fl validator.FieldLevel) bool {
			return country.Valid(country.Normalize(fl.Field().String()))
		})
	})
}
