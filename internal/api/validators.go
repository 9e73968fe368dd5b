package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"promptvault-backend/internal/models"
)

// registerValidators adds the engine's custom binding rules to gin's
// validator instance.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("blocktype", func(fl validator.FieldLevel) bool {
			return models.ValidBlockType(models.BlockType(fl.Field().String()))
		})
	}
}
