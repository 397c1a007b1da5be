package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/RigelNana/cinexnema/services/video-service/models"
)

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("videoformat", func(fl validator.FieldLevel) bool {
		_, err := models.ParseFormat(fl.Field().String())
		return err == nil
	})
}
