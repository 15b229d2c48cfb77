package controllers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// frPhone matches French phone numbers: national (0X) or international
// (+33 / 0033) prefix followed by nine digits, optionally separated.
var frPhone = regexp.MustCompile(`^(?:(?:\+|00)33|0)\s*[1-9](?:[\s.-]*\d{2}){4}$`)

func validateFrPhone(fl validator.FieldLevel) bool {
	return frPhone.MatchString(fl.Field().String())
}

// RegisterValidators adds the custom binding tags used by request payloads
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("frphone", validateFrPhone)
}
