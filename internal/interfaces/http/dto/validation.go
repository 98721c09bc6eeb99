package dto

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validScanCode accepts what barcode and QR decoders actually emit. Leading or
// trailing whitespace and control characters indicate a mis-read, not a code.
func validScanCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if strings.TrimSpace(code) != code {
		return false
	}
	for _, r := range code {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// RegisterValidations installs custom binding validations on Gin's validator
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("dto: unexpected binding validator engine")
	}
	return v.RegisterValidation("scancode", validScanCode)
}
