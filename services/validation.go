package services

import (
	"capstone-tracker/helper"

	"gopkg.in/go-playground/validator.v9"
)

var validate, translator = helper.NewValidator()

// validateStruct reports failures as *models.ValidationError.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		return helper.ToValidationError(verrs, translator)
	}
	return err
}
