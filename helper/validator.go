package helper

import (
	"reflect"
	"strings"
	"unicode"

	"capstone-tracker/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

// NewValidator returns a validator that reports JSON field names with English messages.
func NewValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate, trans
}

// ToValidationError converts validator output into the domain error, keyed by field.
func ToValidationError(errs validator.ValidationErrors, trans ut.Translator) *models.ValidationError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		key := Underscore(fe.Field())
		if _, seen := fields[key]; !seen {
			fields[key] = fe.Translate(trans)
		}
	}
	return models.NewValidationError("invalid input", fields)
}

// Underscore turns FocalPerson into focal_person.
func Underscore(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
