// Package validation configures the request validator with English error
// messages keyed by JSON field names.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

const (
	notBlankTag = "notblank"
	periodTag   = "period"
)

var (
	translatorOnce sync.Once
	translator     ut.Translator
)

func englishTranslator() ut.Translator {
	translatorOnce.Do(func() {
		english := en.New()
		uni := ut.New(english, english)
		translator, _ = uni.GetTranslator("en")
	})
	return translator
}

// New returns a validator with translations, JSON field names and custom tags registered.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	trans := englishTranslator()

	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	_ = validate.RegisterValidation(periodTag, validPeriod)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, periodTag} {
		_ = validate.RegisterTranslation(tag, trans, registerFn, translateCustom)
	}

	return validate
}

// Translate flattens validator errors into a field -> message map. It returns nil
// for errors that did not originate from the validator.
func Translate(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	trans := englishTranslator()
	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fe.Field()] = fe.Translate(trans)
	}
	return fields
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case periodTag:
		return fe.Field() + " must be a billing period formatted as YYYY-MM"
	default:
		return fe.Error()
	}
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func validPeriod(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return models.ValidPeriod(value)
}
