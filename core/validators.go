package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	hhmmTag   = "hhmm"
	hhmmText  = "time must be in HH:MM format"
	hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"

	errInvalidInput = errors.New("invalid input")
)

// Validator validates structs using their `validate` tags and reports translated field errors.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator instantiates the validator with the english translator and the global custom tags.
func NewValidator() *Validator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	v := &Validator{validate: validator.New(), translator: translator}
	_ = en_translations.RegisterDefaultTranslations(v.validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	v.RegisterValidation(notBlankTag, notBlankText, notBlankValidation)
	v.RegisterValidation(hhmmTag, hhmmText, hhmmValidation)

	v.RegisterTranslation(requiredTag, requiredText, true)
	v.RegisterTranslation(requiredWithTag, requiredText, true)
	return v
}

// RegisterValidation registers a custom validation func and its error text for the specified tag.
func (v *Validator) RegisterValidation(tag, text string, fn validator.Func) {
	_ = v.validate.RegisterValidation(tag, fn)
	v.RegisterTranslation(tag, text)
}

func (v *Validator) RegisterStructValidation(fn validator.StructLevelFunc, types ...interface{}) {
	v.validate.RegisterStructValidation(fn, types...)
}

// RegisterTranslation registers a custom translation for the specified validation tag.
func (v *Validator) RegisterTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates `s` and converts validation failures into a *ValidationError.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(v.translator)})
	}
	return NewValidationError(errInvalidInput, flds...)
}

// Validate satisfies echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	return v.Struct(i)
}

// Custom Global Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// hhmmValidation only allows 24h clock times such as "09:30".
func hhmmValidation(fl validator.FieldLevel) bool {
	return IsClockTime(fl.Field().String())
}

func IsClockTime(s string) bool {
	return hhmmRegex.MatchString(s)
}
