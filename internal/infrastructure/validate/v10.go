package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/pot-code/learning-engine/internal/timecode"
)

// PlaygroundV10 Validator implementation using go-playground
type PlaygroundV10 struct {
	core  *validator.Validate
	trans ut.Translator
}

var _ Validator = &PlaygroundV10{}

// NewValidator create a new Validator, locale picks the message language ("en" or "zh")
func NewValidator(locale string) (*PlaygroundV10, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())
	trans, ok := uni.GetTranslator(locale)
	if !ok {
		trans, _ = uni.GetTranslator("en")
	}

	validate := validator.New()
	var err error
	if trans.Locale() == "zh" {
		err = zh_translations.RegisterDefaultTranslations(validate, trans)
	} else {
		err = en_translations.RegisterDefaultTranslations(validate, trans)
	}
	if err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}
	validate.RegisterTagNameFunc(JSONTagName)

	if err := validate.RegisterValidation("timecode", func(fl validator.FieldLevel) bool {
		return timecode.Valid(fl.Field().String())
	}); err != nil {
		return nil, err
	}
	if err := validate.RegisterTranslation("timecode", trans, func(ut ut.Translator) error {
		return ut.Add("timecode", "{0} must be formatted as hh:mm:ss", false)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		msg, _ := ut.T("timecode", fe.Field())
		return msg
	}); err != nil {
		return nil, err
	}

	return &PlaygroundV10{
		core:  validate,
		trans: trans,
	}, nil
}

// JSONTagName report fields by their json (or yaml) name
func JSONTagName(fld reflect.StructField) string {
	name := fld.Tag.Get("json")
	if name == "-" || name == "" {
		name = fld.Tag.Get("yaml")
		if name == "-" || name == "" {
			return ""
		}
	}
	if i := strings.IndexByte(name, ','); i >= 0 {
		name = name[:i]
	}
	return name
}

// Struct validate struct
func (v PlaygroundV10) Struct(s interface{}) []*FieldError {
	var result []*FieldError
	if err := v.core.Struct(s); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*FieldError{NewFieldError("", err.Error())}
		}
		for _, item := range verrs {
			result = append(result, NewFieldError(item.Field(), item.Translate(v.trans)))
		}
		return result
	}
	return nil
}

// Empty check if value is empty
func (v PlaygroundV10) Empty(varName string, s interface{}) []*FieldError {
	if err := v.core.Var(s, "required"); err != nil {
		return []*FieldError{NewFieldError(varName, fmt.Sprintf("%s is required", varName))}
	}
	return nil
}
