package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// errorMessages maps a language and a validation tag to a message template.
var errorMessages = map[string]map[string]string{
	"en": {
		"required": "The field '%s' is required.",
		"email":    "The field '%s' must be a valid email address.",
		"min":      "The field '%s' must be at least %s.",
		"max":      "The field '%s' must be at most %s.",
		"oneof":    "The field '%s' must be one of %s.",
		"eqfield":  "The field '%s' must match %s.",
	},
	"zh": {
		"required": "字段 '%s' 為必填項。",
		"email":    "字段 '%s' 必須是有效的電子郵件地址。",
		"min":      "字段 '%s' 不能小於 %s。",
		"max":      "字段 '%s' 不能超過 %s。",
		"oneof":    "字段 '%s' 必須是 %s 之一。",
		"eqfield":  "字段 '%s' 必須與 %s 一致。",
	},
}

func parseMessage(field string, e validator.FieldError, lang string) string {
	if msgs, ok := errorMessages[lang]; ok {
		if msg, ok := msgs[e.Tag()]; ok {
			switch strings.Count(msg, "%s") {
			case 1:
				return fmt.Sprintf(msg, field)
			case 2:
				param := e.Param()
				if e.Tag() == "eqfield" {
					param = lowerFirst(param)
				}
				return fmt.Sprintf(msg, field, param)
			}
		}
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", field, e.Tag())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Struct validates s and returns JSON field name to message, or nil when s is
// valid. lang is "en" or "zh"; anything else falls back to English.
func Struct(s any, lang string) map[string]string {
	if lang != "zh" {
		lang = "en"
	}
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		out[e.Field()] = parseMessage(e.Field(), e, lang)
	}
	return out
}
