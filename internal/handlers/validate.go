package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// fieldLabels maps JSON field names to the labels used on the forms.
var fieldLabels = map[string]string{
	"name":       "Name",
	"address":    "Address",
	"code":       "Code",
	"imageUrl":   "Image URL",
	"currency":   "Currency",
	"stockCount": "Stock",
	"price":      "Price",
	"phone":      "Phone",
	"telegramId": "Telegram ID",
	"role":       "Role",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so messages match the form labels.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput checks a backend payload against its validate tags and
// returns the first problem as an operator-facing sentence, or "".
func validateInput(in any) string {
	err := validate.Struct(in)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "The form could not be checked."
	}
	return fieldErrorText(verrs[0])
}

func fieldErrorText(e validator.FieldError) string {
	label, ok := fieldLabels[e.Field()]
	if !ok {
		label = e.Field()
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "max":
		return fmt.Sprintf("%s is too long (max %s characters).", label, e.Param())
	case "e164":
		return fmt.Sprintf("%s must be in international format, for example +998901234567.", label)
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(e.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be %s or more.", label, e.Param())
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}
