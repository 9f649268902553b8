package binder

import (
	"context"
	"html"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/mold/v4"
	"github.com/go-playground/validator/v10"
	"github.com/shishobooks/locallibrary/pkg/models"
)

// escape is the mod tag for EscapeMarkup.
const escape = "escape"

// EscapeMarkup escapes markup-significant characters so stored values can't
// corrupt the pages they're rendered into. It unescapes first so that running
// it over its own output is a no-op, and trims last because unescaping can
// expose whitespace (e.g. "&nbsp;").
func EscapeMarkup(value string) string {
	return strings.TrimSpace(html.EscapeString(html.UnescapeString(value)))
}

func escapeModifier(_ context.Context, fl mold.FieldLevel) error {
	field := fl.Field()
	if field.Kind() == reflect.String && field.CanSet() {
		field.SetString(EscapeMarkup(field.String()))
	}
	return nil
}

// dateValidator ensures the value is a real calendar date in the format
// YYYY-MM-DD, or the empty string. The empty string is allowed because dates
// are optional; "not provided" is never an error.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse(models.DateFormat, value)
	return err == nil
}
