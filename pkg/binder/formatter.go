package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	date     = "date"
	mx       = "max"
	mn       = "min"
	numeric  = "numeric"
	oneof    = "oneof"
	required = "required"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case date:
		return fmt.Sprintf("%q is an invalid date, use the format YYYY-MM-DD", field)
	case mx:
		return formatLength(field, "less", err)
	case mn:
		return formatLength(field, "greater", err)
	case numeric:
		return fmt.Sprintf("%q must be a number", field)
	case oneof:
		valids := []string{}
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case required:
		return fmt.Sprintf("%q is required", field)
	default:
		return fmt.Sprintf("%q failed the %q check", field, err.Tag())
	}
}

func formatLength(field, comparison string, err validator.FieldError) string {
	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s than or equal to %s", field, comparison, err.Param())
	case reflect.Slice:
		return fmt.Sprintf("%q length must be %s than or equal to %s %s", field, comparison, err.Param(), plural("element", err.Param()))
	default:
		return fmt.Sprintf("%q length must be %s than or equal to %s %s", field, comparison, err.Param(), plural("character", err.Param()))
	}
}

func plural(resource, count string) string {
	if count != "1" {
		return resource + "s"
	}
	return resource
}
