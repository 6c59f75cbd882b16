// Package mask renders structs as ordered maps for logging, replacing the
// values of fields tagged `mask:"true"` so sensitive request and response
// data never reaches the logs.
package mask

import (
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	tagName = "mask"

	maskedValue = "***masked***"
)

// StructToOrdMap returns an ordered map of the struct's fields with masked
// values replaced. Field names are resolved from the json tag, then the yaml
// tag, then the Go field name; fields tagged `json:"-"` are omitted.
// Returns nil for nil input and non-struct values.
func StructToOrdMap(v any) *orderedmap.OrderedMap[string, any] {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return structToOrdMap(rv)
}

func structToOrdMap(rv reflect.Value) *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := wireName(field)
		if name == "-" {
			continue
		}

		value := rv.Field(i)
		if field.Tag.Get(tagName) == "true" {
			out.Set(name, maskedValue)
			continue
		}

		out.Set(name, renderValue(value))
	}

	return out
}

func renderValue(rv reflect.Value) any {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return structToOrdMap(rv)
	case reflect.Slice, reflect.Array:
		items := make([]any, 0, rv.Len())
		for i := range rv.Len() {
			items = append(items, renderValue(rv.Index(i)))
		}
		return items
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		for _, key := range rv.MapKeys() {
			m[fmt.Sprintf("%v", key.Interface())] = renderValue(rv.MapIndex(key))
		}
		return m
	default:
		return rv.Interface()
	}
}

func wireName(field reflect.StructField) string {
	for _, tag := range []string{"json", "yaml"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name != "" {
			return name
		}
	}
	return field.Name
}
