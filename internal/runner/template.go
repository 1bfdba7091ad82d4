package runner

import (
	"errors"
	"fmt"
	"os"
	"reflect"
)

// ExpandTemplates replaces ${VAR} references in place in the struct (or slice
// of structs) pointed to by in. Only string and *string fields carrying a
// `template` struct tag are expanded; `template:"-"` opts a field out. Nested
// structs, struct pointers and slices of either are walked without a tag.
// Unexported fields are skipped.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}
	v := reflect.ValueOf(in).Elem()
	switch v.Kind() {
	case reflect.Struct:
		return expandStruct(v, variables)
	case reflect.Slice:
		return expandSlice(v, variables)
	default:
		return fmt.Errorf("ExpandTemplates expects *struct or *[]struct; got *%s", v.Type())
	}
}

func expandSlice(v reflect.Value, variables map[string]string) error {
	var errs error
	for i := 0; i < v.Len(); i++ {
		el := v.Index(i)
		if el.Kind() == reflect.Ptr {
			if el.IsNil() {
				continue
			}
			el = el.Elem()
		}
		if el.Kind() != reflect.Struct {
			return errs
		}
		errs = errors.Join(errs, expandStruct(el, variables))
	}
	return errs
}

func expandStruct(v reflect.Value, variables map[string]string) error {
	typ := v.Type()
	var errs error
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		field := v.Field(i)
		tag, hasTemplate := sf.Tag.Lookup("template")
		templated := hasTemplate && tag != "-"

		switch field.Kind() {
		case reflect.String:
			if !templated {
				continue
			}
			expanded, err := Expand(field.String(), variables)
			if err != nil {
				errs = errors.Join(errs, fmt.Errorf("%s: %w", sf.Name, err))
				continue
			}
			field.SetString(expanded)

		case reflect.Ptr:
			if field.IsNil() {
				continue
			}
			elem := field.Elem()
			switch elem.Kind() {
			case reflect.String:
				if !templated {
					continue
				}
				expanded, err := Expand(elem.String(), variables)
				if err != nil {
					errs = errors.Join(errs, fmt.Errorf("%s: %w", sf.Name, err))
					continue
				}
				// Replace the pointer so the caller's original string is left untouched.
				newPtr := reflect.New(elem.Type())
				newPtr.Elem().SetString(expanded)
				field.Set(newPtr)
			case reflect.Struct:
				errs = errors.Join(errs, expandStruct(elem, variables))
			}

		case reflect.Struct:
			errs = errors.Join(errs, expandStruct(field, variables))

		case reflect.Slice:
			errs = errors.Join(errs, expandSlice(field, variables))
		}
	}
	return errs
}

// Expand replaces ${VAR} references in value using variables. Referencing a
// variable that is not in the map is an error.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("variable %q is not defined or not in the allowed list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}
