package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"outreach/pkg/goutil"
)

var (
	ErrIsRequired  = errors.New("is required")
	ErrInvalidType = errors.New("invalid type")
)

type Validator interface {
	Validate(value interface{}) error
}

// Form validates a request struct field by field. Keys match the json tag
// name, or the Go field name when no tag is set (embedded structs).
type Form struct {
	validators map[string]Validator
}

func MustForm(validators map[string]Validator) *Form {
	if len(validators) == 0 {
		panic("empty form validators")
	}
	return &Form{validators: validators}
}

func (f *Form) Validate(value interface{}) error {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return ErrInvalidType
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			if idx := strings.Index(tag, ","); idx != -1 {
				tag = tag[:idx]
			}
			if tag != "" && tag != "-" {
				name = tag
			}
		}

		fv, ok := f.validators[name]
		if !ok {
			continue
		}

		if err := fv.Validate(v.Field(i).Interface()); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

type String struct {
	Optional  bool
	UnsetZero bool
	MinLen    int
	MaxLen    int
	Regex     *regexp.Regexp
	In        []string
}

func (v *String) Validate(value interface{}) error {
	var s *string
	switch val := value.(type) {
	case *string:
		s = val
	case string:
		s = &val
	default:
		return ErrInvalidType
	}

	if s == nil || (*s == "" && v.UnsetZero) {
		if v.Optional {
			return nil
		}
		return ErrIsRequired
	}

	if v.MinLen > 0 && len(*s) < v.MinLen {
		return fmt.Errorf("min length is %d", v.MinLen)
	}

	if v.MaxLen > 0 && len(*s) > v.MaxLen {
		return fmt.Errorf("max length is %d", v.MaxLen)
	}

	if v.Regex != nil && !v.Regex.MatchString(*s) {
		return errors.New("invalid format")
	}

	if len(v.In) > 0 && !goutil.ContainsStr(v.In, *s) {
		return fmt.Errorf("must be one of %v", v.In)
	}

	return nil
}

type UInt32 struct {
	Optional bool
	Min      *uint32
	Max      *uint32
	In       []uint32
}

func (v *UInt32) Validate(value interface{}) error {
	var ui *uint32
	switch val := value.(type) {
	case *uint32:
		ui = val
	case uint32:
		ui = &val
	default:
		return ErrInvalidType
	}

	if ui == nil {
		if v.Optional {
			return nil
		}
		return ErrIsRequired
	}

	if v.Min != nil && *ui < *v.Min {
		return fmt.Errorf("min value is %d", *v.Min)
	}

	if v.Max != nil && *ui > *v.Max {
		return fmt.Errorf("max value is %d", *v.Max)
	}

	if len(v.In) > 0 && !goutil.ContainsUint32(v.In, *ui) {
		return fmt.Errorf("must be one of %v", v.In)
	}

	return nil
}

type Bool struct {
	Optional bool
}

func (v *Bool) Validate(value interface{}) error {
	var b *bool
	switch val := value.(type) {
	case *bool:
		b = val
	case bool:
		b = &val
	default:
		return ErrInvalidType
	}

	if b == nil && !v.Optional {
		return ErrIsRequired
	}

	return nil
}
