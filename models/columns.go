package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrEmptyPatch    = errors.New("nothing to update")
)

// Kind is how a column is carried through forms and patches.
type Kind int

const (
	KindText Kind = iota
	KindOptionalText
	KindLines
	KindCSV
	KindInt
	KindBool
)

// Column describes one writable column of an entity.
type Column struct {
	Name   string
	Kind   Kind
	field  int
	goName string
}

// ValidationError reports the first rule a write broke.
type ValidationError struct {
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	validate     = newValidator()
	columnsCache sync.Map // reflect.Type -> []Column
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Columns lists the writable columns of the entity in declaration order.
func Columns(entity Entity) ([]Column, bool) {
	record, ok := NewRecord(entity)
	if !ok {
		return nil, false
	}
	return columnsOf(reflect.TypeOf(record).Elem()), true
}

// HasColumn reports whether name is a writable column of the entity.
func HasColumn(entity Entity, name string) bool {
	columns, ok := Columns(entity)
	if !ok {
		return false
	}
	for _, column := range columns {
		if column.Name == name {
			return true
		}
	}
	return false
}

func columnsOf(t reflect.Type) []Column {
	if cached, ok := columnsCache.Load(t); ok {
		return cached.([]Column)
	}

	var columns []Column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("db")
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, Column{
			Name:   name,
			Kind:   kindOf(field),
			field:  i,
			goName: field.Name,
		})
	}
	columnsCache.Store(t, columns)
	return columns
}

func kindOf(field reflect.StructField) Kind {
	switch field.Type.Kind() {
	case reflect.Pointer:
		return KindOptionalText
	case reflect.Slice:
		if field.Tag.Get("list") == "lines" {
			return KindLines
		}
		return KindCSV
	case reflect.Int, reflect.Int64:
		return KindInt
	case reflect.Bool:
		return KindBool
	default:
		return KindText
	}
}

// Values maps every column of the record to its SQL-ready value. Optional
// text that is unset maps to nil.
func Values(record Record) map[string]any {
	value := reflect.ValueOf(record).Elem()
	values := make(map[string]any)
	for _, column := range columnsOf(value.Type()) {
		field := value.Field(column.field)
		if column.Kind == KindOptionalText {
			if field.IsNil() {
				values[column.Name] = nil
			} else {
				values[column.Name] = field.Elem().String()
			}
			continue
		}
		values[column.Name] = field.Interface()
	}
	return values
}

// Assign copies patch values onto the record's fields.
func Assign(record Record, patch map[string]any) error {
	value := reflect.ValueOf(record).Elem()
	byName := make(map[string]Column)
	for _, column := range columnsOf(value.Type()) {
		byName[column.Name] = column
	}

	for name, raw := range patch {
		column, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, record.Entity(), name)
		}
		if err := setField(value.Field(column.field), raw); err != nil {
			return &ValidationError{Column: name, Message: fmt.Sprintf("%s %s", name, err.Error())}
		}
	}
	return nil
}

func setField(field reflect.Value, raw any) error {
	if raw == nil {
		switch field.Kind() {
		case reflect.Pointer, reflect.Slice:
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		return errors.New("cannot be empty")
	}

	rv := reflect.ValueOf(raw)
	switch field.Kind() {
	case reflect.Pointer:
		if rv.Kind() == reflect.String {
			text := rv.String()
			field.Set(reflect.ValueOf(&text))
			return nil
		}
	case reflect.Int, reflect.Int64:
		if rv.CanInt() {
			field.SetInt(rv.Int())
			return nil
		}
	default:
		if rv.Type().AssignableTo(field.Type()) {
			field.Set(rv)
			return nil
		}
	}
	return fmt.Errorf("has the wrong type %T", raw)
}

// Validate checks every rule of the record.
func Validate(record Record) error {
	return translate(validate.Struct(record))
}

// ValidatePatch checks only the rules of the columns present in patch.
func ValidatePatch(entity Entity, patch map[string]any) error {
	if len(patch) == 0 {
		return ErrEmptyPatch
	}
	record, ok := NewRecord(entity)
	if !ok {
		return fmt.Errorf("unknown entity %q", entity)
	}
	if err := Assign(record, patch); err != nil {
		return err
	}

	var fields []string
	for _, column := range columnsOf(reflect.TypeOf(record).Elem()) {
		if _, ok := patch[column.Name]; ok {
			fields = append(fields, column.goName)
		}
	}
	return translate(validate.StructPartial(record, fields...))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	column := fe.Field()
	var message string
	switch fe.Tag() {
	case "required":
		message = column + " is required"
	case "email":
		message = column + " must be a valid email address"
	case "url":
		message = column + " must be a valid URL"
	case "min":
		message = fmt.Sprintf("%s must be at least %s", column, fe.Param())
	case "max":
		message = fmt.Sprintf("%s must be at most %s", column, fe.Param())
	default:
		message = column + " is invalid"
	}
	return &ValidationError{Column: column, Message: message}
}
