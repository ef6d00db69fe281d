package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lambdaless-api/internal/models"
)

// Validator checks inbound payloads against the struct-tag schemas declared
// in the models package. It has no side effects and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance that reports fields by
// their JSON names
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// DecodeObject decodes a JSON object into dst and validates it. Type
// mismatches are reported before constraint violations.
func (v *Validator) DecodeObject(raw []byte, dst interface{}) error {
	if err := Decode(raw, dst); err != nil {
		return err
	}
	return v.Struct(dst)
}

// Decode decodes a JSON object into dst without checking constraints.
// Keys must match the json tag names of dst exactly and may appear only
// once; a key that differs from a field name only in case is treated as
// an unknown key and does not populate the field.
func Decode(raw []byte, dst interface{}) error {
	exact, err := exactKeys(raw, jsonFieldNames(dst))
	if err != nil {
		return err
	}
	return decodeJSON(exact, dst)
}

// DecodeArray decodes a non-empty JSON array and validates every element
// in order, decoding each one into a fresh value from newElem. The first
// invalid element fails the whole payload; no partial result is returned.
// The raw elements are returned untouched so callers can forward them
// byte for byte.
func (v *Validator) DecodeArray(raw []byte, newElem func() interface{}) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := decodeJSON(raw, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &models.ValidationError{
			Field:      "$",
			Constraint: "min_items",
			Message:    "at least one element is required",
		}
	}

	for i, item := range items {
		if err := v.DecodeObject(item, newElem()); err != nil {
			var ve *models.ValidationError
			if errors.As(err, &ve) {
				return nil, ve.AtIndex(i)
			}
			return nil, err
		}
	}
	return items, nil
}

// Struct validates an already-typed value and returns the first violation
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fromFieldError(fieldErrs[0])
	}
	return err
}

// Integer parses a decimal query parameter
func Integer(field, raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &models.ValidationError{
			Field:      field,
			Constraint: "type",
			Message:    fmt.Sprintf("%s must be of type integer", field),
			Value:      raw,
		}
	}
	return n, nil
}

// Max reports a numeric upper bound violation for bounds that are only
// known at runtime (configuration)
func Max(field string, value, limit int) error {
	if value <= limit {
		return nil
	}
	return &models.ValidationError{
		Field:      field,
		Constraint: "max",
		Message:    fmt.Sprintf("%s must be at most %d", field, limit),
		Value:      value,
	}
}

func decodeJSON(raw []byte, dst interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &models.ValidationError{
			Field:      "$",
			Constraint: "required",
			Message:    "request body is required",
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "$"
			}
			return &models.ValidationError{
				Field:      field,
				Constraint: "type",
				Message:    fmt.Sprintf("%s must be of type %s", field, jsonTypeName(typeErr.Type)),
			}
		}
		return &models.ValidationError{
			Field:      "$",
			Constraint: "json",
			Message:    "malformed JSON: " + err.Error(),
		}
	}
	return nil
}

// exactKeys rejects duplicate top-level keys and strips keys that would
// only bind to a field through case-insensitive matching. Anything that
// is not a well-formed object is returned untouched for decodeJSON to
// report.
func exactKeys(raw []byte, fields map[string]struct{}) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw, nil
	}

	type member struct {
		key   string
		value json.RawMessage
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return raw, nil
	}

	var members []member
	seen := make(map[string]struct{})
	folded := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return raw, nil
		}
		key, ok := tok.(string)
		if !ok {
			return raw, nil
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return raw, nil
		}

		if _, dup := seen[key]; dup {
			return nil, &models.ValidationError{
				Field:      key,
				Constraint: "duplicate_key",
				Message:    fmt.Sprintf("%s appears more than once", key),
			}
		}
		seen[key] = struct{}{}

		if _, known := fields[key]; !known && foldsToField(key, fields) {
			folded = true
			continue
		}
		members = append(members, member{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return raw, nil
	}
	if _, err := dec.Token(); err != io.EOF {
		return raw, nil
	}

	if !folded {
		return raw, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(m.key)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(m.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func foldsToField(key string, fields map[string]struct{}) bool {
	for name := range fields {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// jsonFieldNames lists the keys a struct accepts when decoded
func jsonFieldNames(dst interface{}) map[string]struct{} {
	names := make(map[string]struct{})
	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[name] = struct{}{}
	}
	return names
}

func fromFieldError(fe validator.FieldError) *models.ValidationError {
	ve := &models.ValidationError{
		Field:      fe.Field(),
		Constraint: fe.Tag(),
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		ve.Message = fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if isString {
			ve.Message = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		} else {
			ve.Message = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
			ve.Value = fe.Value()
		}
	case "max":
		if isString {
			ve.Message = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		} else {
			ve.Message = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
			ve.Value = fe.Value()
		}
	case "email":
		ve.Message = fmt.Sprintf("%s must be a valid email address", fe.Field())
		ve.Value = fe.Value()
	case "oneof":
		ve.Message = fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
		ve.Value = fe.Value()
	default:
		ve.Message = fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}

	// Pointer-typed fields report the pointer; unwrap for the response body
	if ve.Value != nil {
		if rv := reflect.ValueOf(ve.Value); rv.Kind() == reflect.Ptr && !rv.IsNil() {
			ve.Value = rv.Elem().Interface()
		}
	}
	return ve
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "unknown"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Ptr:
		return jsonTypeName(t.Elem())
	default:
		return "object"
	}
}
