package formstate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Built-in validator names.
const (
	ValidatorInRange   = "in-range?"
	ValidatorRequired  = "required?"
	ValidatorMaxLength = "max-length?"
	ValidatorOneOf     = "one-of?"
)

func builtinValidators() map[string]Validator {
	return map[string]Validator{
		ValidatorInRange:   InRange,
		ValidatorRequired:  Required,
		ValidatorMaxLength: MaxLength,
		ValidatorOneOf:     OneOf,
	}
}

// InRange reports min <= value <= max with value coerced to an integer.
// Values that cannot be coerced are out of range. Missing bounds are a
// configuration error.
func InRange(value any, args map[string]any) (bool, error) {
	lo, err := intArg(args, "min")
	if err != nil {
		return false, err
	}
	hi, err := intArg(args, "max")
	if err != nil {
		return false, err
	}
	n, ok := CoerceInt(value)
	if !ok {
		return false, nil
	}
	return lo <= n && n <= hi, nil
}

// Required rejects nil, blank strings and empty collections.
func Required(value any, _ map[string]any) (bool, error) {
	switch typed := value.(type) {
	case nil:
		return false, nil
	case string:
		return strings.TrimSpace(typed) != "", nil
	case Key:
		return strings.TrimSpace(string(typed)) != "", nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0, nil
	}
	return true, nil
}

// MaxLength bounds the rune length of strings, or the length of collections,
// by args["max"].
func MaxLength(value any, args map[string]any) (bool, error) {
	limit, err := intArg(args, "max")
	if err != nil {
		return false, err
	}
	switch typed := value.(type) {
	case nil:
		return true, nil
	case string:
		return int64(utf8.RuneCountInString(typed)) <= limit, nil
	case Key:
		return int64(utf8.RuneCountInString(string(typed))) <= limit, nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return int64(rv.Len()) <= limit, nil
	}
	return int64(utf8.RuneCountInString(fmt.Sprint(value))) <= limit, nil
}

// OneOf accepts values whose string form matches an entry of
// args["options"].
func OneOf(value any, args map[string]any) (bool, error) {
	raw, ok := args["options"]
	if !ok {
		return false, fmt.Errorf("formstate: %s requires %q argument", ValidatorOneOf, "options")
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false, fmt.Errorf("formstate: %s options must be a list, got %T", ValidatorOneOf, raw)
	}
	needle := fmt.Sprint(value)
	for i := 0; i < rv.Len(); i++ {
		if fmt.Sprint(rv.Index(i).Interface()) == needle {
			return true, nil
		}
	}
	return false, nil
}

func intArg(args map[string]any, key string) (int64, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("formstate: validator argument %q is required", key)
	}
	n, ok := CoerceInt(raw)
	if !ok {
		return 0, fmt.Errorf("formstate: validator argument %q is %T, not an integer", key, raw)
	}
	return n, nil
}

// CoerceInt converts numeric values and numeric strings to int64. Floats are
// truncated toward zero.
func CoerceInt(value any) (int64, bool) {
	switch typed := value.(type) {
	case int:
		return int64(typed), true
	case int8:
		return int64(typed), true
	case int16:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int64:
		return typed, true
	case uint:
		return int64(typed), true
	case uint8:
		return int64(typed), true
	case uint16:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case uint64:
		if typed > math.MaxInt64 {
			return 0, false
		}
		return int64(typed), true
	case float32:
		return floatToInt(float64(typed))
	case float64:
		return floatToInt(typed)
	case json.Number:
		return parseIntString(string(typed))
	case string:
		return parseIntString(typed)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseIntString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return floatToInt(f)
	}
	return 0, false
}
