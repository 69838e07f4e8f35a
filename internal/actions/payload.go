package actions

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
)

// Payload is the loosely typed action body. Clients send numbers as strings
// often enough that every scalar goes through cast.
type Payload map[string]any

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates v and turns the first failure into an InvalidArgument.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return apierr.InvalidArgument("invalid payload")
	}
	fe := ves[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apierr.InvalidArgument("%s is required", field)
	case "gt":
		if fe.Param() == "0" {
			return apierr.InvalidArgument("%s must be a positive integer", field)
		}
		return apierr.InvalidArgument("%s must be greater than %s", field, fe.Param())
	case "gte":
		return apierr.InvalidArgument("%s must be at least %s", field, fe.Param())
	case "lte":
		return apierr.InvalidArgument("%s must be at most %s", field, fe.Param())
	case "oneof":
		return apierr.InvalidArgument("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return apierr.InvalidArgument("%s must not be empty", field)
	default:
		return apierr.InvalidArgument("%s is invalid", field)
	}
}

func (p Payload) has(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

func (p Payload) String(key string) string {
	if !p.has(key) {
		return ""
	}
	return strings.TrimSpace(cast.ToString(p[key]))
}

func (p Payload) OptionalString(key string) *string {
	if !p.has(key) {
		return nil
	}
	s := p.String(key)
	return &s
}

// Int reads key as an integer; absent keys yield def.
func (p Payload) Int(key string, def int) (int, error) {
	if !p.has(key) {
		return def, nil
	}
	switch v := p[key].(type) {
	case string:
		// decimal only; cast would read "010" as octal
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, apierr.InvalidArgument("%s must be an integer", key)
		}
		return n, nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > maxExactFloatInt {
			return 0, apierr.InvalidArgument("%s must be an integer", key)
		}
		return int(v), nil
	}
	n, err := cast.ToIntE(p[key])
	if err != nil {
		return 0, apierr.InvalidArgument("%s must be an integer", key)
	}
	return n, nil
}

// JSON numbers decode to float64; beyond 2^53 they are no longer exact.
const maxExactFloatInt = 1 << 53

func (p Payload) OptionalInt(key string) (*int, error) {
	if !p.has(key) {
		return nil, nil
	}
	n, err := p.Int(key, 0)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (p Payload) Bool(key string) (bool, error) {
	if !p.has(key) {
		return false, nil
	}
	b, err := cast.ToBoolE(p[key])
	if err != nil {
		return false, apierr.InvalidArgument("%s must be a boolean", key)
	}
	return b, nil
}

// UUID reads the first present key of keys, so camelCase and snake_case
// spellings of the same field are both accepted.
func (p Payload) UUID(keys ...string) (*uuid.UUID, error) {
	for _, key := range keys {
		if !p.has(key) {
			continue
		}
		id, err := uuid.Parse(p.String(key))
		if err != nil || id == uuid.Nil {
			return nil, apierr.InvalidArgument("%s must be a valid id", key)
		}
		return &id, nil
	}
	return nil, nil
}

func (p Payload) RequiredUUID(keys ...string) (uuid.UUID, error) {
	id, err := p.UUID(keys...)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, apierr.InvalidArgument("%s is required", keys[0])
	}
	return *id, nil
}

// Time reads key as an ISO-8601 timestamp. Values without a zone, such as
// "2006-01-02", are read in loc (UTC when nil).
func (p Payload) Time(key string, loc *time.Location) (*time.Time, error) {
	if !p.has(key) {
		return nil, nil
	}
	if t, ok := p[key].(time.Time); ok {
		return &t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	s := p.String(key)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, apierr.InvalidArgument("%s must be an ISO-8601 timestamp", key)
}

// List reads key as a list of objects, used by tasks.reorder.
func (p Payload) List(key string) ([]Payload, error) {
	if !p.has(key) {
		return nil, nil
	}
	raw, ok := p[key].([]any)
	if !ok {
		return nil, apierr.InvalidArgument("%s must be a list", key)
	}
	out := make([]Payload, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, apierr.InvalidArgument("%s must be a list of objects", key)
		}
		out = append(out, Payload(m))
	}
	return out, nil
}

func (p Payload) Strings(key string) []string {
	if !p.has(key) {
		return nil
	}
	out, err := cast.ToStringSliceE(p[key])
	if err != nil {
		return nil
	}
	return out
}
