package doctools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Arguments holds the loosely typed arguments of one tool call.
type Arguments map[string]any

// DecodeArguments parses a JSON object. Empty input yields no arguments.
func DecodeArguments(raw []byte) (Arguments, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Arguments{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var args Arguments
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if args == nil {
		args = Arguments{}
	}
	return args, nil
}

// String returns the named string argument, or def when it is absent or null.
func (a Arguments) String(name, def string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgument, name, v)
	}
	return s, nil
}

// RequiredString returns the named string argument and fails when it is absent.
func (a Arguments) RequiredString(name string) (string, error) {
	if v, ok := a[name]; !ok || v == nil {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	return a.String(name, "")
}

// Int returns the named integer argument, or def when it is absent or null.
// JSON numbers with no fractional part and numeric strings are accepted.
func (a Arguments) Int(name string, def int) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidArgument, name, n.String())
		}
		return floatToInt(name, f)
	case float64:
		return floatToInt(name, n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidArgument, name, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidArgument, name, v)
	}
}

func floatToInt(name string, f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidArgument, name, f)
	}
	// float64(math.MaxInt) rounds up to 2^63, so the upper bound is exclusive.
	if f < float64(math.MinInt) || f >= float64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %s is out of range, got %v", ErrInvalidArgument, name, f)
	}
	return int(f), nil
}
