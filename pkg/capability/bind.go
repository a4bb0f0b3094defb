package capability

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mensylisir/opsagent/pkg/plan"
)

// Values is an argument bag that passed its contract.
type Values map[string]interface{}

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Int(name string) int64 {
	i, _ := v[name].(int64)
	return i
}

func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Bind checks args against params. Required arguments must be present and
// non-null, strings accept any scalar, integers accept integral numbers and
// numeric strings. Arguments not declared in params are rejected unless
// allowExtra is set, in which case they are dropped.
func Bind(name Name, params []Param, args plan.Arguments, allowExtra bool) (Values, error) {
	out := Values{}
	declared := make(map[string]struct{}, len(params))

	for _, p := range params {
		declared[p.Name] = struct{}{}
		raw, ok := args[p.Name]
		if !ok || raw == nil {
			if p.Required {
				return nil, bindError(name, "missing required argument '%s'", p.Name)
			}
			continue
		}
		var (
			val interface{}
			err error
		)
		switch p.Type {
		case TypeInteger:
			val, err = toInt64(raw)
		default:
			val, err = toString(raw)
		}
		if err != nil {
			return nil, bindError(name, "argument '%s': %v", p.Name, err)
		}
		out[p.Name] = val
	}

	if !allowExtra {
		var extra []string
		for k := range args {
			if _, ok := declared[k]; !ok {
				extra = append(extra, k)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			return nil, bindError(name, "unexpected argument '%s'", strings.Join(extra, "', '"))
		}
	}
	return out, nil
}

func bindError(name Name, format string, args ...interface{}) error {
	return fmt.Errorf("invalid arguments for %s: %s", name, fmt.Sprintf(format, args...))
}

func toString(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case bool, int, int64, float64:
		return fmt.Sprint(s), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if i, ok := floatToInt64(n); ok {
			return i, nil
		}
		return 0, fmt.Errorf("invalid integer value %v", n)
	case json.Number:
		return toInt64(n.String())
	case string:
		s := strings.TrimSpace(n)
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return i, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("invalid integer value %q: out of range", n)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if i, ok := floatToInt64(f); ok {
				return i, nil
			}
		}
		return 0, fmt.Errorf("invalid integer value %q", n)
	default:
		return 0, fmt.Errorf("invalid integer value of type %T", v)
	}
}

// floatToInt64 converts integral floats that fit in an int64. 2^63 itself is
// excluded since float64(math.MaxInt64) rounds up to it.
func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
