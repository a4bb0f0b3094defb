package util

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ToJSON marshals v, returning nil when v cannot be represented.
func ToJSON(v interface{}) []byte {
	if raw, ok := v.(json.RawMessage); ok {
		return raw
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// GetJsonValue looks up a gjson path. Integral numbers come back as int64 so
// they survive a round trip into an integer argument.
func GetJsonValue(jsonData []byte, path string) (interface{}, bool) {
	if len(jsonData) == 0 {
		return nil, false
	}
	result := gjson.GetBytes(jsonData, path)
	if !result.Exists() || result.Type == gjson.Null {
		return nil, false
	}
	return jsonResultValue(result), true
}

// jsonResultValue converts a gjson result into a plain Go value. A number
// written without fraction or exponent is parsed from its raw text, so ids
// beyond 2^53 keep every digit.
func jsonResultValue(r gjson.Result) interface{} {
	if r.Type != gjson.Number {
		return r.Value()
	}
	if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
		return i
	}
	if !strings.ContainsAny(r.Raw, ".eE") {
		// integer text outside the int64 range
		return r.Float()
	}
	if f := r.Float(); f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return r.Float()
}

func setJsonValue(jsonData []byte, path string, value interface{}) ([]byte, error) {
	res, err := sjson.SetBytes(jsonData, path, value)
	if err != nil {
		return nil, fmt.Errorf("failed to set JSON value at path '%s': %w", path, err)
	}
	return res, nil
}

// RedactJSON replaces the values of the given top-level keys with mask. Keys
// that are absent stay absent.
func RedactJSON(jsonData []byte, keys []string, mask string) ([]byte, error) {
	out := jsonData
	for _, key := range keys {
		if !gjson.GetBytes(out, key).Exists() {
			continue
		}
		var err error
		if out, err = setJsonValue(out, key, mask); err != nil {
			return nil, err
		}
	}
	return out, nil
}
