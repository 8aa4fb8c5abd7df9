package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads a loosely typed JSON value as a number. Strings may carry
// thousands separators ("1,200"); blank strings and null read as 0. Anything
// that is not a finite number comes back as NaN.
func ParseNumber(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		return ParseNumber(string(v))
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if cleaned == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return math.NaN()
		}
		return parsed
	default:
		return math.NaN()
	}
}

func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FlexNumber unmarshals from a JSON number or a numeric string.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = FlexNumber(ParseNumber(raw))
	return nil
}

// FlexID unmarshals an id sent either as a JSON string or a number.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*id = FlexID(strings.TrimSpace(v))
	case float64:
		*id = FlexID(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		*id = ""
	}
	return nil
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	default:
		return true
	}
}

// firstString returns the first key holding a string, trimmed. Keys holding
// other types are skipped.
func firstString(body map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := body[key].(string); ok {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

func stringOr(body map[string]interface{}, fallback string, keys ...string) string {
	if s, ok := firstString(body, keys...); ok {
		return s
	}
	return fallback
}

// firstPresent returns the first key whose value is present and not null.
func firstPresent(body map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := body[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// stringList accepts a JSON array or a JSON-encoded array string. Non-string
// elements are dropped.
func stringList(body map[string]interface{}, arrayKey, jsonKey string) []string {
	if items, ok := body[arrayKey].([]interface{}); ok {
		return stringsOf(items)
	}
	if encoded, ok := body[jsonKey].(string); ok {
		return DecodeStringList(encoded)
	}
	return []string{}
}

func stringsOf(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// DecodeStringList parses a stored JSON array column. Malformed input yields an empty list.
func DecodeStringList(encoded string) []string {
	if encoded == "" {
		return []string{}
	}
	var items []interface{}
	if err := json.Unmarshal([]byte(encoded), &items); err != nil {
		return []string{}
	}
	return stringsOf(items)
}

func EncodeStringList(items []string) string {
	if items == nil {
		items = []string{}
	}
	encoded, _ := json.Marshal(items)
	return string(encoded)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
