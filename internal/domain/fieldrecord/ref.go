package fieldrecord

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ref is an optional identifier. The zero value means "not selected".
//
// Form widgets hand identifiers over as strings, numbers, {"id": ...} objects
// or null; NormalizeRef folds all of them into a Ref before they reach the
// store or the finalize gates.
type Ref string

func (r Ref) Present() bool { return strings.TrimSpace(string(r)) != "" }

func (r Ref) String() string { return strings.TrimSpace(string(r)) }

// Ptr returns nil for an absent ref so the column is stored as NULL.
func (r Ref) Ptr() *string {
	if !r.Present() {
		return nil
	}
	v := r.String()
	return &v
}

// Int64 reports the numeric form of the ref, when it has one.
func (r Ref) Int64() (int64, bool) {
	if !r.Present() {
		return 0, false
	}
	n, err := strconv.ParseInt(r.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func RefFromPtr(v *string) Ref {
	if v == nil {
		return ""
	}
	return Ref(strings.TrimSpace(*v))
}

func RefFromInt64(v int64) Ref {
	return Ref(strconv.FormatInt(v, 10))
}

// NormalizeRef converts a loosely typed widget value into a Ref.
func NormalizeRef(v any) Ref {
	switch val := v.(type) {
	case nil:
		return ""
	case Ref:
		return Ref(val.String())
	case string:
		return normalizeRefString(val)
	case *string:
		if val == nil {
			return ""
		}
		return normalizeRefString(*val)
	case json.Number:
		return normalizeRefString(val.String())
	case int:
		return RefFromInt64(int64(val))
	case int32:
		return RefFromInt64(int64(val))
	case int64:
		return RefFromInt64(val)
	case uint:
		return Ref(strconv.FormatUint(uint64(val), 10))
	case uint64:
		return Ref(strconv.FormatUint(val, 10))
	case float32:
		return refFromFloat(float64(val))
	case float64:
		return refFromFloat(val)
	case map[string]any:
		for _, key := range []string{"id", "value"} {
			if inner, ok := val[key]; ok {
				return NormalizeRef(inner)
			}
		}
		return ""
	case map[any]any:
		for _, key := range []string{"id", "value"} {
			if inner, ok := val[key]; ok {
				return NormalizeRef(inner)
			}
		}
		return ""
	default:
		return ""
	}
}

func normalizeRefString(s string) Ref {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "", "null", "undefined":
		return ""
	}
	return Ref(trimmed)
}

func refFromFloat(f float64) Ref {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return RefFromInt64(int64(f))
	}
	return Ref(strconv.FormatFloat(f, 'f', -1, 64))
}

// MarshalJSON writes numeric refs as JSON numbers and absent refs as null.
func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.Present() {
		return []byte("null"), nil
	}
	if n, ok := r.Int64(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(r.String())
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode ref: %w", err)
	}
	*r = NormalizeRef(raw)
	return nil
}
