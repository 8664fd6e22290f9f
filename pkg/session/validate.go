package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
)

// IsValidUser reports whether value has the shape of a User: a numeric
// integral id, a string username and a string createdAt. Extra fields are
// allowed. Accepted inputs are decoded JSON objects (map[string]any) and
// User or non-nil *User values.
func IsValidUser(value any) bool {
	switch v := value.(type) {
	case User:
		return true
	case *User:
		return v != nil
	case map[string]any:
		_, ok := userFromMap(v)
		return ok
	default:
		return false
	}
}

// DecodeUser parses a JSON user object and checks its shape. The input must
// hold exactly one JSON value.
func DecodeUser(data []byte) (User, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return User{}, errors.Join(ErrInvalidResponseShape, err)
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return User{}, errors.Join(ErrInvalidResponseShape, errTrailingData)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return User{}, ErrInvalidResponseShape
	}
	u, ok := userFromMap(obj)
	if !ok {
		return User{}, ErrInvalidResponseShape
	}
	return u, nil
}

var errTrailingData = errors.New("session.trailing_data")

func userFromMap(m map[string]any) (User, bool) {
	id, ok := toInt64(m["id"])
	if !ok {
		return User{}, false
	}
	username, ok := m["username"].(string)
	if !ok {
		return User{}, false
	}
	createdAt, ok := m["createdAt"].(string)
	if !ok {
		return User{}, false
	}
	return User{ID: id, Username: username, CreatedAt: createdAt}, true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		// 1.0 and 1e2 are integral but rejected by Int64.
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	case float64:
		return floatToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	// 2^63 is exactly representable; anything at or above it overflows.
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func uintToInt64(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}
