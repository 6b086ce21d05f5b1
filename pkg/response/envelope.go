package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotObject indicates the reply body is not a single JSON object.
	ErrNotObject = errors.New("response body is not a JSON object")

	// ErrMissingCode indicates the reply has no integral "code" field.
	ErrMissingCode = errors.New("response has no integer code")

	// ErrNoData is returned by DecodeData when the envelope carries no data.
	ErrNoData = errors.New("envelope has no data")
)

// Object is a decoded top-level reply with its fields still raw.
type Object map[string]json.RawMessage

// Decode parses a reply body into an Object.
// Empty bodies, null, arrays and scalars are rejected with ErrNotObject.
func Decode(body []byte) (Object, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	var obj Object
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	return obj, nil
}

// Code extracts the integral "code" field used for classification.
func (o Object) Code() (int, error) {
	code, ok := integer(o["code"])
	if !ok {
		return 0, ErrMissingCode
	}
	return code, nil
}

// Envelope is the structured result a server reply decodes into.
type Envelope struct {
	Code int `json:"code"`

	// Data is the raw "data" object, nil when absent or null.
	Data json.RawMessage `json:"data,omitempty"`

	// Error is nil when the reply carries no error message.
	Error *string `json:"error,omitempty"`

	Success bool `json:"success"`
}

// DecodeData unmarshals the envelope's data object into v.
func (e *Envelope) DecodeData(v any) error {
	if e == nil || e.Data == nil {
		return ErrNoData
	}
	return json.Unmarshal(e.Data, v)
}

// Parse extracts an Envelope from a decoded reply.
// It returns nil if any field has the wrong shape; it never returns a
// partially filled envelope.
func Parse(o Object) *Envelope {
	code, ok := integer(o["code"])
	if !ok {
		return nil
	}

	rawSuccess, ok := o["success"]
	if !ok {
		return nil
	}
	var success *bool
	if err := json.Unmarshal(rawSuccess, &success); err != nil || success == nil {
		return nil
	}

	env := &Envelope{Code: code, Success: *success}

	if raw, ok := o["data"]; ok && !isNull(raw) {
		trimmed := bytes.TrimSpace(raw)
		if trimmed[0] != '{' {
			return nil
		}
		env.Data = append(json.RawMessage(nil), trimmed...)
	}

	if raw, ok := o["error"]; ok && !isNull(raw) {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil
		}
		env.Error = &msg
	}

	return env
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// integer accepts JSON numbers with an integral value that fits in an int.
// Strings, booleans and null are rejected.
func integer(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || isNull(raw) {
		return 0, false
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		if i < math.MinInt || i > math.MaxInt {
			return 0, false
		}
		return int(i), true
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}
