// internal/weather/reading.go
package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Reading is one decoded viewer document.
// A nil group means the namespace was absent (or not an object).
// A nil field means the member was absent or null.
type Reading struct {
	Hygro *Hygro
	Light *Light
	Cloud *Cloud
}

type Hygro struct {
	Temp     *float64
	RH       *float64
	DewPoint *float64
}

type Light struct {
	Lux *float64
	SQM *float64 // sky quality meter, published as sky brightness
}

type Cloud struct {
	Center *float64
}

// Namespace and member keys. Lookups are exact (case-sensitive).
const (
	keyHygro    = "hygro"
	keyTemp     = "temp"
	keyRH       = "rh"
	keyDewPoint = "dew_point"

	keyLight = "light"
	keyLux   = "lux"
	keySQM   = "sqm"

	keyCloud  = "cloud"
	keyCenter = "center"
)

// Error codes surfaced in the device status block.
const (
	CodeFormat     uint16 = 2
	CodeExtraction uint16 = 3
)

// FormatError means the body is not JSON at all.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string { return "weather: invalid json: " + e.Err.Error() }
func (e *FormatError) Unwrap() error { return e.Err }
func (e *FormatError) Code() uint16  { return CodeFormat }

// ExtractionError means the body is JSON but a value could not be read
// as the expected type.
type ExtractionError struct {
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Field == "" {
		return "weather: extract: " + e.Err.Error()
	}
	return fmt.Sprintf("weather: extract %s: %v", e.Field, e.Err)
}
func (e *ExtractionError) Unwrap() error { return e.Err }
func (e *ExtractionError) Code() uint16  { return CodeExtraction }

// Decode parses a viewer document.
// All-or-nothing: on error the returned Reading is empty, so callers
// never apply a half-read document.
func Decode(body []byte) (Reading, error) {
	if !json.Valid(body) {
		var doc any
		err := json.Unmarshal(body, &doc)
		if err == nil {
			err = errors.New("malformed document")
		}
		return Reading{}, &FormatError{Err: err}
	}

	// null root carries no namespaces
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return Reading{}, &ExtractionError{Err: fmt.Errorf("document root is not an object: %w", err)}
	}

	var r Reading
	var err error

	if ns, ok := namespace(root, keyHygro); ok {
		h := &Hygro{}
		if h.Temp, err = field(ns, keyHygro, keyTemp); err != nil {
			return Reading{}, err
		}
		if h.RH, err = field(ns, keyHygro, keyRH); err != nil {
			return Reading{}, err
		}
		if h.DewPoint, err = field(ns, keyHygro, keyDewPoint); err != nil {
			return Reading{}, err
		}
		r.Hygro = h
	}

	if ns, ok := namespace(root, keyLight); ok {
		l := &Light{}
		if l.Lux, err = field(ns, keyLight, keyLux); err != nil {
			return Reading{}, err
		}
		if l.SQM, err = field(ns, keyLight, keySQM); err != nil {
			return Reading{}, err
		}
		r.Light = l
	}

	if ns, ok := namespace(root, keyCloud); ok {
		c := &Cloud{}
		if c.Center, err = field(ns, keyCloud, keyCenter); err != nil {
			return Reading{}, err
		}
		r.Cloud = c
	}

	return r, nil
}

// namespace returns the members of one top-level group.
// Missing or non-object namespaces are reported as absent.
func namespace(root map[string]json.RawMessage, name string) (map[string]json.RawMessage, bool) {
	raw, ok := root[name]
	if !ok {
		return nil, false
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, false
	}
	return members, true
}

// field reads one numeric member. Absent and null members yield nil.
// Booleans read as 1 and 0; strings, arrays and objects are extraction errors.
func field(members map[string]json.RawMessage, ns, key string) (*float64, error) {
	raw, ok := members[key]
	if !ok {
		return nil, nil
	}

	switch string(bytes.TrimSpace(raw)) {
	case "null":
		return nil, nil
	case "true":
		v := 1.0
		return &v, nil
	case "false":
		v := 0.0
		return &v, nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &ExtractionError{Field: ns + "." + key, Err: err}
	}
	return &v, nil
}
