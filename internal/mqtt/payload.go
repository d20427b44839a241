// internal/mqtt/payload.go
package mqtt

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/tamzrod/amsky-bridge/internal/status"
)

type weatherPayload struct {
	Device         string         `json:"device"`
	At             time.Time      `json:"at"`
	Connected      bool           `json:"connected"`
	Health         string         `json:"health"`
	LastErrorCode  uint16         `json:"last_error_code"`
	SecondsInError uint16         `json:"seconds_in_error"`
	State          string         `json:"state"`
	Params         []paramPayload `json:"params"`
}

type paramPayload struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Value    *float64 `json:"value"` // null until first reported
	State    string   `json:"state"`
	Critical bool     `json:"critical"`
}

type propertyPayload struct {
	Device string        `json:"device"`
	Name   string        `json:"name"`
	Label  string        `json:"label"`
	Group  string        `json:"group"`
	Perm   string        `json:"perm"`
	State  string        `json:"state"`
	Texts  []textPayload `json:"texts"`
}

type textPayload struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
}

func encodeWeather(s status.Snapshot) ([]byte, error) {
	p := weatherPayload{
		Device:         s.Device,
		At:             s.At.UTC(),
		Connected:      s.Connected,
		Health:         status.HealthName(s.Health),
		LastErrorCode:  s.LastErrorCode,
		SecondsInError: s.SecondsInError,
		State:          status.StateName(s.Weather),
		Params:         make([]paramPayload, 0, len(s.Params)),
	}

	for _, prm := range s.Params {
		pp := paramPayload{
			Name:     prm.Name,
			Label:    prm.Label,
			State:    status.StateName(prm.State),
			Critical: prm.Critical,
		}
		if prm.HasValue {
			v := prm.Value
			pp.Value = &v
		}
		p.Params = append(p.Params, pp)
	}

	return json.Marshal(p)
}

func encodeProperty(tp status.TextProperty) ([]byte, error) {
	p := propertyPayload{
		Device: tp.Device,
		Name:   tp.Name,
		Label:  tp.Label,
		Group:  tp.Group,
		Perm:   tp.Perm,
		State:  status.StateName(tp.State),
		Texts:  make([]textPayload, 0, len(tp.Texts)),
	}
	for _, t := range tp.Texts {
		p.Texts = append(p.Texts, textPayload(t))
	}
	return json.Marshal(p)
}

// decodeSet parses a set command body: a JSON object of text name to value.
// Names are returned sorted.
func decodeSet(payload []byte) (names, values []string, err error) {
	var m map[string]string
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, nil, fmt.Errorf("set payload: %w", err)
	}
	if len(m) == 0 {
		return nil, nil, fmt.Errorf("set payload: no values")
	}

	names = make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	values = make([]string, len(names))
	for i, k := range names {
		values[i] = m[k]
	}
	return names, values, nil
}
