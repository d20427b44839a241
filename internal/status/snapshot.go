// internal/status/snapshot.go
package status

import "time"

// Snapshot represents exactly what the writers are allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Device    string
	At        time.Time
	Connected bool

	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16

	Weather uint16 // overall weather state, State* code
	Params  []Param
}

// Param is one weather parameter as seen by the host.
type Param struct {
	Name     string
	Label    string
	Value    float64
	HasValue bool
	State    uint16
	Critical bool
}

// TextProperty is a text vector as exposed to clients.
type TextProperty struct {
	Device string
	Name   string
	Label  string
	Group  string
	Perm   string // "ro" | "rw"
	State  uint16
	Texts  []Text
}

type Text struct {
	Name  string
	Label string
	Value string
}
