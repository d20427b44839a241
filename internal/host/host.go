// internal/host/host.go
package host

import (
	"log/slog"
	"time"
)

// State is a property or weather state as seen by clients.
type State uint8

const (
	StateIdle State = iota
	StateOK
	StateBusy
	StateAlert
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateOK:
		return "Ok"
	case StateBusy:
		return "Busy"
	case StateAlert:
		return "Alert"
	default:
		return "Unknown"
	}
}

// worst returns the more severe of two states.
func worst(a, b State) State {
	if b > a {
		return b
	}
	return a
}

// Permission controls whether clients may write a property.
type Permission uint8

const (
	ReadOnly Permission = iota
	ReadWrite
)

// Property groups (tabs) used by the driver.
const (
	GroupMain    = "Main Control"
	GroupOptions = "Options"
)

type Text struct {
	Name  string
	Label string
	Value string
}

// TextVector is a named group of text values owned by a device.
// The device keeps the pointer and mutates it in place; the host reads it
// whenever the device calls DefineText or SetText.
type TextVector struct {
	Name  string
	Label string
	Group string
	Perm  Permission
	State State
	Texts []Text
}

// Update assigns values by text name. Unknown names are ignored.
// It reports how many texts were assigned.
func (tv *TextVector) Update(names, values []string) int {
	n := 0
	for i := 0; i < len(names) && i < len(values); i++ {
		for j := range tv.Texts {
			if tv.Texts[j].Name == names[i] {
				tv.Texts[j].Value = values[i]
				n++
				break
			}
		}
	}
	return n
}

// Device is implemented by a driver. Every method is invoked on the host's
// single event-loop goroutine and may block it (callbacks are synchronous).
type Device interface {
	// InitProperties registers parameters and builds properties. Called once.
	InitProperties(h Host) error
	// UpdateProperties runs after every connection state change.
	UpdateProperties(connected bool)

	Connect() bool
	Disconnect() bool

	// TimerHit fires once per SetTimer call.
	TimerHit()

	// NewText delivers a client write. It returns false for properties the
	// device does not own.
	NewText(name string, names, values []string) bool

	// UpdateWeather returns the device's own judgment of its data.
	UpdateWeather() State
}

// PollReporter is optionally implemented by devices that poll a source.
// The host uses it for device health in delivered snapshots.
type PollReporter interface {
	LastPoll() (at time.Time, err error)
}

// Host is the framework surface a device calls into.
type Host interface {
	DeviceName() string
	Logger() *slog.Logger

	AddParameter(name, label string, min, max float64, staleness time.Duration)
	SetCriticalParameter(name string) bool
	SetParameterValue(name string, value float64)

	DefineText(tv *TextVector)
	DeleteProperty(name string)
	SetText(tv *TextVector)

	SetTimer(d time.Duration)
	PollingPeriod() time.Duration
	IsConnected() bool
}
