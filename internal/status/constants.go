// internal/status/constants.go
package status

// Weather Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 32

// ---- SLOT INDICES ----

// SlotHealthCode holds the device health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last poll error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the device has been in error.
const SlotSecondsInError = 2

// SlotWeatherState holds the overall weather state (see State* codes).
const SlotWeatherState = 3

// SlotParamCount holds the number of parameters encoded in the block.
const SlotParamCount = 4

// ---- PARAMETERS ----

// SlotParamStart is the first slot of the parameter area.
// Each parameter is an IEEE-754 float32 in two slots, high word first,
// in registration order.
const SlotParamStart = 5

// SlotsPerParam is the number of slots used by one parameter value.
const SlotsPerParam = 2

// MaxParams is the number of parameters the block can carry.
const MaxParams = 6

// SlotParamEnd is the last slot of the parameter area (inclusive).
const SlotParamEnd = SlotParamStart + MaxParams*SlotsPerParam - 1

// ---- RESERVED RANGE ----

// Slots 17–23 are reserved for future use.
const SlotReservedStart = SlotParamEnd + 1
const SlotReservedEnd = 23

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 24

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// SecondsInErrorMax is where seconds_in_error saturates.
const SecondsInErrorMax = 65535

// ---- HEALTH CODES ----

// HealthUnknown represents a connected device that has not been polled yet.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy device.
const HealthOK uint16 = 1

// HealthError represents a device whose last poll failed.
const HealthError uint16 = 2

// HealthStale represents a device whose critical data went stale.
const HealthStale uint16 = 3

// HealthDisabled represents a disconnected device.
const HealthDisabled uint16 = 4

// ---- WEATHER STATE CODES ----

const (
	StateIdle  uint16 = 0
	StateOK    uint16 = 1
	StateBusy  uint16 = 2
	StateAlert uint16 = 3
)
