// internal/status/names.go
package status

// HealthName returns the lower-case name of a health code.
func HealthName(code uint16) string {
	switch code {
	case HealthUnknown:
		return "unknown"
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	case HealthDisabled:
		return "disabled"
	default:
		return "invalid"
	}
}

// StateName returns the lower-case name of a weather state code.
func StateName(code uint16) string {
	switch code {
	case StateIdle:
		return "idle"
	case StateOK:
		return "ok"
	case StateBusy:
		return "busy"
	case StateAlert:
		return "alert"
	default:
		return "invalid"
	}
}
