// internal/writer/types.go
package writer

import "github.com/tamzrod/amsky-bridge/internal/status"

// Writer delivers weather snapshots to one sink.
type Writer interface {
	Write(s status.Snapshot) error
}

// PropertyWriter is implemented by sinks that also expose text properties
// to clients. Writers that do not implement it never see property events.
type PropertyWriter interface {
	WriteProperty(p status.TextProperty) error
	DeleteProperty(device, name string) error
}

// StatusPlan locates one device status block in holding-register memory.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}
