// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/tamzrod/amsky-bridge/internal/config"
	wmodbus "github.com/tamzrod/amsky-bridge/internal/writer/modbus"
)

// BuildModbus creates the status block writer and its TCP client.
// The returned closer releases the connection.
func BuildModbus(m cfg.ModbusExportConfig, deviceName string) (Writer, func() error, error) {
	c, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: m.Endpoint,
		Timeout:  time.Duration(m.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	sw := NewDeviceStatusWriter(StatusPlan{
		Endpoint:   m.Endpoint,
		UnitID:     m.UnitID,
		BaseSlot:   m.BaseSlot,
		DeviceName: deviceName,
	}, c)

	return sw, c.Close, nil
}
