// internal/config/config.go
package config

type Config struct {
	Driver  DriverConfig  `yaml:"driver"`
	Poll    PollConfig    `yaml:"poll"`
	Log     LogConfig     `yaml:"log"`
	Exports ExportsConfig `yaml:"exports"`
}

// ---- DRIVER ----

type DriverConfig struct {
	Name           string `yaml:"name"`
	APIURL         string `yaml:"api_url"`
	TimeoutMs      int    `yaml:"timeout_ms"`
	ConnectOnStart *bool  `yaml:"connect_on_start"` // nil => true
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs     int `yaml:"interval_ms"`
	UpdatePeriodMs int `yaml:"update_period_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---- EXPORTS (all optional, opt-in) ----

type ExportsConfig struct {
	Modbus  *ModbusExportConfig  `yaml:"modbus"`
	MQTT    *MQTTExportConfig    `yaml:"mqtt"`
	History *HistoryExportConfig `yaml:"history"`
}

type ModbusExportConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	BaseSlot  uint16 `yaml:"base_slot"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type MQTTExportConfig struct {
	Broker      string `yaml:"broker"`
	Port        int    `yaml:"port"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

type HistoryExportConfig struct {
	Path           string `yaml:"path"`
	RetentionHours int    `yaml:"retention_hours"`
}
