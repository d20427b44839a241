// internal/config/normalize.go
package config

import "strings"

const (
	DefaultDeviceName     = "AMSKY01 API"
	DefaultAPIURL         = "http://localhost:8080/data.json"
	DefaultTimeoutMs      = 5000
	DefaultIntervalMs     = 2000
	DefaultUpdatePeriodMs = 10000

	DefaultModbusTimeoutMs = 1000
	DefaultMQTTPort        = 1883
	DefaultMQTTClientID    = "amsky-bridge"
	DefaultMQTTTopicPrefix = "indi"

	// DeviceNameMaxChars bounds the device name used in topics and history rows.
	DeviceNameMaxChars = 32
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Driver

	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		d.Name = DefaultDeviceName
	}
	if len(d.Name) > DeviceNameMaxChars {
		d.Name = d.Name[:DeviceNameMaxChars]
	}

	d.APIURL = strings.TrimSpace(d.APIURL)
	if d.APIURL == "" {
		d.APIURL = DefaultAPIURL
	}
	if d.TimeoutMs == 0 {
		d.TimeoutMs = DefaultTimeoutMs
	}
	if d.ConnectOnStart == nil {
		on := true
		d.ConnectOnStart = &on
	}

	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultIntervalMs
	}
	if cfg.Poll.UpdatePeriodMs == 0 {
		cfg.Poll.UpdatePeriodMs = DefaultUpdatePeriodMs
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if m := cfg.Exports.Modbus; m != nil && m.TimeoutMs == 0 {
		m.TimeoutMs = DefaultModbusTimeoutMs
	}

	if q := cfg.Exports.MQTT; q != nil {
		if q.Port == 0 {
			q.Port = DefaultMQTTPort
		}
		if q.ClientID == "" {
			q.ClientID = DefaultMQTTClientID
		}
		if q.TopicPrefix == "" {
			q.TopicPrefix = DefaultMQTTTopicPrefix
		}
		q.TopicPrefix = strings.Trim(q.TopicPrefix, "/")
	}

	// retention_hours == 0 keeps history forever; nothing to normalize.
}
