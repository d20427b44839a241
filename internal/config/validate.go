// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values are accepted wherever Normalize supplies a default.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// DRIVER
	// ------------------------------------------------------------

	for i := 0; i < len(cfg.Driver.Name); i++ {
		if cfg.Driver.Name[i] > 0x7F {
			return fmt.Errorf("driver: name must contain ASCII characters only")
		}
	}

	// api_url is deliberately not parsed: a bad URL shows up as failed polls.

	if cfg.Driver.TimeoutMs < 0 {
		return fmt.Errorf("driver: timeout_ms must be >= 0, got %d", cfg.Driver.TimeoutMs)
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll: interval_ms must be >= 0, got %d", cfg.Poll.IntervalMs)
	}
	if cfg.Poll.UpdatePeriodMs < 0 {
		return fmt.Errorf("poll: update_period_ms must be >= 0, got %d", cfg.Poll.UpdatePeriodMs)
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch strings.ToLower(strings.TrimSpace(cfg.Log.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log: invalid level %q (allowed: debug, info, warn, error)", cfg.Log.Level)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Log.Format)) {
	case "", "text", "json", "pretty":
	default:
		return fmt.Errorf("log: invalid format %q (allowed: text, json, pretty)", cfg.Log.Format)
	}

	// ------------------------------------------------------------
	// EXPORTS (OPT-IN)
	// ------------------------------------------------------------

	if m := cfg.Exports.Modbus; m != nil {
		if strings.TrimSpace(m.Endpoint) == "" {
			return fmt.Errorf("exports.modbus: endpoint required")
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("exports.modbus: timeout_ms must be >= 0, got %d", m.TimeoutMs)
		}
		// base_slot * SlotsPerDevice must stay inside the 16-bit address space
		if uint32(m.BaseSlot)*32+32 > 65536 {
			return fmt.Errorf("exports.modbus: base_slot %d exceeds register address space", m.BaseSlot)
		}
	}

	if q := cfg.Exports.MQTT; q != nil {
		if strings.TrimSpace(q.Broker) == "" {
			return fmt.Errorf("exports.mqtt: broker required")
		}
		if q.Port < 0 || q.Port > 65535 {
			return fmt.Errorf("exports.mqtt: port %d out of range", q.Port)
		}
		if strings.ContainsAny(q.TopicPrefix, "+#") {
			return fmt.Errorf("exports.mqtt: topic_prefix %q must not contain wildcards", q.TopicPrefix)
		}
	}

	if h := cfg.Exports.History; h != nil {
		if strings.TrimSpace(h.Path) == "" {
			return fmt.Errorf("exports.history: path required")
		}
		if h.RetentionHours < 0 {
			return fmt.Errorf("exports.history: retention_hours must be >= 0, got %d", h.RetentionHours)
		}
	}

	return nil
}
