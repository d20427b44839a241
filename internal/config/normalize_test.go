// internal/config/normalize_test.go
package config

import (
	"os"
	"strings"
	"testing"
)

func TestNormalize_Defaults(t *testing.T) {
	cfg := &Config{
		Exports: ExportsConfig{
			Modbus: &ModbusExportConfig{Endpoint: "127.0.0.1:502"},
			MQTT:   &MQTTExportConfig{Broker: "localhost", TopicPrefix: "/obs/"},
		},
	}

	Normalize(cfg)

	if cfg.Driver.Name != DefaultDeviceName {
		t.Fatalf("name: got=%q", cfg.Driver.Name)
	}
	if cfg.Driver.APIURL != DefaultAPIURL {
		t.Fatalf("api_url: got=%q", cfg.Driver.APIURL)
	}
	if cfg.Driver.TimeoutMs != 5000 {
		t.Fatalf("timeout: got=%d", cfg.Driver.TimeoutMs)
	}
	if cfg.Driver.ConnectOnStart == nil || !*cfg.Driver.ConnectOnStart {
		t.Fatalf("connect_on_start should default to true")
	}
	if cfg.Poll.IntervalMs != 2000 || cfg.Poll.UpdatePeriodMs != 10000 {
		t.Fatalf("poll: got=%+v", cfg.Poll)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("log: got=%+v", cfg.Log)
	}
	if cfg.Exports.Modbus.TimeoutMs != DefaultModbusTimeoutMs {
		t.Fatalf("modbus timeout: got=%d", cfg.Exports.Modbus.TimeoutMs)
	}
	if cfg.Exports.MQTT.Port != 1883 || cfg.Exports.MQTT.ClientID != DefaultMQTTClientID {
		t.Fatalf("mqtt: got=%+v", *cfg.Exports.MQTT)
	}
	if cfg.Exports.MQTT.TopicPrefix != "obs" {
		t.Fatalf("topic prefix: got=%q", cfg.Exports.MQTT.TopicPrefix)
	}
}

func TestNormalize_ConnectOnStartFalseKept(t *testing.T) {
	off := false
	cfg := &Config{Driver: DriverConfig{ConnectOnStart: &off}}

	Normalize(cfg)

	if *cfg.Driver.ConnectOnStart {
		t.Fatalf("explicit connect_on_start=false overwritten")
	}
}

func TestNormalize_TruncatesName(t *testing.T) {
	cfg := &Config{Driver: DriverConfig{Name: strings.Repeat("x", 40)}}

	Normalize(cfg)

	if len(cfg.Driver.Name) != DeviceNameMaxChars {
		t.Fatalf("expected %d chars, got %d", DeviceNameMaxChars, len(cfg.Driver.Name))
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("driver:\n  api_uri: http://x\n"))
	if err == nil {
		t.Fatalf("expected unknown field error, got nil")
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected config, got nil")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/amsky.yaml"
	writeFile(t, path, "driver:\n  api_url: http://file/data.json\nexports:\n  mqtt:\n    broker: localhost\n")

	t.Setenv(EnvAPIURL, "http://env/data.json")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.Driver.APIURL != "http://env/data.json" {
		t.Fatalf("env override not applied: %q", cfg.Driver.APIURL)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level override not applied: %q", cfg.Log.Level)
	}
	if cfg.Exports.MQTT == nil || cfg.Exports.MQTT.Broker != "localhost" {
		t.Fatalf("mqtt block not decoded: %+v", cfg.Exports.MQTT)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(t.TempDir() + "/nope.yaml"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
