// internal/driver/driver.go
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/amsky-bridge/internal/host"
	"github.com/tamzrod/amsky-bridge/internal/poller"
	"github.com/tamzrod/amsky-bridge/internal/weather"
)

const (
	DefaultName   = "AMSKY01 API"
	DefaultAPIURL = "http://localhost:8080/data.json"

	VersionMajor = 1
	VersionMinor = 0
)

// Weather parameter names.
const (
	ParamTemperature   = "WEATHER_TEMPERATURE"
	ParamHumidity      = "WEATHER_HUMIDITY"
	ParamDewPoint      = "WEATHER_DEW_POINT"
	ParamLux           = "WEATHER_LIGHT_LUX"
	ParamSkyBrightness = "WEATHER_SKY_BRIGHTNESS"
	ParamSkyTempCenter = "WEATHER_SKY_TEMP_CENTER"
)

// Property and text names.
const (
	PropAPIConfig = "API_CONFIG"
	TextAPIURL    = "API_URL"

	PropDeviceStatus = "DEVICE_STATUS"
	TextDevice       = "DEVICE"
	TextStatus       = "STATUS"

	StatusDisconnected = "Disconnected"
	StatusConnected    = "Connected - Reading API"
)

const (
	// paramStaleness is how long a value stays trusted without an update.
	paramStaleness = 15 * time.Second
	// firstPoll is the delay between connecting and the first timer poll.
	firstPoll = 2 * time.Second
)

// Poller performs one HTTP poll cycle.
type Poller interface {
	PollOnce(ctx context.Context, url string) poller.PollResult
}

// Driver bridges the sky sensor viewer's JSON API to host weather parameters.
// It is not safe for concurrent use; the host serializes every callback.
type Driver struct {
	h      host.Host
	log    *slog.Logger
	poller Poller

	apiURL string
	snap   weather.Snapshot

	lastPollAt time.Time
	lastErr    error

	apiConfig host.TextVector
	devStatus host.TextVector
}

var (
	_ host.Device       = (*Driver)(nil)
	_ host.PollReporter = (*Driver)(nil)
)

// New creates a driver polling apiURL. An empty URL means DefaultAPIURL.
func New(p Poller, apiURL string) *Driver {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Driver{
		poller: p,
		apiURL: apiURL,
		log:    slog.Default(),
	}
}

// InitProperties registers the weather parameters and builds both text
// properties. They are only shown to clients while connected.
func (d *Driver) InitProperties(h host.Host) error {
	if d.poller == nil {
		return errors.New("driver: poller required")
	}

	d.h = h
	d.log = h.Logger()

	h.AddParameter(ParamTemperature, "Temperature (°C)", -50, 80, paramStaleness)
	h.AddParameter(ParamHumidity, "Humidity (%)", 0, 100, paramStaleness)
	h.AddParameter(ParamDewPoint, "Dew Point (°C)", -50, 50, paramStaleness)
	h.AddParameter(ParamLux, "Light (lux)", 0, 100000, paramStaleness)
	h.AddParameter(ParamSkyBrightness, "Sky Brightness (mag/arcsec²)", 10, 25, paramStaleness)
	h.AddParameter(ParamSkyTempCenter, "Sky Temp Center (°C)", -50, 50, paramStaleness)

	h.SetCriticalParameter(ParamTemperature)
	h.SetCriticalParameter(ParamHumidity)
	h.SetCriticalParameter(ParamDewPoint)
	h.SetCriticalParameter(ParamSkyTempCenter)

	d.apiConfig = host.TextVector{
		Name:  PropAPIConfig,
		Label: "API Configuration",
		Group: host.GroupOptions,
		Perm:  host.ReadWrite,
		State: host.StateIdle,
		Texts: []host.Text{
			{Name: TextAPIURL, Label: "API URL", Value: d.apiURL},
		},
	}

	d.devStatus = host.TextVector{
		Name:  PropDeviceStatus,
		Label: "Device Status",
		Group: host.GroupMain,
		Perm:  host.ReadOnly,
		State: host.StateIdle,
		Texts: []host.Text{
			{Name: TextDevice, Label: "Device", Value: DefaultName},
			{Name: TextStatus, Label: "Status", Value: StatusDisconnected},
		},
	}

	d.log.Debug("driver initialized", "version", versionString(), "url", d.apiURL)
	return nil
}

func (d *Driver) UpdateProperties(connected bool) {
	if connected {
		d.h.DefineText(&d.devStatus)
		d.h.DefineText(&d.apiConfig)

		d.devStatus.Texts[1].Value = StatusConnected
		d.devStatus.State = host.StateOK
		d.h.SetText(&d.devStatus)

		d.log.Info("device connected - starting API polling")

		d.h.SetTimer(firstPoll)
		return
	}

	d.h.DeleteProperty(d.devStatus.Name)
	d.h.DeleteProperty(d.apiConfig.Name)

	d.log.Info("device disconnected")
}

// Connect succeeds only if one poll against the current URL succeeds.
func (d *Driver) Connect() bool {
	d.log.Info("attempting to connect to API")

	if !d.readAPI() {
		d.log.Error("failed to connect to API", "url", d.apiURL)
		return false
	}

	d.log.Info("successfully connected to API")
	return true
}

func (d *Driver) Disconnect() bool {
	d.log.Info("disconnected from API")
	return true
}

// TimerHit polls once per tick while connected and always re-arms.
func (d *Driver) TimerHit() {
	if !d.h.IsConnected() {
		d.h.SetTimer(d.h.PollingPeriod())
		return
	}

	d.readAPI()
	d.h.SetTimer(d.h.PollingPeriod())
}

// NewText accepts a new API URL. The URL is not validated; a bad one
// surfaces as failed polls.
func (d *Driver) NewText(name string, names, values []string) bool {
	if name != d.apiConfig.Name {
		return false
	}

	d.apiConfig.Update(names, values)
	d.apiURL = d.apiConfig.Texts[0].Value
	d.apiConfig.State = host.StateOK
	d.h.SetText(&d.apiConfig)

	d.log.Info("API URL set", "url", d.apiURL)
	return true
}

// UpdateWeather reports OK once any document has been read, Alert before.
// It never polls.
func (d *Driver) UpdateWeather() host.State {
	if !d.snap.Valid {
		d.log.Warn("no valid weather data available")
		return host.StateAlert
	}
	return host.StateOK
}

// LastPoll reports the time and outcome of the most recent poll.
func (d *Driver) LastPoll() (time.Time, error) {
	return d.lastPollAt, d.lastErr
}

// APIURL returns the URL the next poll will use.
func (d *Driver) APIURL() string { return d.apiURL }

// Snapshot returns a copy of the current sensor snapshot.
func (d *Driver) Snapshot() weather.Snapshot {
	s := d.snap
	if d.snap.Cloud != nil {
		s.Cloud = make(map[weather.CloudPosition]float64, len(d.snap.Cloud))
		for k, v := range d.snap.Cloud {
			s.Cloud[k] = v
		}
	}
	return s
}

func versionString() string {
	return fmt.Sprintf("%d.%d", VersionMajor, VersionMinor)
}
