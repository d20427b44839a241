// internal/driver/poll.go
package driver

import (
	"context"
	"errors"
	"net/http"

	"github.com/tamzrod/amsky-bridge/internal/poller"
	"github.com/tamzrod/amsky-bridge/internal/weather"
)

// readAPI runs one blocking poll and applies the result.
// Any failure leaves the snapshot untouched.
func (d *Driver) readAPI() bool {
	res := d.poller.PollOnce(context.Background(), d.apiURL)

	d.lastPollAt = res.At
	d.lastErr = res.Err

	if res.StatusCode == http.StatusOK && res.Body != nil {
		d.log.Debug("received JSON data", "body", string(res.Body))
	}

	if res.Err != nil {
		d.logPollError(res)
		return false
	}

	d.apply(res.Reading)
	return true
}

func (d *Driver) logPollError(res poller.PollResult) {
	var (
		te *poller.TransportError
		se *poller.StatusError
		fe *weather.FormatError
		ee *weather.ExtractionError
	)

	switch {
	case errors.As(res.Err, &te):
		d.log.Error("API request failed", "error", te.Err, "url", res.URL)
	case errors.As(res.Err, &se):
		d.log.Error("HTTP request failed", "code", se.StatusCode, "url", res.URL)
	case errors.As(res.Err, &fe):
		d.log.Error("failed to parse JSON", "error", fe.Err)
	case errors.As(res.Err, &ee):
		d.log.Error("failed to extract weather fields", "error", ee)
	default:
		d.log.Error("poll failed", "error", res.Err, "url", res.URL)
	}
}

// apply merges a reading into the snapshot and publishes the groups it carried.
func (d *Driver) apply(r weather.Reading) {
	d.snap.Apply(r)

	if r.Hygro != nil {
		d.h.SetParameterValue(ParamTemperature, d.snap.Temperature)
		d.h.SetParameterValue(ParamHumidity, d.snap.Humidity)
		d.h.SetParameterValue(ParamDewPoint, d.snap.DewPoint)
	}

	if r.Light != nil {
		d.h.SetParameterValue(ParamLux, d.snap.Lux)
		d.h.SetParameterValue(ParamSkyBrightness, d.snap.SkyBrightness)
	}

	if r.Cloud != nil && r.Cloud.Center != nil {
		center, _ := d.snap.CloudTemp(weather.CloudCenter)
		d.h.SetParameterValue(ParamSkyTempCenter, center)
	}

	d.log.Debug("parsed data",
		"temperature", d.snap.Temperature,
		"humidity", d.snap.Humidity,
		"lux", d.snap.Lux,
		"sqm", d.snap.SkyBrightness,
	)
}
