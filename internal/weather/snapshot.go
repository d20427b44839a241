// internal/weather/snapshot.go
package weather

// CloudPosition names one zone of the cloud sensor.
// Only CloudCenter is ever reported by the viewer API; the compass
// positions are reserved for a multi-zone sensor and are never populated.
type CloudPosition uint8

const (
	CloudNorth CloudPosition = iota
	CloudEast
	CloudSouth
	CloudWest
	CloudCenter
)

func (p CloudPosition) String() string {
	switch p {
	case CloudNorth:
		return "north"
	case CloudEast:
		return "east"
	case CloudSouth:
		return "south"
	case CloudWest:
		return "west"
	case CloudCenter:
		return "center"
	default:
		return "unknown"
	}
}

// Snapshot is the last known sensor state.
// Fields keep their previous value when a reading does not carry them.
// Valid flips to true on the first applied reading and never back.
type Snapshot struct {
	Temperature   float64 // °C
	Humidity      float64 // %
	DewPoint      float64 // °C
	Lux           float64
	SkyBrightness float64 // mag/arcsec²

	Cloud map[CloudPosition]float64 // °C, sky temperature per zone

	Valid bool
}

// CloudTemp returns the sky temperature for a zone, if one was ever reported.
func (s *Snapshot) CloudTemp(p CloudPosition) (float64, bool) {
	v, ok := s.Cloud[p]
	return v, ok
}

// Apply merges a decoded reading into the snapshot.
// Absent groups and absent fields leave prior values unchanged.
func (s *Snapshot) Apply(r Reading) {
	if h := r.Hygro; h != nil {
		set(&s.Temperature, h.Temp)
		set(&s.Humidity, h.RH)
		set(&s.DewPoint, h.DewPoint)
	}

	if l := r.Light; l != nil {
		set(&s.Lux, l.Lux)
		set(&s.SkyBrightness, l.SQM)
	}

	if c := r.Cloud; c != nil && c.Center != nil {
		if s.Cloud == nil {
			s.Cloud = make(map[CloudPosition]float64, 1)
		}
		s.Cloud[CloudCenter] = *c.Center
	}

	s.Valid = true
}

func set(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
