package datastructure

import (
	"time"

	"github.com/lintang-b-s/Trackerx/pkg"
	"github.com/lintang-b-s/Trackerx/pkg/geo"
	"github.com/lintang-b-s/Trackerx/pkg/util"
)

// Fix is one raw gps observation. immutable once created.
type Fix struct {
	lat, lon           float64
	altitude           float64
	speed              float64 // m/s. negative when the source reports unreliable speed
	horizontalAccuracy float64
	verticalAccuracy   float64
	timestamp          time.Time
}

func NewFix(lat, lon, altitude, speed, hAcc, vAcc float64, timestamp time.Time) Fix {
	return Fix{
		lat:                lat,
		lon:                lon,
		altitude:           altitude,
		speed:              speed,
		horizontalAccuracy: hAcc,
		verticalAccuracy:   vAcc,
		timestamp:          timestamp,
	}
}

func (f Fix) GetLat() float64 {
	return f.lat
}

func (f Fix) GetLon() float64 {
	return f.lon
}

func (f Fix) GetAltitude() float64 {
	return f.altitude
}

// GetSpeed. reported speed in m/s. check HasSpeed before trusting it.
func (f Fix) GetSpeed() float64 {
	return f.speed
}

func (f Fix) GetHorizontalAccuracy() float64 {
	return f.horizontalAccuracy
}

func (f Fix) GetVerticalAccuracy() float64 {
	return f.verticalAccuracy
}

func (f Fix) GetTimestamp() time.Time {
	return f.timestamp
}

// HasSpeed reports whether the source delivered a usable speed value.
func (f Fix) HasSpeed() bool {
	return f.speed >= 0
}

func (f Fix) Coordinate() geo.Coordinate {
	return geo.NewCoordinate(f.lat, f.lon)
}

// DistanceM. haversine distance in meters to another fix.
func (f Fix) DistanceM(other Fix) float64 {
	return geo.HaversineDistanceM(f.lat, f.lon, other.GetLat(), other.GetLon())
}

// FastDistanceM. equirectangular-projection distance in meters, cheaper than
// haversine and accurate at the few-meter scale of consecutive fixes. used on
// the per-fix ingestion hot path.
func (f Fix) FastDistanceM(other Fix) float64 {
	return geo.CalculateEuclidianDistanceEquirectangularProj(
		f.lat, f.lon, other.GetLat(), other.GetLon()) * 1000.0
}

// Validate checks coordinate ranges. timestamp monotonicity is checked by the
// accumulator against the last buffered fix, not here.
func (f Fix) Validate() error {
	if f.lat < pkg.MIN_LATITUDE || f.lat > pkg.MAX_LATITUDE {
		return util.WrapErrorf(nil, util.ErrInvalidFix, "latitude %f out of range", f.lat)
	}
	if f.lon < pkg.MIN_LONGITUDE || f.lon > pkg.MAX_LONGITUDE {
		return util.WrapErrorf(nil, util.ErrInvalidFix, "longitude %f out of range", f.lon)
	}
	return nil
}
