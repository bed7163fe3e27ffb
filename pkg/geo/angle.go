package geo

import (
	"math"

	"github.com/lintang-b-s/Trackerx/pkg/util"
)

/*
BearingTo. initial bearing of the arc (p1,p2), in degrees [0,360).
https://www.movable-type.co.uk/scripts/latlong.html
*/
func BearingTo(p1Lat, p1Lon, p2Lat, p2Lon float64) float64 {

	dLon := util.DegreeToRadians(p2Lon - p1Lon)

	lat1 := util.DegreeToRadians(p1Lat)
	lat2 := util.DegreeToRadians(p2Lat)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Mod(util.RadiansToDegree(math.Atan2(y, x))+360, 360.0)

	return brng
}

// BearingDiff. absolute difference between two bearings, in degrees [0,180].
func BearingDiff(b1, b2 float64) float64 {
	diff := math.Abs(b1 - b2)
	if diff > 180.0 {
		diff = 360.0 - diff
	}
	return diff
}

// TurnAngle. direction change at point b when travelling a -> b -> c, in degrees [0,180].
func TurnAngle(aLat, aLon, bLat, bLon, cLat, cLon float64) float64 {
	in := BearingTo(aLat, aLon, bLat, bLon)
	out := BearingTo(bLat, bLon, cLat, cLon)
	return BearingDiff(in, out)
}
