package geo

import (
	"github.com/golang/geo/s2"
)

func ProjectPointToLineCoord(pointA Coordinate, pointB Coordinate,
	p Coordinate) Coordinate {
	pointAS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointA.Lat, pointA.Lon))
	pointBS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointB.Lat, pointB.Lon))
	pS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
	projection := s2.Project(pS2, pointAS2, pointBS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointLinePerpendicularDistance. perpendicular distance in meters from p to the
// chord (pointA, pointB). great-circle aware, fine at sub-segment scales.
func PointLinePerpendicularDistance(pointA Coordinate, pointB Coordinate,
	p Coordinate) float64 {
	projectionPoint := ProjectPointToLineCoord(pointA, pointB, p)

	dist := CalculateHaversineDistance(p.GetLat(), p.GetLon(), projectionPoint.GetLat(), projectionPoint.GetLon())

	return dist * 1000
}
