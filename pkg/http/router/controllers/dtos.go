package controllers

import (
	"time"

	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/store"
)

type envelope map[string]interface{}

type fixRequest struct {
	Lat                float64   `json:"lat" validate:"gte=-90,lte=90"`
	Lon                float64   `json:"lon" validate:"gte=-180,lte=180"`
	Altitude           float64   `json:"altitude"`
	Speed              *float64  `json:"speed" validate:"omitempty,gte=0"`
	HorizontalAccuracy float64   `json:"horizontalAccuracy" validate:"gte=0"`
	VerticalAccuracy   float64   `json:"verticalAccuracy" validate:"gte=0"`
	Timestamp          time.Time `json:"timestamp" validate:"required"`
}

// ToFix. a missing speed becomes -1, the "source reports unreliable speed"
// marker of the data model.
func (r fixRequest) ToFix() datastructure.Fix {
	speed := -1.0
	if r.Speed != nil {
		speed = *r.Speed
	}
	return datastructure.NewFix(r.Lat, r.Lon, r.Altitude, speed,
		r.HorizontalAccuracy, r.VerticalAccuracy, r.Timestamp)
}

type fixStreamRequest struct {
	TripID string     `json:"tripId" validate:"required"`
	Fix    fixRequest `json:"fix" validate:"required"`
}

type startTripResponse struct {
	TripID string `json:"tripId"`
}

func NewStartTripResponse(tripID string) startTripResponse {
	return startTripResponse{TripID: tripID}
}

type pushFixResponse struct {
	Accepted bool `json:"accepted"`
	// tier the live stream's smoothed speed currently projects; empty until a
	// fix with a usable speed has been buffered
	ProjectedPolicy string `json:"projectedPolicy,omitempty"`
}

func NewPushFixResponse(accepted bool, projectedPolicy string) pushFixResponse {
	return pushFixResponse{Accepted: accepted, ProjectedPolicy: projectedPolicy}
}

type fixResponse struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Altitude  float64   `json:"altitude"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}

func newFixResponses(fixes []datastructure.Fix) []fixResponse {
	out := make([]fixResponse, len(fixes))
	for i, f := range fixes {
		out[i] = fixResponse{
			Lat:       f.GetLat(),
			Lon:       f.GetLon(),
			Altitude:  f.GetAltitude(),
			Speed:     f.GetSpeed(),
			Timestamp: f.GetTimestamp(),
		}
	}
	return out
}

type trackResponse struct {
	TripID    string        `json:"tripId"`
	NumPoints int           `json:"numPoints"`
	Polyline  string        `json:"polyline"`
	Points    []fixResponse `json:"points"`
}

func NewTrackResponse(tripID string, fixes []datastructure.Fix, polyline string) trackResponse {
	return trackResponse{
		TripID:    tripID,
		NumPoints: len(fixes),
		Polyline:  polyline,
		Points:    newFixResponses(fixes),
	}
}

type segmentsResponse struct {
	TripID   string              `json:"tripId"`
	Segments []store.SegmentInfo `json:"segments"`
}

func NewSegmentsResponse(tripID string, infos []store.SegmentInfo) segmentsResponse {
	return segmentsResponse{TripID: tripID, Segments: infos}
}

type windowResponse struct {
	TripID    string        `json:"tripId"`
	NumPoints int           `json:"numPoints"`
	Points    []fixResponse `json:"points"`
}

func NewWindowResponse(tripID string, fixes []datastructure.Fix) windowResponse {
	return windowResponse{
		TripID:    tripID,
		NumPoints: len(fixes),
		Points:    newFixResponses(fixes),
	}
}

type snapshotResponse struct {
	TripID string `json:"tripId"`
	File   string `json:"file"`
}

func NewSnapshotResponse(tripID, file string) snapshotResponse {
	return snapshotResponse{TripID: tripID, File: file}
}
