package controllers

import (
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/store"
)

type TrackingService interface {
	StartTrip() (string, error)
	PushFix(tripID string, f datastructure.Fix) (bool, error)
	LivePolicy(tripID string) string
	PauseTrip(tripID string) error
	ResumeTrip(tripID string) error
	StopTrip(tripID string) error
	DeleteTrip(tripID string) error
	DiscardSegment(tripID string, segID uint32) error
	Track(tripID string) ([]datastructure.Fix, string, error)
	Segments(tripID string) ([]store.SegmentInfo, error)
	Window(tripID string, minLat, minLon, maxLat, maxLon float64) ([]datastructure.Fix, error)
	Snapshot(tripID string) (string, error)
}
