package datastructure

import (
	"testing"
	"time"

	"github.com/lintang-b-s/Trackerx/pkg/util"
)

var testStart = time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC)

func testFix(lat, lon, speed float64, i int) Fix {
	return NewFix(lat, lon, 100, speed, 5, 8, testStart.Add(time.Duration(i)*time.Second))
}

func TestSegmentLifecycle(t *testing.T) {
	s := NewLiveSegment("trip-a", 0)
	if s.Status() != SEGMENT_LIVE {
		t.Fatalf("new segment must be live, got %s", s.Status())
	}

	if err := s.AppendFix(testFix(-7.76, 110.37, 4, 0)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendFix(testFix(-7.75, 110.38, 4, 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !s.GetStartTime().Equal(testStart) {
		t.Errorf("start time must be the first fix's timestamp")
	}
	if !s.GetEndTime().Equal(testStart.Add(time.Second)) {
		t.Errorf("end time must track the last fix's timestamp")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); util.ErrorCode(err) != util.ErrSegmentIntegrity {
		t.Errorf("double close must report ErrSegmentIntegrity, got %v", err)
	}
	if err := s.AppendFix(testFix(-7.74, 110.39, 4, 2)); util.ErrorCode(err) != util.ErrSegmentIntegrity {
		t.Errorf("append after close must report ErrSegmentIntegrity, got %v", err)
	}

	if !s.MarkCompressing() {
		t.Fatal("closed segment must be compressible")
	}
	if s.MarkCompressing() {
		t.Error("a segment already compressing must not be claimed twice")
	}

	s.MarkCompressionFailed()
	if s.Status() != SEGMENT_COMPRESSION_FAILED {
		t.Errorf("want compression_failed, got %s", s.Status())
	}
	if !s.MarkCompressing() {
		t.Error("a failed segment must be retryable")
	}

	s.SwapCompressed([]Fix{testFix(-7.76, 110.37, 4, 0)}, 0.5, 2, "balanced")
	if s.Status() != SEGMENT_COMPRESSED {
		t.Errorf("want compressed, got %s", s.Status())
	}
	if s.NumPoints() != 1 || s.GetOriginalPointCount() != 2 {
		t.Errorf("swap did not take: %d points, original %d", s.NumPoints(), s.GetOriginalPointCount())
	}
	if s.GetPolicyUsed() != "balanced" {
		t.Errorf("want policy balanced, got %q", s.GetPolicyUsed())
	}
}

func TestSegmentBounds(t *testing.T) {
	s := NewLiveSegment("trip-b", 0)
	s.AppendFix(testFix(-7.76, 110.37, 4, 0))
	s.AppendFix(testFix(-7.70, 110.42, 4, 1))
	s.AppendFix(testFix(-7.73, 110.35, 4, 2))

	minLat, minLon, maxLat, maxLon := s.Bounds()
	if minLat != -7.76 || maxLat != -7.70 || minLon != 110.35 || maxLon != 110.42 {
		t.Errorf("bounds (%v %v %v %v) wrong", minLat, minLon, maxLat, maxLon)
	}
}

func TestRepresentativeSpeedWeighted(t *testing.T) {
	// 10s at 10 m/s then 30s at 2 m/s -> (10*10 + 2*30) / 40 = 4 m/s.
	points := []Fix{
		NewFix(-7.76, 110.37, 100, 10, 5, 8, testStart),
		NewFix(-7.75, 110.37, 100, 10, 5, 8, testStart.Add(10*time.Second)),
		NewFix(-7.74, 110.37, 100, 2, 5, 8, testStart.Add(40*time.Second)),
	}
	got := RepresentativeSpeedKmh(points)
	want := 4.0 * 3.6
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("want %.3f km/h, got %.3f", want, got)
	}
}

func TestRepresentativeSpeedFallbackToDistance(t *testing.T) {
	// no usable reported speeds: derive from track distance over elapsed time.
	points := []Fix{
		NewFix(-7.7672, 110.3785, 100, -1, 5, 8, testStart),
		NewFix(-7.7672, 110.3785+0.001, 100, -1, 5, 8, testStart.Add(10*time.Second)),
	}
	got := RepresentativeSpeedKmh(points)
	if got <= 0 {
		t.Errorf("fallback speed must be positive, got %.3f", got)
	}
}

func TestRepresentativeSpeedDegenerate(t *testing.T) {
	if got := RepresentativeSpeedKmh(nil); got != 0 {
		t.Errorf("empty buffer speed must be 0, got %.3f", got)
	}
	one := []Fix{testFix(-7.76, 110.37, 4, 0)}
	if got := RepresentativeSpeedKmh(one); got != 0 {
		t.Errorf("single point speed must be 0, got %.3f", got)
	}
}
