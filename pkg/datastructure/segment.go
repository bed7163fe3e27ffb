package datastructure

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/Trackerx/pkg"
	"github.com/lintang-b-s/Trackerx/pkg/util"
)

type SegmentStatus uint32

const (
	SEGMENT_LIVE SegmentStatus = iota
	SEGMENT_CLOSED
	SEGMENT_COMPRESSING
	SEGMENT_COMPRESSED
	SEGMENT_COMPRESSION_FAILED
)

func (s SegmentStatus) String() string {
	switch s {
	case SEGMENT_LIVE:
		return "live"
	case SEGMENT_CLOSED:
		return "closed"
	case SEGMENT_COMPRESSING:
		return "compressing"
	case SEGMENT_COMPRESSED:
		return "compressed"
	case SEGMENT_COMPRESSION_FAILED:
		return "compression_failed"
	default:
		return "unknown"
	}
}

/*
Segment is a contiguous, time-ordered run of fixes belonging to one trip.

lifecycle: live (mutable, append-only, owned by the accumulator) -> closed
(buffer frozen) -> compressed (buffer swapped for the simplified one).

the point buffer itself is not internally synchronized: while live only the
accumulator writes it, and after close every mutation goes through the store
lock. the status word is atomic so read-back consumers can poll compression
progress without taking the store lock.
*/
type Segment struct {
	tripID string
	id     uint32

	points             []Fix
	startTime, endTime time.Time

	status     atomic.Uint32
	generation atomic.Uint64

	// compression metadata, valid once status == SEGMENT_COMPRESSED
	originalPointCount int
	compressionRatio   float64
	policyUsed         string

	minLat, minLon, maxLat, maxLon float64
}

func NewLiveSegment(tripID string, id uint32) *Segment {
	s := &Segment{
		tripID: tripID,
		id:     id,
		points: make([]Fix, 0, 256),
		minLat: math.MaxFloat64,
		minLon: math.MaxFloat64,
		maxLat: -math.MaxFloat64,
		maxLon: -math.MaxFloat64,
	}
	s.status.Store(uint32(SEGMENT_LIVE))
	return s
}

func (s *Segment) GetTripID() string {
	return s.tripID
}

func (s *Segment) GetID() uint32 {
	return s.id
}

func (s *Segment) Status() SegmentStatus {
	return SegmentStatus(s.status.Load())
}

// Generation identifies the current incarnation of the point buffer. a
// compression result produced against an older generation must be discarded.
func (s *Segment) Generation() uint64 {
	return s.generation.Load()
}

func (s *Segment) BumpGeneration() {
	s.generation.Add(1)
}

func (s *Segment) GetStartTime() time.Time {
	return s.startTime
}

func (s *Segment) GetEndTime() time.Time {
	return s.endTime
}

// Points. callers must treat the returned slice as read-only.
func (s *Segment) Points() []Fix {
	return s.points
}

func (s *Segment) NumPoints() int {
	return len(s.points)
}

func (s *Segment) GetOriginalPointCount() int {
	return s.originalPointCount
}

func (s *Segment) GetCompressionRatio() float64 {
	return s.compressionRatio
}

func (s *Segment) GetPolicyUsed() string {
	return s.policyUsed
}

func (s *Segment) IsCompressed() bool {
	return s.Status() == SEGMENT_COMPRESSED
}

// Bounds. bounding box over every point ever appended, maintained
// incrementally. undefined for an empty segment.
func (s *Segment) Bounds() (minLat, minLon, maxLat, maxLon float64) {
	return s.minLat, s.minLon, s.maxLat, s.maxLon
}

// AppendFix buffers one accepted fix. only the accumulator may call this,
// and only while the segment is live.
func (s *Segment) AppendFix(f Fix) error {
	if s.Status() != SEGMENT_LIVE {
		return util.WrapErrorf(nil, util.ErrSegmentIntegrity,
			"append on %s segment %d of trip %s", s.Status(), s.id, s.tripID)
	}
	if len(s.points) == 0 {
		s.startTime = f.GetTimestamp()
	}
	s.points = append(s.points, f)
	s.endTime = f.GetTimestamp()
	s.minLat = util.Min(s.minLat, f.GetLat())
	s.minLon = util.Min(s.minLon, f.GetLon())
	s.maxLat = util.Max(s.maxLat, f.GetLat())
	s.maxLon = util.Max(s.maxLon, f.GetLon())
	return nil
}

// Close freezes the point buffer. a closed segment with zero points is valid.
func (s *Segment) Close() error {
	if !s.status.CompareAndSwap(uint32(SEGMENT_LIVE), uint32(SEGMENT_CLOSED)) {
		return util.WrapErrorf(nil, util.ErrSegmentIntegrity,
			"close on %s segment %d of trip %s", s.Status(), s.id, s.tripID)
	}
	return nil
}

// MarkCompressing moves closed (or previously failed, for retries) to
// compressing. returns false when the segment is not in a compressible state.
func (s *Segment) MarkCompressing() bool {
	if s.status.CompareAndSwap(uint32(SEGMENT_CLOSED), uint32(SEGMENT_COMPRESSING)) {
		return true
	}
	return s.status.CompareAndSwap(uint32(SEGMENT_COMPRESSION_FAILED), uint32(SEGMENT_COMPRESSING))
}

// MarkCompressionFailed reverts to the closed-but-failed state. the raw
// buffer is untouched, so the segment stays readable and retryable.
func (s *Segment) MarkCompressionFailed() {
	s.status.Store(uint32(SEGMENT_COMPRESSION_FAILED))
}

// SwapCompressed replaces the raw buffer with the compressed one. the store
// calls this under its write lock after the generation check passed.
func (s *Segment) SwapCompressed(points []Fix, ratio float64, originalCount int, policyUsed string) {
	s.points = points
	s.originalPointCount = originalCount
	s.compressionRatio = ratio
	s.policyUsed = policyUsed
	s.status.Store(uint32(SEGMENT_COMPRESSED))
}

// RepresentativeSpeedKmh computes one speed for a whole point buffer:
// duration-weighted mean of the reported speeds where the source marked them
// usable, falling back to track distance over elapsed time. returns 0 for
// fewer than two points.
func RepresentativeSpeedKmh(points []Fix) float64 {
	if len(points) < 2 {
		return 0
	}

	var weighted, totalDt float64
	for i := 1; i < len(points); i++ {
		if !points[i].HasSpeed() {
			continue
		}
		dt := points[i].GetTimestamp().Sub(points[i-1].GetTimestamp()).Seconds()
		if dt <= 0 {
			continue
		}
		weighted += points[i].GetSpeed() * dt
		totalDt += dt
	}
	if totalDt > 0 {
		return weighted / totalDt * pkg.MPS_TO_KMH
	}

	var dist float64
	for i := 1; i < len(points); i++ {
		dist += points[i].DistanceM(points[i-1])
	}
	elapsed := points[len(points)-1].GetTimestamp().Sub(points[0].GetTimestamp()).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return dist / elapsed * pkg.MPS_TO_KMH
}
