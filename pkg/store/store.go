package store

import (
	"context"
	"sync"
	"time"

	"github.com/lintang-b-s/Trackerx/pkg"
	"github.com/lintang-b-s/Trackerx/pkg/accumulator"
	"github.com/lintang-b-s/Trackerx/pkg/compressor"
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/policy"
	"github.com/lintang-b-s/Trackerx/pkg/util"
	"go.uber.org/zap"
)

/*
SegmentStore owns every trip's segments and their lifecycle. it enforces the
two structural invariants of a trip track: at most one live segment per trip,
and read-back ordered by segment start time no matter in which order
compressions finish.

compression runs in the background and never blocks fix ingestion. a
generation check keyed on segment identity guards against a cancelled or
superseded compression writing back.
*/
type SegmentStore struct {
	log   *zap.Logger
	comp  *compressor.Compressor
	gates accumulator.GateConfig

	mu    sync.RWMutex
	trips map[string]*tripState
}

type tripState struct {
	acc       *accumulator.Accumulator
	segments  []*datastructure.Segment // ascending segment start time
	nextSegID uint32
	cancels   map[uint32]context.CancelFunc
	index     *segmentIndex

	// per-sample tier tracking over the live fix stream, smoothed and with
	// hysteresis. only a status readout; closed-segment compression always
	// selects from the segment's own representative speed.
	liveSel    *policy.Selector
	livePolicy string

	// end of the last closed segment; the next segment must start after it
	lastEndTime time.Time
}

func New(comp *compressor.Compressor, gates accumulator.GateConfig, log *zap.Logger) *SegmentStore {
	return &SegmentStore{
		log:   log,
		comp:  comp,
		gates: gates,
		trips: make(map[string]*tripState),
	}
}

func (st *SegmentStore) tripLocked(tripID string) *tripState {
	ts, ok := st.trips[tripID]
	if !ok {
		ts = &tripState{
			acc:     accumulator.New(tripID, st.gates, st.log),
			cancels: make(map[uint32]context.CancelFunc),
			index:   newSegmentIndex(),
			liveSel: st.comp.LiveSelector(),
		}
		st.trips[tripID] = ts
	}
	return ts
}

func findSegment(ts *tripState, segID uint32) *datastructure.Segment {
	for _, s := range ts.segments {
		if s.GetID() == segID {
			return s
		}
	}
	return nil
}

// OpenSegment starts a new live segment for the trip, creating the trip on
// first use. opening while another segment is live escalates as an integrity
// violation.
func (st *SegmentStore) OpenSegment(tripID string) (*datastructure.Segment, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	ts := st.tripLocked(tripID)
	seg := datastructure.NewLiveSegment(tripID, ts.nextSegID)
	if err := ts.acc.Start(seg); err != nil {
		return nil, err
	}
	ts.nextSegID++
	ts.segments = append(ts.segments, seg)
	st.log.Info("segment opened",
		zap.String("trip", tripID), zap.Uint32("segment", seg.GetID()))
	return seg, nil
}

/*
Append pushes one raw fix through the trip's gates into the live segment.
processed synchronously and strictly in arrival order. returns whether the
fix was buffered; invalid fixes return an error but recording continues.
*/
func (st *SegmentStore) Append(tripID string, f datastructure.Fix) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	ts, ok := st.trips[tripID]
	if !ok {
		return false, util.WrapErrorf(nil, util.ErrNotFound, "unknown trip %s", tripID)
	}
	if !ts.lastEndTime.IsZero() && !f.GetTimestamp().After(ts.lastEndTime) {
		return false, util.WrapErrorf(nil, util.ErrInvalidFix,
			"fix timestamp %s not after previous segment end %s",
			f.GetTimestamp(), ts.lastEndTime)
	}
	buffered, err := ts.acc.Ingest(f)
	if buffered && f.HasSpeed() {
		ts.livePolicy = ts.liveSel.SelectPolicy(f.GetSpeed() * pkg.MPS_TO_KMH).Name()
	}
	return buffered, err
}

// LivePolicy reports the tier the live stream's smoothed speed currently
// projects, or "" before the first buffered fix with a usable speed.
func (st *SegmentStore) LivePolicy(tripID string) string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ts, ok := st.trips[tripID]
	if !ok {
		return ""
	}
	return ts.livePolicy
}

// CloseSegment freezes the live segment and returns it. compression is not
// started here; dispatch it with CompressAsync (or run CompressSegment
// synchronously).
func (st *SegmentStore) CloseSegment(tripID string) (*datastructure.Segment, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	ts, ok := st.trips[tripID]
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "unknown trip %s", tripID)
	}
	seg, err := ts.acc.Close()
	if err != nil {
		return nil, err
	}
	if seg.NumPoints() > 0 {
		ts.lastEndTime = seg.GetEndTime()
		ts.index.insert(seg)
	}
	return seg, nil
}

/*
CompressSegment compresses one closed segment synchronously. failure leaves
the segment closed and uncompressed (retryable); it is reported per segment,
never fatal to the trip. compressing an already-compressed or in-flight
segment is a no-op.
*/
func (st *SegmentStore) CompressSegment(ctx context.Context, tripID string, segID uint32) error {
	st.mu.RLock()
	ts, ok := st.trips[tripID]
	var seg *datastructure.Segment
	if ok {
		seg = findSegment(ts, segID)
	}
	st.mu.RUnlock()

	if seg == nil {
		return util.WrapErrorf(nil, util.ErrNotFound, "unknown segment %d of trip %s", segID, tripID)
	}

	switch seg.Status() {
	case datastructure.SEGMENT_LIVE:
		return util.WrapErrorf(nil, util.ErrSegmentIntegrity,
			"compress requested for live segment %d of trip %s", segID, tripID)
	case datastructure.SEGMENT_COMPRESSED, datastructure.SEGMENT_COMPRESSING:
		return nil
	}

	if !seg.MarkCompressing() {
		return nil
	}

	// the buffer is frozen after close, so reading it outside the lock is
	// safe; generation pins the incarnation we compressed.
	gen := seg.Generation()
	points := seg.Points()

	res, err := st.comp.Compress(ctx, points)
	if err != nil {
		seg.MarkCompressionFailed()
		st.log.Warn("segment compression failed",
			zap.String("trip", tripID), zap.Uint32("segment", segID), zap.Error(err))
		if ctx.Err() != nil {
			return err
		}
		return util.WrapErrorf(err, util.ErrCompressionFailure,
			"compressing segment %d of trip %s", segID, tripID)
	}

	return st.ApplyCompressed(tripID, segID, gen, res)
}

// CompressAsync dispatches compression of a closed segment as a cancellable
// background task and returns a channel carrying its final error (nil on
// success or stale discard).
func (st *SegmentStore) CompressAsync(tripID string, segID uint32) <-chan error {
	done := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())

	st.mu.Lock()
	ts, ok := st.trips[tripID]
	if !ok {
		st.mu.Unlock()
		cancel()
		done <- util.WrapErrorf(nil, util.ErrNotFound, "unknown trip %s", tripID)
		return done
	}
	ts.cancels[segID] = cancel
	st.mu.Unlock()

	go func() {
		defer cancel()
		err := st.CompressSegment(ctx, tripID, segID)

		st.mu.Lock()
		if ts, ok := st.trips[tripID]; ok {
			delete(ts.cancels, segID)
		}
		st.mu.Unlock()

		done <- err
	}()
	return done
}

/*
ApplyCompressed swaps a compression result into the segment, atomically with
respect to readers. the write is discarded when the segment no longer exists
or its generation moved on (cancelled/superseded compression); that is logged
and reported as ErrStaleCompressionWrite, never surfaced as a user error.
*/
func (st *SegmentStore) ApplyCompressed(tripID string, segID uint32, generation uint64, res *compressor.Result) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	ts, ok := st.trips[tripID]
	if !ok {
		st.log.Info("discarding compression write for deleted trip",
			zap.String("trip", tripID), zap.Uint32("segment", segID))
		return util.WrapErrorf(nil, util.ErrStaleCompressionWrite, "trip %s gone", tripID)
	}
	seg := findSegment(ts, segID)
	if seg == nil {
		st.log.Info("discarding compression write for discarded segment",
			zap.String("trip", tripID), zap.Uint32("segment", segID))
		return util.WrapErrorf(nil, util.ErrStaleCompressionWrite, "segment %d gone", segID)
	}
	if seg.Generation() != generation {
		st.log.Info("discarding stale compression write",
			zap.String("trip", tripID), zap.Uint32("segment", segID),
			zap.Uint64("want", seg.Generation()), zap.Uint64("got", generation))
		return util.WrapErrorf(nil, util.ErrStaleCompressionWrite,
			"segment %d generation moved", segID)
	}

	seg.SwapCompressed(res.Points, res.CompressionRatio, res.OriginalPointCount, res.PolicyUsed)
	st.log.Info("segment compressed",
		zap.String("trip", tripID),
		zap.Uint32("segment", segID),
		zap.String("policy", res.PolicyUsed),
		zap.Int("original", res.OriginalPointCount),
		zap.Int("compressed", len(res.Points)),
		zap.Float64("ratio", res.CompressionRatio))
	return nil
}

// DiscardSegment removes one segment, cancelling its in-flight compression.
// a compression completing afterwards is rejected by the generation guard.
func (st *SegmentStore) DiscardSegment(tripID string, segID uint32) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	ts, ok := st.trips[tripID]
	if !ok {
		return util.WrapErrorf(nil, util.ErrNotFound, "unknown trip %s", tripID)
	}
	seg := findSegment(ts, segID)
	if seg == nil {
		return util.WrapErrorf(nil, util.ErrNotFound, "unknown segment %d of trip %s", segID, tripID)
	}
	if seg.Status() == datastructure.SEGMENT_LIVE {
		return util.WrapErrorf(nil, util.ErrSegmentIntegrity,
			"discard requested for live segment %d of trip %s", segID, tripID)
	}

	if cancel, ok := ts.cancels[segID]; ok {
		cancel()
		delete(ts.cancels, segID)
	}
	seg.BumpGeneration()
	ts.index.remove(seg)
	for i, s := range ts.segments {
		if s.GetID() == segID {
			ts.segments = append(ts.segments[:i], ts.segments[i+1:]...)
			break
		}
	}
	st.log.Info("segment discarded",
		zap.String("trip", tripID), zap.Uint32("segment", segID))
	return nil
}

// DeleteTrip removes the trip and all its segments, cancelling every
// in-flight compression.
func (st *SegmentStore) DeleteTrip(tripID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	ts, ok := st.trips[tripID]
	if !ok {
		return util.WrapErrorf(nil, util.ErrNotFound, "unknown trip %s", tripID)
	}
	for id, cancel := range ts.cancels {
		cancel()
		delete(ts.cancels, id)
	}
	for _, s := range ts.segments {
		s.BumpGeneration()
	}
	delete(st.trips, tripID)
	st.log.Info("trip deleted", zap.String("trip", tripID))
	return nil
}

// LiveState reports the accumulator state for a trip (idle for unknown trips).
func (st *SegmentStore) LiveState(tripID string) accumulator.State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ts, ok := st.trips[tripID]
	if !ok {
		return accumulator.STATE_IDLE
	}
	return ts.acc.GetState()
}

// SegmentInfo is per-segment metadata for status consumers.
type SegmentInfo struct {
	ID                 uint32    `json:"id"`
	Status             string    `json:"status"`
	StartTime          time.Time `json:"startTimestamp"`
	EndTime            time.Time `json:"endTimestamp"`
	NumPoints          int       `json:"numPoints"`
	OriginalPointCount int       `json:"originalPointCount"`
	CompressionRatio   float64   `json:"compressionRatio"`
	PolicyUsed         string    `json:"policyUsed"`
}

func (st *SegmentStore) Segments(tripID string) ([]SegmentInfo, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ts, ok := st.trips[tripID]
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "unknown trip %s", tripID)
	}
	infos := make([]SegmentInfo, 0, len(ts.segments))
	for _, s := range ts.segments {
		infos = append(infos, SegmentInfo{
			ID:                 s.GetID(),
			Status:             s.Status().String(),
			StartTime:          s.GetStartTime(),
			EndTime:            s.GetEndTime(),
			NumPoints:          s.NumPoints(),
			OriginalPointCount: s.GetOriginalPointCount(),
			CompressionRatio:   util.RoundFloat(s.GetCompressionRatio(), 4),
			PolicyUsed:         s.GetPolicyUsed(),
		})
	}
	return infos, nil
}

// AllSegments returns the trip's segments in start-time order, for snapshot
// persistence.
func (st *SegmentStore) AllSegments(tripID string) ([]*datastructure.Segment, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ts, ok := st.trips[tripID]
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "unknown trip %s", tripID)
	}
	out := make([]*datastructure.Segment, len(ts.segments))
	copy(out, ts.segments)
	return out, nil
}

// Trips lists every known trip id.
func (st *SegmentStore) Trips() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]string, 0, len(st.trips))
	for id := range st.trips {
		out = append(out, id)
	}
	return out
}
