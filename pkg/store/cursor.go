package store

import (
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/util"
)

/*
TrackCursor is a lazy, restartable iterator over a trip's full track: every
segment in start-time order, concatenated without artificial boundary points.

each segment's point buffer is snapshotted only when the cursor reaches it, so
a segment whose compression finishes mid-iteration is served in whichever
representation it had at that moment — the raw buffer while compression is in
flight, the compressed one after — never a partial mix of the two.
*/
type TrackCursor struct {
	store *SegmentStore
	trip  string

	segments []*datastructure.Segment
	segIdx   int
	cur      []datastructure.Fix
	ptIdx    int
}

// Read opens a cursor over the trip's track. the segment ordering is
// snapshotted here; call Reset (or Read again) to restart.
func (st *SegmentStore) Read(tripID string) (*TrackCursor, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ts, ok := st.trips[tripID]
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "unknown trip %s", tripID)
	}
	segments := make([]*datastructure.Segment, len(ts.segments))
	copy(segments, ts.segments)
	return &TrackCursor{
		store:    st,
		trip:     tripID,
		segments: segments,
		segIdx:   -1,
	}, nil
}

// Next yields the next fix in ascending timestamp order. returns false when
// the track is exhausted.
func (c *TrackCursor) Next() (datastructure.Fix, bool) {
	for {
		if c.segIdx >= 0 && c.ptIdx < len(c.cur) {
			f := c.cur[c.ptIdx]
			c.ptIdx++
			return f, true
		}
		c.segIdx++
		if c.segIdx >= len(c.segments) {
			return datastructure.Fix{}, false
		}

		// snapshot the segment's current representation under the store lock
		c.store.mu.RLock()
		c.cur = c.segments[c.segIdx].Points()
		c.store.mu.RUnlock()
		c.ptIdx = 0
	}
}

// Reset rewinds the cursor to the beginning of the track.
func (c *TrackCursor) Reset() {
	c.segIdx = -1
	c.ptIdx = 0
	c.cur = nil
}

// ReadAll materializes the whole track. convenience for consumers that do not
// need lazy iteration.
func (st *SegmentStore) ReadAll(tripID string) ([]datastructure.Fix, error) {
	cursor, err := st.Read(tripID)
	if err != nil {
		return nil, err
	}
	out := make([]datastructure.Fix, 0, 256)
	for {
		f, ok := cursor.Next()
		if !ok {
			return out, nil
		}
		out = append(out, f)
	}
}
