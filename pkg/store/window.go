package store

import (
	"sort"

	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/util"
)

/*
ReadWindow returns the trip's fixes inside a bounding box, in ascending
timestamp order. indexed segments are found through the r-tree; the live
segment (never indexed) is scanned directly so an in-progress recording still
shows up in the viewport.
*/
func (st *SegmentStore) ReadWindow(tripID string, minLat, minLon, maxLat, maxLon float64) ([]datastructure.Fix, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ts, ok := st.trips[tripID]
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "unknown trip %s", tripID)
	}

	candidates := ts.index.search(minLat, minLon, maxLat, maxLon)
	for _, s := range ts.segments {
		if s.Status() == datastructure.SEGMENT_LIVE {
			candidates = append(candidates, s)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].GetStartTime().Before(candidates[j].GetStartTime())
	})

	var out []datastructure.Fix
	for _, s := range candidates {
		for _, f := range s.Points() {
			if f.GetLat() >= minLat && f.GetLat() <= maxLat &&
				f.GetLon() >= minLon && f.GetLon() <= maxLon {
				out = append(out, f)
			}
		}
	}
	return out, nil
}
