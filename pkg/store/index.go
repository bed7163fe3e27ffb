package store

import (
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/tidwall/rtree"
)

// segmentIndex is an r-tree over the bounding boxes of a trip's non-live
// segments, so viewport-limited read-back does not have to scan every point.
// a segment's bounds are frozen once it closes (compression only removes
// interior points), so the box inserted at close time stays a valid key.
type segmentIndex struct {
	tr *rtree.RTreeG[*datastructure.Segment]
}

func newSegmentIndex() *segmentIndex {
	var tr rtree.RTreeG[*datastructure.Segment]
	return &segmentIndex{tr: &tr}
}

func (si *segmentIndex) insert(seg *datastructure.Segment) {
	if seg.NumPoints() == 0 {
		return
	}
	minLat, minLon, maxLat, maxLon := seg.Bounds()
	si.tr.Insert([2]float64{minLat, minLon}, [2]float64{maxLat, maxLon}, seg)
}

func (si *segmentIndex) remove(seg *datastructure.Segment) {
	if seg.NumPoints() == 0 {
		return
	}
	minLat, minLon, maxLat, maxLon := seg.Bounds()
	si.tr.Delete([2]float64{minLat, minLon}, [2]float64{maxLat, maxLon}, seg)
}

func (si *segmentIndex) search(minLat, minLon, maxLat, maxLon float64) []*datastructure.Segment {
	var out []*datastructure.Segment
	si.tr.Search([2]float64{minLat, minLon}, [2]float64{maxLat, maxLon},
		func(min, max [2]float64, seg *datastructure.Segment) bool {
			out = append(out, seg)
			return true
		})
	return out
}
