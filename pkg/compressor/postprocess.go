package compressor

import (
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/geo"
	"github.com/lintang-b-s/Trackerx/pkg/policy"
	"github.com/lintang-b-s/Trackerx/pkg/util"
)

/*
postProcess enforces the policy constraints Douglas-Peucker does not cover,
as a post-filter over the keep mask:

 1. force-keep raw points whose direction change is sharper than
    angleThreshold, even when they sit inside the deviation tolerance
 2. thin kept points violating minDistance / minTimeInterval against the
    previously kept point (endpoints and angle-forced points are exempt)
 3. refill gaps wider than maxDistance from the raw buffer, even though the
    geometry between the kept points was flat enough
*/
func postProcess(points []datastructure.Fix, mask []bool, pol policy.OptimizationPolicy) []datastructure.Fix {
	n := len(points)
	if n == 0 {
		return []datastructure.Fix{}
	}
	util.AssertPanic(len(mask) == n, "keep mask out of sync with raw buffer")

	forced := make([]bool, n)
	if pol.AngleThreshold() > 0 {
		for i := 1; i < n-1; i++ {
			turn := geo.TurnAngle(
				points[i-1].GetLat(), points[i-1].GetLon(),
				points[i].GetLat(), points[i].GetLon(),
				points[i+1].GetLat(), points[i+1].GetLon())
			if turn > pol.AngleThreshold() {
				mask[i] = true
				forced[i] = true
			}
		}
	}

	// min spacing pass. walk kept points in order, drop the ones that are too
	// close (in distance and time) to the last survivor.
	lastKept := 0
	for i := 1; i < n-1; i++ {
		if !mask[i] || forced[i] {
			if mask[i] {
				lastKept = i
			}
			continue
		}
		dist := points[i].DistanceM(points[lastKept])
		dt := points[i].GetTimestamp().Sub(points[lastKept].GetTimestamp()).Seconds()
		if dist < pol.MinDistance() || dt < pol.MinTimeInterval() {
			mask[i] = false
			continue
		}
		lastKept = i
	}

	// max spacing pass. when two surviving points are further apart than
	// maxDistance, pull raw points back in to split the gap.
	if pol.MaxDistance() > 0 {
		prev := 0
		for i := 1; i < n; i++ {
			if !mask[i] {
				continue
			}
			refillGap(points, mask, prev, i, pol.MaxDistance())
			prev = i
		}
	}

	kept := 0
	for _, v := range mask {
		if v {
			kept++
		}
	}
	out := make([]datastructure.Fix, 0, kept)
	for i, v := range mask {
		if v {
			out = append(out, points[i])
		}
	}
	return out
}

// refillGap re-keeps the raw point nearest the midpoint of an oversized gap
// and recurses on both halves until no gap exceeds maxDistance.
func refillGap(points []datastructure.Fix, mask []bool, start, end int, maxDistance float64) {
	if end-start < 2 {
		return
	}
	if points[end].DistanceM(points[start]) <= maxDistance {
		return
	}

	midLat, midLon := geo.MidPoint(
		points[start].GetLat(), points[start].GetLon(),
		points[end].GetLat(), points[end].GetLon())

	best := -1
	bestDist := 0.0
	for i := start + 1; i < end; i++ {
		d := geo.HaversineDistanceM(midLat, midLon, points[i].GetLat(), points[i].GetLon())
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best == -1 {
		return
	}
	mask[best] = true
	refillGap(points, mask, start, best, maxDistance)
	refillGap(points, mask, best, end, maxDistance)
}
