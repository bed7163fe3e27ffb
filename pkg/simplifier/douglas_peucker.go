package simplifier

import (
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/geo"
)

// chords shorter than this are treated as degenerate (duplicate endpoints).
const zeroChordM = 1e-6

/*
Simplify reduces an ordered fix sequence with recursive perpendicular-distance
reduction (Douglas-Peucker), epsilon in meters. first and last points are kept
unconditionally. deterministic and side-effect free: the input slice is never
mutated and the result is freshly allocated.

comparisons are strict (> epsilon), so a point exactly epsilon away from the
chord is discarded.
*/
func Simplify(points []datastructure.Fix, epsilon float64) []datastructure.Fix {
	if len(points) < 3 {
		out := make([]datastructure.Fix, len(points))
		copy(out, points)
		return out
	}

	mask := KeepMask(points, epsilon)

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

/*
KeepMask runs the reduction and returns the keep decision per input index.
exposed separately so the compressor can union the geometric mask with its own
angle/spacing constraints before materializing the output.

uses an explicit stack instead of recursion; same O(n^2) worst case, which is
tolerable at the thousands-of-points-per-segment scale this engine sees.
*/
func KeepMask(points []datastructure.Fix, epsilon float64) []bool {
	mask := make([]bool, len(points))
	if len(points) == 0 {
		return mask
	}
	mask[0] = true
	mask[len(points)-1] = true
	if len(points) < 3 {
		return mask
	}

	var stack []int
	stack = append(stack, 0, len(points)-1)

	for len(stack) > 0 {
		start := stack[len(stack)-2]
		end := stack[len(stack)-1]

		a := points[start].Coordinate()
		b := points[end].Coordinate()

		maxDist := 0.0
		maxIndex := 0

		if geo.HaversineDistanceM(a.Lat, a.Lon, b.Lat, b.Lon) <= zeroChordM {
			// degenerate chord: both anchors coincide, fall back to radial
			// distance from the single anchor point.
			for i := start + 1; i < end; i++ {
				dist := geo.HaversineDistanceM(a.Lat, a.Lon, points[i].GetLat(), points[i].GetLon())
				if dist > maxDist {
					maxDist = dist
					maxIndex = i
				}
			}
		} else {
			for i := start + 1; i < end; i++ {
				dist := geo.PointLinePerpendicularDistance(a, b, points[i].Coordinate())
				if dist > maxDist {
					maxDist = dist
					maxIndex = i
				}
			}
		}

		if maxDist > epsilon {
			mask[maxIndex] = true

			stack[len(stack)-1] = maxIndex
			stack = append(stack, maxIndex, end)
		} else {
			stack = stack[:len(stack)-2]
		}
	}

	return mask
}

// MaxDeviationM returns the largest perpendicular distance (meters) of any
// point of the original sequence to the polyline formed by the simplified one.
// used by tests to check the tolerance bound.
func MaxDeviationM(original, simplified []datastructure.Fix) float64 {
	if len(simplified) < 2 {
		return 0
	}
	maxDist := 0.0
	j := 0
	for _, p := range original {
		// advance the chord window so p's timestamp falls inside it
		for j < len(simplified)-2 &&
			p.GetTimestamp().After(simplified[j+1].GetTimestamp()) {
			j++
		}
		a := simplified[j].Coordinate()
		b := simplified[j+1].Coordinate()
		var d float64
		if geo.HaversineDistanceM(a.Lat, a.Lon, b.Lat, b.Lon) <= zeroChordM {
			d = geo.HaversineDistanceM(a.Lat, a.Lon, p.GetLat(), p.GetLon())
		} else {
			d = geo.PointLinePerpendicularDistance(a, b, p.Coordinate())
		}
		if d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}
