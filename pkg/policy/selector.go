package policy

import (
	"math"

	"github.com/lintang-b-s/Trackerx/pkg"
)

type Mode uint8

const (
	MODE_AUTOMATIC Mode = iota
	MODE_MANUAL
)

func (m Mode) String() string {
	if m == MODE_MANUAL {
		return "manual"
	}
	return "automatic"
}

// tierThreshold is one row of the automatic lookup table: the tier applies to
// smoothed speeds up to upperBoundKmh. explicit ordered rows, no float
// equality switching.
type tierThreshold struct {
	upperBoundKmh float64
	tier          Tier
}

var autoThresholds = []tierThreshold{
	{pkg.CONSERVATIVE_MAX_SPEED_KMH, TIER_CONSERVATIVE},
	{pkg.BALANCED_MAX_SPEED_KMH, TIER_BALANCED},
	{pkg.AGGRESSIVE_MAX_SPEED_KMH, TIER_AGGRESSIVE},
	{math.MaxFloat64, TIER_HIGHWAY},
}

/*
Selector picks an optimization policy. manual mode is a constant function.
automatic mode has two paths:

  - SelectPolicyForSegment maps a closed segment's representative speed
    straight through the tier table. the input is already an aggregate over
    the whole buffer, so no smoothing applies and no state is carried between
    calls; each segment is judged on its own speed.
  - SelectPolicy is the per-sample path for live streams: instantaneous
    speeds are smoothed through a rolling average and the previous tier is
    kept until the smoothed speed leaves its band by a margin, so noisy
    samples do not thrash the tier.

SelectPolicy is not safe for concurrent use; each trip owns its own selector
(Fresh hands out new instances). SelectPolicyForSegment touches no state and
may be called from any goroutine.
*/
type Selector struct {
	mode     Mode
	pinned   Tier
	smoother *speedSmoother

	lastTier Tier
	hasLast  bool
}

func NewAutomaticSelector() *Selector {
	return &Selector{
		mode:     MODE_AUTOMATIC,
		smoother: newSpeedSmoother(pkg.SPEED_SMOOTHING_WINDOW),
	}
}

func NewManualSelector(pinned Tier) *Selector {
	return &Selector{
		mode:   MODE_MANUAL,
		pinned: pinned,
	}
}

func (s *Selector) GetMode() Mode {
	return s.mode
}

// Fresh returns a new selector with the same mode and pinned tier but no
// accumulated speed history.
func (s *Selector) Fresh() *Selector {
	if s.mode == MODE_MANUAL {
		return NewManualSelector(s.pinned)
	}
	return NewAutomaticSelector()
}

// SelectPolicyForSegment maps a segment's representative speed (km/h) to a
// policy by direct table lookup, independent of any previously selected tier.
func (s *Selector) SelectPolicyForSegment(speedKmh float64) OptimizationPolicy {
	if s.mode == MODE_MANUAL {
		return ForTier(s.pinned)
	}
	return ForTier(rawLookup(speedKmh))
}

// SelectPolicy maps one instantaneous speed sample (km/h) to a policy,
// smoothed against the samples before it.
func (s *Selector) SelectPolicy(speedKmh float64) OptimizationPolicy {
	if s.mode == MODE_MANUAL {
		return ForTier(s.pinned)
	}

	smoothed := s.smoother.push(speedKmh)
	tier := s.lookupTier(smoothed)
	s.lastTier = tier
	s.hasLast = true
	return ForTier(tier)
}

func (s *Selector) lookupTier(speedKmh float64) Tier {
	candidate := rawLookup(speedKmh)
	if !s.hasLast || candidate == s.lastTier {
		return candidate
	}

	// hysteresis: only leave the current tier once the smoothed speed clears
	// its band by the margin.
	lower, upper := bandOf(s.lastTier)
	if speedKmh > upper+pkg.TIER_BOUNDARY_MARGIN_KMH ||
		speedKmh < lower-pkg.TIER_BOUNDARY_MARGIN_KMH {
		return candidate
	}
	return s.lastTier
}

func rawLookup(speedKmh float64) Tier {
	for _, row := range autoThresholds {
		if speedKmh <= row.upperBoundKmh {
			return row.tier
		}
	}
	return TIER_HIGHWAY
}

func bandOf(t Tier) (lower, upper float64) {
	lower = 0
	for _, row := range autoThresholds {
		if row.tier == t {
			return lower, row.upperBoundKmh
		}
		lower = row.upperBoundKmh
	}
	return 0, math.MaxFloat64
}

// speedSmoother is a fixed-window rolling average over the most recent speed
// samples.
type speedSmoother struct {
	window  int
	samples []float64
	next    int
	filled  bool
	sum     float64
}

func newSpeedSmoother(window int) *speedSmoother {
	return &speedSmoother{
		window:  window,
		samples: make([]float64, window),
	}
}

func (sm *speedSmoother) push(v float64) float64 {
	if sm.filled {
		sm.sum -= sm.samples[sm.next]
	}
	sm.samples[sm.next] = v
	sm.sum += v
	sm.next++
	if sm.next == sm.window {
		sm.next = 0
		sm.filled = true
	}

	if sm.filled {
		return sm.sum / float64(sm.window)
	}
	return sm.sum / float64(sm.next)
}
