package policy

import "testing"

func TestAutomaticTierTable(t *testing.T) {
	testCases := []struct {
		name     string
		speedKmh float64
		want     Tier
	}{
		{name: "walking", speedKmh: 4, want: TIER_CONSERVATIVE},
		{name: "conservative upper bound", speedKmh: 20, want: TIER_CONSERVATIVE},
		{name: "just above conservative", speedKmh: 20.5, want: TIER_BALANCED},
		{name: "city driving", speedKmh: 45, want: TIER_BALANCED},
		{name: "balanced upper bound", speedKmh: 50, want: TIER_BALANCED},
		{name: "suburban driving", speedKmh: 70, want: TIER_AGGRESSIVE},
		{name: "aggressive upper bound", speedKmh: 80, want: TIER_AGGRESSIVE},
		{name: "highway driving", speedKmh: 110, want: TIER_HIGHWAY},
		{name: "very fast", speedKmh: 300, want: TIER_HIGHWAY},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			// fresh selector per case: the first sample dominates the rolling
			// average and no previous tier exists yet.
			s := NewAutomaticSelector()
			got := s.SelectPolicy(tt.speedKmh)
			if got.GetTier() != tt.want {
				t.Errorf("speed %.1f km/h: got %s, want %s",
					tt.speedKmh, got.GetTier(), tt.want)
			}
		})
	}
}

func TestSegmentSelectionTable(t *testing.T) {
	// one shared selector on purpose: segment selection must be a pure
	// function of the input speed.
	s := NewAutomaticSelector()

	testCases := []struct {
		speedKmh float64
		want     Tier
	}{
		{4, TIER_CONSERVATIVE},
		{20, TIER_CONSERVATIVE},
		{20.5, TIER_BALANCED},
		{50, TIER_BALANCED},
		{80, TIER_AGGRESSIVE},
		{110, TIER_HIGHWAY},
	}
	for _, tt := range testCases {
		got := s.SelectPolicyForSegment(tt.speedKmh)
		if got.GetTier() != tt.want {
			t.Errorf("segment at %.1f km/h: got %s, want %s",
				tt.speedKmh, got.GetTier(), tt.want)
		}
	}
}

func TestSegmentSelectionIgnoresSampleHistory(t *testing.T) {
	s := NewAutomaticSelector()

	// a long run of walking-speed samples must not drag down the selection
	// for a segment whose own representative speed is in the highway band.
	for i := 0; i < 8; i++ {
		s.SelectPolicy(4)
	}

	got := s.SelectPolicyForSegment(108)
	if got.GetTier() != TIER_HIGHWAY {
		t.Errorf("segment at 108 km/h selected %s after slow samples, want highway",
			got.GetTier())
	}

	// and the other way round: a fast segment must not push a later slow one.
	got = s.SelectPolicyForSegment(4)
	if got.GetTier() != TIER_CONSERVATIVE {
		t.Errorf("segment at 4 km/h selected %s after a fast segment, want conservative",
			got.GetTier())
	}
}

func TestFreshSelectorDropsHistory(t *testing.T) {
	s := NewAutomaticSelector()
	for i := 0; i < 8; i++ {
		s.SelectPolicy(100)
	}

	got := s.Fresh().SelectPolicy(4)
	if got.GetTier() != TIER_CONSERVATIVE {
		t.Errorf("fresh selector inherited speed history: %s", got.GetTier())
	}

	m := NewManualSelector(TIER_LOSSLESS).Fresh()
	if got := m.SelectPolicyForSegment(110); got.GetTier() != TIER_LOSSLESS {
		t.Errorf("fresh manual selector lost its pinned tier: %s", got.GetTier())
	}
}

func TestManualSelectorPinned(t *testing.T) {
	s := NewManualSelector(TIER_LOSSLESS)
	for _, speed := range []float64{0, 30, 90, 140} {
		got := s.SelectPolicy(speed)
		if got.GetTier() != TIER_LOSSLESS {
			t.Errorf("manual selector moved off the pinned tier at %.0f km/h: %s",
				speed, got.GetTier())
		}
	}
}

func TestHysteresisHoldsTierNearBoundary(t *testing.T) {
	s := NewAutomaticSelector()

	// settle on conservative right at its upper bound.
	for i := 0; i < 8; i++ {
		s.SelectPolicy(20)
	}

	// one sample nudging the average just past the bound stays inside the
	// margin, so the tier must not flip.
	got := s.SelectPolicy(22)
	if got.GetTier() != TIER_CONSERVATIVE {
		t.Errorf("tier flipped inside the hysteresis band: %s", got.GetTier())
	}
}

func TestHysteresisEventuallySwitches(t *testing.T) {
	s := NewAutomaticSelector()

	for i := 0; i < 8; i++ {
		s.SelectPolicy(20)
	}

	// a sustained speed increase must clear the margin and switch the tier.
	var got OptimizationPolicy
	for i := 0; i < 8; i++ {
		got = s.SelectPolicy(35)
	}
	if got.GetTier() != TIER_BALANCED {
		t.Errorf("sustained 35 km/h must settle on balanced, got %s", got.GetTier())
	}
}

func TestSmootherDampsSpike(t *testing.T) {
	s := NewAutomaticSelector()

	for i := 0; i < 8; i++ {
		s.SelectPolicy(10)
	}

	// a single gps speed spike must not drag the tier upward.
	got := s.SelectPolicy(90)
	if got.GetTier() != TIER_CONSERVATIVE {
		t.Errorf("one spike sample flipped the tier to %s", got.GetTier())
	}
}
