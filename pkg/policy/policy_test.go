package policy

import "testing"

func TestTierToleranceOrdering(t *testing.T) {
	// tolerances must relax monotonically from conservative down to highway.
	tiers := []Tier{TIER_CONSERVATIVE, TIER_BALANCED, TIER_AGGRESSIVE, TIER_HIGHWAY}
	for i := 1; i < len(tiers); i++ {
		prev := ForTier(tiers[i-1])
		cur := ForTier(tiers[i])

		if cur.MaxDeviation() <= prev.MaxDeviation() {
			t.Errorf("%s maxDeviation %.1f not looser than %s %.1f",
				cur.Name(), cur.MaxDeviation(), prev.Name(), prev.MaxDeviation())
		}
		if cur.MinDistance() <= prev.MinDistance() {
			t.Errorf("%s minDistance %.1f not looser than %s %.1f",
				cur.Name(), cur.MinDistance(), prev.Name(), prev.MinDistance())
		}
		if cur.MaxDistance() <= prev.MaxDistance() {
			t.Errorf("%s maxDistance %.1f not looser than %s %.1f",
				cur.Name(), cur.MaxDistance(), prev.Name(), prev.MaxDistance())
		}
		if cur.AngleThreshold() <= prev.AngleThreshold() {
			t.Errorf("%s angleThreshold %.1f not looser than %s %.1f",
				cur.Name(), cur.AngleThreshold(), prev.Name(), prev.AngleThreshold())
		}
		if cur.MinTimeInterval() <= prev.MinTimeInterval() {
			t.Errorf("%s minTimeInterval %.1f not looser than %s %.1f",
				cur.Name(), cur.MinTimeInterval(), prev.Name(), prev.MinTimeInterval())
		}
	}
}

func TestLosslessPolicy(t *testing.T) {
	p := ForTier(TIER_LOSSLESS)
	if !p.IsLossless() {
		t.Error("lossless tier must report IsLossless")
	}
	if ForTier(TIER_BALANCED).IsLossless() {
		t.Error("balanced tier must not report IsLossless")
	}
}

func TestTierFromName(t *testing.T) {
	for _, tier := range Tiers() {
		got, ok := TierFromName(tier.String())
		if !ok || got != tier {
			t.Errorf("TierFromName(%q) = %v, %v", tier.String(), got, ok)
		}
	}
	if _, ok := TierFromName("warp-speed"); ok {
		t.Error("unknown tier name must not resolve")
	}
}
