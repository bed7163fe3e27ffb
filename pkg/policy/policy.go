package policy

// Tier is an ordered optimization level. tolerances relax monotonically from
// lossless down to highway.
type Tier uint8

const (
	TIER_LOSSLESS Tier = iota
	TIER_CONSERVATIVE
	TIER_BALANCED
	TIER_AGGRESSIVE
	TIER_HIGHWAY
)

func (t Tier) String() string {
	switch t {
	case TIER_LOSSLESS:
		return "lossless"
	case TIER_CONSERVATIVE:
		return "conservative"
	case TIER_BALANCED:
		return "balanced"
	case TIER_AGGRESSIVE:
		return "aggressive"
	case TIER_HIGHWAY:
		return "highway"
	default:
		return "unknown"
	}
}

// OptimizationPolicy is an immutable parameter set for one compression run.
type OptimizationPolicy struct {
	name            string
	tier            Tier
	maxDeviation    float64 // meters. perpendicular-distance tolerance
	minDistance     float64 // meters. floor spacing between retained points
	maxDistance     float64 // meters. ceiling spacing between retained points
	angleThreshold  float64 // degrees. sharper direction changes are always retained
	minTimeInterval float64 // seconds. floor on retained-point temporal spacing
}

func (p OptimizationPolicy) Name() string {
	return p.name
}

func (p OptimizationPolicy) GetTier() Tier {
	return p.tier
}

func (p OptimizationPolicy) MaxDeviation() float64 {
	return p.maxDeviation
}

func (p OptimizationPolicy) MinDistance() float64 {
	return p.minDistance
}

func (p OptimizationPolicy) MaxDistance() float64 {
	return p.maxDistance
}

func (p OptimizationPolicy) AngleThreshold() float64 {
	return p.angleThreshold
}

func (p OptimizationPolicy) MinTimeInterval() float64 {
	return p.minTimeInterval
}

// IsLossless reports whether this policy keeps every gated fix untouched.
func (p OptimizationPolicy) IsLossless() bool {
	return p.tier == TIER_LOSSLESS
}

var tierPolicies = [...]OptimizationPolicy{
	TIER_LOSSLESS: {
		name: "lossless",
		tier: TIER_LOSSLESS,
	},
	TIER_CONSERVATIVE: {
		name:            "conservative",
		tier:            TIER_CONSERVATIVE,
		maxDeviation:    2.0,
		minDistance:     5.0,
		maxDistance:     100.0,
		angleThreshold:  30.0,
		minTimeInterval: 1.0,
	},
	TIER_BALANCED: {
		name:            "balanced",
		tier:            TIER_BALANCED,
		maxDeviation:    5.0,
		minDistance:     10.0,
		maxDistance:     250.0,
		angleThreshold:  45.0,
		minTimeInterval: 2.0,
	},
	TIER_AGGRESSIVE: {
		name:            "aggressive",
		tier:            TIER_AGGRESSIVE,
		maxDeviation:    10.0,
		minDistance:     20.0,
		maxDistance:     500.0,
		angleThreshold:  60.0,
		minTimeInterval: 5.0,
	},
	TIER_HIGHWAY: {
		name:            "highway",
		tier:            TIER_HIGHWAY,
		maxDeviation:    20.0,
		minDistance:     50.0,
		maxDistance:     1000.0,
		angleThreshold:  75.0,
		minTimeInterval: 10.0,
	},
}

// ForTier returns the immutable policy value for a tier.
func ForTier(t Tier) OptimizationPolicy {
	if int(t) >= len(tierPolicies) {
		return tierPolicies[TIER_BALANCED]
	}
	return tierPolicies[t]
}

// Tiers lists every tier in ascending aggressiveness order.
func Tiers() []Tier {
	return []Tier{TIER_LOSSLESS, TIER_CONSERVATIVE, TIER_BALANCED, TIER_AGGRESSIVE, TIER_HIGHWAY}
}

// TierFromName maps a tier name back to its tier. second result is false for
// unknown names.
func TierFromName(name string) (Tier, bool) {
	for _, t := range Tiers() {
		if t.String() == name {
			return t, true
		}
	}
	return TIER_BALANCED, false
}
