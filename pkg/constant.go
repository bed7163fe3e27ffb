package pkg

// automatic tier selection boundaries. speed in km/h
const (
	CONSERVATIVE_MAX_SPEED_KMH = 20.0
	BALANCED_MAX_SPEED_KMH     = 50.0
	AGGRESSIVE_MAX_SPEED_KMH   = 80.0

	SPEED_SMOOTHING_WINDOW   = 8
	TIER_BOUNDARY_MARGIN_KMH = 2.0
)

// live accumulator gates
const (
	MIN_FIX_INTERVAL_SECOND = 1.0
	MAX_FIX_INTERVAL_SECOND = 30.0
	NEGLIGIBLE_DISTANCE_M   = 2.0
	NEGLIGIBLE_BEARING_DEG  = 5.0
)

const (
	MPS_TO_KMH = 3.6

	MIN_LATITUDE  = -90.0
	MAX_LATITUDE  = 90.0
	MIN_LONGITUDE = -180.0
	MAX_LONGITUDE = 180.0
)

const (
	DEBUG = false
)
