package accumulator

import (
	"time"

	"github.com/lintang-b-s/Trackerx/pkg"
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/geo"
	"github.com/lintang-b-s/Trackerx/pkg/util"
	"go.uber.org/zap"
)

type State uint8

const (
	STATE_IDLE State = iota
	STATE_RECORDING
	STATE_CLOSED
)

func (s State) String() string {
	switch s {
	case STATE_RECORDING:
		return "recording"
	case STATE_CLOSED:
		return "closed"
	default:
		return "idle"
	}
}

// GateConfig are the lightweight ingestion gates applied before a fix is
// buffered. they bound live memory and keep pathological input away from the
// simplifier.
type GateConfig struct {
	// MinInterval rejects bursty/duplicate fixes arriving faster than this.
	MinInterval time.Duration
	// MaxInterval force-accepts a fix after this much silence, so long gaps
	// are never silently merged away.
	MaxInterval time.Duration
	// NegligibleDistanceMeters and NegligibleBearingDegrees together suppress
	// stationary noise: a fix is rejected only when both are under threshold.
	NegligibleDistanceMeters float64
	NegligibleBearingDegrees float64
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinInterval:              time.Duration(pkg.MIN_FIX_INTERVAL_SECOND * float64(time.Second)),
		MaxInterval:              time.Duration(pkg.MAX_FIX_INTERVAL_SECOND * float64(time.Second)),
		NegligibleDistanceMeters: pkg.NEGLIGIBLE_DISTANCE_M,
		NegligibleBearingDegrees: pkg.NEGLIGIBLE_BEARING_DEG,
	}
}

/*
Accumulator owns the live segment of one recording trip. fixes are processed
strictly in arrival order, synchronously with delivery; closing a segment
hands its frozen buffer over and the accumulator may start a new one
immediately, without waiting for compression of the previous segment.

not safe for concurrent use on its own; the store serializes access.
*/
type Accumulator struct {
	log   *zap.Logger
	trip  string
	gates GateConfig

	state State
	seg   *datastructure.Segment

	lastAccepted datastructure.Fix
	prevAccepted datastructure.Fix
	numAccepted  int
	numRejected  int
}

func New(tripID string, gates GateConfig, log *zap.Logger) *Accumulator {
	return &Accumulator{
		log:   log,
		trip:  tripID,
		gates: gates,
		state: STATE_IDLE,
	}
}

func (a *Accumulator) GetState() State {
	return a.state
}

func (a *Accumulator) GetTripID() string {
	return a.trip
}

// Start attaches a fresh live segment. starting while another segment is
// still recording is a contract violation and escalates to the caller.
func (a *Accumulator) Start(seg *datastructure.Segment) error {
	if a.state == STATE_RECORDING {
		return util.WrapErrorf(nil, util.ErrSegmentIntegrity,
			"segment %d opened while segment %d is still live for trip %s",
			seg.GetID(), a.seg.GetID(), a.trip)
	}
	a.seg = seg
	a.state = STATE_RECORDING
	a.numAccepted = 0
	a.numRejected = 0
	return nil
}

/*
Ingest evaluates one raw fix against the gates and buffers it when accepted.
returns (false, nil) for a gate rejection and (false, err) for an invalid fix;
both leave the buffered sequence untouched and recording continues.
*/
func (a *Accumulator) Ingest(f datastructure.Fix) (bool, error) {
	if a.state != STATE_RECORDING {
		return false, util.WrapErrorf(nil, util.ErrSegmentIntegrity,
			"fix ingested while trip %s is %s", a.trip, a.state)
	}

	if err := f.Validate(); err != nil {
		a.log.Warn("rejecting invalid fix",
			zap.String("trip", a.trip), zap.Error(err))
		return false, err
	}

	if a.numAccepted > 0 && !f.GetTimestamp().After(a.lastAccepted.GetTimestamp()) {
		err := util.WrapErrorf(nil, util.ErrInvalidFix,
			"non-monotonic timestamp %s (last buffered %s)",
			f.GetTimestamp(), a.lastAccepted.GetTimestamp())
		a.log.Warn("rejecting invalid fix",
			zap.String("trip", a.trip), zap.Error(err))
		return false, err
	}

	// the first fix of a segment is always accepted.
	if a.numAccepted > 0 && !a.accept(f) {
		a.numRejected++
		return false, nil
	}

	if err := a.seg.AppendFix(f); err != nil {
		return false, err
	}
	a.prevAccepted = a.lastAccepted
	a.lastAccepted = f
	a.numAccepted++
	return true, nil
}

func (a *Accumulator) accept(f datastructure.Fix) bool {
	elapsed := f.GetTimestamp().Sub(a.lastAccepted.GetTimestamp())

	if elapsed > a.gates.MaxInterval {
		return true
	}
	if elapsed < a.gates.MinInterval {
		return false
	}

	// equirectangular distance: consecutive fixes are meters apart, where the
	// projection error is negligible and it beats haversine on the hot path.
	dist := f.FastDistanceM(a.lastAccepted)
	if dist >= a.gates.NegligibleDistanceMeters {
		return true
	}

	// distance is negligible; still keep the fix if the heading turned.
	if a.numAccepted < 2 {
		return false
	}
	inBearing := geo.BearingTo(a.prevAccepted.GetLat(), a.prevAccepted.GetLon(),
		a.lastAccepted.GetLat(), a.lastAccepted.GetLon())
	outBearing := geo.BearingTo(a.lastAccepted.GetLat(), a.lastAccepted.GetLon(),
		f.GetLat(), f.GetLon())
	return geo.BearingDiff(inBearing, outBearing) >= a.gates.NegligibleBearingDegrees
}

// Close freezes the live segment and returns it. the accumulator can start a
// new segment right away.
func (a *Accumulator) Close() (*datastructure.Segment, error) {
	if a.state != STATE_RECORDING {
		return nil, util.WrapErrorf(nil, util.ErrSegmentIntegrity,
			"close while trip %s is %s", a.trip, a.state)
	}
	if err := a.seg.Close(); err != nil {
		return nil, err
	}

	seg := a.seg
	a.seg = nil
	a.state = STATE_CLOSED

	a.log.Info("segment closed",
		zap.String("trip", a.trip),
		zap.Uint32("segment", seg.GetID()),
		zap.Int("buffered", seg.NumPoints()),
		zap.Int("gateRejected", a.numRejected))
	return seg, nil
}
