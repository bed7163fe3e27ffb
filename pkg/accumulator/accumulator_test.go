package accumulator

import (
	"testing"
	"time"

	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/geo"
	"github.com/lintang-b-s/Trackerx/pkg/util"
	"go.uber.org/zap"
)

var testStart = time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC)

func newRecording(t *testing.T) *Accumulator {
	t.Helper()
	acc := New("trip-test", DefaultGateConfig(), zap.NewNop())
	if err := acc.Start(datastructure.NewLiveSegment("trip-test", 0)); err != nil {
		t.Fatalf("start: %v", err)
	}
	return acc
}

func fixAtOffset(lat, lon float64, offset time.Duration) datastructure.Fix {
	return datastructure.NewFix(lat, lon, 100, 5, 5, 8, testStart.Add(offset))
}

func TestFirstFixAlwaysAccepted(t *testing.T) {
	acc := newRecording(t)

	ok, err := acc.Ingest(fixAtOffset(-7.7672, 110.3785, 0))
	if err != nil || !ok {
		t.Fatalf("first fix must be accepted, got ok=%v err=%v", ok, err)
	}
}

func TestMinIntervalGateRejects(t *testing.T) {
	acc := newRecording(t)
	lat, lon := -7.7672, 110.3785

	acc.Ingest(fixAtOffset(lat, lon, 0))

	// 500ms later and 10m away: under the interval floor, rejected silently.
	lat2, lon2 := geo.GetDestinationPoint(lat, lon, 0, 0.01)
	ok, err := acc.Ingest(fixAtOffset(lat2, lon2, 500*time.Millisecond))
	if err != nil {
		t.Fatalf("gate rejection must not error: %v", err)
	}
	if ok {
		t.Error("fix under the minimum interval must be rejected")
	}
}

func TestMaxIntervalForceAccept(t *testing.T) {
	acc := newRecording(t)
	lat, lon := -7.7672, 110.3785

	acc.Ingest(fixAtOffset(lat, lon, 0))

	// 31s of silence at the same spot: distance is negligible but the gap
	// ceiling forces the accept.
	ok, err := acc.Ingest(fixAtOffset(lat, lon, 31*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("fix after the maximum interval must be force-accepted")
	}
}

func TestStationaryNoiseRejected(t *testing.T) {
	acc := newRecording(t)
	lat, lon := -7.7672, 110.3785

	// establish a northward heading with two accepted fixes 10m apart.
	acc.Ingest(fixAtOffset(lat, lon, 0))
	lat2, lon2 := geo.GetDestinationPoint(lat, lon, 0, 0.01)
	if ok, _ := acc.Ingest(fixAtOffset(lat2, lon2, 5*time.Second)); !ok {
		t.Fatal("setup fix not accepted")
	}

	// 1m further north: negligible distance, negligible bearing change.
	lat3, lon3 := geo.GetDestinationPoint(lat2, lon2, 0, 0.001)
	ok, err := acc.Ingest(fixAtOffset(lat3, lon3, 10*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("stationary jitter must be rejected")
	}
}

func TestSharpTurnKeptDespiteNegligibleDistance(t *testing.T) {
	acc := newRecording(t)
	lat, lon := -7.7672, 110.3785

	acc.Ingest(fixAtOffset(lat, lon, 0))
	lat2, lon2 := geo.GetDestinationPoint(lat, lon, 0, 0.01)
	if ok, _ := acc.Ingest(fixAtOffset(lat2, lon2, 5*time.Second)); !ok {
		t.Fatal("setup fix not accepted")
	}

	// 1m to the east after heading north: tiny step, 90 degree turn.
	lat3, lon3 := geo.GetDestinationPoint(lat2, lon2, 90, 0.001)
	ok, err := acc.Ingest(fixAtOffset(lat3, lon3, 10*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("a heading change past the bearing threshold must be kept")
	}
}

func TestInvalidFixMidStream(t *testing.T) {
	acc := newRecording(t)
	lat, lon := -7.7672, 110.3785

	acc.Ingest(fixAtOffset(lat, lon, 0))

	_, err := acc.Ingest(fixAtOffset(95.0, lon, 5*time.Second))
	if util.ErrorCode(err) != util.ErrInvalidFix {
		t.Fatalf("out-of-range latitude must report ErrInvalidFix, got %v", err)
	}

	// recording continues: the next valid fix is still ingested.
	lat2, lon2 := geo.GetDestinationPoint(lat, lon, 0, 0.01)
	ok, err := acc.Ingest(fixAtOffset(lat2, lon2, 10*time.Second))
	if err != nil || !ok {
		t.Errorf("stream must survive an invalid fix, got ok=%v err=%v", ok, err)
	}
}

func TestNonMonotonicTimestampRejected(t *testing.T) {
	acc := newRecording(t)
	lat, lon := -7.7672, 110.3785

	acc.Ingest(fixAtOffset(lat, lon, 10*time.Second))

	lat2, lon2 := geo.GetDestinationPoint(lat, lon, 0, 0.01)
	_, err := acc.Ingest(fixAtOffset(lat2, lon2, 5*time.Second))
	if util.ErrorCode(err) != util.ErrInvalidFix {
		t.Errorf("backwards timestamp must report ErrInvalidFix, got %v", err)
	}

	_, err = acc.Ingest(fixAtOffset(lat2, lon2, 10*time.Second))
	if util.ErrorCode(err) != util.ErrInvalidFix {
		t.Errorf("equal timestamp must report ErrInvalidFix, got %v", err)
	}
}

func TestDoubleStartIsIntegrityViolation(t *testing.T) {
	acc := newRecording(t)

	err := acc.Start(datastructure.NewLiveSegment("trip-test", 1))
	if util.ErrorCode(err) != util.ErrSegmentIntegrity {
		t.Errorf("starting over a live segment must report ErrSegmentIntegrity, got %v", err)
	}
}

func TestIngestWhileIdle(t *testing.T) {
	acc := New("trip-test", DefaultGateConfig(), zap.NewNop())

	_, err := acc.Ingest(fixAtOffset(-7.7672, 110.3785, 0))
	if util.ErrorCode(err) != util.ErrSegmentIntegrity {
		t.Errorf("ingest before start must report ErrSegmentIntegrity, got %v", err)
	}
}

func TestCloseFreezesSegment(t *testing.T) {
	acc := newRecording(t)
	lat, lon := -7.7672, 110.3785
	acc.Ingest(fixAtOffset(lat, lon, 0))

	seg, err := acc.Close()
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if seg.NumPoints() != 1 {
		t.Errorf("want 1 buffered point, got %d", seg.NumPoints())
	}
	if acc.GetState() != STATE_CLOSED {
		t.Errorf("want closed state, got %s", acc.GetState())
	}

	if _, err := acc.Close(); err == nil {
		t.Error("double close must fail")
	}

	// the accumulator can start a new segment right away.
	if err := acc.Start(datastructure.NewLiveSegment("trip-test", 1)); err != nil {
		t.Errorf("restart after close: %v", err)
	}
}
