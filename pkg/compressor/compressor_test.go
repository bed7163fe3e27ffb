package compressor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/geo"
	"github.com/lintang-b-s/Trackerx/pkg/policy"
	"go.uber.org/zap"
)

var testStart = time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC)

func manualCompressor(tier policy.Tier) *Compressor {
	return New(policy.NewManualSelector(tier), zap.NewNop())
}

func fixAtStep(lat, lon, speedMps float64, step int, stepInterval time.Duration) datastructure.Fix {
	return datastructure.NewFix(lat, lon, 100, speedMps, 5, 8,
		testStart.Add(time.Duration(step)*stepInterval))
}

// wavyTrack heads north with a sinusoidal lateral wobble, one fix per
// interval. amplitude controls how far the wobble deviates from the chord.
func wavyTrack(n int, stepM, amplitudeM, speedMps float64, interval time.Duration) []datastructure.Fix {
	points := make([]datastructure.Fix, 0, n)
	lat, lon := -7.7672, 110.3785
	for i := 0; i < n; i++ {
		offset := amplitudeM * math.Sin(float64(i)/3.0)
		pLat, pLon := lat, lon
		if offset != 0 {
			bearing := 90.0
			if offset < 0 {
				bearing = 270.0
				offset = -offset
			}
			pLat, pLon = geo.GetDestinationPoint(lat, lon, bearing, offset/1000.0)
		}
		points = append(points, fixAtStep(pLat, pLon, speedMps, i, interval))
		lat, lon = geo.GetDestinationPoint(lat, lon, 0, stepM/1000.0)
	}
	return points
}

func TestTierRetentionOrdering(t *testing.T) {
	// the same slow wobbly buffer must survive a conservative pass with at
	// least as many points as a highway pass.
	points := wavyTrack(500, 8, 12, 1.2, 2*time.Second)

	conservative, err := manualCompressor(policy.TIER_CONSERVATIVE).Compress(context.Background(), points)
	if err != nil {
		t.Fatalf("conservative: %v", err)
	}
	highway, err := manualCompressor(policy.TIER_HIGHWAY).Compress(context.Background(), points)
	if err != nil {
		t.Fatalf("highway: %v", err)
	}

	if len(conservative.Points) < len(highway.Points) {
		t.Errorf("conservative kept %d points, fewer than highway's %d",
			len(conservative.Points), len(highway.Points))
	}
	if highway.CompressionRatio < conservative.CompressionRatio {
		t.Errorf("highway ratio %.3f below conservative ratio %.3f",
			highway.CompressionRatio, conservative.CompressionRatio)
	}
}

func TestSegmentPolicyIndependentOfEarlierSegments(t *testing.T) {
	comp := New(policy.NewAutomaticSelector(), zap.NewNop())

	// a run of walking-speed segments, with empty segments in between, all
	// through the same compressor.
	for i := 0; i < 8; i++ {
		slow, err := comp.Compress(context.Background(), wavyTrack(50, 2, 1, 1.1, 2*time.Second))
		if err != nil {
			t.Fatalf("slow segment %d: %v", i, err)
		}
		if slow.PolicyUsed != "conservative" {
			t.Fatalf("slow segment %d compressed as %s, want conservative", i, slow.PolicyUsed)
		}
		if _, err := comp.Compress(context.Background(), nil); err != nil {
			t.Fatalf("empty segment %d: %v", i, err)
		}
	}

	// a segment whose own representative speed is 108 km/h must get the
	// highway policy regardless of what was compressed before it.
	fast, err := comp.Compress(context.Background(), wavyTrack(200, 60, 2, 30, 2*time.Second))
	if err != nil {
		t.Fatalf("fast segment: %v", err)
	}
	if fast.PolicyUsed != "highway" {
		t.Errorf("fast segment compressed as %s, want highway", fast.PolicyUsed)
	}
}

func TestEmptyBuffer(t *testing.T) {
	res, err := manualCompressor(policy.TIER_BALANCED).Compress(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty buffer must not error: %v", err)
	}
	if len(res.Points) != 0 || res.OriginalPointCount != 0 {
		t.Errorf("want empty result, got %d points (original %d)",
			len(res.Points), res.OriginalPointCount)
	}
	if res.CompressionRatio != 0 {
		t.Errorf("empty buffer ratio must be 0, got %.3f", res.CompressionRatio)
	}
	if res.PolicyUsed == "" {
		t.Error("policy name must still be recorded")
	}
}

func TestLosslessKeepsEverything(t *testing.T) {
	points := wavyTrack(100, 30, 12, 15, 2*time.Second)

	res, err := manualCompressor(policy.TIER_LOSSLESS).Compress(context.Background(), points)
	if err != nil {
		t.Fatalf("lossless: %v", err)
	}
	if len(res.Points) != len(points) {
		t.Fatalf("lossless dropped points: %d -> %d", len(points), len(res.Points))
	}
	for i := range points {
		if res.Points[i] != points[i] {
			t.Fatalf("lossless altered point %d", i)
		}
	}
	if res.CompressionRatio != 0 {
		t.Errorf("lossless ratio must be 0, got %.3f", res.CompressionRatio)
	}
}

func TestCancellation(t *testing.T) {
	points := wavyTrack(500, 30, 12, 15, 2*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := manualCompressor(policy.TIER_BALANCED).Compress(ctx, points)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled compression must return ctx.Err(), got %v", err)
	}
	if res != nil {
		t.Error("cancelled compression must not produce a partial result")
	}
}

func TestCompressionRatioDefinition(t *testing.T) {
	points := wavyTrack(200, 30, 12, 15, 2*time.Second)

	res, err := manualCompressor(policy.TIER_AGGRESSIVE).Compress(context.Background(), points)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	want := 1.0 - float64(len(res.Points))/float64(len(points))
	if math.Abs(res.CompressionRatio-want) > 1e-12 {
		t.Errorf("ratio %.6f does not match 1-|out|/|in| = %.6f", res.CompressionRatio, want)
	}
	if res.OriginalPointCount != len(points) {
		t.Errorf("original count %d, want %d", res.OriginalPointCount, len(points))
	}
}

func TestMaxDistanceGapRefill(t *testing.T) {
	// dead straight run: geometry alone would collapse it to two endpoints
	// 3km apart, so the spacing ceiling has to pull raw points back in.
	points := make([]datastructure.Fix, 0, 16)
	lat, lon := -7.7672, 110.3785
	for i := 0; i < 16; i++ {
		points = append(points, fixAtStep(lat, lon, 28, i, 15*time.Second))
		lat, lon = geo.GetDestinationPoint(lat, lon, 0, 0.2)
	}

	pol := policy.ForTier(policy.TIER_HIGHWAY)
	res, err := manualCompressor(policy.TIER_HIGHWAY).Compress(context.Background(), points)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(res.Points) < 3 {
		t.Fatalf("refill must keep interior points of an oversized gap, got %d", len(res.Points))
	}
	for i := 1; i < len(res.Points); i++ {
		gap := res.Points[i].DistanceM(res.Points[i-1])
		if gap > pol.MaxDistance()*1.01 {
			t.Errorf("gap %d of %.0fm exceeds the %.0fm ceiling", i, gap, pol.MaxDistance())
		}
	}
}

func TestSharpCornerForcedKeep(t *testing.T) {
	// a 90 degree corner whose deviation stays inside the highway tolerance:
	// geometry would drop it, the angle constraint must keep it.
	lat, lon := -7.7672, 110.3785
	cornerLat, cornerLon := geo.GetDestinationPoint(lat, lon, 90, 0.02)
	endLat, endLon := geo.GetDestinationPoint(cornerLat, cornerLon, 0, 0.02)

	points := []datastructure.Fix{
		fixAtStep(lat, lon, 2, 0, 15*time.Second),
		fixAtStep(cornerLat, cornerLon, 2, 1, 15*time.Second),
		fixAtStep(endLat, endLon, 2, 2, 15*time.Second),
	}

	res, err := manualCompressor(policy.TIER_HIGHWAY).Compress(context.Background(), points)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	found := false
	for _, p := range res.Points {
		if p == points[1] {
			found = true
		}
	}
	if !found {
		t.Error("corner sharper than the angle threshold must be retained")
	}
}
