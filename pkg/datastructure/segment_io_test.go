package datastructure

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	tripID := "trip-snapshot"

	compressed := NewLiveSegment(tripID, 0)
	for i := 0; i < 5; i++ {
		require.NoError(t, compressed.AppendFix(
			NewFix(-7.7672+float64(i)*0.0003, 110.3785+float64(i)*0.0001,
				112.5+float64(i), 3.71, 4.2, 8.9,
				testStart.Add(time.Duration(i)*5*time.Second))))
	}
	require.NoError(t, compressed.Close())
	require.True(t, compressed.MarkCompressing())
	compressed.SwapCompressed(compressed.Points()[:3], 0.4, 5, "balanced")
	compressed.BumpGeneration()

	closed := NewLiveSegment(tripID, 1)
	require.NoError(t, closed.AppendFix(
		NewFix(-7.76, 110.38, 100, -1, 5, 8, testStart.Add(time.Hour))))
	require.NoError(t, closed.Close())

	empty := NewLiveSegment(tripID, 2)
	require.NoError(t, empty.Close())

	path := filepath.Join(t.TempDir(), "snapshot.track.bz2")
	require.NoError(t, WriteSegments(path, tripID, []*Segment{compressed, closed, empty}))

	gotTripID, got, err := ReadSegments(path)
	require.NoError(t, err)
	assert.Equal(t, tripID, gotTripID)
	require.Len(t, got, 3)

	assert.Equal(t, uint32(0), got[0].GetID())
	assert.Equal(t, SEGMENT_COMPRESSED, got[0].Status())
	assert.Equal(t, uint64(1), got[0].Generation())
	assert.Equal(t, 5, got[0].GetOriginalPointCount())
	assert.Equal(t, 0.4, got[0].GetCompressionRatio())
	assert.Equal(t, "balanced", got[0].GetPolicyUsed())
	require.Equal(t, 3, got[0].NumPoints())
	for i, p := range got[0].Points() {
		orig := compressed.Points()[i]
		assert.Equal(t, orig.GetLat(), p.GetLat())
		assert.Equal(t, orig.GetLon(), p.GetLon())
		assert.Equal(t, orig.GetAltitude(), p.GetAltitude())
		assert.Equal(t, orig.GetSpeed(), p.GetSpeed())
		assert.Equal(t, orig.GetHorizontalAccuracy(), p.GetHorizontalAccuracy())
		assert.Equal(t, orig.GetVerticalAccuracy(), p.GetVerticalAccuracy())
		assert.True(t, orig.GetTimestamp().Equal(p.GetTimestamp()))
	}
	assert.True(t, compressed.GetStartTime().Equal(got[0].GetStartTime()))
	assert.True(t, compressed.GetEndTime().Equal(got[0].GetEndTime()))

	assert.Equal(t, SEGMENT_CLOSED, got[1].Status())
	assert.Equal(t, 1, got[1].NumPoints())
	assert.Equal(t, "", got[1].GetPolicyUsed())
	assert.False(t, got[1].Points()[0].HasSpeed())

	assert.Equal(t, SEGMENT_CLOSED, got[2].Status())
	assert.Equal(t, 0, got[2].NumPoints())
}
