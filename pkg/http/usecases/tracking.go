package usecases

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/Trackerx/pkg/accumulator"
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/geo"
	"github.com/lintang-b-s/Trackerx/pkg/store"
	"github.com/lintang-b-s/Trackerx/pkg/util"
	"go.uber.org/zap"
)

/*
TrackingService is the application surface over the segment store: trip
lifecycle, fix ingestion, read-back and snapshot persistence. the optimization
mode (automatic or a pinned tier) lives in the compressor the store was built
with — ordinary configuration state, not app-wide globals.
*/
type TrackingService struct {
	log     *zap.Logger
	store   *store.SegmentStore
	dataDir string
	seq     atomic.Uint64
}

func NewTrackingService(log *zap.Logger, segmentStore *store.SegmentStore, dataDir string) *TrackingService {
	return &TrackingService{
		log:     log,
		store:   segmentStore,
		dataDir: dataDir,
	}
}

// StartTrip creates a trip with one live segment and returns its id.
func (s *TrackingService) StartTrip() (string, error) {
	tripID := fmt.Sprintf("trip-%d-%d", time.Now().UnixMilli(), s.seq.Add(1))
	if _, err := s.store.OpenSegment(tripID); err != nil {
		return "", err
	}
	return tripID, nil
}

// PushFix feeds one raw fix into the trip's live segment. returns whether the
// gates buffered it.
func (s *TrackingService) PushFix(tripID string, f datastructure.Fix) (bool, error) {
	return s.store.Append(tripID, f)
}

// LivePolicy reports the tier currently projected for the trip's live stream,
// so a recording client can surface the active optimization level.
func (s *TrackingService) LivePolicy(tripID string) string {
	return s.store.LivePolicy(tripID)
}

// PauseTrip closes the live segment and compresses it in the background.
// recording can resume immediately.
func (s *TrackingService) PauseTrip(tripID string) error {
	seg, err := s.store.CloseSegment(tripID)
	if err != nil {
		return err
	}
	s.store.CompressAsync(tripID, seg.GetID())
	return nil
}

// ResumeTrip opens a fresh live segment after a pause.
func (s *TrackingService) ResumeTrip(tripID string) error {
	_, err := s.store.OpenSegment(tripID)
	return err
}

/*
StopTrip ends the recording: closes the live segment (if any), waits for its
compression, and writes the snapshot file when a data directory is
configured. earlier segments may still be compressing; the snapshot records
whatever representation each segment has at write time.
*/
func (s *TrackingService) StopTrip(tripID string) error {
	if s.store.LiveState(tripID) == accumulator.STATE_RECORDING {
		seg, err := s.store.CloseSegment(tripID)
		if err != nil {
			return err
		}
		if err := <-s.store.CompressAsync(tripID, seg.GetID()); err != nil {
			// per-segment status; the trip itself survives
			s.log.Warn("final segment compression failed",
				zap.String("trip", tripID), zap.Error(err))
		}
	}

	if s.dataDir == "" {
		return nil
	}
	_, err := s.Snapshot(tripID)
	return err
}

// DeleteTrip drops the trip and cancels all in-flight compressions.
func (s *TrackingService) DeleteTrip(tripID string) error {
	return s.store.DeleteTrip(tripID)
}

// DiscardSegment drops one segment of a trip.
func (s *TrackingService) DiscardSegment(tripID string, segID uint32) error {
	return s.store.DiscardSegment(tripID, segID)
}

// Track returns the reconstituted track in ascending timestamp order plus its
// encoded polyline.
func (s *TrackingService) Track(tripID string) ([]datastructure.Fix, string, error) {
	fixes, err := s.store.ReadAll(tripID)
	if err != nil {
		return nil, "", err
	}
	coords := make([]geo.Coordinate, len(fixes))
	for i, f := range fixes {
		coords[i] = f.Coordinate()
	}
	return fixes, geo.PolylineFromCoords(coords), nil
}

// Segments returns per-segment metadata (status, compression ratio, policy).
func (s *TrackingService) Segments(tripID string) ([]store.SegmentInfo, error) {
	return s.store.Segments(tripID)
}

// Window returns the trip's fixes inside a viewport bounding box.
func (s *TrackingService) Window(tripID string, minLat, minLon, maxLat, maxLon float64) ([]datastructure.Fix, error) {
	if minLat > maxLat || minLon > maxLon {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput,
			"inverted bounding box (%f,%f)-(%f,%f)", minLat, minLon, maxLat, maxLon)
	}
	return s.store.ReadWindow(tripID, minLat, minLon, maxLat, maxLon)
}

// Snapshot persists the trip's segments to a bzip2 snapshot file and returns
// its path.
func (s *TrackingService) Snapshot(tripID string) (string, error) {
	segments, err := s.store.AllSegments(tripID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return "", err
	}
	filename := filepath.Join(s.dataDir, fmt.Sprintf("%s.track.bz2", tripID))
	if err := datastructure.WriteSegments(filename, tripID, segments); err != nil {
		return "", err
	}
	s.log.Info("trip snapshot written",
		zap.String("trip", tripID), zap.String("file", filename))
	return filename, nil
}
