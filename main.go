package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lintang-b-s/Trackerx/pkg/accumulator"
	"github.com/lintang-b-s/Trackerx/pkg/compressor"
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/geo"
	"github.com/lintang-b-s/Trackerx/pkg/logger"
	"github.com/lintang-b-s/Trackerx/pkg/policy"
	"github.com/lintang-b-s/Trackerx/pkg/store"
)

func main() {
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	comp := compressor.New(policy.NewAutomaticSelector(), log)
	segmentStore := store.New(comp, accumulator.DefaultGateConfig(), log)

	tripID := "demo-trip"
	if _, err := segmentStore.OpenSegment(tripID); err != nil {
		panic(err)
	}

	lat, lon := -7.7672, 110.3785
	start := time.Now()
	for i := 0; i < 300; i++ {
		lat, lon = geo.GetDestinationPoint(lat, lon, 45.0, 0.01)
		fix := datastructure.NewFix(lat, lon, 120, 10.0, 5, 8, start.Add(time.Duration(i)*time.Second))
		if _, err := segmentStore.Append(tripID, fix); err != nil {
			panic(err)
		}
	}

	seg, err := segmentStore.CloseSegment(tripID)
	if err != nil {
		panic(err)
	}
	if err := segmentStore.CompressSegment(context.Background(), tripID, seg.GetID()); err != nil {
		panic(err)
	}

	segments, err := segmentStore.AllSegments(tripID)
	if err != nil {
		panic(err)
	}
	if err := datastructure.WriteSegments("./data/demo_trip.track.bz2", tripID, segments); err != nil {
		panic(err)
	}
	readTripID, readSegments, err := datastructure.ReadSegments("./data/demo_trip.track.bz2")
	if err != nil {
		panic(err)
	}
	fmt.Printf("trip %s: wrote %d segments, read back %d, ratio %.3f\n",
		readTripID, len(segments), len(readSegments), seg.GetCompressionRatio())
}
