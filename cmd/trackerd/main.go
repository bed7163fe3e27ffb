package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/lintang-b-s/Trackerx/pkg/accumulator"
	"github.com/lintang-b-s/Trackerx/pkg/compressor"
	"github.com/lintang-b-s/Trackerx/pkg/http"
	"github.com/lintang-b-s/Trackerx/pkg/http/usecases"
	"github.com/lintang-b-s/Trackerx/pkg/logger"
	"github.com/lintang-b-s/Trackerx/pkg/policy"
	"github.com/lintang-b-s/Trackerx/pkg/store"
	"github.com/lintang-b-s/Trackerx/pkg/util"
	"go.uber.org/zap"
)

var (
	policyMode = flag.String("policy_mode", "auto", "optimization policy mode: auto, or a fixed tier name (lossless/conservative/balanced/aggressive/highway)")
	dataDir    = flag.String("data_dir", "./data/tracks", "directory for trip snapshot files")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	if err := util.ReadConfig(); err != nil {
		logger.Warn("config file not found, using defaults", zap.Error(err))
	}

	var selector *policy.Selector
	if *policyMode == "auto" {
		selector = policy.NewAutomaticSelector()
	} else {
		tier, ok := policy.TierFromName(*policyMode)
		if !ok {
			panic(fmt.Sprintf("unknown policy tier: %s", *policyMode))
		}
		selector = policy.NewManualSelector(tier)
	}

	comp := compressor.New(selector, logger)
	segmentStore := store.New(comp, accumulator.DefaultGateConfig(), logger)

	api := http.NewServer(logger)

	trackingService := usecases.NewTrackingService(logger, segmentStore, *dataDir)
	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api.Use(ctx,
		logger, false, trackingService)

	signal := http.GracefulShutdown()

	logger.Info("Trackerx Trip Recording Server Stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
