package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/lintang-b-s/Trackerx/pkg"
	"github.com/lintang-b-s/Trackerx/pkg/accumulator"
	"github.com/lintang-b-s/Trackerx/pkg/compressor"
	"github.com/lintang-b-s/Trackerx/pkg/concurrent"
	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/geo"
	"github.com/lintang-b-s/Trackerx/pkg/logger"
	"github.com/lintang-b-s/Trackerx/pkg/policy"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// movementProfile describes one synthetic walk over the map: a nominal speed,
// how much the heading wanders per fix, and how noisy the gps is.
type movementProfile struct {
	name             string
	speedKmh         float64
	headingJitterDeg float64
	gpsNoiseM        float64
	numFixes         int
}

var profiles = []movementProfile{
	{name: "stroll", speedKmh: 4, headingJitterDeg: 25, gpsNoiseM: 4, numFixes: 600},
	{name: "run", speedKmh: 12, headingJitterDeg: 15, gpsNoiseM: 3, numFixes: 600},
	{name: "city_cycle", speedKmh: 22, headingJitterDeg: 20, gpsNoiseM: 5, numFixes: 900},
	{name: "suburban_drive", speedKmh: 60, headingJitterDeg: 8, gpsNoiseM: 6, numFixes: 1200},
	{name: "highway_drive", speedKmh: 110, headingJitterDeg: 2, gpsNoiseM: 8, numFixes: 1800},
}

var (
	seed       = flag.Uint64("seed", 42, "rng seed for the synthetic tracks")
	numWorkers = flag.Int("workers", 5, "number of compression workers")
)

type compressJob struct {
	profile movementProfile
	tier    policy.Tier
	points  []datastructure.Fix
}

type compressOutcome struct {
	profile string
	tier    policy.Tier
	in      int
	out     int
	ratio   float64
	err     error
}

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	rng := rand.New(rand.NewSource(*seed))

	pool := concurrent.NewWorkerPool[compressJob, compressOutcome](*numWorkers, len(profiles)*len(policy.Tiers()))

	ctx := context.Background()
	pool.Start(ctx, func(ctx context.Context, job compressJob) compressOutcome {
		comp := compressor.New(policy.NewManualSelector(job.tier), logger)
		res, err := comp.Compress(ctx, job.points)
		if err != nil {
			return compressOutcome{profile: job.profile.name, tier: job.tier, err: err}
		}
		return compressOutcome{
			profile: job.profile.name,
			tier:    job.tier,
			in:      res.OriginalPointCount,
			out:     len(res.Points),
			ratio:   res.CompressionRatio,
		}
	})

	numJobs := 0
	for _, profile := range profiles {
		points := synthesizeTrack(rng, profile, logger)
		logger.Info("synthesized track",
			zap.String("profile", profile.name),
			zap.Int("raw_fixes", profile.numFixes),
			zap.Int("accepted_fixes", len(points)))

		for _, tier := range policy.Tiers() {
			pool.AddJob(compressJob{profile: profile, tier: tier, points: points})
			numJobs++
		}
	}
	pool.Close()

	go pool.Wait()

	for i := 0; i < numJobs; i++ {
		out := <-pool.CollectResults()
		if out.err != nil {
			logger.Error("compression failed",
				zap.String("profile", out.profile),
				zap.String("tier", out.tier.String()),
				zap.Error(out.err))
			continue
		}
		logger.Info("compressed",
			zap.String("profile", out.profile),
			zap.String("tier", out.tier.String()),
			zap.Int("points_in", out.in),
			zap.Int("points_out", out.out),
			zap.String("ratio", fmt.Sprintf("%.3f", out.ratio)))
	}
}

// synthesizeTrack walks GetDestinationPoint steps from a fixed origin, one fix
// per second, and runs them through the ingestion gates the live recorder uses.
func synthesizeTrack(rng *rand.Rand, profile movementProfile, logger *zap.Logger) []datastructure.Fix {
	acc := accumulator.New("profile-"+profile.name, accumulator.DefaultGateConfig(), logger)
	if err := acc.Start(datastructure.NewLiveSegment("profile-"+profile.name, 0)); err != nil {
		panic(err)
	}

	lat, lon := -7.7672, 110.3785
	heading := rng.Float64() * 360.0
	speedMps := profile.speedKmh / pkg.MPS_TO_KMH
	start := time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC)

	for i := 0; i < profile.numFixes; i++ {
		heading += (rng.Float64()*2 - 1) * profile.headingJitterDeg
		stepM := speedMps * (0.9 + rng.Float64()*0.2)
		lat, lon = geo.GetDestinationPoint(lat, lon, heading, stepM/1000.0)

		noisyLat, noisyLon := geo.GetDestinationPoint(lat, lon, rng.Float64()*360.0,
			rng.Float64()*profile.gpsNoiseM/1000.0)

		fix := datastructure.NewFix(noisyLat, noisyLon, 120+rng.Float64()*10, speedMps,
			profile.gpsNoiseM, profile.gpsNoiseM*1.5, start.Add(time.Duration(i)*time.Second))
		if _, err := acc.Ingest(fix); err != nil {
			panic(err)
		}
	}

	seg, err := acc.Close()
	if err != nil {
		panic(err)
	}
	return seg.Points()
}
