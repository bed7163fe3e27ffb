package compressor

import (
	"context"

	"github.com/lintang-b-s/Trackerx/pkg/datastructure"
	"github.com/lintang-b-s/Trackerx/pkg/policy"
	"github.com/lintang-b-s/Trackerx/pkg/simplifier"
	"github.com/lintang-b-s/Trackerx/pkg/util"
	"go.uber.org/zap"
)

// Result is the compressed representation of one closed segment, produced
// without mutating the raw buffer. the store swaps it in atomically.
type Result struct {
	Points             []datastructure.Fix
	CompressionRatio   float64
	OriginalPointCount int
	PolicyUsed         string
}

/*
Compressor turns a closed segment's raw buffer into a simplified one.
stateless: the per-segment selection path carries no speed history, so one
compressor serves every trip and compressions may run concurrently on
background goroutines. each Compress call reads an immutable snapshot and is
cancellable through its context.
*/
type Compressor struct {
	log      *zap.Logger
	selector *policy.Selector
}

func New(selector *policy.Selector, log *zap.Logger) *Compressor {
	return &Compressor{
		log:      log,
		selector: selector,
	}
}

// LiveSelector returns a fresh selector with the compressor's mode, for
// per-sample tier tracking over a live fix stream. each trip owns one.
func (c *Compressor) LiveSelector() *policy.Selector {
	return c.selector.Fresh()
}

/*
Compress simplifies a raw point buffer. the policy is chosen from the
segment's representative speed computed over the whole raw buffer, then
Douglas-Peucker runs with epsilon = maxDeviation, and the post-processing pass
enforces the spacing and angle constraints Douglas-Peucker alone does not
guarantee.

an empty buffer compresses to an empty result with ratio 0; that is not an
error. cancellation returns ctx.Err() and no partial result.
*/
func (c *Compressor) Compress(ctx context.Context, points []datastructure.Fix) (*Result, error) {
	speedKmh := datastructure.RepresentativeSpeedKmh(points)
	pol := c.selector.SelectPolicyForSegment(speedKmh)

	if len(points) == 0 {
		return &Result{
			Points:             []datastructure.Fix{},
			CompressionRatio:   0,
			OriginalPointCount: 0,
			PolicyUsed:         pol.Name(),
		}, nil
	}

	if pol.IsLossless() {
		out := make([]datastructure.Fix, len(points))
		copy(out, points)
		return &Result{
			Points:             out,
			CompressionRatio:   0,
			OriginalPointCount: len(points),
			PolicyUsed:         pol.Name(),
		}, nil
	}

	if util.StopConcurrentOperation(ctx) {
		return nil, ctx.Err()
	}

	mask := simplifier.KeepMask(points, pol.MaxDeviation())

	if util.StopConcurrentOperation(ctx) {
		return nil, ctx.Err()
	}

	out := postProcess(points, mask, pol)

	if util.StopConcurrentOperation(ctx) {
		return nil, ctx.Err()
	}

	ratio := 1.0 - float64(len(out))/float64(len(points))
	if ratio < 0 {
		ratio = 0
	}

	c.log.Debug("segment compressed",
		zap.String("policy", pol.Name()),
		zap.Float64("speedKmh", speedKmh),
		zap.Int("original", len(points)),
		zap.Int("compressed", len(out)),
		zap.Float64("ratio", ratio))

	return &Result{
		Points:             out,
		CompressionRatio:   ratio,
		OriginalPointCount: len(points),
		PolicyUsed:         pol.Name(),
	}, nil
}
