package validate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marketproof/attribution-cli/internal/model"
)

// Worker processes one asset to an outcome.
type Worker func(ctx context.Context, asset model.AssetRecord) (model.TaskOutcome, error)

// RunBatch fans worker out over assets with at most maxConcurrency units in
// flight, recording results into sink. Contracts:
//   - submission blocks when the live-task count reaches the cap;
//   - every spawned unit joins before return — no orphaned work;
//   - a failed or panicking worker is logged exactly once with the asset
//     identity snapshot and never affects sibling tasks;
//   - no dispatcher-level retry or cancellation: a started task runs to
//     completion or fails.
func RunBatch(ctx context.Context, assets []model.AssetRecord, worker Worker, maxConcurrency int, sink *Sink) {
	if len(assets) == 0 {
		zap.L().Info("no assets to validate", zap.String("run_id", sink.RunID()))
		return
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	zap.L().Info("validating batch",
		zap.String("run_id", sink.RunID()),
		zap.Int("assets", len(assets)),
		zap.Int("concurrency", maxConcurrency),
	)

	// A plain Group, not WithContext: one worker's failure must not cancel
	// its siblings.
	var g errgroup.Group
	g.SetLimit(maxConcurrency)

	for _, asset := range assets {
		g.Go(func() error {
			log := zap.L().With(
				zap.String("asset_id", asset.ID),
				zap.String("asset_name", asset.Name),
			)

			outcome, err := runShielded(ctx, worker, asset)
			if err != nil {
				log.Error("asset validation failed", zap.Error(err))
				sink.RecordFailure(asset.ID, asset.Name, err)
				return nil // isolate the failure
			}

			sink.Record(outcome)
			return nil
		})
	}

	_ = g.Wait()

	sum := sink.Summary()
	zap.L().Info("batch complete",
		zap.String("run_id", sum.RunID),
		zap.Int("pass", sum.Pass),
		zap.Int("fail", sum.Fail),
		zap.Int("no_data", sum.NoData),
		zap.Int("failures", sum.Failures),
	)
}

// runShielded converts a worker panic into an error so no task's failure
// unwinds into the scheduler.
func runShielded(ctx context.Context, worker Worker, asset model.AssetRecord) (outcome model.TaskOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("worker panic: %v", r)
		}
	}()
	return worker(ctx, asset)
}
