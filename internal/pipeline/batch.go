package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vegashares/swapsync/internal/model"
)

// BatchResult summarizes a multi-fund run.
type BatchResult struct {
	Succeeded []string
	Failed    []string
	TimedOut  []string
	Runs      []*model.RunSummary
}

// BatchRunner drives ProcessFund across a fund list with a per-fund deadline.
type BatchRunner struct {
	controller    *Controller
	fundTimeout   time.Duration
	maxConcurrent int
}

// NewBatchRunner builds a runner. maxConcurrent below 1 means sequential,
// which is the safe setting against live EDGAR rate limits.
func NewBatchRunner(c *Controller, fundTimeout time.Duration, maxConcurrent int) *BatchRunner {
	if fundTimeout <= 0 {
		fundTimeout = 300 * time.Second
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &BatchRunner{
		controller:    c,
		fundTimeout:   fundTimeout,
		maxConcurrent: maxConcurrent,
	}
}

// Run processes every fund, isolating failures so one bad fund never stops
// the batch.
func (b *BatchRunner) Run(ctx context.Context, funds []model.FundIdentity, start, end time.Time) *BatchResult {
	log := zap.L().With(zap.Int("funds", len(funds)))
	log.Info("batch: starting")

	result := &BatchResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.maxConcurrent)

	for _, fund := range funds {
		g.Go(func() error {
			fundCtx, cancel := context.WithTimeout(gctx, b.fundTimeout)
			defer cancel()

			run, err := b.controller.ProcessFund(fundCtx, fund, start, end)

			mu.Lock()
			defer mu.Unlock()
			if run != nil {
				result.Runs = append(result.Runs, run)
			}
			switch {
			case err == nil:
				result.Succeeded = append(result.Succeeded, fund.Ticker)
			case run != nil && run.Status == model.RunStatusTimeout:
				result.TimedOut = append(result.TimedOut, fund.Ticker)
			default:
				result.Failed = append(result.Failed, fund.Ticker)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	log.Info("batch: complete",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("timed_out", len(result.TimedOut)),
	)
	return result
}
