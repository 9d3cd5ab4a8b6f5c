package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vegashares/swapsync/internal/edgar"
	"github.com/vegashares/swapsync/internal/fetcher"
	"github.com/vegashares/swapsync/internal/model"
	"github.com/vegashares/swapsync/internal/nport"
	"github.com/vegashares/swapsync/internal/store"
)

// Options tunes pipeline pacing. Zero pauses are valid and used in tests.
type Options struct {
	FormType    string
	BatchSize   int
	FilingPause time.Duration
	BatchPause  time.Duration
	Strict      bool
}

// DefaultOptions returns the pacing used against live EDGAR.
func DefaultOptions() Options {
	return Options{
		FormType:    "NPORT-P",
		BatchSize:   5,
		FilingPause: 1 * time.Second,
		BatchPause:  3 * time.Second,
		Strict:      true,
	}
}

// FilingLocator finds filings for a fund. Satisfied by *edgar.Locator.
type FilingLocator interface {
	FindFilings(ctx context.Context, cik, formType string, start, end time.Time) ([]model.FilingReference, error)
}

// Controller runs the extraction pipeline for one fund at a time.
type Controller struct {
	store      store.Store
	locator    FilingLocator
	fetcher    fetcher.Fetcher
	normalizer nport.Normalizer
	opts       Options
}

// NewController wires the pipeline dependencies.
func NewController(st store.Store, loc FilingLocator, f fetcher.Fetcher, n nport.Normalizer, opts Options) *Controller {
	if opts.FormType == "" {
		opts.FormType = "NPORT-P"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	return &Controller{
		store:      st,
		locator:    loc,
		fetcher:    f,
		normalizer: n,
		opts:       opts,
	}
}

// ProcessFund extracts swap records for one fund: locate filings in the
// lookback window, download and parse each one, and reload the ticker's rows.
// Per-filing failures are logged and skipped; the run still completes.
func (c *Controller) ProcessFund(ctx context.Context, fund model.FundIdentity, start, end time.Time) (*model.RunSummary, error) {
	log := zap.L().With(zap.String("ticker", fund.Ticker), zap.String("cik", fund.CIK))
	log.Info("pipeline: starting extraction")

	run, err := c.store.StartRun(ctx, fund.Ticker)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: start run")
	}

	runErr := c.extract(ctx, fund, start, end, run, log)

	switch {
	case runErr == nil:
		run.Status = model.RunStatusDone
	case eris.Is(runErr, context.DeadlineExceeded) || eris.Is(runErr, context.Canceled):
		run.Status = model.RunStatusTimeout
		run.Error = runErr.Error()
	default:
		run.Status = model.RunStatusFailed
		run.Error = runErr.Error()
	}

	// Finish with a fresh context so a deadline that killed the extraction
	// does not also lose the run record.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := c.store.FinishRun(finishCtx, run); err != nil {
		log.Warn("pipeline: failed to finish run", zap.Error(err))
	}

	log.Info("pipeline: extraction complete",
		zap.String("status", string(run.Status)),
		zap.Int("filings_seen", run.FilingsSeen),
		zap.Int("records", run.Records),
	)
	return run, runErr
}

// extract walks the fund's filings newest first, persisting each filing's
// records as it goes and updating the run counters in place.
func (c *Controller) extract(ctx context.Context, fund model.FundIdentity, start, end time.Time, run *model.RunSummary, log *zap.Logger) error {
	// The store is rederived from source on every run: purge first, then
	// locate. A window that shrank to zero filings must leave zero rows.
	if _, err := c.store.ClearTicker(ctx, fund.Ticker); err != nil {
		return eris.Wrap(err, "pipeline: clear ticker")
	}

	refs, err := c.locator.FindFilings(ctx, fund.CIK, c.opts.FormType, start, end)
	if err != nil {
		// A fund with no locatable filings is a degraded result, not a
		// pipeline failure.
		log.Warn("pipeline: filing lookup failed", zap.Error(err))
		refs = nil
	}
	if len(refs) == 0 {
		log.Info("pipeline: no filings in window")
		return nil
	}

	parseOpts := nport.ParseOptions{SeriesID: fund.SeriesID, Strict: c.opts.Strict}

	seen := make(map[string]bool)
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "pipeline: extraction interrupted")
		}

		entries, err := c.processFiling(ctx, ref, fund.Ticker, parseOpts)
		if err != nil {
			// A dead context is a run-level condition, not a bad filing.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return eris.Wrap(ctxErr, "pipeline: extraction interrupted")
			}
			log.Warn("pipeline: filing skipped",
				zap.String("url", ref.DocumentURL),
				zap.Error(err),
			)
		}

		var batch []model.SwapRecord
		for _, e := range entries {
			rec := c.normalizer.Normalize(e, ref.FilingDate)
			key := rec.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			batch = append(batch, rec)
		}
		if len(batch) > 0 {
			n, err := c.store.UpsertSwaps(ctx, batch)
			if err != nil {
				// Persistence failure loses this filing's records only.
				log.Warn("pipeline: persist failed",
					zap.String("url", ref.DocumentURL),
					zap.Error(err),
				)
			} else {
				run.Records += int(n)
			}
		}
		run.FilingsSeen = i + 1

		if i == len(refs)-1 {
			continue
		}
		pause := c.opts.FilingPause
		if (i+1)%c.opts.BatchSize == 0 {
			pause = c.opts.BatchPause
		}
		if err := sleep(ctx, pause); err != nil {
			return eris.Wrap(err, "pipeline: extraction interrupted")
		}
	}
	return nil
}

func (c *Controller) processFiling(ctx context.Context, ref model.FilingReference, ticker string, opts nport.ParseOptions) ([]nport.RawEntry, error) {
	raw, err := c.fetcher.DownloadBytes(ctx, ref.DocumentURL)
	if err != nil {
		return nil, eris.Wrapf(err, "download filing %s", ref.DocumentURL)
	}
	return nport.Parse(raw, ticker, ref.DocumentURL, opts), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Window returns the lookback window ending now.
func Window(days int) (time.Time, time.Time) {
	if days <= 0 {
		days = edgar.DefaultWindowDays
	}
	end := time.Now().UTC()
	return end.AddDate(0, 0, -days), end
}
