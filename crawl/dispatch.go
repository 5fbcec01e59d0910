package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/adscan"
	"golang.org/x/sync/errgroup"
)

// fallbackPoolSize bounds the pooled fallback strategy: a small set of
// independent browser instances, each owned by one worker.
const fallbackPoolSize = 4

// ProgressFunc reports dispatch progress. It fires at a bounded cadence, not
// per URL, to avoid flooding logs on large batches.
type ProgressFunc func(processed, total int)

// Dispatcher executes the page task over a set of URLs at bounded
// concurrency, guaranteeing that every input URL yields exactly one
// TaskResult. Strategies are attempted in order until one completes without
// an infrastructure failure:
//
//  1. primary: a shared concurrent driver processing the queue at
//     MaxConcurrency
//  2. pooled: a small set of independently owned driver instances
//  3. single: sequential processing through one instance, trading
//     throughput for certainty of progress
//
// Per-task errors become TaskResult errors and never abort sibling tasks;
// an infrastructure failure hands the entire remaining batch to the next
// strategy, preserving already-collected results across the boundary.
type Dispatcher struct {
	Factory     adscan.ProcessorFactory
	Tracker     adscan.Tracker
	Health      adscan.HealthTracker
	RateLimiter *DomainLimiter
	Metrics     adscan.Metrics
	Logger      *slog.Logger
}

type strategyFunc func(ctx context.Context, urls []string, results []*adscan.TaskResult, opts adscan.Options, tick func()) error

// Process runs every URL through the page task and returns one result per
// input URL, in input order. A non-nil error means every strategy failed at
// the infrastructure level; even then the returned results are complete,
// with holes backfilled as driver-failure errors.
func (d *Dispatcher) Process(ctx context.Context, urls []string, opts adscan.Options, progress ProgressFunc) ([]*adscan.TaskResult, error) {
	results := make([]*adscan.TaskResult, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	var completed atomic.Int64
	total := len(urls)
	step := progressStep(total)
	var progressMu sync.Mutex
	tick := func() {
		n := int(completed.Add(1))
		if progress != nil && (n%step == 0 || n == total) {
			progressMu.Lock()
			progress(n, total)
			progressMu.Unlock()
		}
	}

	strategies := []struct {
		name string
		run  strategyFunc
	}{
		{"primary", d.runPrimary},
		{"pooled", d.runPooled},
		{"single", d.runSingle},
	}

	var lastErr error
	for _, s := range strategies {
		if remaining(results) == 0 {
			lastErr = nil
			break
		}
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		err := s.run(ctx, urls, results, opts, tick)
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		d.logger().Warn("execution strategy failed, falling back",
			"strategy", s.name,
			"remaining", remaining(results),
			"err", err,
		)
	}

	// Backfill: a dispatcher that silently drops a queued task's result is a
	// correctness bug, so any hole left by strategy failures becomes an
	// explicit driver-failure result.
	for i, r := range results {
		if r != nil {
			continue
		}
		msg := "all execution strategies failed"
		if lastErr != nil {
			msg = lastErr.Error()
		}
		results[i] = adscan.ErrorResult(urls[i], &adscan.TaskError{
			Code:     adscan.CodeDriverFailure,
			Category: adscan.CategoryInfrastructure,
			Phase:    adscan.PhaseDriver,
			Message:  msg,
		}, 0)
		tick()
	}

	return results, lastErr
}

// runPrimary drives a single shared processor at full concurrency. The
// processor is expected to be safe for concurrent use (one browser, one page
// per task). Any infrastructure error cancels the group and triggers
// fallback for the remaining batch.
func (d *Dispatcher) runPrimary(ctx context.Context, urls []string, results []*adscan.TaskResult, opts adscan.Options, tick func()) error {
	proc, err := d.Factory.NewProcessor(ctx)
	if err != nil {
		return fmt.Errorf("primary driver: %w", err)
	}
	defer proc.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency())

	for i := range urls {
		if results[i] != nil {
			continue
		}
		g.Go(func() error {
			res, err := d.processOne(gctx, proc, urls[i], opts)
			if err != nil {
				return err
			}
			results[i] = res
			tick()
			return nil
		})
	}

	return g.Wait()
}

// runPooled uses a small set of independently owned processors, one per
// worker. A worker whose processor dies stops; its unfinished work is left
// for the next strategy. The strategy only fails when no worker finishes the
// batch cleanly.
func (d *Dispatcher) runPooled(ctx context.Context, urls []string, results []*adscan.TaskResult, opts adscan.Options, tick func()) error {
	size := min(fallbackPoolSize, opts.Concurrency())

	procs := make([]adscan.PageProcessor, 0, size)
	for i := 0; i < size; i++ {
		proc, err := d.Factory.NewProcessor(ctx)
		if err != nil {
			d.logger().Warn("pooled fallback: instance launch failed", "err", err)
			continue
		}
		procs = append(procs, proc)
	}
	if len(procs) == 0 {
		return fmt.Errorf("pooled fallback: no driver instances could be launched")
	}
	defer func() {
		for _, p := range procs {
			_ = p.Close()
		}
	}()

	indexCh := make(chan int)
	go func() {
		defer close(indexCh)
		for i := range urls {
			if results[i] != nil {
				continue
			}
			select {
			case indexCh <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var infraErr error

	for _, proc := range procs {
		wg.Add(1)
		go func(proc adscan.PageProcessor) {
			defer wg.Done()
			for i := range indexCh {
				res, err := d.processOne(ctx, proc, urls[i], opts)
				if err != nil {
					mu.Lock()
					infraErr = err
					mu.Unlock()
					return
				}
				results[i] = res
				tick()
			}
		}(proc)
	}
	wg.Wait()

	if remaining(results) > 0 {
		if infraErr != nil {
			return fmt.Errorf("pooled fallback: %w", infraErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// runSingle processes the remaining batch sequentially through one
// processor, recreating it once per failure before giving up.
func (d *Dispatcher) runSingle(ctx context.Context, urls []string, results []*adscan.TaskResult, opts adscan.Options, tick func()) error {
	proc, err := d.Factory.NewProcessor(ctx)
	if err != nil {
		return fmt.Errorf("single-instance fallback: %w", err)
	}
	defer func() { _ = proc.Close() }()

	for i := range urls {
		if results[i] != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := d.processOne(ctx, proc, urls[i], opts)
		if err != nil {
			_ = proc.Close()
			proc, err = d.Factory.NewProcessor(ctx)
			if err != nil {
				return fmt.Errorf("single-instance fallback: relaunch: %w", err)
			}
			res, err = d.processOne(ctx, proc, urls[i], opts)
			if err != nil {
				return fmt.Errorf("single-instance fallback: %w", err)
			}
		}
		results[i] = res
		tick()
	}
	return nil
}

// processOne runs the page task for one URL: circuit check, rate limit,
// bounded navigation, then outcome recording. A nil error with a non-nil
// result is the only way a URL finishes; a non-nil error is an
// infrastructure failure and the URL stays unfinished for the next strategy.
func (d *Dispatcher) processOne(ctx context.Context, proc adscan.PageProcessor, url string, opts adscan.Options) (*adscan.TaskResult, error) {
	if d.Health != nil && d.Health.ShouldSkip(url) {
		res := adscan.ErrorResult(url, &adscan.TaskError{
			Code:     adscan.CodeDomainBlocked,
			Category: adscan.CategoryNetwork,
			Phase:    adscan.PhaseHealth,
			Message:  "domain circuit blocked, cooling down",
		}, 0)
		d.record(ctx, res)
		return res, nil
	}

	if d.RateLimiter != nil {
		if err := d.RateLimiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	taskCtx, cancel := context.WithTimeout(ctx, opts.NavTimeout())
	res, err := proc.Process(taskCtx, url)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", url, err)
	}
	if res == nil {
		// A processor must never resolve without a result.
		res = adscan.ErrorResult(url, &adscan.TaskError{
			Code:     adscan.CodeUnknownProcessing,
			Category: adscan.CategoryExtraction,
			Phase:    adscan.PhaseProcessing,
			Message:  "processor returned no result",
		}, time.Since(start))
	}

	d.record(ctx, res)
	return res, nil
}

// record marks the outcome in the ledger (fail-open), updates domain health,
// and reports metrics. Marking uses a non-cancelable context so an aborting
// strategy still persists outcomes that were produced.
func (d *Dispatcher) record(ctx context.Context, res *adscan.TaskResult) {
	if d.Tracker != nil {
		if err := d.Tracker.MarkProcessed(context.WithoutCancel(ctx), res.URL, res.Status); err != nil {
			d.logger().Warn("ledger write failed", "url", res.URL, "err", err)
		}
	}

	if d.Health != nil {
		if res.Status == adscan.StatusError {
			// Circuit-skip results are not new observations about the domain.
			if res.Err != nil && res.Err.Code != adscan.CodeDomainBlocked {
				d.Health.RecordFailure(res.URL, res.Err)
			}
		} else {
			d.Health.RecordSuccess(res.URL, res.Duration)
		}
	}

	var code string
	if res.Err != nil {
		code = res.Err.Code
	}
	d.metrics().ObserveTask(res.Status, code, res.Duration)
}

func (d *Dispatcher) metrics() adscan.Metrics {
	if d.Metrics != nil {
		return d.Metrics
	}
	return adscan.NopMetrics{}
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// remaining counts the unfinished slots in a result slice.
func remaining(results []*adscan.TaskResult) int {
	var n int
	for _, r := range results {
		if r == nil {
			n++
		}
	}
	return n
}

// progressStep picks a reporting cadence that yields at most ~20 progress
// events per batch.
func progressStep(total int) int {
	return max(1, total/20)
}
