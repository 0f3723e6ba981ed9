// # internal/app/scan.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wavetrace/internal/history"
	"wavetrace/internal/output"
	"wavetrace/internal/shared/observability"
)

// RunScan discovers all samples, converts them on a worker pool and writes
// the per-sample documents plus a run summary.
func (a *App) RunScan(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "run_scan")
	defer span.End()
	start := time.Now()

	samples, err := a.DiscoverSamples()
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		slog.Warn("no samples found", "dirs", a.cfg.SampleDirs)
		return nil
	}

	jobs := make(chan Sample)
	var (
		mu      sync.Mutex
		results []*Result
		wg      sync.WaitGroup
	)

	for i := 0; i < a.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sample := range jobs {
				res := a.ConvertSample(ctx, sample)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}

	for _, sample := range samples {
		jobs <- sample
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Sample.Name < results[j].Sample.Name
	})

	run := history.Run{
		RunID:       uuid.NewString(),
		Timestamp:   start.UTC(),
		SampleCount: len(results),
	}
	reports := make([]output.Report, 0, len(results))

	for _, res := range results {
		report := output.Report{Sample: res.Sample.Name}

		if res.Err != nil {
			run.FailedCount++
			report.Status = "failed"
			report.Error = res.Err.Error()
			report.Signals = res.SignalCount()
			observability.SamplesTotal.WithLabelValues("failed").Inc()
			slog.Error("sample conversion failed", "sample", res.Sample.Name, "error", res.Err)
			reports = append(reports, report)
			continue
		}

		path, err := output.WriteDocument(a.cfg.OutputDir, res.Sample.Name, res.Document)
		if err != nil {
			run.FailedCount++
			report.Status = "failed"
			report.Error = err.Error()
			observability.SamplesTotal.WithLabelValues("failed").Inc()
			slog.Error("write failed", "sample", res.Sample.Name, "error", err)
			reports = append(reports, report)
			continue
		}

		run.ConvertedCount++
		run.SignalCount += res.SignalCount()
		if res.Reordered {
			run.ReorderedCount++
		}
		report.Status = "converted"
		report.Signals = res.SignalCount()
		report.Reordered = res.Reordered
		report.Output = path
		observability.SamplesTotal.WithLabelValues("converted").Inc()
		slog.Info("sample converted",
			"sample", res.Sample.Name,
			"signals", res.SignalCount(),
			"reordered", res.Reordered,
			"output", path)
		reports = append(reports, report)
	}

	run.Duration = time.Since(start)
	observability.SignalsEmitted.Set(float64(run.SignalCount))
	observability.ReorderedSamples.Set(float64(run.ReorderedCount))

	if err := a.writeSummary(reports); err != nil {
		slog.Warn("summary write failed", "error", err)
	}

	if a.store != nil {
		if err := a.store.SaveRun(run); err != nil {
			slog.Warn("history save failed", "error", err)
		}
	}

	slog.Info("scan complete",
		"samples", run.SampleCount,
		"converted", run.ConvertedCount,
		"failed", run.FailedCount,
		"signals", run.SignalCount,
		"duration", run.Duration.Round(time.Millisecond))

	if run.FailedCount > 0 && run.ConvertedCount == 0 {
		return fmt.Errorf("all %d samples failed", run.FailedCount)
	}
	return nil
}

func (a *App) writeSummary(reports []output.Report) error {
	tsv, err := output.NewTSVGenerator(reports).Generate()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(a.cfg.OutputDir, "summary.tsv"), []byte(tsv), 0o644)
}

// Rescan is the watch-mode entry point. Bursty change notifications are
// throttled by the token bucket so a save storm cannot stack scans.
func (a *App) Rescan(ctx context.Context, changed []string) {
	if !a.limiter.Allow(1) {
		observability.RescansThrottledTotal.Inc()
		slog.Debug("rescan throttled", "changed", len(changed))
		return
	}

	slog.Info("rescan triggered", "changed", len(changed))
	if err := a.RunScan(ctx); err != nil {
		slog.Error("rescan failed", "error", err)
	}
}
