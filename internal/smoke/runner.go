package smoke

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/playsketch/pkg/logger"
)

// analyzeMetric must appear in /healthz once any request was served.
const analyzeMetric = "playsketch_whiteboard_analyze_total"

// Errors reported by Run.
var (
	ErrNoImages    = errors.New("no image references given")
	ErrAllFailed   = errors.New("every request failed")
	ErrNoMetrics   = errors.New("analysis metrics missing from /healthz")
	ErrServiceDown = errors.New("service health check failed")
)

type job struct {
	index int
	image string
}

// Run submits cfg.Requests analyses with cfg.Workers workers and then checks
// the metrics endpoint. It fails when nothing got through or the metrics did
// not record the traffic.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if len(cfg.Images) == 0 {
		return nil, ErrNoImages
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	log := logger.Named("smoke")
	client := newHTTPClient(cfg)

	if _, err := client.metrics(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceDown, err)
	}

	stats := &Stats{
		Counts:    make(map[Result]int),
		Remaining: -1,
		StartTime: time.Now(),
	}
	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", workers),
		logger.String("tenant", cfg.TenantID),
	)

	var mu sync.Mutex
	jobs := make(chan job, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				result, remaining, detail := client.analyze(ctx, cfg.TenantID, j.image)

				mu.Lock()
				stats.Submitted++
				stats.Counts[result]++
				if remaining >= 0 && (stats.Remaining < 0 || remaining < stats.Remaining) {
					stats.Remaining = remaining
				}
				mu.Unlock()

				if cfg.Verbose || result == ResultFailed {
					log.Info(ctx, "analysis response",
						logger.Int("request", j.index),
						logger.String("result", string(result)),
						logger.String("detail", truncate(detail, 200)),
					)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Requests; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{index: i, image: cfg.Images[i%len(cfg.Images)]}:
			}
		}
	}()
	wg.Wait()
	stats.Duration = time.Since(stats.StartTime)

	log.Info(ctx, "smoke run completed",
		logger.Int("submitted", stats.Submitted),
		logger.Int("success", stats.Counts[ResultSuccess]),
		logger.Int("soft", stats.Counts[ResultSoft]),
		logger.Int("quota", stats.Counts[ResultQuota]),
		logger.Int("rejected", stats.Counts[ResultRejected]),
		logger.Int("failed", stats.Counts[ResultFailed]),
		logger.Int("dailyRemaining", stats.Remaining),
		logger.String("duration", stats.Duration.String()),
	)

	if stats.Submitted > 0 && stats.Counts[ResultFailed] == stats.Submitted {
		return stats, ErrAllFailed
	}

	exposition, err := client.metrics(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrServiceDown, err)
	}
	if stats.Counts[ResultSuccess]+stats.Counts[ResultSoft] > 0 && !strings.Contains(exposition, analyzeMetric) {
		return stats, ErrNoMetrics
	}
	return stats, nil
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
