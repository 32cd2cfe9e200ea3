package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/playsketch/internal/smoke"
	"github.com/okian/playsketch/pkg/logger"
)

// Default configuration constants.
const (
	defaultRequests    = 5
	defaultWorkers     = 2
	defaultTimeout     = 90 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		token     = flag.String("token", os.Getenv("PLAYSKETCH_SMOKE_TOKEN"), "Bearer token (default $PLAYSKETCH_SMOKE_TOKEN)")
		tenant    = flag.String("tenant", "smoke", "Tenant charged for the requests")
		images    = flag.String("images", "", "Comma-separated image URLs, used round-robin")
		requests  = flag.Int("requests", defaultRequests, "Number of analysis requests")
		workers   = flag.Int("workers", defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFormat = flag.String("log-format", "tint", "Log format: text, json or tint")
		verbose   = flag.Bool("verbose", false, "Log every response")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	var refs []string
	for _, ref := range strings.Split(*images, ",") {
		if ref = strings.TrimSpace(ref); ref != "" {
			refs = append(refs, ref)
		}
	}

	_, err := smoke.Run(ctx, &smoke.Config{
		BaseURL:  *baseURL,
		Token:    *token,
		TenantID: *tenant,
		Images:   refs,
		Requests: *requests,
		Workers:  *workers,
		Timeout:  *timeout,
		Verbose:  *verbose,
	})
	if err != nil {
		logger.Get().Error(ctx, "smoke run failed", logger.Error(err))
		os.Exit(1)
	}
}
