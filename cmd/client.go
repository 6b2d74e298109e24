package main

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/fetcher"
	"github.com/sells-group/healthmap-cli/pkg/healthmap"
)

// httpOptions maps backend config onto fetcher options.
func httpOptions() fetcher.HTTPOptions {
	return fetcher.HTTPOptions{
		UserAgent:   cfg.Backend.UserAgent,
		Timeout:     time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		MaxAttempts: cfg.Backend.MaxAttempts,
		RatePerSec:  cfg.Backend.RateLimitRPS,
	}
}

// newClient validates the backend config and returns a client for it.
func newClient(mode string) (healthmap.Client, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	return healthmap.NewClient(cfg.Backend.BaseURL, healthmap.WithHTTPOptions(httpOptions())), nil
}

// loadSnapshot runs one dashboard load. A primary failure is reported
// with the user-facing banner; the cause is logged.
func loadSnapshot(ctx context.Context, src dashboard.Sources) (*dashboard.Snapshot, error) {
	client, err := newClient("client")
	if err != nil {
		return nil, err
	}
	return load(ctx, dashboard.NewLoader(client, nil), src)
}

// snapshotLoader loads one dashboard snapshot.
type snapshotLoader interface {
	Load(ctx context.Context, src dashboard.Sources) (*dashboard.Snapshot, error)
}

func load(ctx context.Context, l snapshotLoader, src dashboard.Sources) (*dashboard.Snapshot, error) {
	snap, err := l.Load(ctx, src)
	if err != nil {
		if errors.Is(err, dashboard.ErrPrimaryUnavailable) {
			zap.L().Debug("dashboard load failed", zap.Error(err))
			return nil, errors.New(dashboard.LoadFailedMessage)
		}
		return nil, err
	}
	return snap, nil
}

// newMetricsLoader builds a loader that records into reg.
func newMetricsLoader(client healthmap.Client, reg prometheus.Registerer) *dashboard.Loader {
	return dashboard.NewLoader(client, dashboard.NewMetrics(reg))
}
