package monitoring

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/config"
	"github.com/sells-group/healthmap-cli/internal/resilience"
)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Snapshot *QualitySnapshot `json:"snapshot"`
	Alerts   []Alert          `json:"alerts"`
	Sent     int              `json:"sent"`
}

// Checker polls the backend on an interval and raises alerts.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cfg       config.MonitoringConfig
	breaker   *resilience.CircuitBreaker
	// OnCheck, if set, receives every successful check result.
	OnCheck func(*CheckResult)
}

// NewChecker creates a polling alert checker.
// After BreakerThreshold consecutive failed checks, ticks are skipped
// until BreakerResetSecs have passed, then one probe check runs.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		collector: collector,
		alerter:   alerter,
		cfg:       cfg,
		breaker: resilience.NewCircuitBreaker(resilience.BreakerConfig{
			FailureThreshold: cfg.BreakerThreshold,
			Cooldown:         time.Duration(cfg.BreakerResetSecs) * time.Second,
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("monitoring: backend breaker state change",
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		}),
	}
}

// BreakerState reports whether checks are currently being skipped.
func (c *Checker) BreakerState() resilience.CircuitState {
	return c.breaker.State()
}

// Run checks once immediately, then on every interval. It blocks until
// ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting alert checker", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.runOnce(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("alert checker stopped")
			return
		case <-ticker.C:
			c.runOnce(ctx, log)
		}
	}
}

// Check collects one snapshot, evaluates it and sends any alerts.
func (c *Checker) Check(ctx context.Context) (*CheckResult, error) {
	snap, err := c.collector.Collect(ctx)
	if err != nil {
		return nil, err
	}
	res := &CheckResult{Snapshot: snap, Alerts: c.alerter.Evaluate(snap)}
	res.Sent = c.alerter.SendAlerts(ctx, res.Alerts)
	return res, nil
}

func (c *Checker) runOnce(ctx context.Context, log *zap.Logger) {
	res, err := resilience.ExecuteVal(ctx, c.breaker, c.Check)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		log.Debug("monitoring: backend breaker open, skipping check")
		return
	}
	if err != nil {
		log.Error("monitoring: check failed",
			zap.Error(err),
			zap.Int("consecutive_failures", c.breaker.Failures()),
		)
		return
	}
	if len(res.Alerts) == 0 {
		log.Debug("monitoring: no alerts triggered")
	} else {
		log.Info("monitoring: alert check complete",
			zap.Int("alerts_triggered", len(res.Alerts)),
			zap.Int("alerts_sent", res.Sent),
		)
	}
	if c.OnCheck != nil {
		c.OnCheck(res)
	}
}
