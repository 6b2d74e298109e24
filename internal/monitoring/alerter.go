package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/config"
	"github.com/sells-group/healthmap-cli/internal/fetcher"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertCriticalSites     AlertType = "critical_sites"
	AlertElevatedAreas     AlertType = "elevated_areas"
	AlertPriorityMismatch  AlertType = "priority_mismatch"
	AlertSourceUnavailable AlertType = "source_unavailable"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a QualitySnapshot against configured thresholds and
// posts alerts to a webhook.
type Alerter struct {
	cfg     config.MonitoringConfig
	fetcher fetcher.Fetcher
}

// NewAlerter creates a new Alerter. f delivers webhook posts.
func NewAlerter(cfg config.MonitoringConfig, f fetcher.Fetcher) *Alerter {
	return &Alerter{cfg: cfg, fetcher: f}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *QualitySnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	if n := len(snap.CriticalSites); a.cfg.CriticalSiteThreshold > 0 && n >= a.cfg.CriticalSiteThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertCriticalSites,
			Severity: "high",
			Message:  fmt.Sprintf("%d site(s) at CRITICAL priority require immediate attention", n),
			Details: map[string]any{
				"site_ids":  snap.CriticalSites,
				"threshold": a.cfg.CriticalSiteThreshold,
			},
			Timestamp: now,
		})
	}

	if n := len(snap.RiskAreas); a.cfg.ElevatedAreaThreshold > 0 && n >= a.cfg.ElevatedAreaThreshold {
		areas := make([]string, 0, n)
		for _, r := range snap.RiskAreas {
			areas = append(areas, r.AreaID)
		}
		alerts = append(alerts, Alert{
			Type:     AlertElevatedAreas,
			Severity: "high",
			Message:  fmt.Sprintf("%d area(s) report elevated health signals", n),
			Details: map[string]any{
				"area_ids":  areas,
				"threshold": a.cfg.ElevatedAreaThreshold,
			},
			Timestamp: now,
		})
	}

	if n := len(snap.Mismatches); n > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertPriorityMismatch,
			Severity: "medium",
			Message:  fmt.Sprintf("%d assessment(s) carry a priority outside their risk band", n),
			Details: map[string]any{
				"mismatches": snap.Mismatches,
			},
			Timestamp: now,
		})
	}

	if len(snap.Unavailable) > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertSourceUnavailable,
			Severity: "low",
			Message:  fmt.Sprintf("%d auxiliary source(s) unavailable", len(snap.Unavailable)),
			Details: map[string]any{
				"sources": snap.Unavailable,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || a.fetcher == nil || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.fetcher.PostJSON(ctx, a.cfg.WebhookURL, alert, nil); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(eris.Wrap(err, "monitoring: webhook")),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}
