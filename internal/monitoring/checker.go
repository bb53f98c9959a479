package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/config"
)

// Checker runs periodic alert checks in the background. An alert is sent
// when its condition first appears and again only after it has cleared.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cfg       config.MonitoringConfig
	active    map[AlertType]bool
}

// NewChecker creates a background alert checker.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		collector: collector,
		alerter:   alerter,
		cfg:       cfg,
		active:    make(map[AlertType]bool),
	}
}

// Run starts the periodic check loop. It blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting alert checker",
		zap.Duration("interval", interval),
		zap.Float64("cost_threshold_usd", c.cfg.CostThresholdUSD),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("alert checker stopped")
			return
		case <-ticker.C:
			c.check(ctx, log)
		}
	}
}

// check evaluates once and returns the alerts that were new this round.
func (c *Checker) check(ctx context.Context, log *zap.Logger) []Alert {
	alerts := c.alerter.Evaluate(c.collector.Collect())

	seen := make(map[AlertType]bool, len(alerts))
	var fresh []Alert
	for _, a := range alerts {
		seen[a.Type] = true
		if !c.active[a.Type] {
			fresh = append(fresh, a)
		}
	}
	c.active = seen

	if len(fresh) == 0 {
		log.Debug("monitoring: no new alerts")
		return nil
	}
	for _, a := range fresh {
		log.Warn("monitoring: alert triggered", zap.String("type", string(a.Type)), zap.String("message", a.Message))
	}

	sent := c.alerter.SendAlerts(ctx, fresh)
	log.Info("monitoring: alert check complete",
		zap.Int("alerts_triggered", len(fresh)),
		zap.Int("alerts_sent", sent),
	)
	return fresh
}
