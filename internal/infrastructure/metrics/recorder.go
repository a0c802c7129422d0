// Package metrics counts rows flowing through each stage and optionally
// pushes them to a Prometheus Pushgateway when the batch ends.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/ports"
)

const namespace = "reviewprep"

// Recorder implements ports.StageRecorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry
	rowsIn   *prometheus.CounterVec
	rowsOut  *prometheus.CounterVec
	drops    *prometheus.CounterVec
	lastRun  *prometheus.GaugeVec
	pusher   *push.Pusher
}

var _ ports.StageRecorder = (*Recorder)(nil)

// NewRecorder builds the collectors. An empty gatewayURL disables pushing.
func NewRecorder(gatewayURL, job string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_rows_in_total",
			Help:      "Rows read by a stage.",
		}, []string{"stage"}),
		rowsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_rows_out_total",
			Help:      "Rows written by a stage.",
		}, []string{"stage"}),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_drops_total",
			Help:      "Rows dropped by a stage, by reason.",
		}, []string{"stage", "reason"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_last_run_timestamp_seconds",
			Help:      "Unix time the stage last finished.",
		}, []string{"stage"}),
	}
	r.registry.MustRegister(r.rowsIn, r.rowsOut, r.drops, r.lastRun)
	if gatewayURL != "" {
		if job == "" {
			job = namespace
		}
		r.pusher = push.New(gatewayURL, job).Gatherer(r.registry)
	}
	return r
}

// Registry exposes the collectors, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage adds one stage execution to the counters.
func (r *Recorder) ObserveStage(stage string, in, out int, drops []domain.Drop) {
	r.rowsIn.WithLabelValues(stage).Add(float64(in))
	r.rowsOut.WithLabelValues(stage).Add(float64(out))
	for reason, n := range domain.CountReasons(drops) {
		r.drops.WithLabelValues(stage, reason).Add(float64(n))
	}
	r.lastRun.WithLabelValues(stage).Set(float64(time.Now().Unix()))
}

// Flush pushes the registry to the gateway, if one is configured.
func (r *Recorder) Flush(ctx context.Context) error {
	if r.pusher == nil {
		return nil
	}
	if err := r.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
