// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package sim

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LayersTotal counts completed layers.
// Use RegisterMetrics to register this with a Prometheus registry.
var LayersTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifefork_layers_total",
		Help: "Total number of simulated layers",
	},
	[]string{"scenario"},
)

// EventsSampled counts the event drawn for each layer.
var EventsSampled = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifefork_events_sampled_total",
		Help: "Total number of layer events sampled from the catalog",
	},
	[]string{"scenario", "event"},
)

// Forks counts choices that split a world in two.
var Forks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifefork_forks_total",
		Help: "Total number of worlds forked by a choice",
	},
	[]string{"scenario", "event"},
)

// ActiveWorlds is the population size after the most recent layer.
var ActiveWorlds = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "lifefork_active_worlds",
		Help: "Number of worlds alive after the most recent layer",
	},
	[]string{"scenario"},
)

// Bankruptcies counts worlds that went bankrupt during the economic step.
var Bankruptcies = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifefork_bankruptcies_total",
		Help: "Total number of worlds that went bankrupt",
	},
	[]string{"scenario"},
)

// LayerDuration is the wall time of one layer, snapshot write included.
var LayerDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "lifefork_layer_duration_seconds",
		Help:    "Layer processing duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"scenario"},
)

// RegisterMetrics registers simulation metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LayersTotal)
	reg.MustRegister(EventsSampled)
	reg.MustRegister(Forks)
	reg.MustRegister(ActiveWorlds)
	reg.MustRegister(Bankruptcies)
	reg.MustRegister(LayerDuration)
}

// layerRecorder collects the metrics of one layer and records them once.
type layerRecorder struct {
	scenario     string
	start        time.Time
	event        string
	forks        int
	bankruptcies int
	population   int
}

func newLayerRecorder(scenario string) *layerRecorder {
	return &layerRecorder{scenario: scenario, start: time.Now()}
}

func (r *layerRecorder) record() {
	LayersTotal.WithLabelValues(r.scenario).Inc()
	if r.event != "" {
		EventsSampled.WithLabelValues(r.scenario, r.event).Inc()
		if r.forks > 0 {
			Forks.WithLabelValues(r.scenario, r.event).Add(float64(r.forks))
		}
	}
	if r.bankruptcies > 0 {
		Bankruptcies.WithLabelValues(r.scenario).Add(float64(r.bankruptcies))
	}
	ActiveWorlds.WithLabelValues(r.scenario).Set(float64(r.population))
	LayerDuration.WithLabelValues(r.scenario).Observe(time.Since(r.start).Seconds())
}
