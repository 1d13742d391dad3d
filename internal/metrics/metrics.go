// Package metrics объявляет прикладные метрики Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GenerationsTotal считает запросы на генерацию постов по результату:
// success, quota_exceeded, no_active_pack, webhook_failed, error.
var GenerationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "postcraft_generations_total",
		Help: "Total number of post generation attempts by outcome.",
	},
	[]string{"outcome"},
)
