// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vechain/stakecover/log"
)

const namespace = "stakecover"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the registry to prometheus. Later calls are no-ops.
func InitializePrometheusMetrics() {
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = &prometheusMetrics{}
	}
}

type prometheusMetrics struct {
	counters    sync.Map
	counterVecs sync.Map
	histograms  sync.Map
	gauges      sync.Map
	gaugeVecs   sync.Map
}

func getOrCreate[T any](m *sync.Map, name string, create func() T) T {
	if item, ok := m.Load(name); ok {
		return item.(T)
	}
	item, _ := m.LoadOrStore(name, create())
	return item.(T)
}

func register(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		logger.Warn("unable to register metric", "err", err)
	}
}

func (o *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	return getOrCreate(&o.counters, name, func() CountMeter {
		meter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		register(meter)
		return &promCountMeter{counter: meter}
	})
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return getOrCreate(&o.counterVecs, name, func() CountVecMeter {
		meter := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		register(meter)
		return &promCountVecMeter{counter: meter}
	})
}

func (o *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	return getOrCreate(&o.histograms, name, func() HistogramMeter {
		floatBuckets := make([]float64, 0, len(buckets))
		for _, bucket := range buckets {
			floatBuckets = append(floatBuckets, float64(bucket))
		}
		meter := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets,
		})
		register(meter)
		return &promHistogramMeter{histogram: meter}
	})
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return getOrCreate(&o.gauges, name, func() GaugeMeter {
		meter := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		register(meter)
		return &promGaugeMeter{gauge: meter}
	})
}

func (o *prometheusMetrics) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return getOrCreate(&o.gaugeVecs, name, func() GaugeVecMeter {
		meter := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
		register(meter)
		return &promGaugeVecMeter{gauge: meter}
	})
}

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (c *promHistogramMeter) Observe(i int64) {
	c.histogram.Observe(float64(i))
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (c *promGaugeMeter) Add(i int64) {
	c.gauge.Add(float64(i))
}

func (c *promGaugeMeter) Set(i int64) {
	c.gauge.Set(float64(i))
}

type promGaugeVecMeter struct {
	gauge *prometheus.GaugeVec
}

func (c *promGaugeVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.gauge.With(labels).Add(float64(i))
}

func (c *promGaugeVecMeter) SetWithLabel(i int64, labels map[string]string) {
	c.gauge.With(labels).Set(float64(i))
}
