package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter exposes one or more labeled Stats DBs on an HTTP
// endpoint (counters as Prometheus counters, formulas as gauges), for live
// observation of a long-running simulation.
type PrometheusExporter struct {
	registry *prometheus.Registry
	dbs      map[string]*DB
}

// NewPrometheusExporter builds an exporter over the given labeled DBs
// (typically one per core plus "uncore") and registers itself as an
// unchecked collector (its metric set is dynamic, see Collect/Describe).
func NewPrometheusExporter(dbs map[string]*DB) *PrometheusExporter {
	e := &PrometheusExporter{registry: prometheus.NewRegistry(), dbs: dbs}
	e.registry.MustRegister(e)
	return e
}

// Handler returns the HTTP handler to mount (e.g. at /metrics).
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Collect and Describe implement prometheus.Collector by walking each
// DB's counter tree on every scrape, rather than pre-registering a fixed
// gauge set, since the counter tree's membership can grow as new stall
// reasons/components appear.
func (e *PrometheusExporter) Collect(ch chan<- prometheus.Metric) {
	for label, db := range e.dbs {
		for _, name := range db.CounterNames() {
			desc := prometheus.NewDesc("oosim_"+name, "oosim counter "+name, nil, prometheus.Labels{"component": label})
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(db.Get(name)))
		}
		for _, name := range db.FormulaNames() {
			v, err := db.Evaluate(name)
			if err != nil {
				continue
			}
			desc := prometheus.NewDesc("oosim_"+name, "oosim formula "+name, nil, prometheus.Labels{"component": label})
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v)
		}
	}
}

func (e *PrometheusExporter) Describe(ch chan<- *prometheus.Desc) {
	// Intentionally unchecked: this collector's metric set is dynamic
	// (see Collect), so it is registered with
	// prometheus.Registry.MustRegister using the unchecked-collector
	// convention rather than declaring a fixed Desc set up front.
}
