package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationTotal counts cart mutations by operation.
	CartMutationTotal *prometheus.CounterVec
	// CatalogSearchTotal counts catalog search requests.
	CatalogSearchTotal prometheus.Counter
	// CatalogSearchResults records how many articles a search returned.
	CatalogSearchResults prometheus.Histogram
	// SaleSubmitTotal counts sale and quote submissions by outcome.
	SaleSubmitTotal *prometheus.CounterVec
	// SaleSubmitLatency records upstream submission latency in milliseconds.
	SaleSubmitLatency prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutation_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"op"})
		CatalogSearchTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_search_total",
			Help:      "Total number of catalog searches served.",
		})
		CatalogSearchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_search_results",
			Help:      "Number of articles returned per catalog search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		})
		SaleSubmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_submit_total",
			Help:      "Count of sale and quote submissions by outcome.",
		}, []string{"kind", "result"})
		SaleSubmitLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_submit_duration_ms",
			Help:      "Latency for upstream sale submissions in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		})

		mustRegisterCollector(reg, CartMutationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartMutationTotal = v
			}
		})
		mustRegisterCollector(reg, CatalogSearchTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CatalogSearchTotal = v
			}
		})
		mustRegisterCollector(reg, CatalogSearchResults, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CatalogSearchResults = v
			}
		})
		mustRegisterCollector(reg, SaleSubmitTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SaleSubmitTotal = v
			}
		})
		mustRegisterCollector(reg, SaleSubmitLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				SaleSubmitLatency = v
			}
		})
	})
}

// CartMutation records a cart operation. Safe before metric registration.
func CartMutation(op string) {
	if CartMutationTotal != nil {
		CartMutationTotal.WithLabelValues(op).Inc()
	}
}

// CatalogSearch records a served search and its result count.
func CatalogSearch(results int) {
	if CatalogSearchTotal != nil {
		CatalogSearchTotal.Inc()
	}
	if CatalogSearchResults != nil {
		CatalogSearchResults.Observe(float64(results))
	}
}

// SaleSubmit records a submission outcome for a sale or quote.
func SaleSubmit(kind, result string, durationMS float64) {
	if SaleSubmitTotal != nil {
		SaleSubmitTotal.WithLabelValues(kind, result).Inc()
	}
	if SaleSubmitLatency != nil {
		SaleSubmitLatency.Observe(durationMS)
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
