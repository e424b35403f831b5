package monitoring

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Order lifecycle metrics
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hilo_bot_orders_total",
			Help: "Total number of order transitions executed",
		},
		[]string{"type"},
	)

	realizedPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hilo_bot_realized_pnl_total",
			Help: "Cumulative realized P&L in quote currency",
		},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hilo_bot_open_positions",
			Help: "Number of currently open positions",
		},
	)

	// Decision metrics
	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hilo_bot_evaluations_total",
			Help: "Total number of criteria evaluations",
		},
		[]string{"instrument", "fired"},
	)

	criteriaFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hilo_bot_criteria_fired_total",
			Help: "Total number of times each criterion fired",
		},
		[]string{"criterion"},
	)

	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hilo_bot_current_price",
			Help: "Last observed daily close per instrument",
		},
		[]string{"instrument"},
	)

	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hilo_bot_tick_duration_seconds",
			Help:    "Duration of a full evaluation tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hilo_bot_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(ordersTotal)
	prometheus.MustRegister(realizedPnL)
	prometheus.MustRegister(openPositions)
	prometheus.MustRegister(evaluationsTotal)
	prometheus.MustRegister(criteriaFired)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(tickDuration)
	prometheus.MustRegister(errorsTotal)
}

func RecordOrder(orderType string) {
	ordersTotal.WithLabelValues(orderType).Inc()
}

func RecordRealizedPnL(pnl float64) {
	realizedPnL.Add(pnl)
}

func SetOpenPositions(n int) {
	openPositions.Set(float64(n))
}

func RecordEvaluation(instrument string, fired bool) {
	evaluationsTotal.WithLabelValues(instrument, fmt.Sprintf("%t", fired)).Inc()
}

func RecordCriterionFired(criterion string) {
	criteriaFired.WithLabelValues(criterion).Inc()
}

func SetCurrentPrice(instrument string, price float64) {
	currentPrice.WithLabelValues(instrument).Set(price)
}

func ObserveTickDuration(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

func RecordError(category string) {
	errorsTotal.WithLabelValues(category).Inc()
}

// StartMetricsServer exposes the prometheus registry on /metrics.
func StartMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return server
}
