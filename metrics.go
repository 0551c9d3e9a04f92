package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"strconv"
	"time"
)

var (
	toggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bbp_ajax_toggle_total",
		Help: "AJAX toggle requests by kind and response code.",
	}, []string{"kind", "code"})

	toggleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bbp_ajax_toggle_seconds",
		Help:    "Time spent handling an AJAX toggle request.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"kind"})
)

func observeToggle(kind string, code int, elapsed time.Duration) {
	toggleTotal.WithLabelValues(kind, strconv.Itoa(code)).Inc()
	toggleDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func metricsRoutes(router fiber.Router) {
	router.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
