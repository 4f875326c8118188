package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// счётчики Prometheus, отдаются на GET /metrics
var (
	// Redirects - исходы обработки переходов по отслеживаемым ссылкам
	// (outcome: redirect, capture_page, fallback)
	Redirects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_redirects_total",
		Help: "Количество обработанных переходов по исходам",
	}, []string{"outcome"})

	// VisitsRecorded - сколько посещений записано в хранилище
	VisitsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_visits_recorded_total",
		Help: "Количество записанных посещений",
	})

	// GeoMerges - исходы приёма геолокации от браузеров (result: merged, missing)
	GeoMerges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_geolocation_merges_total",
		Help: "Количество попыток дописать геолокацию в посещение",
	}, []string{"result"})
)
