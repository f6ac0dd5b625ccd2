package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"botstats/internal/models"
)

// Metrics exposes the aggregation figures to Prometheus. The lifetime
// totals are gauges, not counters: an admin can edit or reset them.
type Metrics struct {
	serversOnline prometheus.Gauge
	botsActive    prometheus.Gauge
	botsSpawned   prometheus.Gauge
	botsKilled    prometheus.Gauge
	reportsTotal  prometheus.Counter
	backupsTotal  *prometheus.CounterVec
}

// NewMetrics registers the collectors on the given registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	serversOnline := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "botstats", Name: "servers_online",
	})
	registerer.MustRegister(serversOnline)

	botsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "botstats", Name: "bots_active",
	})
	registerer.MustRegister(botsActive)

	botsSpawned := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "botstats", Name: "bots_spawned_lifetime",
	})
	registerer.MustRegister(botsSpawned)

	botsKilled := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "botstats", Name: "bots_killed_lifetime",
	})
	registerer.MustRegister(botsKilled)

	reportsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "botstats", Name: "reports_received_total",
	})
	registerer.MustRegister(reportsTotal)

	backupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "botstats",
			Name:      "backups_total",
		},
		[]string{"result"},
	)
	registerer.MustRegister(backupsTotal)

	return &Metrics{
		serversOnline: serversOnline,
		botsActive:    botsActive,
		botsSpawned:   botsSpawned,
		botsKilled:    botsKilled,
		reportsTotal:  reportsTotal,
		backupsTotal:  backupsTotal,
	}
}

// ObserveSnapshot refreshes the gauges from a snapshot.
func (m *Metrics) ObserveSnapshot(snap *models.StatsSnapshot) {
	if m == nil {
		return
	}
	m.serversOnline.Set(float64(snap.ServersOnline))
	m.botsActive.Set(float64(snap.BotsActive))
	m.botsSpawned.Set(float64(snap.BotsSpawnedTotal))
	m.botsKilled.Set(float64(snap.BotsKilledTotal))
}

// ReportReceived counts one ingested report.
func (m *Metrics) ReportReceived() {
	if m == nil {
		return
	}
	m.reportsTotal.Inc()
}

// BackupFinished counts one completed backup by outcome.
func (m *Metrics) BackupFinished(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.backupsTotal.WithLabelValues("failure").Inc()
		return
	}
	m.backupsTotal.WithLabelValues("success").Inc()
}
