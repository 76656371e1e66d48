package telemetry

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Метрики одного запуска аудита.
//
// Centinela — одноразовый batch-процесс, поэтому /metrics endpoint
// не поднимается: метрики при завершении выталкиваются в Pushgateway
// (если он сконфигурирован), откуда их забирает Prometheus.
var (
	// AlertsProduced — количество сформированных алертов по проверкам.
	AlertsProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "centinela_alerts_produced_total",
		Help: "Alerts produced per detection check.",
	}, []string{"check"})

	// MessagesSent — количество успешно доставленных сообщений.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "centinela_messages_sent_total",
		Help: "Messages successfully delivered to the recipient.",
	})

	// SendFailures — количество ошибок доставки по видам.
	SendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "centinela_send_failures_total",
		Help: "Delivery failures per error kind.",
	}, []string{"kind"})

	// CheckFailures — количество проверок, завершившихся ошибкой запроса.
	CheckFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "centinela_check_failures_total",
		Help: "Detection checks that failed at the query boundary.",
	}, []string{"check"})

	// RunDuration — длительность последнего запуска.
	RunDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "centinela_run_duration_seconds",
		Help: "Duration of the last audit run.",
	})
)

// PushMetrics выталкивает накопленные метрики в Pushgateway.
// Пустой url означает, что Pushgateway не сконфигурирован — no-op.
// Ошибка push не фатальна для запуска и только логируется.
func PushMetrics(url, job string, logger *slog.Logger) {
	if url == "" {
		return
	}

	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push(); err != nil {
		logger.Warn("failed to push metrics", "url", url, "error", err)
		return
	}

	logger.Debug("metrics pushed", "url", url, "job", job)
}
