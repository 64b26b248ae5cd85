// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordFetchSuccess(feedID string)
	RecordFetchFailure(feedID string, reason string)
	RecordParseFailure(feedID string)
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordJobsImported(count int)
	RecordJobPosted()
	RecordApplicationSubmitted()
	RecordNotificationCreated(notificationType string)
	RecordNotificationFailure(notificationType string)
	RecordAssistantCall(useCase string)
	RecordAssistantFailure(useCase string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchSuccess      prometheus.Counter
	fetchFail         prometheus.Counter
	parseFail         prometheus.Counter
	httpStatus        *prometheus.CounterVec
	fetchLatency      prometheus.Histogram
	jobsImported      prometheus.Counter
	jobsPosted        prometheus.Counter
	applications      prometheus.Counter
	notifications     *prometheus.CounterVec
	notificationFails *prometheus.CounterVec
	assistantCalls    *prometheus.CounterVec
	assistantFails    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobman_feed_fetch_success_total",
			Help: "求人フィードフェッチ成功の合計数",
		}),
		fetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobman_feed_fetch_fail_total",
			Help: "求人フィードフェッチ失敗の合計数",
		}),
		parseFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobman_feed_parse_fail_total",
			Help: "求人フィードパース失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobman_feed_http_status_total",
			Help: "フィードフェッチのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobman_feed_fetch_latency_seconds",
			Help:    "求人フィードフェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		jobsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobman_jobs_imported_total",
			Help: "フィードから取り込まれた求人の合計数",
		}),
		applications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobman_applications_submitted_total",
			Help: "提出された応募の合計数",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobman_notifications_created_total",
			Help: "作成された通知の種別ごとの合計数",
		}, []string{"type"}),
		notificationFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobman_notifications_fail_total",
			Help: "作成に失敗した通知の種別ごとの合計数",
		}, []string{"type"}),
		jobsPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobman_jobs_posted_total",
			Help: "企業により投稿された求人の合計数",
		}),
		assistantCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobman_assistant_calls_total",
			Help: "AIアシスタント呼び出しの用途別合計数",
		}, []string{"use_case"}),
		assistantFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobman_assistant_fail_total",
			Help: "AIアシスタント呼び出し失敗の用途別合計数",
		}, []string{"use_case"}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.parseFail,
		c.httpStatus,
		c.fetchLatency,
		c.jobsImported,
		c.jobsPosted,
		c.applications,
		c.notifications,
		c.notificationFails,
		c.assistantCalls,
		c.assistantFails,
	)

	return c
}

// RecordFetchSuccess はフェッチ成功を記録する。
func (c *Collector) RecordFetchSuccess(feedID string) {
	c.fetchSuccess.Inc()
}

// RecordFetchFailure はフェッチ失敗を記録する。
func (c *Collector) RecordFetchFailure(feedID string, reason string) {
	c.fetchFail.Inc()
}

// RecordParseFailure はパース失敗を記録する。
func (c *Collector) RecordParseFailure(feedID string) {
	c.parseFail.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency はフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordJobsImported はフィードから取り込まれた求人数を記録する。
func (c *Collector) RecordJobsImported(count int) {
	c.jobsImported.Add(float64(count))
}

// RecordJobPosted は企業による求人の投稿を記録する。
func (c *Collector) RecordJobPosted() {
	c.jobsPosted.Inc()
}

// RecordApplicationSubmitted は応募の提出を記録する。
func (c *Collector) RecordApplicationSubmitted() {
	c.applications.Inc()
}

// RecordNotificationCreated は通知の作成を記録する。
func (c *Collector) RecordNotificationCreated(notificationType string) {
	c.notifications.WithLabelValues(notificationType).Inc()
}

// RecordNotificationFailure は通知作成の失敗を記録する。
// 応募や審査の本処理は通知失敗の影響を受けないため、
// 失敗の観測はこのカウンターとログが唯一の手段になる。
func (c *Collector) RecordNotificationFailure(notificationType string) {
	c.notificationFails.WithLabelValues(notificationType).Inc()
}

// RecordAssistantCall はAIアシスタント呼び出しを記録する。
func (c *Collector) RecordAssistantCall(useCase string) {
	c.assistantCalls.WithLabelValues(useCase).Inc()
}

// RecordAssistantFailure はAIアシスタント呼び出しの失敗を記録する。
// 失敗は謝罪文の応答に置き換えられるため、レスポンスからは観測できない。
func (c *Collector) RecordAssistantFailure(useCase string) {
	c.assistantFails.WithLabelValues(useCase).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// /metricsエンドポイントとしてルーターに登録して使う。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
