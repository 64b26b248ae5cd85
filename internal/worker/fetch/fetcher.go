package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/jobman/internal/metrics"
	"github.com/hitoshi/jobman/internal/model"
	"github.com/hitoshi/jobman/internal/repository"
)

// JobImporter はパース済みエントリの取り込み処理のインターフェース。
type JobImporter interface {
	ImportPostings(ctx context.Context, feed *model.JobFeed, postings []model.ParsedJobPosting) (int, int, error)
}

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// Fetcher は個別の求人フィードのHTTPフェッチとパースを行う。
// ETag/Last-Modifiedを使用した条件付きGET、SSRF検証、
// gofeedによるパース、ImporterServiceによる求人取り込みを実行する。
type Fetcher struct {
	feedRepo        repository.JobFeedRepository
	importer        JobImporter
	ssrfGuard       SSRFValidator
	metrics         metrics.MetricsCollector
	logger          *slog.Logger
	timeout         time.Duration
	maxBodySize     int64
	intervalMinutes int
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
// intervalMinutesが0以下の場合はデフォルト値60を使用する。
func NewFetcher(
	feedRepo repository.JobFeedRepository,
	importer JobImporter,
	ssrfGuard SSRFValidator,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
	intervalMinutes int,
) *Fetcher {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	return &Fetcher{
		feedRepo:        feedRepo,
		importer:        importer,
		ssrfGuard:       ssrfGuard,
		metrics:         collector,
		logger:          logger,
		timeout:         timeout,
		maxBodySize:     maxBodySize,
		intervalMinutes: intervalMinutes,
	}
}

// Fetch はフィードをフェッチし、結果に応じてフィード状態を更新する。
// JobFeedFetcherServiceインターフェースを実装する。
func (f *Fetcher) Fetch(ctx context.Context, feed *model.JobFeed) error {
	start := time.Now()

	// SSRF検証
	if err := f.ssrfGuard.ValidateURL(feed.FeedURL); err != nil {
		f.logger.Error("SSRF検証に失敗しました",
			slog.String("feed_id", feed.ID),
			slog.String("feed_url", feed.FeedURL),
			slog.String("error", err.Error()),
		)
		f.metrics.RecordFetchFailure(feed.ID, "ssrf_blocked")
		ApplyStopFeed(feed, fmt.Sprintf("SSRF検証失敗: %s", err.Error()))
		if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
			f.logger.Error("フィード状態の更新に失敗しました",
				slog.String("feed_id", feed.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	// HTTPリクエスト構築
	client := f.ssrfGuard.NewSafeClient(f.timeout, f.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.FeedURL, nil)
	if err != nil {
		return fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	req.Header.Set("User-Agent", "Jobman/1.0 Job Feed Importer")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	// 条件付きGET: ETag
	if feed.ETag != "" {
		req.Header.Set("If-None-Match", feed.ETag)
	}
	// 条件付きGET: Last-Modified
	if feed.LastModified != "" {
		req.Header.Set("If-Modified-Since", feed.LastModified)
	}

	// HTTPリクエスト実行
	resp, err := client.Do(req)
	if err != nil {
		f.logger.Error("HTTPリクエストに失敗しました",
			slog.String("feed_id", feed.ID),
			slog.String("feed_url", feed.FeedURL),
			slog.String("error", err.Error()),
		)
		f.metrics.RecordFetchFailure(feed.ID, "http_error")
		ApplyBackoff(feed, fmt.Sprintf("HTTPリクエスト失敗: %s", err.Error()))
		if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
			f.logger.Error("フィード状態の更新に失敗しました",
				slog.String("feed_id", feed.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return fmt.Errorf("HTTPリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)
	f.metrics.RecordHTTPStatus(resp.StatusCode)
	f.metrics.RecordFetchLatency(duration)

	// HTTPステータスに基づく処理分岐
	result := ClassifyHTTPStatus(resp.StatusCode)

	switch result {
	case FetchResultNotModified:
		// 304: コンテンツ未変更 - next_fetch_atのみ更新
		f.logger.Info("フィードは未変更です（304）",
			slog.String("feed_id", feed.ID),
			slog.String("feed_url", feed.FeedURL),
			slog.Int("http_status", resp.StatusCode),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		f.metrics.RecordFetchSuccess(feed.ID)
		ApplySuccess(feed, f.intervalMinutes)
		return f.feedRepo.UpdateFetchState(ctx, feed)

	case FetchResultStop:
		// 404/410/401/403: フェッチ停止
		reason := fmt.Sprintf("HTTPステータス %d によりフェッチを停止しました", resp.StatusCode)
		f.logger.Warn("フィードフェッチを停止します",
			slog.String("feed_id", feed.ID),
			slog.String("feed_url", feed.FeedURL),
			slog.Int("http_status", resp.StatusCode),
			slog.String("reason", reason),
		)
		f.metrics.RecordFetchFailure(feed.ID, "stopped")
		ApplyStopFeed(feed, reason)
		return f.feedRepo.UpdateFetchState(ctx, feed)

	case FetchResultBackoff:
		// 429/5xx: バックオフ
		reason := fmt.Sprintf("HTTPステータス %d によりバックオフを適用しました", resp.StatusCode)
		f.logger.Warn("フィードフェッチにバックオフを適用します",
			slog.String("feed_id", feed.ID),
			slog.String("feed_url", feed.FeedURL),
			slog.Int("http_status", resp.StatusCode),
			slog.Int("consecutive_errors", feed.ConsecutiveErrors+1),
		)
		f.metrics.RecordFetchFailure(feed.ID, "backoff")
		ApplyBackoff(feed, reason)
		return f.feedRepo.UpdateFetchState(ctx, feed)

	case FetchResultOK:
		// 200: 正常フェッチ - 以下で処理を続行
	default:
		// その他のステータスコード
		f.logger.Warn("予期しないHTTPステータスコード",
			slog.String("feed_id", feed.ID),
			slog.Int("http_status", resp.StatusCode),
		)
		f.metrics.RecordFetchFailure(feed.ID, "unexpected_status")
		ApplyBackoff(feed, fmt.Sprintf("予期しないHTTPステータス: %d", resp.StatusCode))
		return f.feedRepo.UpdateFetchState(ctx, feed)
	}

	// レスポンスボディを読み込み（最大サイズ制限付き）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("feed_id", feed.ID),
			slog.String("error", err.Error()),
		)
		f.metrics.RecordFetchFailure(feed.ID, "read_error")
		ApplyBackoff(feed, fmt.Sprintf("レスポンス読み取り失敗: %s", err.Error()))
		return f.feedRepo.UpdateFetchState(ctx, feed)
	}

	// ETag/Last-Modifiedを保存
	if etag := resp.Header.Get("ETag"); etag != "" {
		feed.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		feed.LastModified = lastMod
	}

	// gofeedでフィードをパース
	parser := gofeed.NewParser()
	parsedFeed, err := parser.ParseString(string(body))
	if err != nil {
		f.logger.Error("フィードのパースに失敗しました",
			slog.String("feed_id", feed.ID),
			slog.String("feed_url", feed.FeedURL),
			slog.String("error", err.Error()),
		)
		f.metrics.RecordParseFailure(feed.ID)
		ApplyParseFailure(feed, err.Error())
		if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
			f.logger.Error("フィード状態の更新に失敗しました",
				slog.String("feed_id", feed.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return nil // パース失敗はフェッチエラーとしない（カウントして継続）
	}

	// フィードタイトルを更新
	if parsedFeed.Title != "" {
		feed.Title = parsedFeed.Title
	}

	// gofeedのエントリをParsedJobPostingに変換
	postings := convertGofeedEntries(parsedFeed.Items)

	// ImporterServiceで求人を取り込み
	inserted, updated, err := f.importer.ImportPostings(ctx, feed, postings)
	if err != nil {
		f.logger.Error("求人の取り込みに失敗しました",
			slog.String("feed_id", feed.ID),
			slog.String("error", err.Error()),
		)
		f.metrics.RecordParseFailure(feed.ID)
		ApplyParseFailure(feed, fmt.Sprintf("求人取り込み失敗: %s", err.Error()))
		if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
			f.logger.Error("フィード状態の更新に失敗しました",
				slog.String("feed_id", feed.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return nil
	}

	f.metrics.RecordFetchSuccess(feed.ID)
	ApplySuccess(feed, f.intervalMinutes)

	// フィード状態を更新
	if updateErr := f.feedRepo.UpdateFetchState(ctx, feed); updateErr != nil {
		f.logger.Error("フィード状態の更新に失敗しました",
			slog.String("feed_id", feed.ID),
			slog.String("error", updateErr.Error()),
		)
		return updateErr
	}

	f.logger.Info("フィードフェッチが完了しました",
		slog.String("feed_id", feed.ID),
		slog.String("feed_url", feed.FeedURL),
		slog.Int("http_status", resp.StatusCode),
		slog.Int("jobs_inserted", inserted),
		slog.Int("jobs_updated", updated),
		slog.Int("entries_total", len(postings)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// convertGofeedEntries はgofeedのエントリをmodel.ParsedJobPostingに変換する。
func convertGofeedEntries(items []*gofeed.Item) []model.ParsedJobPosting {
	postings := make([]model.ParsedJobPosting, 0, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}

		posting := model.ParsedJobPosting{
			Guid:        item.GUID,
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Content,
		}

		// Contentが空の場合はDescriptionを使用
		if posting.Description == "" && item.Description != "" {
			posting.Description = item.Description
		}

		// 求人フィードの慣習として勤務地はカテゴリの先頭に入ることが多い
		if len(item.Categories) > 0 {
			posting.Location = item.Categories[0]
		}

		// 公開日時
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			posting.PublishedAt = &t
		} else if item.UpdatedParsed != nil {
			t := *item.UpdatedParsed
			posting.PublishedAt = &t
		}

		postings = append(postings, posting)
	}

	return postings
}
