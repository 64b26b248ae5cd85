package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/jobman/internal/model"
	"github.com/hitoshi/jobman/internal/repository"
)

// newTestLogger はテスト用のslogロガーを生成する。
func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, nil))
}

// mockFeedRepo はJobFeedRepositoryのテスト用モック。
type mockFeedRepo struct {
	dueFeeds             []*model.JobFeed
	dueErr               error
	updateFetchStateFunc func(ctx context.Context, feed *model.JobFeed) error
}

var _ repository.JobFeedRepository = (*mockFeedRepo)(nil)

func (m *mockFeedRepo) FindByID(_ context.Context, _ string) (*model.JobFeed, error) {
	return nil, nil
}

func (m *mockFeedRepo) FindByFeedURL(_ context.Context, _ string) (*model.JobFeed, error) {
	return nil, nil
}

func (m *mockFeedRepo) Create(_ context.Context, _ *model.JobFeed) error { return nil }

func (m *mockFeedRepo) ListByEmployer(_ context.Context, _ string) ([]*model.JobFeed, error) {
	return nil, nil
}

func (m *mockFeedRepo) ListDueForFetch(_ context.Context, _ int) ([]*model.JobFeed, error) {
	return m.dueFeeds, m.dueErr
}

func (m *mockFeedRepo) UpdateFetchState(ctx context.Context, feed *model.JobFeed) error {
	if m.updateFetchStateFunc != nil {
		return m.updateFetchStateFunc(ctx, feed)
	}
	return nil
}

func (m *mockFeedRepo) Delete(_ context.Context, _ string) error { return nil }

// mockImporter はJobImporterのテスト用モック。
type mockImporter struct {
	insertCount int
	updateCount int
	err         error
	calledWith  []model.ParsedJobPosting
}

func (m *mockImporter) ImportPostings(_ context.Context, _ *model.JobFeed, postings []model.ParsedJobPosting) (int, int, error) {
	m.calledWith = postings
	return m.insertCount, m.updateCount, m.err
}

// mockSSRFGuard はSSRFValidatorのテスト用モック。
type mockSSRFGuard struct {
	validateErr error
}

func (m *mockSSRFGuard) NewSafeClient(timeout time.Duration, _ int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (m *mockSSRFGuard) ValidateURL(_ string) error {
	return m.validateErr
}

// nopMetrics はMetricsCollectorのテスト用no-op実装。
type nopMetrics struct{}

func (nopMetrics) RecordFetchSuccess(string)         {}
func (nopMetrics) RecordFetchFailure(string, string) {}
func (nopMetrics) RecordParseFailure(string)         {}
func (nopMetrics) RecordHTTPStatus(int)              {}
func (nopMetrics) RecordFetchLatency(time.Duration)  {}
func (nopMetrics) RecordJobsImported(int)            {}
func (nopMetrics) RecordApplicationSubmitted()       {}
func (nopMetrics) RecordNotificationCreated(string)  {}
func (nopMetrics) RecordNotificationFailure(string)  {}
func (nopMetrics) RecordJobPosted()                  {}
func (nopMetrics) RecordAssistantCall(string)        {}
func (nopMetrics) RecordAssistantFailure(string)     {}

func newTestFetcher(feedRepo *mockFeedRepo, importer *mockImporter, guard *mockSSRFGuard) *Fetcher {
	var buf bytes.Buffer
	return NewFetcher(feedRepo, importer, guard, nopMetrics{}, newTestLogger(&buf), 10*time.Second, 5*1024*1024, 60)
}

const sampleRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Careers</title>
    <item>
      <title>バックエンドエンジニア</title>
      <link>https://careers.example.com/jobs/1</link>
      <guid>job-guid-1</guid>
      <category>東京</category>
      <description>Goでの開発ポジション</description>
    </item>
  </channel>
</rss>`

// TestFetcher_Fetch_Success200 は200応答でフィードが取り込まれることを検証する。
func TestFetcher_Fetch_Success200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Header().Set("ETag", `"abc123"`)
		w.Header().Set("Last-Modified", "Wed, 01 Jan 2025 00:00:00 GMT")
		fmt.Fprint(w, sampleRSS)
	}))
	defer server.Close()

	updateCalled := false
	feedRepo := &mockFeedRepo{
		updateFetchStateFunc: func(ctx context.Context, feed *model.JobFeed) error {
			updateCalled = true
			return nil
		},
	}
	importer := &mockImporter{insertCount: 1}
	f := newTestFetcher(feedRepo, importer, &mockSSRFGuard{})

	feed := &model.JobFeed{
		ID:          "feed-1",
		FeedURL:     server.URL,
		FetchStatus: model.FetchStatusActive,
	}
	if err := f.Fetch(context.Background(), feed); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if !updateCalled {
		t.Error("UpdateFetchState should be called")
	}
	if feed.Title != "Example Careers" {
		t.Errorf("Title = %q, want feed title from parsed content", feed.Title)
	}
	if feed.ETag != `"abc123"` {
		t.Errorf("ETag = %q, want stored from response", feed.ETag)
	}
	if feed.LastModified != "Wed, 01 Jan 2025 00:00:00 GMT" {
		t.Errorf("LastModified = %q", feed.LastModified)
	}
	if feed.ConsecutiveErrors != 0 {
		t.Errorf("ConsecutiveErrors = %d, want 0", feed.ConsecutiveErrors)
	}
	if len(importer.calledWith) != 1 {
		t.Fatalf("importer received %d postings, want 1", len(importer.calledWith))
	}
	posting := importer.calledWith[0]
	if posting.Guid != "job-guid-1" {
		t.Errorf("Guid = %q, want job-guid-1", posting.Guid)
	}
	if posting.Location != "東京" {
		t.Errorf("Location = %q, want 東京 (first category)", posting.Location)
	}
}

// TestFetcher_Fetch_NotModified304 は304応答で取り込みがスキップされることを検証する。
func TestFetcher_Fetch_NotModified304(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != `"abc123"` {
			t.Errorf("If-None-Match = %q, want stored ETag", r.Header.Get("If-None-Match"))
		}
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	importer := &mockImporter{}
	f := newTestFetcher(&mockFeedRepo{}, importer, &mockSSRFGuard{})

	feed := &model.JobFeed{
		ID:          "feed-1",
		FeedURL:     server.URL,
		ETag:        `"abc123"`,
		FetchStatus: model.FetchStatusActive,
	}
	if err := f.Fetch(context.Background(), feed); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if importer.calledWith != nil {
		t.Error("importer should not be called on 304")
	}
	if feed.NextFetchAt.Before(time.Now()) {
		t.Error("NextFetchAt should be advanced on 304")
	}
}

// TestFetcher_Fetch_NotFound404_StopsFeed は404応答でフィードが停止されることを検証する。
func TestFetcher_Fetch_NotFound404_StopsFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := newTestFetcher(&mockFeedRepo{}, &mockImporter{}, &mockSSRFGuard{})

	feed := &model.JobFeed{
		ID:          "feed-1",
		FeedURL:     server.URL,
		FetchStatus: model.FetchStatusActive,
	}
	if err := f.Fetch(context.Background(), feed); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if feed.FetchStatus != model.FetchStatusStopped {
		t.Errorf("FetchStatus = %v, want stopped", feed.FetchStatus)
	}
}

// TestFetcher_Fetch_ServerError500_AppliesBackoff は500応答でバックオフが適用されることを検証する。
func TestFetcher_Fetch_ServerError500_AppliesBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := newTestFetcher(&mockFeedRepo{}, &mockImporter{}, &mockSSRFGuard{})

	feed := &model.JobFeed{
		ID:          "feed-1",
		FeedURL:     server.URL,
		FetchStatus: model.FetchStatusActive,
	}
	if err := f.Fetch(context.Background(), feed); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if feed.ConsecutiveErrors != 1 {
		t.Errorf("ConsecutiveErrors = %d, want 1", feed.ConsecutiveErrors)
	}
	if feed.FetchStatus != model.FetchStatusActive {
		t.Errorf("FetchStatus = %v, want active（バックオフでは停止しない）", feed.FetchStatus)
	}
	if feed.NextFetchAt.Before(time.Now().Add(29 * time.Minute)) {
		t.Errorf("NextFetchAt = %v, want at least 30 minutes later", feed.NextFetchAt)
	}
}

// TestFetcher_Fetch_SSRFBlocked はSSRF検証失敗でフィードが停止されることを検証する。
func TestFetcher_Fetch_SSRFBlocked(t *testing.T) {
	guard := &mockSSRFGuard{validateErr: fmt.Errorf("blocked host: localhost")}
	f := newTestFetcher(&mockFeedRepo{}, &mockImporter{}, guard)

	feed := &model.JobFeed{
		ID:          "feed-1",
		FeedURL:     "http://localhost/jobs.rss",
		FetchStatus: model.FetchStatusActive,
	}
	err := f.Fetch(context.Background(), feed)
	if err == nil {
		t.Fatal("expected error for SSRF-blocked URL")
	}

	if feed.FetchStatus != model.FetchStatusStopped {
		t.Errorf("FetchStatus = %v, want stopped", feed.FetchStatus)
	}
}

// TestFetcher_Fetch_InvalidXML_CountsParseFailure は不正なXMLでパース失敗が記録されることを検証する。
func TestFetcher_Fetch_InvalidXML_CountsParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not XML at all")
	}))
	defer server.Close()

	f := newTestFetcher(&mockFeedRepo{}, &mockImporter{}, &mockSSRFGuard{})

	feed := &model.JobFeed{
		ID:          "feed-1",
		FeedURL:     server.URL,
		FetchStatus: model.FetchStatusActive,
	}
	// パース失敗はフェッチエラーとしない
	if err := f.Fetch(context.Background(), feed); err != nil {
		t.Fatalf("Fetch() error = %v, want nil for parse failure", err)
	}

	if feed.ConsecutiveErrors != 1 {
		t.Errorf("ConsecutiveErrors = %d, want 1", feed.ConsecutiveErrors)
	}
}

// TestFetcher_Fetch_ParseFailureThreshold_StopsFeed はパース失敗10回目でフィードが停止することを検証する。
func TestFetcher_Fetch_ParseFailureThreshold_StopsFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "broken")
	}))
	defer server.Close()

	f := newTestFetcher(&mockFeedRepo{}, &mockImporter{}, &mockSSRFGuard{})

	feed := &model.JobFeed{
		ID:                "feed-1",
		FeedURL:           server.URL,
		FetchStatus:       model.FetchStatusActive,
		ConsecutiveErrors: 9,
	}
	if err := f.Fetch(context.Background(), feed); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if feed.FetchStatus != model.FetchStatusStopped {
		t.Errorf("FetchStatus = %v, want stopped after 10 consecutive parse failures", feed.FetchStatus)
	}
}

// TestConvertGofeedEntries_ContentFallback はContentが空の場合にDescriptionが使われることを検証する。
func TestConvertGofeedEntries_ContentFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer server.Close()

	importer := &mockImporter{}
	f := newTestFetcher(&mockFeedRepo{}, importer, &mockSSRFGuard{})

	feed := &model.JobFeed{ID: "feed-1", FeedURL: server.URL, FetchStatus: model.FetchStatusActive}
	if err := f.Fetch(context.Background(), feed); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(importer.calledWith) != 1 {
		t.Fatalf("importer received %d postings, want 1", len(importer.calledWith))
	}
	if importer.calledWith[0].Description != "Goでの開発ポジション" {
		t.Errorf("Description = %q, want fallback to item description", importer.calledWith[0].Description)
	}
}
