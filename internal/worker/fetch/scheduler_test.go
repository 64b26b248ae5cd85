package fetch

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hitoshi/jobman/internal/model"
)

// mockFetcher はJobFeedFetcherServiceのテスト用モック。
type mockFetcher struct {
	mu       sync.Mutex
	fetched  []string
	fetchErr error
	delay    time.Duration
	active   int32
	maxSeen  int32
}

func (m *mockFetcher) Fetch(_ context.Context, feed *model.JobFeed) error {
	current := atomic.AddInt32(&m.active, 1)
	defer atomic.AddInt32(&m.active, -1)

	// 並列実行数の最大値を記録
	for {
		seen := atomic.LoadInt32(&m.maxSeen)
		if current <= seen || atomic.CompareAndSwapInt32(&m.maxSeen, seen, current) {
			break
		}
	}

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	m.fetched = append(m.fetched, feed.ID)
	m.mu.Unlock()

	return m.fetchErr
}

// TestNewScheduler_DefaultConcurrency はmaxConcurrencyが0以下の場合のデフォルト値を検証する。
func TestNewScheduler_DefaultConcurrency(t *testing.T) {
	var buf bytes.Buffer
	s := NewScheduler(&mockFeedRepo{}, &mockFetcher{}, newTestLogger(&buf), 0)
	if s.maxConcurrency != 10 {
		t.Errorf("maxConcurrency = %d, want 10", s.maxConcurrency)
	}
}

// TestRunOnce_FetchesAllDueFeeds は対象フィードが全てフェッチされることを検証する。
func TestRunOnce_FetchesAllDueFeeds(t *testing.T) {
	feeds := []*model.JobFeed{
		{ID: "feed-1", FeedURL: "https://a.example.com/jobs.rss"},
		{ID: "feed-2", FeedURL: "https://b.example.com/jobs.rss"},
		{ID: "feed-3", FeedURL: "https://c.example.com/jobs.rss"},
	}
	repo := &mockFeedRepo{dueFeeds: feeds}
	fetcher := &mockFetcher{}
	var buf bytes.Buffer
	s := NewScheduler(repo, fetcher, newTestLogger(&buf), 10)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if len(fetcher.fetched) != 3 {
		t.Errorf("fetched %d feeds, want 3", len(fetcher.fetched))
	}
}

// TestRunOnce_NoDueFeeds は対象フィードがない場合に何もしないことを検証する。
func TestRunOnce_NoDueFeeds(t *testing.T) {
	repo := &mockFeedRepo{dueFeeds: nil}
	fetcher := &mockFetcher{}
	var buf bytes.Buffer
	s := NewScheduler(repo, fetcher, newTestLogger(&buf), 10)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(fetcher.fetched) != 0 {
		t.Errorf("fetched %d feeds, want 0", len(fetcher.fetched))
	}
}

// TestRunOnce_RepoError はフィード取得エラーがそのまま返ることを検証する。
func TestRunOnce_RepoError(t *testing.T) {
	repo := &mockFeedRepo{dueErr: errors.New("db connection lost")}
	var buf bytes.Buffer
	s := NewScheduler(repo, &mockFetcher{}, newTestLogger(&buf), 10)

	if err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error from repo")
	}
}

// TestRunOnce_FetchErrorDoesNotAbortCycle は個別フィードの失敗が他のフェッチを妨げないことを検証する。
func TestRunOnce_FetchErrorDoesNotAbortCycle(t *testing.T) {
	feeds := []*model.JobFeed{
		{ID: "feed-1"},
		{ID: "feed-2"},
	}
	repo := &mockFeedRepo{dueFeeds: feeds}
	fetcher := &mockFetcher{fetchErr: errors.New("fetch failed")}
	var buf bytes.Buffer
	s := NewScheduler(repo, fetcher, newTestLogger(&buf), 10)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v, want nil despite per-feed errors", err)
	}
	if len(fetcher.fetched) != 2 {
		t.Errorf("fetched %d feeds, want 2", len(fetcher.fetched))
	}
}

// TestRunOnce_RespectsConcurrencyLimit は並列実行数が上限を超えないことを検証する。
func TestRunOnce_RespectsConcurrencyLimit(t *testing.T) {
	feeds := make([]*model.JobFeed, 8)
	for i := range feeds {
		feeds[i] = &model.JobFeed{ID: string(rune('a' + i))}
	}
	repo := &mockFeedRepo{dueFeeds: feeds}
	fetcher := &mockFetcher{delay: 20 * time.Millisecond}
	var buf bytes.Buffer
	s := NewScheduler(repo, fetcher, newTestLogger(&buf), 2)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if fetcher.maxSeen > 2 {
		t.Errorf("max concurrent fetches = %d, want <= 2", fetcher.maxSeen)
	}
	if len(fetcher.fetched) != 8 {
		t.Errorf("fetched %d feeds, want 8", len(fetcher.fetched))
	}
}

// TestStart_StopsOnContextCancel はコンテキストキャンセルでスケジューラが停止することを検証する。
func TestStart_StopsOnContextCancel(t *testing.T) {
	repo := &mockFeedRepo{}
	fetcher := &mockFetcher{}
	var buf bytes.Buffer
	s := NewScheduler(repo, fetcher, newTestLogger(&buf), 10)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Start(ctx, time.Hour)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
