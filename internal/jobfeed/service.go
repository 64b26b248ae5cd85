// Package jobfeed は外部求人フィードの登録・管理と求人の取り込みを提供する。
package jobfeed

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobman/internal/model"
	"github.com/hitoshi/jobman/internal/repository"
	"github.com/hitoshi/jobman/internal/security"
)

// Service は求人フィードの登録・管理のサービス層。
// 登録時はSSRFガードによる事前検証を必ず通す。
type Service struct {
	feedRepo   repository.JobFeedRepository
	ssrfGuard  security.SSRFGuardService
	discoverer FeedDiscoverer
}

// NewService はServiceを生成する。
// discovererがnilの場合、フィードURLの自動検出は行わず入力URLをそのまま登録する。
func NewService(feedRepo repository.JobFeedRepository, ssrfGuard security.SSRFGuardService, discoverer FeedDiscoverer) *Service {
	return &Service{
		feedRepo:   feedRepo,
		ssrfGuard:  ssrfGuard,
		discoverer: discoverer,
	}
}

// Register は外部求人フィードを登録する。求人企業ロールのユーザーのみ実行できる。
// フロー: URL構造検証 → SSRFガード検証 → フィードURL自動検出 → 重複チェック → フィード保存
func (s *Service) Register(ctx context.Context, actor *model.User, feedURL string) (*model.JobFeed, error) {
	if actor.Role != model.RoleEmployer {
		return nil, model.NewForbiddenError("フィードの登録には求人企業ロールが必要です")
	}

	feedURL = strings.TrimSpace(feedURL)
	parsed, err := url.Parse(feedURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, model.NewInvalidURLError("URLの形式が正しくありません")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, model.NewInvalidURLError("http/https以外のスキームは使用できません")
	}

	if err := s.ssrfGuard.ValidateURL(feedURL); err != nil {
		slog.Warn("feed URL blocked by SSRF guard",
			slog.String("employer_id", actor.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewSSRFBlockedError()
	}

	// HTMLページが指定された場合はheadタグから求人フィードのURLを解決する
	if s.discoverer != nil {
		resolved, err := s.discoverer.DiscoverFeedURL(ctx, feedURL)
		if err != nil {
			return nil, err
		}
		if resolved != feedURL {
			// 解決後のURLも入力URLと同じ基準で検証する
			if err := s.ssrfGuard.ValidateURL(resolved); err != nil {
				slog.Warn("resolved feed URL blocked by SSRF guard",
					slog.String("employer_id", actor.ID),
					slog.String("resolved_url", resolved),
					slog.String("error", err.Error()),
				)
				return nil, model.NewSSRFBlockedError()
			}
			slog.Info("feed URL resolved by discovery",
				slog.String("input_url", feedURL),
				slog.String("resolved_url", resolved),
			)
			feedURL = resolved
		}
	}

	existing, err := s.feedRepo.FindByFeedURL(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("フィードの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateFeedError()
	}

	now := time.Now()
	feed := &model.JobFeed{
		ID:          uuid.New().String(),
		EmployerID:  actor.ID,
		FeedURL:     feedURL,
		Title:       feedURL, // 初期タイトルはフィードURL（パース時に更新される）
		FetchStatus: model.FetchStatusActive,
		NextFetchAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.feedRepo.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("フィードの保存に失敗しました: %w", err)
	}

	slog.Info("job feed registered",
		slog.String("feed_id", feed.ID),
		slog.String("employer_id", actor.ID),
	)

	return feed, nil
}

// List は自社が登録したフィードの一覧を返す。
func (s *Service) List(ctx context.Context, actor *model.User) ([]*model.JobFeed, error) {
	if actor.Role != model.RoleEmployer {
		return nil, model.NewForbiddenError("フィード一覧の閲覧には求人企業ロールが必要です")
	}

	feeds, err := s.feedRepo.ListByEmployer(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("フィード一覧の取得に失敗しました: %w", err)
	}
	return feeds, nil
}

// Get はフィード情報を取得する。登録した企業のみ閲覧できる。
func (s *Service) Get(ctx context.Context, actor *model.User, feedID string) (*model.JobFeed, error) {
	feed, err := s.feedRepo.FindByID(ctx, feedID)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}
	if feed == nil {
		return nil, model.NewFeedNotFoundError(feedID)
	}
	if feed.EmployerID != actor.ID {
		return nil, model.NewForbiddenError("フィードの閲覧は登録した企業のみ実行できます")
	}
	return feed, nil
}

// Delete はフィードを削除する。登録した企業のみ実行できる。
// 取り込み済みの求人は削除されず、フィードへの参照だけが切れる。
func (s *Service) Delete(ctx context.Context, actor *model.User, feedID string) error {
	feed, err := s.feedRepo.FindByID(ctx, feedID)
	if err != nil {
		return fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}
	if feed == nil {
		return model.NewFeedNotFoundError(feedID)
	}
	if feed.EmployerID != actor.ID {
		return model.NewForbiddenError("フィードの削除は登録した企業のみ実行できます")
	}

	if err := s.feedRepo.Delete(ctx, feedID); err != nil {
		return fmt.Errorf("フィードの削除に失敗しました: %w", err)
	}

	slog.Info("job feed deleted",
		slog.String("feed_id", feedID),
		slog.String("employer_id", actor.ID),
	)
	return nil
}
