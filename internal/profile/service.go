// Package profile はユーザープロフィールの管理と人材検索を提供する。
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobman/internal/model"
	"github.com/hitoshi/jobman/internal/repository"
	"github.com/hitoshi/jobman/internal/security"
)

// UpsertInput はプロフィール作成・更新の入力。
type UpsertInput struct {
	Name       string
	Email      string
	Phone      string
	Location   string
	Bio        string
	Skills     []string
	Experience string
	JobTitle   string
	ResumeURL  string
	AvatarURL  string
	IsPublic   bool
}

// Service はプロフィールに関するビジネスロジックを提供する。
// 自己紹介文はHTMLとして扱われるため、保存前に必ずサニタイズする。
type Service struct {
	profileRepo repository.ProfileRepository
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(profileRepo repository.ProfileRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		profileRepo: profileRepo,
		sanitizer:   sanitizer,
	}
}

// Get は自分のプロフィールを返す。未作成の場合はエラーを返す。
func (s *Service) Get(ctx context.Context, actor *model.User) (*model.UserProfile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError()
	}
	return profile, nil
}

// Upsert は自分のプロフィールを作成または更新する。
// プロフィールはユーザーごとに1件で、既存の行があれば内容を置き換える。
func (s *Service) Upsert(ctx context.Context, actor *model.User, input UpsertInput) (*model.UserProfile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = actor.Name
	}

	// created_atは新規作成時のみ使われる。既存行がある場合は
	// リポジトリ側のUPSERTがupdated_atだけを上書きする。
	now := time.Now()
	profile := &model.UserProfile{
		ID:         uuid.New().String(),
		UserID:     actor.ID,
		Name:       name,
		Email:      strings.TrimSpace(input.Email),
		Phone:      strings.TrimSpace(input.Phone),
		Location:   strings.TrimSpace(input.Location),
		Bio:        s.sanitizer.Sanitize(input.Bio),
		Skills:     normalizeSkills(input.Skills),
		Experience: input.Experience,
		JobTitle:   strings.TrimSpace(input.JobTitle),
		ResumeURL:  strings.TrimSpace(input.ResumeURL),
		AvatarURL:  strings.TrimSpace(input.AvatarURL),
		IsPublic:   input.IsPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("プロフィールの保存に失敗しました: %w", err)
	}

	slog.Info("profile upserted",
		slog.String("user_id", actor.ID),
		slog.Bool("is_public", profile.IsPublic),
	)

	saved, err := s.profileRepo.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	return saved, nil
}

// SearchPublic は公開プロフィールをスキルと居住地で検索する。
// 求人企業ロールのユーザーのみ実行できる。
func (s *Service) SearchPublic(ctx context.Context, actor *model.User, skills []string, location string) ([]*model.UserProfile, error) {
	if actor.Role != model.RoleEmployer {
		return nil, model.NewForbiddenError("人材検索には求人企業ロールが必要です")
	}

	profiles, err := s.profileRepo.SearchPublic(ctx, normalizeSkills(skills), strings.TrimSpace(location))
	if err != nil {
		return nil, fmt.Errorf("プロフィールの検索に失敗しました: %w", err)
	}
	return profiles, nil
}

func normalizeSkills(skills []string) []string {
	normalized := make([]string, 0, len(skills))
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
