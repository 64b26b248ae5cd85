// Package job は求人の投稿、検索、管理のビジネスロジックを提供する。
package job

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobman/internal/metrics"
	"github.com/hitoshi/jobman/internal/model"
	"github.com/hitoshi/jobman/internal/repository"
	"github.com/hitoshi/jobman/internal/security"
)

// PostInput は求人投稿・更新の入力。
type PostInput struct {
	Title           string
	Company         string
	Location        string
	Description     string
	Requirements    string
	SalaryRange     string
	JobType         model.JobType
	RequiredSkills  []string
	ExperienceLevel string
}

// Service は求人に関するビジネスロジックを提供する。
// 説明文と応募要件はHTMLとして扱われるため、保存前に必ずサニタイズする。
type Service struct {
	jobRepo   repository.JobRepository
	sanitizer security.ContentSanitizerService
	metrics   metrics.MetricsCollector
}

// NewService はServiceを生成する。
func NewService(jobRepo repository.JobRepository, sanitizer security.ContentSanitizerService, collector metrics.MetricsCollector) *Service {
	return &Service{
		jobRepo:   jobRepo,
		sanitizer: sanitizer,
		metrics:   collector,
	}
}

// Post は新しい求人を公開する。求人企業ロールのユーザーのみ実行できる。
func (s *Service) Post(ctx context.Context, actor *model.User, input PostInput) (*model.Job, error) {
	if actor.Role != model.RoleEmployer {
		return nil, model.NewForbiddenError("求人の投稿には求人企業ロールが必要です")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	job := &model.Job{
		ID:              uuid.New().String(),
		Title:           strings.TrimSpace(input.Title),
		Company:         strings.TrimSpace(input.Company),
		Location:        strings.TrimSpace(input.Location),
		Description:     s.sanitizer.Sanitize(input.Description),
		Requirements:    s.sanitizer.Sanitize(input.Requirements),
		SalaryRange:     input.SalaryRange,
		JobType:         input.JobType,
		RequiredSkills:  normalizeSkills(input.RequiredSkills),
		ExperienceLevel: input.ExperienceLevel,
		EmployerID:      actor.ID,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.metrics.RecordJobPosted()
	slog.Info("job posted",
		slog.String("job_id", job.ID),
		slog.String("employer_id", actor.ID),
	)

	return job, nil
}

// Get は指定IDの求人を取得する。
func (s *Service) Get(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	if job == nil {
		return nil, model.NewJobNotFoundError(jobID)
	}
	return job, nil
}

// ListActive は掲載中の求人を新着順で返す。
func (s *Service) ListActive(ctx context.Context) ([]*model.Job, error) {
	jobs, err := s.jobRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}
	return jobs, nil
}

// Search は掲載中の求人をフィルタ条件で絞り込んで返す。
// 絞り込みはデータベース側の述語として評価される。
func (s *Service) Search(ctx context.Context, filter model.JobFilter) ([]*model.Job, error) {
	if filter.JobType != "" && filter.JobType != model.JobTypeAll && !filter.JobType.IsValid() {
		return nil, model.NewInvalidJobTypeError(string(filter.JobType))
	}

	jobs, err := s.jobRepo.SearchActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}
	return jobs, nil
}

// ListEmployerJobs は求人企業の自社求人一覧（非掲載含む）を返す。
// filterが指定された場合は取得済みリストをメモリ上で絞り込む。
// 自社求人は件数が少ないため、ダッシュボードの絞り込みはSQLを往復しない。
func (s *Service) ListEmployerJobs(ctx context.Context, actor *model.User, filter model.JobFilter) ([]*model.Job, error) {
	if actor.Role != model.RoleEmployer {
		return nil, model.NewForbiddenError("自社求人の一覧には求人企業ロールが必要です")
	}

	jobs, err := s.jobRepo.ListByEmployer(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employer jobs: %w", err)
	}

	return model.FilterJobs(jobs, filter), nil
}

// Update は求人情報を更新する。所有する求人企業のみ実行できる。
func (s *Service) Update(ctx context.Context, actor *model.User, jobID string, input PostInput) (*model.Job, error) {
	job, err := s.authorizeOwner(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	job.Title = strings.TrimSpace(input.Title)
	job.Company = strings.TrimSpace(input.Company)
	job.Location = strings.TrimSpace(input.Location)
	job.Description = s.sanitizer.Sanitize(input.Description)
	job.Requirements = s.sanitizer.Sanitize(input.Requirements)
	job.SalaryRange = input.SalaryRange
	job.JobType = input.JobType
	job.RequiredSkills = normalizeSkills(input.RequiredSkills)
	job.ExperienceLevel = input.ExperienceLevel
	job.UpdatedAt = time.Now()

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	return job, nil
}

// SetActive は求人の掲載状態を切り替える。所有する求人企業のみ実行できる。
// 非掲載の求人は求職者の一覧・検索に表示されず、応募も受け付けない。
func (s *Service) SetActive(ctx context.Context, actor *model.User, jobID string, active bool) (*model.Job, error) {
	job, err := s.authorizeOwner(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	job.IsActive = active
	job.UpdatedAt = time.Now()

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	slog.Info("job status changed",
		slog.String("job_id", job.ID),
		slog.Bool("is_active", active),
	)

	return job, nil
}

// Delete は求人を削除する。所有する求人企業のみ実行できる。
// 関連する応募はCASCADE削除されるが、発行済み通知は参照がNULLになるだけで残る。
func (s *Service) Delete(ctx context.Context, actor *model.User, jobID string) error {
	job, err := s.authorizeOwner(ctx, actor, jobID)
	if err != nil {
		return err
	}

	if err := s.jobRepo.Delete(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	slog.Info("job deleted",
		slog.String("job_id", job.ID),
		slog.String("employer_id", actor.ID),
	)

	return nil
}

// authorizeOwner は求人を取得し、actorが所有者であることを確認する。
// 所有判定はリクエストのペイロードではなく、DB上のemployer_idを根拠とする。
func (s *Service) authorizeOwner(ctx context.Context, actor *model.User, jobID string) (*model.Job, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	if job == nil {
		return nil, model.NewJobNotFoundError(jobID)
	}
	if job.EmployerID != actor.ID {
		return nil, model.NewForbiddenError("この求人の所有者ではありません")
	}
	return job, nil
}

// validateInput は求人入力の必須項目と雇用形態を検証する。
func validateInput(input PostInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(input.Company) == "" {
		return fmt.Errorf("company is required")
	}
	if !input.JobType.IsValid() {
		return model.NewInvalidJobTypeError(string(input.JobType))
	}
	return nil
}

// normalizeSkills は前後空白を除去し、空要素を取り除く。
func normalizeSkills(skills []string) []string {
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
