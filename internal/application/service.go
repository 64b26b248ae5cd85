// Package application は求人への応募と審査のビジネスロジックを提供する。
package application

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
)

// Notifier は応募イベントに対する通知の作成を行う。
type Notifier interface {
	NotifyNewApplication(ctx context.Context, job *model.Job, app *model.JobApplication) error
	NotifyApplicationReviewed(ctx context.Context, job *model.Job, app *model.JobApplication) error
}

// ApplyInput は応募の入力。
type ApplyInput struct {
	ResumeURL   string
	CoverLetter string
}

// Service は応募に関するビジネスロジックを提供する。
// 通知の作成はベストエフォートであり、通知の失敗が応募や審査の
// 本処理を失敗させることはない。
type Service struct {
	appRepo  repository.ApplicationRepository
	jobRepo  repository.JobRepository
	notifier Notifier
	metrics  metrics.MetricsCollector
}

// NewService はServiceを生成する。
func NewService(appRepo repository.ApplicationRepository, jobRepo repository.JobRepository, notifier Notifier, collector metrics.MetricsCollector) *Service {
	return &Service{
		appRepo:  appRepo,
		jobRepo:  jobRepo,
		notifier: notifier,
		metrics:  collector,
	}
}

// Apply は求人への応募を登録する。求職者ロールのユーザーのみ実行できる。
// 応募先の求人は公開中である必要がある。
func (s *Service) Apply(ctx context.Context, actor *model.User, jobID string, input ApplyInput) (*model.JobApplication, error) {
	if actor.Role != model.RoleJobSeeker {
		return nil, model.NewForbiddenError("応募には求職者ロールが必要です")
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if job == nil {
		return nil, model.NewJobNotFoundError(jobID)
	}
	if !job.IsActive {
		return nil, model.NewJobInactiveError(jobID)
	}

	app := &model.JobApplication{
		ID:          uuid.New().String(),
		JobID:       job.ID,
		ApplicantID: actor.ID,
		ResumeURL:   strings.TrimSpace(input.ResumeURL),
		CoverLetter: strings.TrimSpace(input.CoverLetter),
		Status:      model.ApplicationStatusPending,
		AppliedAt:   time.Now(),
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("応募の登録に失敗しました: %w", err)
	}

	s.metrics.RecordApplicationSubmitted()
	slog.Info("application submitted",
		slog.String("application_id", app.ID),
		slog.String("job_id", job.ID),
		slog.String("applicant_id", actor.ID),
	)

	// 通知の失敗は応募の成功に影響しない
	if err := s.notifier.NotifyNewApplication(ctx, job, app); err != nil {
		slog.Error("failed to notify employer of new application",
			slog.String("application_id", app.ID),
			slog.String("employer_id", job.EmployerID),
			slog.String("error", err.Error()),
		)
	}

	return app, nil
}

// Review は応募の審査結果を確定する。求人の所有企業のみ実行でき、
// pending状態の応募に対して一度だけ行える。
func (s *Service) Review(ctx context.Context, actor *model.User, applicationID string, decision model.ApplicationStatus, employerMessage string) (*model.JobApplication, error) {
	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗しました: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError(applicationID)
	}

	job, err := s.jobRepo.FindByID(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if job == nil || job.EmployerID != actor.ID {
		return nil, model.NewForbiddenError("応募の審査は求人の所有企業のみ実行できます")
	}

	if !decision.IsDecision() {
		return nil, model.NewInvalidDecisionError(string(decision))
	}
	if app.Status != model.ApplicationStatusPending {
		return nil, model.NewAlreadyReviewedError()
	}

	now := time.Now()
	app.Status = decision
	app.EmployerMessage = strings.TrimSpace(employerMessage)
	app.ReviewedAt = &now

	if err := s.appRepo.UpdateReview(ctx, app); err != nil {
		return nil, fmt.Errorf("審査結果の保存に失敗しました: %w", err)
	}

	slog.Info("application reviewed",
		slog.String("application_id", app.ID),
		slog.String("job_id", job.ID),
		slog.String("decision", string(decision)),
	)

	// 通知の失敗は審査の確定に影響しない
	if err := s.notifier.NotifyApplicationReviewed(ctx, job, app); err != nil {
		slog.Error("failed to notify applicant of review result",
			slog.String("application_id", app.ID),
			slog.String("applicant_id", app.ApplicantID),
			slog.String("error", err.Error()),
		)
	}

	return app, nil
}

// ListMine は自分の応募履歴を応募日時の降順で返す。
func (s *Service) ListMine(ctx context.Context, actor *model.User) ([]*model.JobApplication, error) {
	apps, err := s.appRepo.ListByApplicant(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return apps, nil
}

// ListForJob は特定求人への応募一覧を返す。求人の所有企業のみ実行できる。
func (s *Service) ListForJob(ctx context.Context, actor *model.User, jobID string) ([]*model.JobApplication, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if job == nil {
		return nil, model.NewJobNotFoundError(jobID)
	}
	if job.EmployerID != actor.ID {
		return nil, model.NewForbiddenError("応募一覧の閲覧は求人の所有企業のみ実行できます")
	}

	apps, err := s.appRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return apps, nil
}

// ListForEmployer は自社の全求人への応募一覧を返す。求人企業ロールのユーザーのみ実行できる。
func (s *Service) ListForEmployer(ctx context.Context, actor *model.User) ([]*model.JobApplication, error) {
	if actor.Role != model.RoleEmployer {
		return nil, model.NewForbiddenError("応募一覧の閲覧には求人企業ロールが必要です")
	}

	apps, err := s.appRepo.ListByEmployer(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return apps, nil
}
