// Package notification はユーザー通知の作成と既読管理を提供する。
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobman/internal/metrics"
	"github.com/hitoshi/jobman/internal/model"
	"github.com/hitoshi/jobman/internal/repository"
)

// Service は通知に関するビジネスロジックを提供する。
type Service struct {
	notifRepo repository.NotificationRepository
	metrics   metrics.MetricsCollector
}

// NewService はServiceを生成する。
func NewService(notifRepo repository.NotificationRepository, collector metrics.MetricsCollector) *Service {
	return &Service{
		notifRepo: notifRepo,
		metrics:   collector,
	}
}

// NotifyNewApplication は新規応募を求人企業に知らせる通知を作成する。
func (s *Service) NotifyNewApplication(ctx context.Context, job *model.Job, app *model.JobApplication) error {
	n := &model.Notification{
		ID:            uuid.New().String(),
		UserID:        job.EmployerID,
		Type:          model.NotificationTypeNewApplication,
		Title:         "新しい応募があります",
		Message:       fmt.Sprintf("求人「%s」に新しい応募が届きました。", job.Title),
		JobID:         &job.ID,
		ApplicationID: &app.ID,
		CreatedAt:     time.Now(),
	}
	return s.create(ctx, n)
}

// NotifyApplicationReviewed は審査結果を応募者に知らせる通知を作成する。
// 応募のステータスに応じて採用通知と不採用通知を使い分ける。
func (s *Service) NotifyApplicationReviewed(ctx context.Context, job *model.Job, app *model.JobApplication) error {
	n := &model.Notification{
		ID:            uuid.New().String(),
		UserID:        app.ApplicantID,
		JobID:         &job.ID,
		ApplicationID: &app.ID,
		CreatedAt:     time.Now(),
	}

	switch app.Status {
	case model.ApplicationStatusAccepted:
		n.Type = model.NotificationTypeApplicationAccepted
		n.Title = "応募が承認されました"
		n.Message = fmt.Sprintf("求人「%s」への応募が承認されました。", job.Title)
	case model.ApplicationStatusRejected:
		n.Type = model.NotificationTypeApplicationRejected
		n.Title = "選考結果のお知らせ"
		n.Message = fmt.Sprintf("求人「%s」への応募は今回は見送りとなりました。", job.Title)
	default:
		return fmt.Errorf("審査結果ではないステータスです: %s", app.Status)
	}

	return s.create(ctx, n)
}

func (s *Service) create(ctx context.Context, n *model.Notification) error {
	if err := s.notifRepo.Create(ctx, n); err != nil {
		s.metrics.RecordNotificationFailure(string(n.Type))
		return fmt.Errorf("通知の作成に失敗しました: %w", err)
	}

	s.metrics.RecordNotificationCreated(string(n.Type))
	slog.Info("notification created",
		slog.String("notification_id", n.ID),
		slog.String("user_id", n.UserID),
		slog.String("type", string(n.Type)),
	)
	return nil
}

// List は自分宛の通知を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, actor *model.User) ([]*model.Notification, error) {
	notifications, err := s.notifRepo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗しました: %w", err)
	}
	return notifications, nil
}

// CountUnread は自分宛の未読通知数を返す。
func (s *Service) CountUnread(ctx context.Context, actor *model.User) (int, error) {
	count, err := s.notifRepo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("未読通知数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// MarkRead は通知を既読にする。自分宛の通知のみ対象で、
// 他人の通知は存在の有無を漏らさないよう未発見として扱う。
func (s *Service) MarkRead(ctx context.Context, actor *model.User, notificationID string) error {
	n, err := s.notifRepo.FindByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("通知の取得に失敗しました: %w", err)
	}
	if n == nil || n.UserID != actor.ID {
		return model.NewNotificationNotFoundError(notificationID)
	}

	if err := s.notifRepo.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("通知の既読化に失敗しました: %w", err)
	}
	return nil
}

// MarkAllRead は自分宛の未読通知をすべて既読にする。
func (s *Service) MarkAllRead(ctx context.Context, actor *model.User) error {
	if err := s.notifRepo.MarkAllRead(ctx, actor.ID); err != nil {
		return fmt.Errorf("通知の一括既読化に失敗しました: %w", err)
	}
	return nil
}
