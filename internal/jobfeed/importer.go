package jobfeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobman/internal/metrics"
	"github.com/hitoshi/jobman/internal/model"
	"github.com/hitoshi/jobman/internal/repository"
	"github.com/hitoshi/jobman/internal/security"
)

// ImporterService はパース済みのフィードエントリを下書き求人として取り込む。
// 同一性判定は(source_feed_id, source_guid)で行い、既存の求人は上書き更新する。
// 取り込まれた求人はIsActive=falseの下書きであり、公開の判断は企業に委ねる。
type ImporterService struct {
	jobRepo   repository.JobRepository
	sanitizer security.ContentSanitizerService
	metrics   metrics.MetricsCollector
}

// NewImporterService はImporterServiceを生成する。
func NewImporterService(
	jobRepo repository.JobRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
) *ImporterService {
	return &ImporterService{
		jobRepo:   jobRepo,
		sanitizer: sanitizer,
		metrics:   collector,
	}
}

// ImportPostings はフィードから取得した求人エントリをUPSERTする。
// 戻り値は挿入数、更新数、エラー。
func (s *ImporterService) ImportPostings(
	ctx context.Context,
	feed *model.JobFeed,
	postings []model.ParsedJobPosting,
) (inserted int, updated int, err error) {
	if len(postings) == 0 {
		return 0, 0, nil
	}

	now := time.Now()

	for _, posting := range postings {
		guid := posting.Guid
		if guid == "" {
			// GUIDがないエントリはリンクを同一性キーとして代用する
			guid = posting.Link
		}
		if guid == "" {
			slog.Warn("skipping feed entry without guid or link",
				slog.String("feed_id", feed.ID),
				slog.String("title", posting.Title),
			)
			continue
		}

		sanitized := s.sanitizer.Sanitize(posting.Description)

		existing, findErr := s.jobRepo.FindBySourceGuid(ctx, feed.ID, guid)
		if findErr != nil {
			return inserted, updated, fmt.Errorf("求人の同一性判定に失敗しました: %w", findErr)
		}

		if existing != nil {
			existing.Title = posting.Title
			existing.Location = posting.Location
			existing.Description = sanitized
			existing.UpdatedAt = now
			if updateErr := s.jobRepo.Update(ctx, existing); updateErr != nil {
				return inserted, updated, fmt.Errorf("求人の更新に失敗しました: %w", updateErr)
			}
			updated++
		} else {
			job := &model.Job{
				ID:           uuid.New().String(),
				Title:        posting.Title,
				Company:      feed.Title,
				Location:     posting.Location,
				Description:  sanitized,
				JobType:      model.JobTypeFullTime,
				EmployerID:   feed.EmployerID,
				IsActive:     false,
				SourceFeedID: &feed.ID,
				SourceGuid:   guid,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if createErr := s.jobRepo.Create(ctx, job); createErr != nil {
				return inserted, updated, fmt.Errorf("求人の挿入に失敗しました: %w", createErr)
			}
			inserted++
		}
	}

	s.metrics.RecordJobsImported(inserted)
	slog.Info("job postings imported",
		slog.String("feed_id", feed.ID),
		slog.Int("inserted", inserted),
		slog.Int("updated", updated),
	)

	return inserted, updated, nil
}
