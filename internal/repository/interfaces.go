// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/jobman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを一括削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// JobRepository は求人データの永続化インターフェース。
type JobRepository interface {
	// FindByID は指定IDの求人を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Job, error)

	// Create は求人を作成する。
	Create(ctx context.Context, job *model.Job) error

	// Update は求人情報を更新する。
	Update(ctx context.Context, job *model.Job) error

	// Delete は指定IDの求人を削除する。
	Delete(ctx context.Context, id string) error

	// ListActive は掲載中の求人を作成日時の降順で返す。
	ListActive(ctx context.Context) ([]*model.Job, error)

	// SearchActive は掲載中の求人をフィルタ条件で絞り込んで返す。
	// 検索述語はSQL側で評価され、結果は作成日時の降順で並ぶ。
	SearchActive(ctx context.Context, filter model.JobFilter) ([]*model.Job, error)

	// ListByEmployer は指定企業の全求人（非掲載含む）を作成日時の降順で返す。
	ListByEmployer(ctx context.Context, employerID string) ([]*model.Job, error)

	// FindBySourceGuid はフィードIDとGUIDで取り込み済み求人を検索する。
	// 見つからない場合はnilを返す。
	FindBySourceGuid(ctx context.Context, feedID, guid string) (*model.Job, error)
}

// ApplicationRepository は応募データの永続化インターフェース。
type ApplicationRepository interface {
	// FindByID は指定IDの応募を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.JobApplication, error)

	// Create は応募を作成する。
	Create(ctx context.Context, app *model.JobApplication) error

	// UpdateReview は応募の審査結果を記録する。
	// status、employer_message、reviewed_atを更新する。
	UpdateReview(ctx context.Context, app *model.JobApplication) error

	// ListByApplicant は応募者の応募一覧を応募日時の降順で返す。
	ListByApplicant(ctx context.Context, applicantID string) ([]*model.JobApplication, error)

	// ListByJob は求人への応募一覧を応募日時の降順で返す。
	ListByJob(ctx context.Context, jobID string) ([]*model.JobApplication, error)

	// ListByEmployer は指定企業の全求人への応募一覧を応募日時の降順で返す。
	ListByEmployer(ctx context.Context, employerID string) ([]*model.JobApplication, error)
}

// NotificationRepository は通知データの永続化インターフェース。
type NotificationRepository interface {
	// Create は通知を作成する。
	Create(ctx context.Context, n *model.Notification) error

	// FindByID は指定IDの通知を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Notification, error)

	// ListByUser はユーザーの通知一覧を作成日時の降順で返す。
	ListByUser(ctx context.Context, userID string) ([]*model.Notification, error)

	// CountUnread はユーザーの未読通知数を返す。
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead は指定通知を既読にする。
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead はユーザーの全通知を既読にする。
	MarkAllRead(ctx context.Context, userID string) error

	// DeleteReadOlderThan は指定日時より前に作成された既読通知を一括削除し、
	// 削除件数を返す。
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ProfileRepository はユーザープロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByUserID はユーザーIDでプロフィールを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error)

	// Upsert はプロフィールを冪等にUPSERTする。user_idをキーとする。
	Upsert(ctx context.Context, profile *model.UserProfile) error

	// SearchPublic は公開プロフィールを検索する。
	// skillsは1つ以上の重なりがあるもの、locationは部分一致（大文字小文字区別なし）。
	// 空の条件は制約なしを意味する。
	SearchPublic(ctx context.Context, skills []string, location string) ([]*model.UserProfile, error)
}

// JobFeedRepository は外部求人フィードの永続化インターフェース。
type JobFeedRepository interface {
	// FindByID は指定IDのフィードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.JobFeed, error)

	// FindByFeedURL はフィードURLでフィードを検索する。見つからない場合はnilを返す。
	FindByFeedURL(ctx context.Context, feedURL string) (*model.JobFeed, error)

	// Create はフィードを作成する。
	Create(ctx context.Context, feed *model.JobFeed) error

	// ListByEmployer は指定企業の登録フィード一覧を返す。
	ListByEmployer(ctx context.Context, employerID string) ([]*model.JobFeed, error)

	// ListDueForFetch はフェッチ対象のフィードを取得する。
	// next_fetch_at <= now() かつ fetch_status = 'active' のフィードを
	// FOR UPDATE SKIP LOCKEDで排他的に取得する。
	ListDueForFetch(ctx context.Context, limit int) ([]*model.JobFeed, error)

	// UpdateFetchState はフィードのフェッチ状態を更新する。
	// fetch_status、consecutive_errors、error_message、next_fetch_at、etag、last_modifiedを更新する。
	UpdateFetchState(ctx context.Context, feed *model.JobFeed) error

	// Delete は指定IDのフィードを削除する。
	Delete(ctx context.Context, id string) error
}
