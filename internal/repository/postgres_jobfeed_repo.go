package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobman/internal/model"
)

// PostgresJobFeedRepo はPostgreSQLを使用した求人フィードリポジトリ。
type PostgresJobFeedRepo struct {
	db *sql.DB
}

// NewPostgresJobFeedRepo はPostgresJobFeedRepoを生成する。
func NewPostgresJobFeedRepo(db *sql.DB) *PostgresJobFeedRepo {
	return &PostgresJobFeedRepo{db: db}
}

const jobFeedColumns = `id, employer_id, feed_url, title, etag, last_modified,
       fetch_status, consecutive_errors, error_message, next_fetch_at, created_at, updated_at`

// scanJobFeed は1行分のフィードをスキャンする。
func scanJobFeed(row interface{ Scan(...any) error }) (*model.JobFeed, error) {
	feed := &model.JobFeed{}
	var etag, lastModified, errorMessage sql.NullString

	err := row.Scan(
		&feed.ID, &feed.EmployerID, &feed.FeedURL, &feed.Title,
		&etag, &lastModified, &feed.FetchStatus, &feed.ConsecutiveErrors,
		&errorMessage, &feed.NextFetchAt, &feed.CreatedAt, &feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	feed.ETag = nullStringValue(etag)
	feed.LastModified = nullStringValue(lastModified)
	feed.ErrorMessage = nullStringValue(errorMessage)

	return feed, nil
}

// FindByID は指定IDのフィードを取得する。見つからない場合はnilを返す。
func (r *PostgresJobFeedRepo) FindByID(ctx context.Context, id string) (*model.JobFeed, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobFeedColumns+` FROM job_feeds WHERE id = $1`,
		id,
	)

	feed, err := scanJobFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}

	return feed, nil
}

// FindByFeedURL はフィードURLでフィードを検索する。見つからない場合はnilを返す。
func (r *PostgresJobFeedRepo) FindByFeedURL(ctx context.Context, feedURL string) (*model.JobFeed, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobFeedColumns+` FROM job_feeds WHERE feed_url = $1`,
		feedURL,
	)

	feed, err := scanJobFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("フィードURLによるフィードの検索に失敗しました: %w", err)
	}

	return feed, nil
}

// Create はフィードを作成する。
func (r *PostgresJobFeedRepo) Create(ctx context.Context, feed *model.JobFeed) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO job_feeds (id, employer_id, feed_url, title, etag, last_modified,
		                        fetch_status, consecutive_errors, error_message,
		                        next_fetch_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		feed.ID, feed.EmployerID, feed.FeedURL, feed.Title,
		nullString(feed.ETag), nullString(feed.LastModified),
		feed.FetchStatus, feed.ConsecutiveErrors,
		nullString(feed.ErrorMessage), feed.NextFetchAt,
		feed.CreatedAt, feed.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("フィードの作成に失敗しました: %w", err)
	}
	return nil
}

// ListByEmployer は指定企業の登録フィード一覧を返す。
func (r *PostgresJobFeedRepo) ListByEmployer(ctx context.Context, employerID string) ([]*model.JobFeed, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobFeedColumns+` FROM job_feeds
		 WHERE employer_id = $1
		 ORDER BY created_at DESC`,
		employerID,
	)
	if err != nil {
		return nil, fmt.Errorf("フィード一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectJobFeeds(rows)
}

// ListDueForFetch はフェッチ対象のフィードを取得する。
// next_fetch_at <= now() かつ fetch_status = 'active' のフィードを
// FOR UPDATE SKIP LOCKEDで排他的に取得する。
func (r *PostgresJobFeedRepo) ListDueForFetch(ctx context.Context, limit int) ([]*model.JobFeed, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobFeedColumns+` FROM job_feeds
		 WHERE next_fetch_at <= now()
		   AND fetch_status = 'active'
		 ORDER BY next_fetch_at ASC
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("フェッチ対象フィードの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectJobFeeds(rows)
}

// UpdateFetchState はフィードのフェッチ状態を更新する。
func (r *PostgresJobFeedRepo) UpdateFetchState(ctx context.Context, feed *model.JobFeed) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE job_feeds SET
		    title = $2,
		    fetch_status = $3,
		    consecutive_errors = $4,
		    error_message = $5,
		    next_fetch_at = $6,
		    etag = $7,
		    last_modified = $8,
		    updated_at = now()
		 WHERE id = $1`,
		feed.ID,
		feed.Title,
		feed.FetchStatus,
		feed.ConsecutiveErrors,
		nullString(feed.ErrorMessage),
		feed.NextFetchAt,
		nullString(feed.ETag),
		nullString(feed.LastModified),
	)
	if err != nil {
		return fmt.Errorf("フェッチ状態の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのフィードを削除する。
// 取り込み済み求人のsource_feed_idはSET NULLとなり、求人自体は残る。
func (r *PostgresJobFeedRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM job_feeds WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("フィードの削除に失敗しました: %w", err)
	}
	return nil
}

// collectJobFeeds は結果セットの全行をフィードスライスに変換する。
func collectJobFeeds(rows *sql.Rows) ([]*model.JobFeed, error) {
	var feeds []*model.JobFeed
	for rows.Next() {
		feed, err := scanJobFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("フィードの読み取りに失敗しました: %w", err)
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フィードの走査に失敗しました: %w", err)
	}
	return feeds, nil
}

// compile-time interface check
var _ JobFeedRepository = (*PostgresJobFeedRepo)(nil)
