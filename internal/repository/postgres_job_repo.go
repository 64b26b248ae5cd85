package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/jobman/internal/model"
)

// PostgresJobRepo はPostgreSQLを使用した求人リポジトリ。
type PostgresJobRepo struct {
	db *sql.DB
}

// NewPostgresJobRepo はPostgresJobRepoを生成する。
func NewPostgresJobRepo(db *sql.DB) *PostgresJobRepo {
	return &PostgresJobRepo{db: db}
}

const jobColumns = `id, employer_id, title, company, location, job_type, salary_range,
       description, requirements, required_skills, experience_level,
       is_active, source_feed_id, source_guid, created_at, updated_at`

// scanJob は1行分の求人をスキャンする。
func scanJob(row interface{ Scan(...any) error }) (*model.Job, error) {
	job := &model.Job{}
	var sourceFeedID, sourceGuid sql.NullString

	err := row.Scan(
		&job.ID, &job.EmployerID, &job.Title, &job.Company, &job.Location,
		&job.JobType, &job.SalaryRange, &job.Description, &job.Requirements,
		pq.Array(&job.RequiredSkills), &job.ExperienceLevel,
		&job.IsActive, &sourceFeedID, &sourceGuid,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sourceFeedID.Valid {
		job.SourceFeedID = &sourceFeedID.String
	}
	job.SourceGuid = nullStringValue(sourceGuid)

	return job, nil
}

// FindByID は指定IDの求人を取得する。見つからない場合はnilを返す。
func (r *PostgresJobRepo) FindByID(ctx context.Context, id string) (*model.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`,
		id,
	)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}

	return job, nil
}

// Create は求人を作成する。
func (r *PostgresJobRepo) Create(ctx context.Context, job *model.Job) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, employer_id, title, company, location, job_type, salary_range,
		                   description, requirements, required_skills, experience_level,
		                   is_active, source_feed_id, source_guid, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		job.ID, job.EmployerID, job.Title, job.Company, job.Location,
		job.JobType, job.SalaryRange, job.Description, job.Requirements,
		pq.Array(job.RequiredSkills), job.ExperienceLevel,
		job.IsActive, job.SourceFeedID, nullString(job.SourceGuid),
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("求人の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は求人情報を更新する。
func (r *PostgresJobRepo) Update(ctx context.Context, job *model.Job) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET
		    title = $2, company = $3, location = $4, job_type = $5,
		    salary_range = $6, description = $7, requirements = $8,
		    required_skills = $9, experience_level = $10,
		    is_active = $11, updated_at = $12
		 WHERE id = $1`,
		job.ID, job.Title, job.Company, job.Location, job.JobType,
		job.SalaryRange, job.Description, job.Requirements,
		pq.Array(job.RequiredSkills), job.ExperienceLevel,
		job.IsActive, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("求人の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの求人を削除する。
func (r *PostgresJobRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("求人の削除に失敗しました: %w", err)
	}
	return nil
}

// ListActive は掲載中の求人を作成日時の降順で返す。
func (r *PostgresJobRepo) ListActive(ctx context.Context) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE is_active = true
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// SearchActive は掲載中の求人をフィルタ条件で絞り込んで返す。
// 検索述語はSQL側で評価され、結果は作成日時の降順で並ぶ。
// 空のterm/location、およびjob_typeの'all'は制約なしを意味する。
func (r *PostgresJobRepo) SearchActive(ctx context.Context, filter model.JobFilter) ([]*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE is_active = true`
	args := []any{}

	if filter.Term != "" {
		args = append(args, likeContains(filter.Term))
		n := len(args)
		query += fmt.Sprintf(" AND (title ILIKE $%d ESCAPE '\\' OR company ILIKE $%d ESCAPE '\\' OR description ILIKE $%d ESCAPE '\\')", n, n, n)
	}
	if filter.Location != "" {
		args = append(args, likeContains(filter.Location))
		query += fmt.Sprintf(" AND location ILIKE $%d ESCAPE '\\'", len(args))
	}
	if filter.JobType != "" && filter.JobType != model.JobTypeAll {
		args = append(args, filter.JobType)
		query += fmt.Sprintf(" AND job_type = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("求人検索に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ListByEmployer は指定企業の全求人（非掲載含む）を作成日時の降順で返す。
func (r *PostgresJobRepo) ListByEmployer(ctx context.Context, employerID string) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE employer_id = $1
		 ORDER BY created_at DESC`,
		employerID,
	)
	if err != nil {
		return nil, fmt.Errorf("企業求人一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// FindBySourceGuid はフィードIDとGUIDで取り込み済み求人を検索する。
// 見つからない場合はnilを返す。
func (r *PostgresJobRepo) FindBySourceGuid(ctx context.Context, feedID, guid string) (*model.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE source_feed_id = $1 AND source_guid = $2`,
		feedID, guid,
	)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("取り込み済み求人の検索に失敗しました: %w", err)
	}

	return job, nil
}

// collectJobs は結果セットの全行を求人スライスに変換する。
func collectJobs(rows *sql.Rows) ([]*model.Job, error) {
	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("求人の読み取りに失敗しました: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("求人の走査に失敗しました: %w", err)
	}
	return jobs, nil
}

// likeEscaper はLIKE/ILIKEのメタ文字をエスケープする。
// エスケープ文字はPostgreSQLのデフォルトのバックスラッシュ。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeContains は部分一致用のLIKEパターンを生成する。
// 検索語に含まれる%や_はリテラルとして扱われ、
// model.JobFilter.Matchesの部分一致と同じ意味になる。
func likeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ JobRepository = (*PostgresJobRepo)(nil)
