package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobman/internal/model"
)

// PostgresApplicationRepo はPostgreSQLを使用した応募リポジトリ。
type PostgresApplicationRepo struct {
	db *sql.DB
}

// NewPostgresApplicationRepo はPostgresApplicationRepoを生成する。
func NewPostgresApplicationRepo(db *sql.DB) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: db}
}

const applicationColumns = `id, job_id, applicant_id, resume_url, cover_letter,
       status, employer_message, applied_at, reviewed_at`

// scanApplication は1行分の応募をスキャンする。
func scanApplication(row interface{ Scan(...any) error }) (*model.JobApplication, error) {
	app := &model.JobApplication{}
	var employerMessage sql.NullString
	var reviewedAt sql.NullTime

	err := row.Scan(
		&app.ID, &app.JobID, &app.ApplicantID, &app.ResumeURL, &app.CoverLetter,
		&app.Status, &employerMessage, &app.AppliedAt, &reviewedAt,
	)
	if err != nil {
		return nil, err
	}

	app.EmployerMessage = nullStringValue(employerMessage)
	if reviewedAt.Valid {
		app.ReviewedAt = &reviewedAt.Time
	}

	return app, nil
}

// FindByID は指定IDの応募を取得する。見つからない場合はnilを返す。
func (r *PostgresApplicationRepo) FindByID(ctx context.Context, id string) (*model.JobApplication, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`,
		id,
	)

	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗しました: %w", err)
	}

	return app, nil
}

// Create は応募を作成する。
func (r *PostgresApplicationRepo) Create(ctx context.Context, app *model.JobApplication) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO job_applications (id, job_id, applicant_id, resume_url, cover_letter,
		                               status, employer_message, applied_at, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.ID, app.JobID, app.ApplicantID, app.ResumeURL, app.CoverLetter,
		app.Status, nullString(app.EmployerMessage), app.AppliedAt, app.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("応募の作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateReview は応募の審査結果を記録する。
func (r *PostgresApplicationRepo) UpdateReview(ctx context.Context, app *model.JobApplication) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE job_applications SET
		    status = $2,
		    employer_message = $3,
		    reviewed_at = $4
		 WHERE id = $1`,
		app.ID, app.Status, nullString(app.EmployerMessage), app.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("審査結果の記録に失敗しました: %w", err)
	}
	return nil
}

// ListByApplicant は応募者の応募一覧を応募日時の降順で返す。
func (r *PostgresApplicationRepo) ListByApplicant(ctx context.Context, applicantID string) ([]*model.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM job_applications
		 WHERE applicant_id = $1
		 ORDER BY applied_at DESC`,
		applicantID,
	)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListByJob は求人への応募一覧を応募日時の降順で返す。
func (r *PostgresApplicationRepo) ListByJob(ctx context.Context, jobID string) ([]*model.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM job_applications
		 WHERE job_id = $1
		 ORDER BY applied_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("求人への応募一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListByEmployer は指定企業の全求人への応募一覧を応募日時の降順で返す。
func (r *PostgresApplicationRepo) ListByEmployer(ctx context.Context, employerID string) ([]*model.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.job_id, a.applicant_id, a.resume_url, a.cover_letter,
		        a.status, a.employer_message, a.applied_at, a.reviewed_at
		 FROM job_applications a
		 INNER JOIN jobs j ON a.job_id = j.id
		 WHERE j.employer_id = $1
		 ORDER BY a.applied_at DESC`,
		employerID,
	)
	if err != nil {
		return nil, fmt.Errorf("企業への応募一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// collectApplications は結果セットの全行を応募スライスに変換する。
func collectApplications(rows *sql.Rows) ([]*model.JobApplication, error) {
	var apps []*model.JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("応募の読み取りに失敗しました: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("応募の走査に失敗しました: %w", err)
	}
	return apps, nil
}

// compile-time interface check
var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)
