package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/jobman/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

const profileColumns = `id, user_id, name, email, phone, location, bio, skills,
       experience, job_title, resume_url, avatar_url, is_public, created_at, updated_at`

// scanProfile は1行分のプロフィールをスキャンする。
func scanProfile(row interface{ Scan(...any) error }) (*model.UserProfile, error) {
	p := &model.UserProfile{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.Location, &p.Bio,
		pq.Array(&p.Skills), &p.Experience, &p.JobTitle, &p.ResumeURL,
		&p.AvatarURL, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindByUserID はユーザーIDでプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`,
		userID,
	)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}

	return p, nil
}

// Upsert はプロフィールを冪等にUPSERTする。user_idをキーとする。
func (r *PostgresProfileRepo) Upsert(ctx context.Context, profile *model.UserProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (id, user_id, name, email, phone, location, bio, skills,
		                            experience, job_title, resume_url, avatar_url, is_public,
		                            created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (user_id) DO UPDATE SET
		    name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    phone = EXCLUDED.phone,
		    location = EXCLUDED.location,
		    bio = EXCLUDED.bio,
		    skills = EXCLUDED.skills,
		    experience = EXCLUDED.experience,
		    job_title = EXCLUDED.job_title,
		    resume_url = EXCLUDED.resume_url,
		    avatar_url = EXCLUDED.avatar_url,
		    is_public = EXCLUDED.is_public,
		    updated_at = EXCLUDED.updated_at`,
		profile.ID, profile.UserID, profile.Name, profile.Email, profile.Phone,
		profile.Location, profile.Bio, pq.Array(profile.Skills),
		profile.Experience, profile.JobTitle, profile.ResumeURL, profile.AvatarURL,
		profile.IsPublic, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("プロフィールの保存に失敗しました: %w", err)
	}
	return nil
}

// SearchPublic は公開プロフィールを検索する。
// skillsは1つ以上の重なり、locationは部分一致（大文字小文字区別なし）。
// 空の条件は制約なしを意味する。
func (r *PostgresProfileRepo) SearchPublic(ctx context.Context, skills []string, location string) ([]*model.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE is_public = true`
	args := []any{}

	if len(skills) > 0 {
		args = append(args, pq.Array(skills))
		query += fmt.Sprintf(" AND skills && $%d", len(args))
	}
	if location != "" {
		args = append(args, likeContains(location))
		query += fmt.Sprintf(" AND location ILIKE $%d ESCAPE '\\'", len(args))
	}

	query += " ORDER BY updated_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("プロフィール検索に失敗しました: %w", err)
	}
	defer rows.Close()

	var profiles []*model.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("プロフィールの読み取りに失敗しました: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("プロフィールの走査に失敗しました: %w", err)
	}

	return profiles, nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
