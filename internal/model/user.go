// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。登録時に確定し、以後変更されない。
type Role string

const (
	// RoleJobSeeker は求職者ロール。
	RoleJobSeeker Role = "jobseeker"
	// RoleEmployer は求人企業ロール。
	RoleEmployer Role = "employer"
)

// IsValid はロールが定義済みのいずれかであるかを判定する。
func (r Role) IsValid() bool {
	return r == RoleJobSeeker || r == RoleEmployer
}

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、APIレスポンスには決して含めない。
type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// IDは暗号的に安全なランダム値であり、クライアントには不透明なトークンとして渡す。
// デコード可能なクレームは一切持たない（認可の根拠は常にサーバー側のセッション行）。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired はセッションが指定時刻の時点で期限切れかを判定する。
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
