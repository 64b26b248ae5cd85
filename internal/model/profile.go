// Package model はドメインモデルを定義する。
package model

import "time"

// UserProfile はユーザーの公開プロフィールを表す。
// 所有者によるUPSERTのみ許可され、IsPublic=trueの場合だけ他ユーザーから検索できる。
type UserProfile struct {
	ID         string
	UserID     string
	Name       string
	Email      string
	Phone      string
	Location   string
	Bio        string
	Skills     []string
	Experience string
	JobTitle   string
	ResumeURL  string
	AvatarURL  string
	IsPublic   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
