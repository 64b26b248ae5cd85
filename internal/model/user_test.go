package model

import (
	"testing"
	"time"
)

// セッション期限の判定を検証
func TestSession_IsExpired(t *testing.T) {
	now := time.Now()
	session := &Session{
		ID:        "session-1",
		UserID:    "user-1",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}

	if session.IsExpired(now) {
		t.Error("有効期限内のセッションがexpiredと判定された")
	}
	if !session.IsExpired(now.Add(2 * time.Hour)) {
		t.Error("有効期限を過ぎたセッションがexpiredと判定されない")
	}
	// 境界値: ExpiresAtちょうどは期限内として扱う
	if session.IsExpired(session.ExpiresAt) {
		t.Error("ExpiresAtちょうどの時刻はexpiredではない")
	}
}

// ロールのバリデーションを検証
func TestRole_IsValid(t *testing.T) {
	if !RoleJobSeeker.IsValid() {
		t.Error("jobseekerは有効なロール")
	}
	if !RoleEmployer.IsValid() {
		t.Error("employerは有効なロール")
	}
	if Role("admin").IsValid() {
		t.Error("adminは無効なロール")
	}
	if Role("").IsValid() {
		t.Error("空文字列は無効なロール")
	}
}

// 審査結果判定を検証
func TestApplicationStatus_IsDecision(t *testing.T) {
	if ApplicationStatusPending.IsDecision() {
		t.Error("pendingは審査結果ではない")
	}
	if !ApplicationStatusAccepted.IsDecision() {
		t.Error("acceptedは審査結果")
	}
	if !ApplicationStatusRejected.IsDecision() {
		t.Error("rejectedは審査結果")
	}
}
