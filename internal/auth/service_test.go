package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/jobman/internal/model"
	"github.com/hitoshi/jobman/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

type mockSessionRepo struct {
	createFn         func(ctx context.Context, session *model.Session) error
	findByIDFn       func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn     func(ctx context.Context, id string) error
	deleteByUserIDFn func(ctx context.Context, userID string) error
	deleteExpiredFn  func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)

// --- テスト ---

func TestRegister_NewUser_CreatesUserAndSession(t *testing.T) {
	var createdUser *model.User
	var createdSession *model.Session

	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			createdUser = user
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			createdSession = session
			return nil
		},
	}

	svc := NewService(userRepo, sessionRepo, ServiceConfig{SessionMaxAge: 86400})

	user, session, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Seeker@Example.com",
		Password: "password123",
		Name:     "Test Seeker",
		Role:     model.RoleJobSeeker,
	})
	if err != nil {
		t.Fatalf("Register() error = %v, want nil", err)
	}

	if createdUser == nil {
		t.Fatal("user was not persisted")
	}
	// メールアドレスは小文字に正規化される
	if user.Email != "seeker@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "seeker@example.com")
	}
	if user.Role != model.RoleJobSeeker {
		t.Errorf("Role = %v, want %v", user.Role, model.RoleJobSeeker)
	}
	// パスワードは平文で保存されない
	if user.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not verify against original password: %v", err)
	}

	if createdSession == nil {
		t.Fatal("session was not persisted")
	}
	if session.UserID != user.ID {
		t.Errorf("session.UserID = %q, want %q", session.UserID, user.ID)
	}
	if len(session.ID) != 64 {
		t.Errorf("session ID length = %d, want 64 (32 random bytes hex-encoded)", len(session.ID))
	}
}

func TestRegister_DuplicateEmail_ReturnsEmailTakenError(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "existing-user", Email: email}, nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 86400})

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "password123",
		Name:     "Dup",
		Role:     model.RoleEmployer,
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeEmailTaken {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeEmailTaken)
	}
}

func TestRegister_InvalidRole_ReturnsError(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 86400})

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "admin@example.com",
		Password: "password123",
		Name:     "Admin",
		Role:     model.Role("admin"),
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeInvalidRole {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidRole)
	}
}

func TestRegister_ShortPassword_ReturnsError(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 86400})

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "short@example.com",
		Password: "1234567",
		Name:     "Short",
		Role:     model.RoleJobSeeker,
	})
	if err == nil {
		t.Fatal("Register() error = nil, want error for short password")
	}
}

func TestLogin_ValidCredentials_ReturnsSession(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)

	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           "user-1",
				Email:        email,
				Role:         model.RoleJobSeeker,
				PasswordHash: string(hash),
			}, nil
		},
	}
	sessionRepo := &mockSessionRepo{}

	svc := NewService(userRepo, sessionRepo, ServiceConfig{SessionMaxAge: 3600})

	user, session, err := svc.Login(context.Background(), "seeker@example.com", "correct-password")
	if err != nil {
		t.Fatalf("Login() error = %v, want nil", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}
	if session.UserID != "user-1" {
		t.Errorf("session.UserID = %q, want %q", session.UserID, "user-1")
	}

	// セッション有効期限が設定通りであること
	wantExpiry := time.Now().Add(3600 * time.Second)
	if session.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || session.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, want around %v", session.ExpiresAt, wantExpiry)
	}
}

func TestLogin_WrongPassword_ReturnsInvalidCredentials(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)

	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: string(hash)}, nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 86400})

	_, _, err := svc.Login(context.Background(), "seeker@example.com", "wrong-password")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
	}
}

func TestLogin_UnknownEmail_ReturnsSameErrorAsWrongPassword(t *testing.T) {
	// メール未登録とパスワード不一致が同一エラーであること（ユーザー列挙防止）
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 86400})

	_, _, err := svc.Login(context.Background(), "unknown@example.com", "whatever")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	var deletedID string
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}

	svc := NewService(&mockUserRepo{}, sessionRepo, ServiceConfig{SessionMaxAge: 86400})

	if err := svc.Logout(context.Background(), "session-to-delete"); err != nil {
		t.Fatalf("Logout() error = %v, want nil", err)
	}
	if deletedID != "session-to-delete" {
		t.Errorf("deleted session ID = %q, want %q", deletedID, "session-to-delete")
	}
}

func TestLogout_EmptySessionID_ReturnsError(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 86400})

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Fatal("Logout(\"\") error = nil, want error")
	}
}

func TestGetCurrentUser_ValidSession_ReturnsUser(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        id,
				UserID:    "user-1",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "seeker@example.com", Role: model.RoleJobSeeker}, nil
		},
	}

	svc := NewService(userRepo, sessionRepo, ServiceConfig{SessionMaxAge: 86400})

	user, err := svc.GetCurrentUser(context.Background(), "valid-session")
	if err != nil {
		t.Fatalf("GetCurrentUser() error = %v, want nil", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}
}

func TestGetCurrentUser_ExpiredSession_ReturnsError(t *testing.T) {
	// リポジトリは期限切れセッションをnilとして返す
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, nil
		},
	}

	svc := NewService(&mockUserRepo{}, sessionRepo, ServiceConfig{SessionMaxAge: 86400})

	_, err := svc.GetCurrentUser(context.Background(), "expired-session")
	if err == nil {
		t.Fatal("GetCurrentUser() error = nil, want error for expired session")
	}
}

// TestGetCurrentUser_DeletedUser_ReturnsUserNotFound はセッションが有効でも
// ユーザー行が消えている場合にUSER_NOT_FOUNDが返ることを検証する。
func TestGetCurrentUser_DeletedUser_ReturnsUserNotFound(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        id,
				UserID:    "user-gone",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}

	svc := NewService(userRepo, sessionRepo, ServiceConfig{SessionMaxAge: 86400})

	_, err := svc.GetCurrentUser(context.Background(), "orphan-session")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("Code = %v, want %v", apiErr.Code, model.ErrCodeUserNotFound)
	}
}

func TestGenerateSessionID_IsRandom(t *testing.T) {
	id1, err := generateSessionID()
	if err != nil {
		t.Fatalf("generateSessionID() error = %v", err)
	}
	id2, err := generateSessionID()
	if err != nil {
		t.Fatalf("generateSessionID() error = %v", err)
	}

	if id1 == id2 {
		t.Error("generateSessionID() returned identical IDs")
	}
	if len(id1) != 64 {
		t.Errorf("session ID length = %d, want 64", len(id1))
	}
}
