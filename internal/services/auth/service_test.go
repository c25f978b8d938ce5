package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/kyamadi/ai-chat-service/internal/common"
	badgerstorage "github.com/kyamadi/ai-chat-service/internal/storage/badger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	storage, err := badgerstorage.NewManager(common.GetLogger(), &common.BadgerConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })

	svc, err := NewService(&common.AuthConfig{
		JWTSecret: "test-secret-do-not-use",
		TokenTTL:  "1h",
	}, storage.UserStorage(), common.GetLogger())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}

	token, loggedIn, err := svc.Login(ctx, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, loggedIn.ID)
	}

	userID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if userID != user.ID {
		t.Errorf("token subject mismatch: expected %s, got %s", user.ID, userID)
	}
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "erin", "Erin@Example.COM", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "erin@example.com", "password123"); err != nil {
		t.Errorf("lowercase login failed: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "bob@example.com", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "bob@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegister_DuplicateAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol", "carol@example.com", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "carol", "other@example.com", "password456"); !errors.Is(err, badgerstorage.ErrAccountExists) {
		t.Errorf("expected ErrAccountExists for duplicate username, got %v", err)
	}
	if _, err := svc.Register(ctx, "carol2", "carol@example.com", "password456"); !errors.Is(err, badgerstorage.ErrAccountExists) {
		t.Errorf("expected ErrAccountExists for duplicate email, got %v", err)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dave", "dave@example.com", "short"); err == nil {
		t.Fatal("expected error for short password")
	}
	if _, err := svc.Register(ctx, "dave", "not-an-email", "password123"); err == nil {
		t.Fatal("expected error for invalid email")
	}
	if _, err := svc.Register(ctx, "", "dave@example.com", "password123"); err == nil {
		t.Fatal("expected error for empty username")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
