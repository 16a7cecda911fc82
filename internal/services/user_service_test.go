package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateUserStoresHash(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, fastHasher())
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == 0 || user.Email != "a@x.com" || user.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", user)
	}

	var stored string
	if err := db.Get(&stored, "SELECT password FROM users WHERE id = ?", user.ID); err != nil {
		t.Fatalf("read hash: %v", err)
	}
	if stored == "p1" || !strings.HasPrefix(stored, "pbkdf2:sha256:") {
		t.Fatalf("password stored as %q", stored)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, fastHasher())
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "a@x.com", "p1"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	_, err := svc.CreateUser(ctx, "a@x.com", "other")
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("second CreateUser err = %v, want ErrEmailExists", err)
	}

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users WHERE email = ?", "a@x.com"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows for email = %d, want 1", count)
	}
}

func TestAuthenticateUser(t *testing.T) {
	svc := NewUserService(newTestDB(t), fastHasher())
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	user, err := svc.AuthenticateUser(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("AuthenticateUser: %v", err)
	}
	if user.ID != created.ID || user.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", user)
	}

	for _, tc := range []struct{ email, password string }{
		{"a@x.com", "wrong"},
		{"nobody@x.com", "p1"},
		{"A@X.COM", "p1"},
	} {
		if _, err := svc.AuthenticateUser(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("AuthenticateUser(%q, %q) err = %v, want ErrInvalidCredentials", tc.email, tc.password, err)
		}
	}
}

func TestGetUserByID(t *testing.T) {
	svc := NewUserService(newTestDB(t), fastHasher())
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	got, err := svc.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Email != "a@x.com" || got.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", got)
	}
	if _, err := svc.GetUserByID(ctx, created.ID+100); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user err = %v, want ErrUserNotFound", err)
	}
}

func TestGetAllUsersOmitsHashes(t *testing.T) {
	svc := NewUserService(newTestDB(t), fastHasher())
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com"} {
		if _, err := svc.CreateUser(ctx, email, "pw"); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}
	users, err := svc.GetAllUsers(ctx)
	if err != nil {
		t.Fatalf("GetAllUsers: %v", err)
	}
	if len(users) != 2 || users[0].Email != "a@x.com" || users[1].Email != "b@x.com" {
		t.Fatalf("users = %+v", users)
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Fatalf("hash leaked for %s", u.Email)
		}
	}
}
