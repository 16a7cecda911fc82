package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/estate-listing/internal/database"
	"github.com/isdelr/estate-listing/internal/models"
	"github.com/jmoiron/sqlx"
)

var (
	ErrEmailExists        = errors.New("email address already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, stored string) bool
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, email, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db     *sqlx.DB
	hasher PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(db *sqlx.DB, hasher PasswordHasher) *UserService {
	return &UserService{db: db, hasher: hasher}
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT id, email FROM users WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// getUserByEmail retrieves a single user by email, including the password hash.
func (s *UserService) getUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT id, email, password FROM users WHERE email = ?", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// CreateUser registers a new user, hashing their password. A taken email
// yields ErrEmailExists and nothing is written.
func (s *UserService) CreateUser(ctx context.Context, email, password string) (models.User, error) {
	if _, err := s.getUserByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}

	res, err := s.db.ExecContext(ctx, "INSERT INTO users (email, password) VALUES (?, ?)", email, hashed)
	if err != nil {
		// Lost a race with a concurrent registration.
		if database.IsUniqueViolation(err) {
			return models.User{}, ErrEmailExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return models.User{ID: id, Email: email}, nil
}

// AuthenticateUser verifies a user's credentials. Unknown email and wrong
// password both return ErrInvalidCredentials.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't hand the password hash to callers
	user.PasswordHash = ""
	return user, nil
}

// GetAllUsers lists every account, without password hashes.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, "SELECT id, email FROM users ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
