package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kritin29/Patient-Management-Web-App/internal/auth"
	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error)
	Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// UserService provides business logic for staff accounts.
type UserService struct {
	db     *sql.DB
	hasher auth.Hasher
	events EventServiceProvider
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(db *sql.DB, hasher auth.Hasher, events EventServiceProvider) *UserService {
	return &UserService{db: db, hasher: hasher, events: events}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx, "SELECT id, username, email, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// getUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) getUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx, "SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser stores a confirmed account. The password must already be hashed.
func (s *UserService) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	user := models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users(id, username, email, password_hash) VALUES(?, ?, ?, ?)",
		user.ID, user.Username, user.Email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("user %s: %w", username, ErrDuplicate)
		}
		return models.User{}, err
	}

	created, err := s.GetUserByID(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}
	recordEvent(ctx, s.events, "user.create", "info", fmt.Sprintf("Account '%s' created.", username), created.ID)
	return created, nil
}

// Taken reports whether the username or email is already registered.
func (s *UserService) Taken(ctx context.Context, username, email string) (bool, bool, error) {
	var usernameTaken, emailTaken bool
	row := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE username = ?), EXISTS(SELECT 1 FROM users WHERE email = ?)",
		username, email)
	if err := row.Scan(&usernameTaken, &emailTaken); err != nil {
		return false, false, err
	}
	return usernameTaken, emailTaken, nil
}

// AuthenticateUser verifies a user's credentials. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if !s.hasher.Check(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}
