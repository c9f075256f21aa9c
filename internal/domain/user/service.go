package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/agroplan/internal/common"
)

// ErrInvalidCredentials is returned when email/password verification fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLength = 8

// Provisioner creates the default records a new account starts with. It is
// implemented by the crop service and invoked once per registration.
type Provisioner interface {
	ProvisionDefaults(ctx context.Context, userID uuid.UUID) error
}

// RegisterInput carries the fields accepted on registration
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Service handles account business logic
type Service struct {
	repo        Repository
	provisioner Provisioner
	logger      *slog.Logger
}

// NewService creates a new user service
func NewService(repo Repository, provisioner Provisioner, logger *slog.Logger) *Service {
	return &Service{repo: repo, provisioner: provisioner, logger: logger}
}

// Register creates an account, hashes the password and provisions the default
// stages and crop types for the new user
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Name == "" {
		return nil, common.Invalidf("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, common.Invalidf("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, common.Invalidf("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, common.Invalidf("email %s is already registered", email)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if err := s.provisioner.ProvisionDefaults(ctx, u.ID); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", u.ID.String()))
	return u, nil
}

// Authenticate verifies an email/password pair and returns the account
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get retrieves an account by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile edits the account's name and email
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = strings.ToLower(strings.TrimSpace(email))
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePassword rehashes and stores a new password
func (s *Service) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return common.Invalidf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}
