package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"powerbill/internal/models"
	"powerbill/internal/password"
	"powerbill/internal/repository"
)

const minPasswordLength = 6

// UserRepository defines the user storage contract used by the service.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// SessionStore tracks live login sessions keyed by token.
type SessionStore interface {
	Save(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context, token string) error
}

// SignupInput carries the registration form fields.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	MeterNo  string
	Phone    string
}

// AuthService contains registration, login and profile logic.
type AuthService struct {
	users     UserRepository
	sessions  SessionStore
	hasher    password.Hasher
	tokenizer *TokenService
	logger    *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(users UserRepository, sessions SessionStore, hasher password.Hasher, tokenizer *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// Signup registers a new consumer. Both the email and the meter number must
// be unused; on any validation failure nothing is stored.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.MeterNo = strings.TrimSpace(input.MeterNo)

	if input.Name == "" || input.Email == "" || input.MeterNo == "" {
		return nil, errors.New("auth: name, email and meter number are required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	for _, identifier := range []string{input.Email, input.MeterNo} {
		if _, err := s.users.GetByIdentifier(ctx, identifier); err == nil {
			return nil, ErrDuplicateUser
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Address:      strings.TrimSpace(input.Address),
		MeterNo:      input.MeterNo,
		Phone:        strings.TrimSpace(input.Phone),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("meter_no", user.MeterNo),
	)
	return user, nil
}

// Login authenticates by email or meter number and produces a JWT backed by
// a session record.
func (s *AuthService) Login(ctx context.Context, identifier, plainPassword string) (string, *models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	if err := s.sessions.Save(ctx, token, user); err != nil {
		return "", nil, fmt.Errorf("auth: save session: %w", err)
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return token, user, nil
}

// Logout clears the session record for the given token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Clear(ctx, token)
}

// Profile returns the user's current record.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile replaces the mutable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name, address, phone string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("auth: name is required")
	}

	user.Name = name
	user.Address = strings.TrimSpace(address)
	user.Phone = strings.TrimSpace(phone)

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", zap.Int64("user_id", userID))
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Int64("user_id", userID))
	return nil
}
