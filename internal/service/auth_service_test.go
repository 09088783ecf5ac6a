package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"powerbill/internal/password"
)

func newTestAuthService() (*AuthService, *memUserRepo, *memSessionStore) {
	users := newMemUserRepo()
	sessions := newMemSessionStore()
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	tokens := NewTokenService("test-secret", 0)
	return NewAuthService(users, sessions, hasher, tokens, zap.NewNop()), users, sessions
}

func signupInput() SignupInput {
	return SignupInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "secret123",
		Address:  "42 Elm St",
		MeterNo:  "MET0001",
		Phone:    "5550001111",
	}
}

func TestSignupHashesPassword(t *testing.T) {
	svc, users, _ := newTestAuthService()

	user, err := svc.Signup(context.Background(), signupInput())
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	dup := signupInput()
	dup.MeterNo = "MET9999"
	_, err = svc.Signup(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestSignupRejectsDuplicateMeterNo(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	dup := signupInput()
	dup.Email = "other@example.com"
	_, err = svc.Signup(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestSignupRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()

	input := signupInput()
	input.Password = "abc"
	_, err := svc.Signup(context.Background(), input)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLoginByEmailAndMeterNo(t *testing.T) {
	svc, _, sessions := newTestAuthService()
	ctx := context.Background()

	created, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	for _, identifier := range []string{"jane@example.com", "MET0001"} {
		token, user, err := svc.Login(ctx, identifier, "secret123")
		require.NoError(t, err, "identifier %s", identifier)
		assert.Equal(t, created.ID, user.ID)
		assert.True(t, sessions.has(token))
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, _, sessions := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "jane@example.com", "secret123")
	require.NoError(t, err)
	require.True(t, sessions.has(token))

	require.NoError(t, svc.Logout(ctx, token))
	assert.False(t, sessions.has(token))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	created, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, created.ID, "Jane Smith", "7 Oak Ave", "5559998888")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", updated.Name)
	assert.Equal(t, "7 Oak Ave", updated.Address)

	// Email and meter number are immutable through profile updates.
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.MeterNo, updated.MeterNo)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	created, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, created.ID, "wrong", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, created.ID, "secret123", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, svc.ChangePassword(ctx, created.ID, "secret123", "newsecret"))

	_, _, err = svc.Login(ctx, "jane@example.com", "newsecret")
	assert.NoError(t, err)
	_, _, err = svc.Login(ctx, "jane@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
