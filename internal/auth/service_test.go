package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/smokering/smokering-backend/internal/common/utils"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepository) CreateSession(ctx context.Context, session *Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockRepository) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *mockRepository) DeleteSessionByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRepository) DeleteUserSessions(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testConfig() *Config {
	return &Config{
		JWTSecret:            "test-secret",
		AccessTokenExpiry:    time.Hour,
		RefreshTokenExpiry:   24 * time.Hour,
		BCryptCost:           bcrypt.MinCost,
		SigninAttemptsMax:    5,
		SigninAttemptsWindow: 15 * time.Minute,
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the user and returns a token pair", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("IsUsernameTaken", ctx, "fumador").Return(false, nil)
		repo.On("IsEmailTaken", ctx, "f@example.com").Return(false, nil)
		repo.On("CreateUser", ctx, mock.AnythingOfType("*auth.User")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*User).ID = 42
			}).Return(nil)
		repo.On("CreateSession", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)
		service := NewService(repo, nil, testConfig())

		resp, err := service.Signup(ctx, &SignupRequest{
			Username: "  Fumador ",
			Email:    "F@Example.com",
			Password: "correct horse",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.User.ID)
		assert.Equal(t, "fumador", resp.User.Username)
		assert.Equal(t, "f@example.com", resp.User.Email)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)

		claims, err := utils.ValidateJWT(resp.AccessToken, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, utils.TokenTypeAccess, claims.Type)
		assert.Equal(t, int64(42), claims.UserID)
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("IsUsernameTaken", ctx, "fumador").Return(true, nil)
		service := NewService(repo, nil, testConfig())

		_, err := service.Signup(ctx, &SignupRequest{
			Username: "fumador", Email: "f@example.com", Password: "correct horse",
		})

		assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("IsUsernameTaken", ctx, "fumador").Return(false, nil)
		repo.On("IsEmailTaken", ctx, "f@example.com").Return(true, nil)
		service := NewService(repo, nil, testConfig())

		_, err := service.Signup(ctx, &SignupRequest{
			Username: "fumador", Email: "f@example.com", Password: "correct horse",
		})

		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestSignin(t *testing.T) {
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{ID: 42, Username: "fumador", Email: "f@example.com", PasswordHash: string(hashed)}

	t.Run("signs in by username", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("GetUserByUsername", ctx, "fumador").Return(user, nil)
		repo.On("CreateSession", ctx, mock.Anything).Return(nil)
		service := NewService(repo, nil, testConfig())

		resp, err := service.Signin(ctx, &SigninRequest{Identifier: "Fumador", Password: "correct horse"})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("signs in by email when the identifier contains @", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("GetUserByEmail", ctx, "f@example.com").Return(user, nil)
		repo.On("CreateSession", ctx, mock.Anything).Return(nil)
		service := NewService(repo, nil, testConfig())

		_, err := service.Signin(ctx, &SigninRequest{Identifier: "f@example.com", Password: "correct horse"})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "GetUserByUsername", mock.Anything, mock.Anything)
	})

	t.Run("wrong password yields invalid credentials", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("GetUserByUsername", ctx, "fumador").Return(user, nil)
		service := NewService(repo, nil, testConfig())

		_, err := service.Signin(ctx, &SigninRequest{Identifier: "fumador", Password: "wrong"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user yields invalid credentials, not a lookup error", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("GetUserByUsername", ctx, "ghost").Return(nil, ErrUserNotFound)
		service := NewService(repo, nil, testConfig())

		_, err := service.Signin(ctx, &SigninRequest{Identifier: "ghost", Password: "whatever"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()
	user := &User{ID: 42, Username: "fumador"}

	t.Run("rotates the session and issues a new pair", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("CreateSession", ctx, mock.Anything).Return(nil)
		svc := NewService(repo, nil, testConfig())

		// Obtain a real refresh token by creating a session first.
		initial, err := svc.(*service).createAuthSession(ctx, user)
		require.NoError(t, err)

		repo.On("GetSessionByRefreshToken", ctx, initial.RefreshToken).Return(&Session{
			UserID:       42,
			Token:        initial.AccessToken,
			RefreshToken: initial.RefreshToken,
		}, nil)
		repo.On("GetUserByID", ctx, int64(42)).Return(user, nil)
		repo.On("DeleteSessionByToken", ctx, initial.AccessToken).Return(nil)

		resp, err := svc.RefreshToken(ctx, initial.RefreshToken)

		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		repo.AssertCalled(t, "DeleteSessionByToken", ctx, initial.AccessToken)
	})

	t.Run("rejects an access token used as refresh token", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("CreateSession", ctx, mock.Anything).Return(nil)
		svc := NewService(repo, nil, testConfig())

		initial, err := svc.(*service).createAuthSession(ctx, user)
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, initial.AccessToken)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc := NewService(new(mockRepository), nil, testConfig())

		_, err := svc.RefreshToken(ctx, "not-a-token")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
