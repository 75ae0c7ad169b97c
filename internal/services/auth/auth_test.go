package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/imagegen-service/internal/lib/jwt"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/password"
	"github.com/magabrotheeeer/imagegen-service/internal/models"
	"github.com/magabrotheeeer/imagegen-service/internal/storage"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newTestMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func TestService_Register(t *testing.T) {
	repo := new(UserRepositoryMock)
	service := New(repo, newTestMaker())

	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Name == "Ada" && u.Email == "ada@x.com" && u.Role == "user" &&
			u.PasswordHash != "" && u.PasswordHash != "secret123"
	})).Return("user-uid-1", nil).Once()

	user, token, err := service.Register(context.Background(), "Ada", "ada@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user-uid-1", user.UID)
	assert.NotEmpty(t, token)

	uid, err := newTestMaker().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-uid-1", uid)

	repo.AssertExpectations(t)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := new(UserRepositoryMock)
	service := New(repo, newTestMaker())

	repo.On("RegisterUser", mock.Anything, mock.Anything).
		Return("", storage.ErrUserExists).Once()

	_, _, err := service.Register(context.Background(), "Ada", "ada@x.com", "secret123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUserExists))
}

func TestService_Login(t *testing.T) {
	hash, err := password.GetHashWithCost("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	storedUser := &models.User{
		UID:           "user-uid-1",
		Name:          "Ada",
		Email:         "ada@x.com",
		PasswordHash:  hash,
		CreditBalance: 5,
		Role:          "user",
	}

	tests := []struct {
		name        string
		email       string
		rawPassword string
		mockUser    *models.User
		mockErr     error
		wantErr     error
	}{
		{
			name:        "valid credentials",
			email:       "ada@x.com",
			rawPassword: "secret123",
			mockUser:    storedUser,
		},
		{
			name:        "unknown email",
			email:       "ghost@x.com",
			rawPassword: "secret123",
			mockErr:     storage.ErrUserNotFound,
			wantErr:     ErrUserNotFound,
		},
		{
			name:        "wrong password",
			email:       "ada@x.com",
			rawPassword: "wrongpass",
			mockUser:    storedUser,
			wantErr:     ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepositoryMock)
			service := New(repo, newTestMaker())

			repo.On("GetUserByEmail", mock.Anything, tt.email).
				Return(tt.mockUser, tt.mockErr).Once()

			user, token, err := service.Login(context.Background(), tt.email, tt.rawPassword)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-uid-1", user.UID)
			assert.NotEmpty(t, token)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	repo := new(UserRepositoryMock)
	service := New(repo, newTestMaker())

	token, err := newTestMaker().GenerateToken("user-uid-1")
	require.NoError(t, err)

	uid, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-uid-1", uid)

	_, err = service.ValidateToken("garbage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrInvalidToken))
}
