package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) (*User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func TestService_Register(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return u.Email == "new@example.com" && u.Role == "user" && u.PasswordHash != "secret123!"
		})).Return(&User{ID: 1, Email: "new@example.com", Role: "user"}, nil)

		u, token, err := svc.Register(context.Background(), RegisterParams{
			Name:     "New User",
			Email:    "new@example.com",
			Password: "secret123!",
		})

		require.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
		assert.NotEmpty(t, token)
		repo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil, ErrEmailExists)

		_, _, err := svc.Register(context.Background(), RegisterParams{
			Name:     "Dup",
			Email:    "dup@example.com",
			Password: "secret123!",
		})

		assert.Equal(t, ErrEmailExists, err)
	})
}

func TestService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	stored := &User{ID: 7, Email: "u@example.com", PasswordHash: hash, Role: "user"}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByEmail", mock.Anything, "u@example.com").Return(stored, nil)

		u, token, err := svc.Login(context.Background(), "u@example.com", "correct-password")
		require.NoError(t, err)
		assert.Equal(t, uint(7), u.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByEmail", mock.Anything, "u@example.com").Return(stored, nil)

		_, _, err := svc.Login(context.Background(), "u@example.com", "wrong")
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, ErrUserNotFound)

		_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
		assert.Equal(t, ErrInvalidCredentials, err, "unknown email must not be distinguishable from wrong password")
	})

	t.Run("RepoError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByEmail", mock.Anything, "u@example.com").Return(nil, errors.New("db down"))

		_, _, err := svc.Login(context.Background(), "u@example.com", "correct-password")
		assert.Error(t, err)
		assert.NotEqual(t, ErrInvalidCredentials, err)
	})
}
