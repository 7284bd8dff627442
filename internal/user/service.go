package user

import (
	"context"

	"shopora-be/internal/logger"
	"shopora-be/internal/utils"

	"go.uber.org/zap"
)

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// Service defines the account and authentication business logic.
type Service interface {
	Register(ctx context.Context, params RegisterParams) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, params RegisterParams) (*User, string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, "", err
	}

	u := &User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         utils.RoleUser,
	}

	u, err = s.repo.Create(ctx, u)
	if err != nil {
		log.Warn("register failed", zap.Error(err))
		return nil, "", err
	}

	token, err := GenerateJWT(u.ID, u.Role, u.Email)
	if err != nil {
		return nil, "", err
	}

	log.Info("user registered", zap.Uint("user_id", u.ID))
	return u, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !CheckPasswordHash(password, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID, u.Role, u.Email)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}
