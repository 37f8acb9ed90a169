package user

import (
	"context"
	"log/slog"
)

var _ UserService = (*UserServiceImpl)(nil)

type UserService interface {
	GetUserProfile(ctx context.Context, userID int64) (*UserProfile, error)
}

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *UserServiceImpl) GetUserProfile(ctx context.Context, userID int64) (*UserProfile, error) {
	return s.repo.GetUserProfile(ctx, userID)
}
