package application

import (
	"context"

	"github.com/sanosuguru/go-webinar-management/internal/domain/user"
)

type UserService struct {
	userRepo user.Repository
}

func NewUserService(userRepo user.Repository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser は操作を行うユーザーを取得する
func (s *UserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	if id == "" {
		return nil, user.ErrUserIDRequired
	}
	return s.userRepo.GetByID(ctx, id)
}
