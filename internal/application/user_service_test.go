package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-webinar-management/internal/domain/user"
)

// MockUserRepository implements user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func TestUserService_GetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("ユーザーを取得できる", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", ctx, "alice").Return(alice, nil)
		svc := NewUserService(repo)

		u, err := svc.GetUser(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, "alice", u.ID)
		repo.AssertExpectations(t)
	})

	t.Run("存在しないユーザー", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", ctx, "charlie").Return(nil, user.ErrUserNotFound)
		svc := NewUserService(repo)

		u, err := svc.GetUser(ctx, "charlie")

		assert.Nil(t, u)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("IDが空の場合はリポジトリを参照しない", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo)

		_, err := svc.GetUser(ctx, "")

		assert.ErrorIs(t, err, user.ErrUserIDRequired)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}
