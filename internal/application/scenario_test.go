package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
	"github.com/sanosuguru/go-webinar-management/internal/infrastructure/memory"
)

func setupScenario(t *testing.T) (*WebinarService, *memory.WebinarRepository) {
	t.Helper()
	repo := memory.NewWebinarRepository(newTestWebinar())
	return NewWebinarService(repo, nil, nil, nil, nil, WebinarOptions{}), repo
}

func assertSeats(t *testing.T, repo *memory.WebinarRepository, expected int) {
	t.Helper()
	w, err := repo.FindByID(context.Background(), "webinar-id")
	require.NoError(t, err)
	assert.Equal(t, expected, w.Seats)
}

// TestScenario_ChangeSeats は主催者による座席数変更のシナリオをテストします
func TestScenario_ChangeSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("座席数を変更できる", func(t *testing.T) {
		svc, repo := setupScenario(t)

		err := svc.ChangeSeats(ctx, ChangeSeatsInput{User: alice, WebinarID: "webinar-id", Seats: 200})

		require.NoError(t, err)
		assertSeats(t, repo, 200)
	})

	t.Run("上限ちょうどまで変更できる", func(t *testing.T) {
		svc, repo := setupScenario(t)

		err := svc.ChangeSeats(ctx, ChangeSeatsInput{User: alice, WebinarID: "webinar-id", Seats: webinar.MaxSeats})

		require.NoError(t, err)
		assertSeats(t, repo, webinar.MaxSeats)
	})

	t.Run("続けて増席できる", func(t *testing.T) {
		svc, repo := setupScenario(t)

		require.NoError(t, svc.ChangeSeats(ctx, ChangeSeatsInput{User: alice, WebinarID: "webinar-id", Seats: 200}))
		require.NoError(t, svc.ChangeSeats(ctx, ChangeSeatsInput{User: alice, WebinarID: "webinar-id", Seats: 300}))
		assert.ErrorIs(t, svc.ChangeSeats(ctx, ChangeSeatsInput{User: alice, WebinarID: "webinar-id", Seats: 250}), webinar.ErrReduceSeats)

		assertSeats(t, repo, 300)
	})

	failures := []struct {
		name        string
		input       ChangeSeatsInput
		expectedErr error
	}{
		{
			name:        "存在しないウェビナー",
			input:       ChangeSeatsInput{User: alice, WebinarID: "non-existing-webinar-id", Seats: 200},
			expectedErr: webinar.ErrWebinarNotFound,
		},
		{
			name:        "主催者以外",
			input:       ChangeSeatsInput{User: bob, WebinarID: "webinar-id", Seats: 200},
			expectedErr: webinar.ErrNotOrganizer,
		},
		{
			name:        "減席",
			input:       ChangeSeatsInput{User: alice, WebinarID: "webinar-id", Seats: 50},
			expectedErr: webinar.ErrReduceSeats,
		},
		{
			name:        "上限超過",
			input:       ChangeSeatsInput{User: alice, WebinarID: "webinar-id", Seats: 1500},
			expectedErr: webinar.ErrTooManySeats,
		},
	}

	for _, tt := range failures {
		t.Run(tt.name+"の場合は座席数が変わらない", func(t *testing.T) {
			svc, repo := setupScenario(t)

			err := svc.ChangeSeats(ctx, tt.input)

			assert.ErrorIs(t, err, tt.expectedErr)
			assertSeats(t, repo, 100)
		})
	}
}

// TestScenario_ConcurrentChangeSeats はロックなしの同時変更で座席数が壊れないことをテストします
func TestScenario_ConcurrentChangeSeats(t *testing.T) {
	svc, repo := setupScenario(t)
	ctx := context.Background()

	const numGoroutines = 10
	var successCount int32
	var unexpected int32
	var wg sync.WaitGroup

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.ChangeSeats(ctx, ChangeSeatsInput{User: alice, WebinarID: "webinar-id", Seats: 200})
			switch {
			case err == nil:
				atomic.AddInt32(&successCount, 1)
			case errors.Is(err, webinar.ErrReduceSeats), errors.Is(err, webinar.ErrOptimisticLockConflict):
			default:
				atomic.AddInt32(&unexpected, 1)
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, successCount, int32(1))
	assert.Equal(t, int32(0), unexpected)
	assertSeats(t, repo, 200)
}

func TestScenario_CreateThenChangeSeats(t *testing.T) {
	repo := memory.NewWebinarRepository()
	svc := NewWebinarService(repo, nil, nil, nil, nil, WebinarOptions{})
	ctx := context.Background()
	start := time.Now().Add(7 * 24 * time.Hour)

	w, err := svc.CreateWebinar(ctx, CreateWebinarInput{
		OrganizerID: "alice", Title: "Goで学ぶドメイン駆動設計",
		StartAt: start, EndAt: start.Add(time.Hour), Seats: 100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, w.ID)

	require.NoError(t, svc.ChangeSeats(ctx, ChangeSeatsInput{User: alice, WebinarID: w.ID, Seats: 150}))

	got, err := svc.GetWebinar(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, got.Seats)
}
