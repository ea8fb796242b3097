package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-webinar-management/internal/domain/user"
	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
	redisinfra "github.com/sanosuguru/go-webinar-management/internal/infrastructure/redis"
	"github.com/sanosuguru/go-webinar-management/internal/pkg/logger"
	"github.com/sanosuguru/go-webinar-management/internal/pkg/metrics"
)

const (
	defaultLockTTL    = 10 * time.Second
	defaultCacheTTL   = 5 * time.Minute
	lockMaxRetries    = 3
	lockRetryInterval = 100 * time.Millisecond
	sideEffectTimeout = 3 * time.Second
)

// SeatsChangedPublisher は座席数変更イベントの送信先
type SeatsChangedPublisher interface {
	PublishSeatsChanged(ctx context.Context, ev webinar.SeatsChanged) error
}

// WebinarOptions はロック・キャッシュのTTL設定（ゼロ値ならデフォルト）
type WebinarOptions struct {
	LockTTL  time.Duration
	CacheTTL time.Duration
}

type WebinarService struct {
	webinarRepo webinar.Repository
	lockManager redisinfra.LockManagerInterface
	cache       redisinfra.WebinarCacheInterface
	publisher   SeatsChangedPublisher
	metrics     *metrics.Metrics
	lockTTL     time.Duration
	cacheTTL    time.Duration
}

// NewWebinarService は WebinarService を作成する
// lockManager / cache / publisher / m は nil を許容する
func NewWebinarService(
	wr webinar.Repository,
	lm redisinfra.LockManagerInterface,
	cache redisinfra.WebinarCacheInterface,
	publisher SeatsChangedPublisher,
	m *metrics.Metrics,
	opts WebinarOptions,
) *WebinarService {
	s := &WebinarService{
		webinarRepo: wr,
		lockManager: lm,
		cache:       cache,
		publisher:   publisher,
		metrics:     m,
		lockTTL:     opts.LockTTL,
		cacheTTL:    opts.CacheTTL,
	}
	if s.lockTTL <= 0 {
		s.lockTTL = defaultLockTTL
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = defaultCacheTTL
	}
	return s
}

type CreateWebinarInput struct {
	OrganizerID string
	Title       string
	StartAt     time.Time
	EndAt       time.Time
	Seats       int
}

func (s *WebinarService) CreateWebinar(ctx context.Context, input CreateWebinarInput) (*webinar.Webinar, error) {
	w := webinar.NewWebinar(input.OrganizerID, input.Title, input.StartAt, input.EndAt, input.Seats)
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.webinarRepo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("ウェビナー作成に失敗しました: %w", err)
	}
	return w, nil
}

// GetWebinar はキャッシュを優先してウェビナーを取得する
func (s *WebinarService) GetWebinar(ctx context.Context, id string) (*webinar.Webinar, error) {
	log := logger.FromContext(ctx)

	if s.cache != nil {
		w, err := s.cache.Get(ctx, id)
		if err == nil {
			s.observeCache("hit")
			return w, nil
		}
		if errors.Is(err, redisinfra.ErrCacheMiss) {
			s.observeCache("miss")
		} else {
			s.observeCache("error")
			log.Warn("キャッシュ取得エラー", zap.String("webinar_id", id), zap.Error(err))
		}
	}

	w, err := s.webinarRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, w, s.cacheTTL); cacheErr != nil {
			log.Warn("キャッシュ保存エラー", zap.String("webinar_id", id), zap.Error(cacheErr))
		}
	}
	return w, nil
}

type ChangeSeatsInput struct {
	User      *user.User
	WebinarID string
	Seats     int
}

// ChangeSeats はウェビナーの座席数を変更する
// 主催者のみが実行でき、座席数は増やす方向にのみ MaxSeats まで変更できる
func (s *WebinarService) ChangeSeats(ctx context.Context, input ChangeSeatsInput) (err error) {
	defer func() { s.recordSeatChange(err) }()

	if s.lockManager != nil {
		lock, lockErr := s.acquireLock(ctx, input.WebinarID)
		if lockErr != nil {
			return lockErr
		}
		defer s.releaseLock(ctx, input.WebinarID, lock)
	}

	w, err := s.webinarRepo.FindByID(ctx, input.WebinarID)
	if err != nil {
		return err
	}

	var actorID string
	if input.User != nil {
		actorID = input.User.ID
	}
	if !w.IsOrganizer(actorID) {
		return webinar.ErrNotOrganizer
	}
	if input.Seats <= w.Seats {
		return webinar.ErrReduceSeats
	}
	if input.Seats > webinar.MaxSeats {
		return webinar.ErrTooManySeats
	}

	previous := w.Seats
	w.ChangeSeats(input.Seats)
	if err := s.webinarRepo.Save(ctx, w); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("座席数を変更しました",
		zap.String("webinar_id", w.ID),
		zap.Int("previous_seats", previous),
		zap.Int("seats", w.Seats),
	)

	s.invalidateCache(ctx, w.ID)
	s.publishSeatsChanged(ctx, webinar.SeatsChanged{
		WebinarID:     w.ID,
		OrganizerID:   w.OrganizerID,
		PreviousSeats: previous,
		Seats:         w.Seats,
		ChangedAt:     w.UpdatedAt,
	})
	return nil
}

func (s *WebinarService) acquireLock(ctx context.Context, webinarID string) (redisinfra.Lock, error) {
	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.WebinarLockKey(webinarID), s.lockTTL, lockMaxRetries, lockRetryInterval)
	if err != nil {
		s.observeLock("acquire", "failed", start)
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return nil, ErrWebinarBusy
		}
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	s.observeLock("acquire", "success", start)
	return lock, nil
}

func (s *WebinarService) releaseLock(ctx context.Context, webinarID string, lock redisinfra.Lock) {
	start := time.Now()
	if err := lock.Release(ctx); err != nil {
		s.observeLock("release", "failed", start)
		logger.FromContext(ctx).Warn("ロック解放エラー", zap.String("webinar_id", webinarID), zap.Error(err))
		return
	}
	s.observeLock("release", "success", start)
}

// invalidateCache の失敗は座席数変更の結果に影響させない
func (s *WebinarService) invalidateCache(ctx context.Context, webinarID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, webinarID); err != nil {
		logger.FromContext(ctx).Warn("キャッシュ無効化エラー", zap.String("webinar_id", webinarID), zap.Error(err))
	}
}

func (s *WebinarService) publishSeatsChanged(ctx context.Context, ev webinar.SeatsChanged) {
	if s.publisher == nil {
		return
	}
	// リクエストのキャンセルでイベントが失われないよう切り離す
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.publisher.PublishSeatsChanged(pubCtx, ev); err != nil {
		logger.FromContext(ctx).Error("座席数変更イベントの送信に失敗", zap.String("webinar_id", ev.WebinarID), zap.Error(err))
	}
}

func (s *WebinarService) recordSeatChange(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.SeatChangesTotal.WithLabelValues(seatChangeStatus(err)).Inc()
}

func seatChangeStatus(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, webinar.ErrWebinarNotFound):
		return metrics.StatusNotFound
	case errors.Is(err, webinar.ErrNotOrganizer):
		return metrics.StatusNotOrganizer
	case errors.Is(err, webinar.ErrReduceSeats):
		return metrics.StatusReduceSeats
	case errors.Is(err, webinar.ErrTooManySeats):
		return metrics.StatusTooManySeats
	case errors.Is(err, ErrWebinarBusy):
		return metrics.StatusLockFailed
	default:
		return metrics.StatusError
	}
}

func (s *WebinarService) observeLock(operation, status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

func (s *WebinarService) observeCache(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.WebinarCacheLookups.WithLabelValues(result).Inc()
}
