package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// WebinarCacheInterface はウェビナーキャッシュを抽象化する
type WebinarCacheInterface interface {
	Get(ctx context.Context, id string) (*webinar.Webinar, error)
	Set(ctx context.Context, w *webinar.Webinar, ttl time.Duration) error
	Invalidate(ctx context.Context, id string) error
}

// cachedWebinar はキャッシュに保存する形式
type cachedWebinar struct {
	ID          string    `json:"id"`
	OrganizerID string    `json:"organizer_id"`
	Title       string    `json:"title"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Seats       int       `json:"seats"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// WebinarCache はウェビナー情報のキャッシュを管理する
type WebinarCache struct {
	client *redis.Client
}

// NewWebinarCache は新しいWebinarCacheインスタンスを作成する
func NewWebinarCache(client *redis.Client) *WebinarCache {
	return &WebinarCache{client: client}
}

// Get はウェビナーをキャッシュから取得する
func (c *WebinarCache) Get(ctx context.Context, id string) (*webinar.Webinar, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var cw cachedWebinar
	if err := json.Unmarshal(data, &cw); err != nil {
		return nil, fmt.Errorf("キャッシュのデコードに失敗: %w", err)
	}
	return &webinar.Webinar{
		ID:          cw.ID,
		OrganizerID: cw.OrganizerID,
		Title:       cw.Title,
		StartAt:     cw.StartAt,
		EndAt:       cw.EndAt,
		Seats:       cw.Seats,
		CreatedAt:   cw.CreatedAt,
		UpdatedAt:   cw.UpdatedAt,
		Version:     cw.Version,
	}, nil
}

// Set はウェビナーをキャッシュに保存する
func (c *WebinarCache) Set(ctx context.Context, w *webinar.Webinar, ttl time.Duration) error {
	data, err := json.Marshal(cachedWebinar{
		ID:          w.ID,
		OrganizerID: w.OrganizerID,
		Title:       w.Title,
		StartAt:     w.StartAt,
		EndAt:       w.EndAt,
		Seats:       w.Seats,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		Version:     w.Version,
	})
	if err != nil {
		return fmt.Errorf("キャッシュのエンコードに失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.key(w.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はウェビナーのキャッシュを無効化する
func (c *WebinarCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *WebinarCache) key(id string) string {
	return fmt.Sprintf("webinar:%s", id)
}

var _ WebinarCacheInterface = (*WebinarCache)(nil)
