package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
)

// WebinarRepository はウェビナーリポジトリのインメモリ実装
// 保存時・取得時にコピーを返すため、呼び出し側の変更はSaveするまで反映されない
type WebinarRepository struct {
	mu       sync.RWMutex
	webinars map[string]webinar.Webinar
}

// NewWebinarRepository は初期データ付きのWebinarRepositoryを作成する
func NewWebinarRepository(seed ...*webinar.Webinar) *WebinarRepository {
	r := &WebinarRepository{webinars: make(map[string]webinar.Webinar, len(seed))}
	for _, w := range seed {
		r.webinars[w.ID] = *w
	}
	return r
}

// Create は新しいウェビナーを作成する
func (r *WebinarRepository) Create(_ context.Context, w *webinar.Webinar) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	r.webinars[w.ID] = *w
	return nil
}

// FindByID はIDからウェビナーを取得する
func (r *WebinarRepository) FindByID(_ context.Context, id string) (*webinar.Webinar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.webinars[id]
	if !ok {
		return nil, webinar.ErrWebinarNotFound
	}
	return &w, nil
}

// Save はウェビナーを更新する（楽観的ロック）
func (r *WebinarRepository) Save(_ context.Context, w *webinar.Webinar) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.webinars[w.ID]
	if !ok {
		return webinar.ErrWebinarNotFound
	}
	if current.Version != w.Version {
		return webinar.ErrOptimisticLockConflict
	}

	w.Version++
	r.webinars[w.ID] = *w
	return nil
}

var _ webinar.Repository = (*WebinarRepository)(nil)
