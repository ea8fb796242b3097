package webinar

import "context"

// Repository はウェビナーリポジトリのインターフェース
type Repository interface {
	// Create は新しいウェビナーを作成する
	Create(ctx context.Context, webinar *Webinar) error

	// FindByID はIDからウェビナーを取得する（存在しない場合は ErrWebinarNotFound）
	FindByID(ctx context.Context, id string) (*Webinar, error)

	// Save はウェビナーを保存する（楽観的ロック）
	Save(ctx context.Context, webinar *Webinar) error
}
