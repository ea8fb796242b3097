package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
)

// webinarRow はDBの行を表す構造体
type webinarRow struct {
	ID          string    `db:"id"`
	OrganizerID string    `db:"organizer_id"`
	Title       string    `db:"title"`
	StartAt     time.Time `db:"start_at"`
	EndAt       time.Time `db:"end_at"`
	Seats       int       `db:"seats"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Version     int       `db:"version"`
}

func (r *webinarRow) toEntity() *webinar.Webinar {
	return &webinar.Webinar{
		ID:          r.ID,
		OrganizerID: r.OrganizerID,
		Title:       r.Title,
		StartAt:     r.StartAt,
		EndAt:       r.EndAt,
		Seats:       r.Seats,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Version:     r.Version,
	}
}

// WebinarRepository はウェビナーリポジトリのPostgreSQL実装
type WebinarRepository struct {
	db *sqlx.DB
}

// NewWebinarRepository はWebinarRepositoryを作成する
func NewWebinarRepository(db *sqlx.DB) *WebinarRepository {
	return &WebinarRepository{db: db}
}

// Create は新しいウェビナーを作成する
func (r *WebinarRepository) Create(ctx context.Context, w *webinar.Webinar) error {
	query := `
		INSERT INTO webinars (organizer_id, title, start_at, end_at, seats, created_at, updated_at, version)
		VALUES (:organizer_id, :title, :start_at, :end_at, :seats, :created_at, :updated_at, :version)
		RETURNING id
	`
	row := webinarRow{
		OrganizerID: w.OrganizerID,
		Title:       w.Title,
		StartAt:     w.StartAt,
		EndAt:       w.EndAt,
		Seats:       w.Seats,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		Version:     w.Version,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("ウェビナー作成に失敗しました: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("ウェビナー作成に失敗しました: %w", err)
		}
		return fmt.Errorf("ウェビナー作成に失敗しました: IDが返されませんでした")
	}
	return rows.Scan(&w.ID)
}

// FindByID はIDからウェビナーを取得する
func (r *WebinarRepository) FindByID(ctx context.Context, id string) (*webinar.Webinar, error) {
	query := `SELECT id, organizer_id, title, start_at, end_at, seats, created_at, updated_at, version FROM webinars WHERE id = $1`

	var row webinarRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, webinar.ErrWebinarNotFound
		}
		return nil, fmt.Errorf("ウェビナー取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// Save はウェビナーを更新する（楽観的ロック）
func (r *WebinarRepository) Save(ctx context.Context, w *webinar.Webinar) error {
	query := `
		UPDATE webinars
		SET title = $1, start_at = $2, end_at = $3, seats = $4, updated_at = $5, version = version + 1
		WHERE id = $6 AND version = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		w.Title, w.StartAt, w.EndAt, w.Seats, w.UpdatedAt, w.ID, w.Version,
	)
	if err != nil {
		return fmt.Errorf("ウェビナー更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return r.saveConflict(ctx, w.ID)
	}

	w.Version++
	return nil
}

// saveConflict は更新0件の原因が「存在しない」か「バージョン競合」かを判定する
func (r *WebinarRepository) saveConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM webinars WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if !exists {
		return webinar.ErrWebinarNotFound
	}
	return webinar.ErrOptimisticLockConflict
}

// インターフェースを満たしているか確認
var _ webinar.Repository = (*WebinarRepository)(nil)
