package repository

import (
	"context"
	"errors"
	"fmt"

	"video_moderation_service/internal/moderation/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// NotificationRepo definition notifications table access
type NotificationRepo interface {
	EnsureSchema(ctx context.Context) error
	// Create 回傳是否新增；同一支影片同一種通知只會有一筆
	Create(ctx context.Context, n *domain.Notification) (bool, error)
}

type notificationRepo struct {
	db *pgxpool.Pool
}

// NewNotificationRepo create a NotificationRepo
func NewNotificationRepo(db *pgxpool.Pool) NotificationRepo {
	return &notificationRepo{db: db}
}

const notificationSchema = `
CREATE TABLE IF NOT EXISTS notifications (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	actor_id   TEXT,
	video_id   TEXT,
	type       TEXT NOT NULL,
	message    TEXT NOT NULL,
	is_read    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS notifications_video_type_uniq
	ON notifications (video_id, type) WHERE video_id IS NOT NULL;
`

func (r *notificationRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, notificationSchema); err != nil {
		return fmt.Errorf("ensure notifications schema: %w", err)
	}
	return nil
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) (bool, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO notifications (user_id, actor_id, video_id, type, message, is_read)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (video_id, type) WHERE video_id IS NOT NULL DO NOTHING
		 RETURNING id, created_at`,
		n.UserID, n.ActorID, n.VideoID, string(n.Type), n.Message, n.IsRead,
	).Scan(&n.ID, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// 之前的嘗試已經送出過
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert %s notification for video %s: %w", n.Type, n.VideoID, err)
	}
	return true, nil
}
