package postgres

import (
	"context"
	"time"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepo{db: db}
}

const notificationColumns = `id, recipient_id, sender_id, type, title, message, related_id, related_model,
	link, is_read, read_at, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title, &n.Message, &n.RelatedID, &n.RelatedModel,
		&n.Link, &n.IsRead, &n.ReadAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, sender_id, type, title, message, related_id, related_model, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	n.CreatedAt = time.Now().UTC()
	err := conn(ctx, r.db).QueryRow(ctx, query,
		n.RecipientID, n.SenderID, n.Type, n.Title, n.Message, n.RelatedID, n.RelatedModel, n.Link, n.CreatedAt,
	).Scan(&n.ID)
	return mapError(err)
}

// MarkRead keeps the first read_at; marking an already read row is a no-op
// that still returns it.
func (r *notificationRepo) MarkRead(ctx context.Context, id int64, ownerID string, at time.Time) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $1)
		WHERE id = $2 AND recipient_id = $3
		RETURNING ` + notificationColumns

	n, err := scanNotification(conn(ctx, r.db).QueryRow(ctx, query, at, id, ownerID))
	if err != nil {
		return nil, mapError(err)
	}
	return n, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, ownerID string, at time.Time) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $1 WHERE recipient_id = $2 AND NOT is_read`, at, ownerID)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) List(ctx context.Context, ownerID string, filter domain.NotificationFilter) ([]domain.Notification, int64, error) {
	where := `recipient_id = $1 AND (NOT $2::boolean OR NOT is_read)`

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE `+where, ownerID, filter.UnreadOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE ` + where + `
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	rows, err := conn(ctx, r.db).Query(ctx, query, ownerID, filter.UnreadOnly, filter.Limit, filter.Skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *n)
	}
	return items, total, rows.Err()
}

func (r *notificationRepo) CountUnread(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`, ownerID).Scan(&count)
	return count, err
}

func (r *notificationRepo) Delete(ctx context.Context, id int64, ownerID string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, ownerID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}

func (r *notificationRepo) DeleteRead(ctx context.Context, ownerID string) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM notifications WHERE recipient_id = $1 AND is_read`, ownerID)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

// DeleteReadBefore drops read notifications whose read_at is older than cutoff.
func (r *notificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM notifications WHERE is_read AND read_at < $1`, cutoff)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}
