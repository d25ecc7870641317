package postgres

import (
	"context"
	"time"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type chatRepo struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) domain.ChatRepository {
	return &chatRepo{db: db}
}

const chatColumns = `c.id, c.participant_low, c.participant_high, c.job_id, NULLIF(c.last_message, ''),
	c.last_message_at, c.created_at, c.updated_at`

func scanChat(row pgx.Row, c *domain.Chat, extra ...any) error {
	dest := []any{
		&c.ID, &c.ParticipantLow, &c.ParticipantHigh, &c.JobID, &c.LastMessage,
		&c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts the pair. A concurrent insert of the same pair loses on
// the unique constraint and gets ErrConflict.
func (r *chatRepo) Create(ctx context.Context, chat *domain.Chat) error {
	query := `
		INSERT INTO chats (participant_low, participant_high, job_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id`

	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	err := conn(ctx, r.db).QueryRow(ctx, query, chat.ParticipantLow, chat.ParticipantHigh, chat.JobID, now).Scan(&chat.ID)
	return mapError(err)
}

func (r *chatRepo) GetByID(ctx context.Context, id int64) (*domain.Chat, error) {
	var c domain.Chat
	if err := scanChat(conn(ctx, r.db).QueryRow(ctx, `SELECT `+chatColumns+` FROM chats c WHERE c.id = $1`, id), &c); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *chatRepo) GetByPair(ctx context.Context, low, high string) (*domain.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats c WHERE c.participant_low = $1 AND c.participant_high = $2`
	var c domain.Chat
	if err := scanChat(conn(ctx, r.db).QueryRow(ctx, query, low, high), &c); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// ListByUser returns the user's chats, most recently active first, with the
// count of unread messages sent by the other party.
func (r *chatRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Chat, int64, error) {
	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM chats WHERE participant_low = $1 OR participant_high = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + chatColumns + `,
			(SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id AND m.sender_id <> $1 AND NOT m.is_read)
		FROM chats c
		WHERE c.participant_low = $1 OR c.participant_high = $1
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC
		LIMIT $2 OFFSET $3`

	rows, err := conn(ctx, r.db).Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	chats := []domain.Chat{}
	for rows.Next() {
		var c domain.Chat
		if err := scanChat(rows, &c, &c.UnreadCount); err != nil {
			return nil, 0, err
		}
		chats = append(chats, c)
	}
	return chats, total, rows.Err()
}

func (r *chatRepo) UpdatePreview(ctx context.Context, id int64, preview string, at time.Time) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE chats SET last_message = $1, last_message_at = $2, updated_at = $2 WHERE id = $3`, preview, at, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}

func (r *chatRepo) Delete(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}

type messageRepo struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) domain.MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *domain.Message) error {
	msg.CreatedAt = time.Now().UTC()
	err := conn(ctx, r.db).QueryRow(ctx,
		`INSERT INTO messages (chat_id, sender_id, body, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		msg.ChatID, msg.SenderID, msg.Body, msg.CreatedAt,
	).Scan(&msg.ID)
	return mapError(err)
}

func (r *messageRepo) List(ctx context.Context, chatID int64, before int64, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, body, is_read, created_at
		FROM messages
		WHERE chat_id = $1 AND ($2::bigint = 0 OR id < $2::bigint)
		ORDER BY id DESC
		LIMIT $3`

	rows, err := conn(ctx, r.db).Query(ctx, query, chatID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead marks every message the other participant sent as read.
func (r *messageRepo) MarkRead(ctx context.Context, chatID int64, readerID string) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE messages SET is_read = TRUE WHERE chat_id = $1 AND sender_id <> $2 AND NOT is_read`, chatID, readerID)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *messageRepo) DeleteByChat(ctx context.Context, chatID int64) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM messages WHERE chat_id = $1`, chatID)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}
