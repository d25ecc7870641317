package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxMessageRunes = 5000
	PreviewRunes    = 100
)

// Chat is a two-party thread. Participants are stored as a sorted pair so
// that the pair is unique regardless of who initiated contact.
type Chat struct {
	ID              int64      `json:"id"`
	ParticipantLow  string     `json:"participant_low"`
	ParticipantHigh string     `json:"participant_high"`
	JobID           *int64     `json:"job_id,omitempty"`
	LastMessage     *string    `json:"last_message,omitempty"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	UnreadCount int64 `json:"unread_count"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Chat) HasParticipant(userID string) bool {
	return c.ParticipantLow == userID || c.ParticipantHigh == userID
}

// Counterpart returns the participant that is not userID.
func (c *Chat) Counterpart(userID string) string {
	if c.ParticipantLow == userID {
		return c.ParticipantHigh
	}
	return c.ParticipantLow
}

type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// SortedPair orders two user ids by bytes, matching the "C" collation of
// chats.participant_low/high.
func SortedPair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// NormalizeMessage trims text and enforces the body limits.
func NormalizeMessage(text string) (string, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > MaxMessageRunes {
		return "", ErrMessageTooLong
	}
	return body, nil
}

// Preview returns at most PreviewRunes runes of body.
func Preview(body string) string {
	if utf8.RuneCountInString(body) <= PreviewRunes {
		return body
	}
	return string([]rune(body)[:PreviewRunes])
}

type ChatRepository interface {
	// Create inserts the pair or returns ErrConflict when it already exists.
	Create(ctx context.Context, chat *Chat) error
	GetByID(ctx context.Context, id int64) (*Chat, error)
	GetByPair(ctx context.Context, low, high string) (*Chat, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Chat, int64, error)
	UpdatePreview(ctx context.Context, id int64, preview string, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	// List returns newest first; before is an optional message id cursor.
	List(ctx context.Context, chatID int64, before int64, limit int) ([]Message, error)
	MarkRead(ctx context.Context, chatID int64, readerID string) (int64, error)
	DeleteByChat(ctx context.Context, chatID int64) (int64, error)
}

type ChatUsecase interface {
	GetOrCreateChat(ctx context.Context, userID, otherID string, jobID *int64) (*Chat, error)
	PostMessage(ctx context.Context, chatID int64, senderID, text string) (*Message, error)
	DeleteChat(ctx context.Context, chatID int64, actorID string) error
	ListChats(ctx context.Context, userID string, page, pageSize int) (*PaginatedResult[Chat], error)
	ListMessages(ctx context.Context, chatID int64, userID string, before int64, limit int) ([]Message, error)
	MarkChatRead(ctx context.Context, chatID int64, userID string) (int64, error)
	EnsureParticipant(ctx context.Context, chatID int64, userID string) error
}
