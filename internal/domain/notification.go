package domain

import (
	"context"
	"strings"
	"time"
)

// NotificationType is a closed catalog; constructing a notification with any
// other value fails.
type NotificationType string

const (
	NotificationApplicationSubmitted   NotificationType = "APPLICATION_SUBMITTED"
	NotificationApplicationReviewed    NotificationType = "APPLICATION_REVIEWED"
	NotificationApplicationShortlisted NotificationType = "APPLICATION_SHORTLISTED"
	NotificationApplicationRejected    NotificationType = "APPLICATION_REJECTED"
	NotificationApplicationApproved    NotificationType = "APPLICATION_APPROVED"
	NotificationNewMessage             NotificationType = "NEW_MESSAGE"
	NotificationJobPosted              NotificationType = "JOB_POSTED"
	NotificationJobUpdated             NotificationType = "JOB_UPDATED"
	NotificationJobClosed              NotificationType = "JOB_CLOSED"
	NotificationProfileViewed          NotificationType = "PROFILE_VIEWED"
	NotificationResumeViewed           NotificationType = "RESUME_VIEWED"
	NotificationSystem                 NotificationType = "SYSTEM"
)

var notificationTypes = map[NotificationType]bool{
	NotificationApplicationSubmitted:   true,
	NotificationApplicationReviewed:    true,
	NotificationApplicationShortlisted: true,
	NotificationApplicationRejected:    true,
	NotificationApplicationApproved:    true,
	NotificationNewMessage:             true,
	NotificationJobPosted:              true,
	NotificationJobUpdated:             true,
	NotificationJobClosed:              true,
	NotificationProfileViewed:          true,
	NotificationResumeViewed:           true,
	NotificationSystem:                 true,
}

// Valid reports whether t belongs to the catalog.
func (t NotificationType) Valid() bool {
	return notificationTypes[t]
}

// Related model kinds
const (
	RelatedApplication = "application"
	RelatedJob         = "job"
	RelatedChat        = "chat"
	RelatedInterview   = "interview"
	RelatedUser        = "user"
)

type Notification struct {
	ID           int64            `json:"id"`
	RecipientID  string           `json:"recipient_id"`
	SenderID     *string          `json:"sender_id,omitempty"`
	Type         NotificationType `json:"type"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	RelatedID    *int64           `json:"related_id,omitempty"`
	RelatedModel *string          `json:"related_model,omitempty"`
	Link         *string          `json:"link,omitempty"`
	IsRead       bool             `json:"is_read"`
	ReadAt       *time.Time       `json:"read_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NotifyInput is the dispatcher contract for one notification.
type NotifyInput struct {
	RecipientID  string
	SenderID     string
	Type         NotificationType
	Title        string
	Message      string
	RelatedID    int64
	RelatedModel string
	Link         string
}

// NewNotification validates in and builds an unread notification.
func NewNotification(in NotifyInput) (*Notification, error) {
	if !in.Type.Valid() {
		return nil, ErrUnknownNotificationType
	}
	if strings.TrimSpace(in.RecipientID) == "" || strings.TrimSpace(in.Title) == "" {
		return nil, ErrInvalidNotification
	}

	n := &Notification{
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
	}
	if in.SenderID != "" {
		n.SenderID = &in.SenderID
	}
	if in.RelatedID != 0 {
		id := in.RelatedID
		n.RelatedID = &id
	}
	if in.RelatedModel != "" {
		model := in.RelatedModel
		n.RelatedModel = &model
	}
	if in.Link != "" {
		link := in.Link
		n.Link = &link
	}
	return n, nil
}

// NotificationFilter drives list queries.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Skip       int
}

const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100
)

// Normalize clamps Limit and Skip into range.
func (f NotificationFilter) Normalize() NotificationFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultNotificationLimit
	}
	if f.Limit > MaxNotificationLimit {
		f.Limit = MaxNotificationLimit
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	return f
}

type NotificationPage struct {
	Items       []Notification `json:"items"`
	Total       int64          `json:"total"`
	UnreadCount int64          `json:"unread_count"`
	Limit       int            `json:"limit"`
	Skip        int            `json:"skip"`
}

// NotificationRepository scopes every mutation to the owner; a row owned by
// someone else behaves like a missing row.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	MarkRead(ctx context.Context, id int64, ownerID string, at time.Time) (*Notification, error)
	MarkAllRead(ctx context.Context, ownerID string, at time.Time) (int64, error)
	List(ctx context.Context, ownerID string, filter NotificationFilter) ([]Notification, int64, error)
	CountUnread(ctx context.Context, ownerID string) (int64, error)
	Delete(ctx context.Context, id int64, ownerID string) error
	DeleteRead(ctx context.Context, ownerID string) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationDispatcher is the two-phase delivery contract: a durable
// Record, then a best-effort Deliver.
type NotificationDispatcher interface {
	Record(ctx context.Context, in NotifyInput) (*Notification, error)
	Deliver(ctx context.Context, n *Notification) bool
	Notify(ctx context.Context, in NotifyInput) (*Notification, error)
}

type NotificationUsecase interface {
	NotificationDispatcher

	List(ctx context.Context, ownerID string, filter NotificationFilter) (*NotificationPage, error)
	UnreadCount(ctx context.Context, ownerID string) (int64, error)
	MarkRead(ctx context.Context, id int64, ownerID string) (*Notification, error)
	MarkAllRead(ctx context.Context, ownerID string) (int64, error)
	Delete(ctx context.Context, id int64, ownerID string) error
	DeleteRead(ctx context.Context, ownerID string) (int64, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
