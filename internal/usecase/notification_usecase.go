package usecase

import (
	"context"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/logger"
)

type notificationUsecase struct {
	repo    domain.NotificationRepository
	pusher  domain.Pusher
	readTTL time.Duration
}

// NewNotificationUsecase creates the notification dispatcher. readTTL is how
// long a read notification is kept before PurgeExpired removes it.
func NewNotificationUsecase(repo domain.NotificationRepository, pusher domain.Pusher, readTTL time.Duration) domain.NotificationUsecase {
	return &notificationUsecase{repo: repo, pusher: pusher, readTTL: readTTL}
}

// Record validates and persists a notification. It joins the caller's
// transaction when ctx carries one.
func (uc *notificationUsecase) Record(ctx context.Context, in domain.NotifyInput) (*domain.Notification, error) {
	n, err := domain.NewNotification(in)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Deliver pushes n to the recipient's personal channel. A recipient without
// a live session is the normal case and yields false.
func (uc *notificationUsecase) Deliver(ctx context.Context, n *domain.Notification) bool {
	if n == nil || uc.pusher == nil {
		return false
	}
	return uc.pusher.PushToUser(ctx, n.RecipientID, domain.Event{Type: domain.EventNotification, Data: n})
}

// Notify is Record followed by a best-effort Deliver.
func (uc *notificationUsecase) Notify(ctx context.Context, in domain.NotifyInput) (*domain.Notification, error) {
	n, err := uc.Record(ctx, in)
	if err != nil {
		return nil, err
	}
	uc.Deliver(ctx, n)
	return n, nil
}

func (uc *notificationUsecase) List(ctx context.Context, ownerID string, filter domain.NotificationFilter) (*domain.NotificationPage, error) {
	filter = filter.Normalize()
	items, total, err := uc.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	unread, err := uc.repo.CountUnread(ctx, ownerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.NotificationPage{
		Items:       items,
		Total:       total,
		UnreadCount: unread,
		Limit:       filter.Limit,
		Skip:        filter.Skip,
	}, nil
}

func (uc *notificationUsecase) UnreadCount(ctx context.Context, ownerID string) (int64, error) {
	count, err := uc.repo.CountUnread(ctx, ownerID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

// MarkRead is idempotent: read_at keeps the time of the first mark.
func (uc *notificationUsecase) MarkRead(ctx context.Context, id int64, ownerID string) (*domain.Notification, error) {
	n, err := uc.repo.MarkRead(ctx, id, ownerID, time.Now().UTC())
	if err != nil {
		return nil, toAppError(err, "Notification not found")
	}
	return n, nil
}

func (uc *notificationUsecase) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	count, err := uc.repo.MarkAllRead(ctx, ownerID, time.Now().UTC())
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

func (uc *notificationUsecase) Delete(ctx context.Context, id int64, ownerID string) error {
	if err := uc.repo.Delete(ctx, id, ownerID); err != nil {
		return toAppError(err, "Notification not found")
	}
	return nil
}

func (uc *notificationUsecase) DeleteRead(ctx context.Context, ownerID string) (int64, error) {
	count, err := uc.repo.DeleteRead(ctx, ownerID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

// PurgeExpired deletes read notifications older than the read TTL.
func (uc *notificationUsecase) PurgeExpired(ctx context.Context) (int64, error) {
	return uc.repo.DeleteReadBefore(ctx, time.Now().UTC().Add(-uc.readTTL))
}

// RunSweeper calls PurgeExpired every interval until ctx is cancelled.
func RunSweeper(ctx context.Context, uc domain.NotificationUsecase, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := uc.PurgeExpired(ctx)
			if err != nil {
				logger.Log.Error("Notification sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Log.Info("Expired notifications removed", "count", deleted)
			}
		}
	}
}
