package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/audit"
)

type chatUsecase struct {
	chatRepo    domain.ChatRepository
	messageRepo domain.MessageRepository
	userRepo    domain.UserRepository
	tx          domain.Transactor
	notifier    domain.NotificationDispatcher
	pusher      domain.Pusher
	audit       *audit.Logger
}

func NewChatUsecase(
	chatRepo domain.ChatRepository,
	messageRepo domain.MessageRepository,
	userRepo domain.UserRepository,
	tx domain.Transactor,
	notifier domain.NotificationDispatcher,
	pusher domain.Pusher,
	auditLog *audit.Logger,
) domain.ChatUsecase {
	return &chatUsecase{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		tx:          tx,
		notifier:    notifier,
		pusher:      pusher,
		audit:       auditLog,
	}
}

// GetOrCreateChat returns the single thread of the unordered pair. The sorted
// pair's unique constraint settles concurrent first contacts: the loser of
// the insert race reads the winner's row.
func (uc *chatUsecase) GetOrCreateChat(ctx context.Context, userID, otherID string, jobID *int64) (*domain.Chat, error) {
	if userID == otherID {
		return nil, toAppError(domain.ErrSelfChat, "")
	}
	if _, err := uc.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, toAppError(err, "User not found")
	}

	low, high := domain.SortedPair(userID, otherID)
	chat, err := uc.chatRepo.GetByPair(ctx, low, high)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	chat = &domain.Chat{ParticipantLow: low, ParticipantHigh: high, JobID: jobID}
	err = uc.chatRepo.Create(ctx, chat)
	switch {
	case err == nil:
		return chat, nil
	case errors.Is(err, domain.ErrConflict):
		existing, err := uc.chatRepo.GetByPair(ctx, low, high)
		if err != nil {
			return nil, toAppError(err, "Chat not found")
		}
		return existing, nil
	default:
		return nil, apperror.Internal(err)
	}
}

// PostMessage appends a message, refreshes the chat preview and records the
// NEW_MESSAGE notification in one transaction. The room broadcast and the
// personal push happen after commit.
func (uc *chatUsecase) PostMessage(ctx context.Context, chatID int64, senderID, text string) (*domain.Message, error) {
	body, err := domain.NormalizeMessage(text)
	if err != nil {
		return nil, toAppError(err, "")
	}

	chat, err := uc.participantChat(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{ChatID: chat.ID, SenderID: senderID, Body: body}
	var notification *domain.Notification
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.messageRepo.Create(ctx, msg); err != nil {
			return err
		}
		if err := uc.chatRepo.UpdatePreview(ctx, chat.ID, domain.Preview(body), msg.CreatedAt); err != nil {
			return err
		}
		var err error
		notification, err = uc.notifier.Record(ctx, domain.NotifyInput{
			RecipientID:  chat.Counterpart(senderID),
			SenderID:     senderID,
			Type:         domain.NotificationNewMessage,
			Title:        "New message",
			Message:      domain.Preview(body),
			RelatedID:    chat.ID,
			RelatedModel: domain.RelatedChat,
			Link:         fmt.Sprintf("/chats/%d", chat.ID),
		})
		return err
	})
	if err != nil {
		return nil, toAppError(err, "Chat not found")
	}

	if uc.pusher != nil {
		uc.pusher.BroadcastToChat(ctx, chat.ID, domain.Event{Type: domain.EventMessage, Data: msg})
	}
	uc.notifier.Deliver(ctx, notification)
	return msg, nil
}

// DeleteChat removes the messages and then the chat in one transaction.
func (uc *chatUsecase) DeleteChat(ctx context.Context, chatID int64, actorID string) error {
	chat, err := uc.participantChat(ctx, chatID, actorID)
	if err != nil {
		return err
	}

	var deleted int64
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if deleted, err = uc.messageRepo.DeleteByChat(ctx, chat.ID); err != nil {
			return err
		}
		return uc.chatRepo.Delete(ctx, chat.ID)
	})
	if err != nil {
		return toAppError(err, "Chat not found")
	}

	uc.audit.Log(ctx, audit.Event{
		Type:      audit.EventChatDeleted,
		ActorID:   actorID,
		Subject:   "chat",
		SubjectID: chat.ID,
		Details:   map[string]interface{}{"messages": deleted},
	})
	return nil
}

func (uc *chatUsecase) ListChats(ctx context.Context, userID string, page, pageSize int) (*domain.PaginatedResult[domain.Chat], error) {
	page, pageSize = normalizePage(page, pageSize)
	chats, total, err := uc.chatRepo.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPaginatedResult(chats, total, page, pageSize), nil
}

// ListMessages returns up to limit messages older than the before cursor,
// newest first.
func (uc *chatUsecase) ListMessages(ctx context.Context, chatID int64, userID string, before int64, limit int) ([]domain.Message, error) {
	if _, err := uc.participantChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	messages, err := uc.messageRepo.List(ctx, chatID, before, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return messages, nil
}

func (uc *chatUsecase) MarkChatRead(ctx context.Context, chatID int64, userID string) (int64, error) {
	if _, err := uc.participantChat(ctx, chatID, userID); err != nil {
		return 0, err
	}
	count, err := uc.messageRepo.MarkRead(ctx, chatID, userID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

func (uc *chatUsecase) EnsureParticipant(ctx context.Context, chatID int64, userID string) error {
	_, err := uc.participantChat(ctx, chatID, userID)
	return err
}

// participantChat loads the chat; non-participants get NotFound.
func (uc *chatUsecase) participantChat(ctx context.Context, chatID int64, userID string) (*domain.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, toAppError(err, "Chat not found")
	}
	if !chat.HasParticipant(userID) {
		return nil, apperror.NotFound("Chat not found")
	}
	return chat, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
