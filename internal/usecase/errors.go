package usecase

import (
	"errors"
	"strings"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
)

var statusList = func() string {
	names := make([]string, len(domain.ApplicationStatuses))
	for i, s := range domain.ApplicationStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}()

// toAppError maps domain sentinels onto the HTTP error taxonomy. notFound is
// the message used when the entity is missing or not visible to the caller.
func toAppError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, domain.ErrInvalidStatus):
		return apperror.Validation("Invalid status, expected one of: "+statusList, err)
	case errors.Is(err, domain.ErrTerminalStatus):
		return apperror.Conflict("Application already reached a final status", err)
	case errors.Is(err, domain.ErrIllegalTransition):
		return apperror.Validation("Illegal status transition", err)
	case errors.Is(err, domain.ErrVersionConflict):
		return apperror.Conflict("Application was modified concurrently, reload and retry", err)
	case errors.Is(err, domain.ErrEmptyMessage):
		return apperror.Validation("Message cannot be empty", err)
	case errors.Is(err, domain.ErrMessageTooLong):
		return apperror.Validation("Message is too long", err)
	case errors.Is(err, domain.ErrSelfChat):
		return apperror.Validation("Cannot start a chat with yourself", err)
	case errors.Is(err, domain.ErrUnknownNotificationType), errors.Is(err, domain.ErrInvalidNotification):
		return apperror.Validation("Invalid notification", err)
	case errors.Is(err, domain.ErrInvalidInterviewStatus):
		return apperror.Validation("Invalid interview status", err)
	case errors.Is(err, domain.ErrInterviewTerminal):
		return apperror.Conflict("Interview is already finalized", err)
	case errors.Is(err, domain.ErrFeedbackRequiresComplete):
		return apperror.Validation("Feedback can only be submitted for completed interviews", err)
	case errors.Is(err, domain.ErrConflict):
		return apperror.Conflict("Resource already exists", err)
	}
	return apperror.Internal(err)
}
