package domain

import "errors"

// Repository-level sentinels. Usecases translate them into apperror values.
var (
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("resource already exists")
	// ErrVersionConflict is returned when a compare-and-swap update lost a race.
	ErrVersionConflict = errors.New("resource was modified concurrently")
)

// Status engine errors.
var (
	ErrInvalidStatus     = errors.New("invalid application status")
	ErrTerminalStatus    = errors.New("application is in a terminal status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Chat and notification errors.
var (
	ErrEmptyMessage             = errors.New("message is empty")
	ErrMessageTooLong           = errors.New("message too long")
	ErrSelfChat                 = errors.New("cannot start a chat with yourself")
	ErrUnknownNotificationType  = errors.New("unknown notification type")
	ErrInvalidNotification      = errors.New("notification requires recipient and title")
	ErrInvalidInterviewStatus   = errors.New("invalid interview status")
	ErrInterviewTerminal        = errors.New("interview is already finalized")
	ErrFeedbackRequiresComplete = errors.New("feedback requires a completed interview")
)
