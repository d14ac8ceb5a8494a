package service

import "errors"

// Kind classifies a business rejection. The HTTP layer maps kinds to status
// codes; anything that is not an *Error is an internal failure.
type Kind string

const (
	KindValidationFailed      Kind = "VALIDATION_FAILED"
	KindPastDate              Kind = "PAST_DATE"
	KindNotFound              Kind = "NOT_FOUND"
	KindOwnerMismatch         Kind = "OWNER_MISMATCH"
	KindAlreadyFinalized      Kind = "ALREADY_FINALIZED"
	KindInvalidTarget         Kind = "INVALID_TARGET"
	KindDuplicateSubscription Kind = "DUPLICATE_SUBSCRIPTION"
	KindScheduleConflict      Kind = "SCHEDULE_CONFLICT"
	KindEmailTaken            Kind = "EMAIL_TAKEN"
)

// Error is a caller-facing rejection with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so a rejection carrying a more
// specific message still satisfies errors.Is(err, ErrValidationFailed).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidationFailed      = &Error{Kind: KindValidationFailed, Message: "validation fails"}
	ErrPastDate              = &Error{Kind: KindPastDate, Message: "cannot be past date"}
	ErrNotFound              = &Error{Kind: KindNotFound, Message: "meetup not found"}
	ErrOwnerMismatch         = &Error{Kind: KindOwnerMismatch, Message: "you are not the organizer of this meetup"}
	ErrAlreadyFinalized      = &Error{Kind: KindAlreadyFinalized, Message: "this meetup is already finished"}
	ErrInvalidTarget         = &Error{Kind: KindInvalidTarget, Message: "cannot subscribe to own or finished meetup"}
	ErrDuplicateSubscription = &Error{Kind: KindDuplicateSubscription, Message: "you are already subscribed to this meetup"}
	ErrScheduleConflict      = &Error{Kind: KindScheduleConflict, Message: "you are already subscribed to a meetup in the same hour"}
	ErrEmailTaken            = &Error{Kind: KindEmailTaken, Message: "email already registered"}
)

func validationError(msg string) *Error {
	return &Error{Kind: KindValidationFailed, Message: msg}
}
