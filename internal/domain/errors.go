package domain

import "errors"

// Kind classifies a core failure independently of any transport.
type Kind string

const (
	KindProductNotFound      Kind = "product_not_found"
	KindSelfPurchase         Kind = "self_purchase_not_allowed"
	KindInsufficientFunds    Kind = "insufficient_funds"
	KindConflict             Kind = "concurrent_modification_conflict"
	KindDuplicate            Kind = "duplicate_prevented_at_storage"
	KindNotificationNotFound Kind = "notification_not_found"
	KindValidation           Kind = "validation_error"
)

// Error is the structured failure returned by core operations.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error with the same Kind, so a ValidationError with a custom
// message still satisfies errors.Is(err, ErrValidation).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrProductNotFound      = &Error{Kind: KindProductNotFound, Message: "product not found"}
	ErrSelfPurchase         = &Error{Kind: KindSelfPurchase, Message: "cannot purchase your own product"}
	ErrInsufficientFunds    = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds"}
	ErrConflict             = &Error{Kind: KindConflict, Message: "concurrent modification, please retry"}
	ErrDuplicate            = &Error{Kind: KindDuplicate, Message: "duplicate prevented at storage"}
	ErrNotificationNotFound = &Error{Kind: KindNotificationNotFound, Message: "notification not found"}
	ErrValidation           = &Error{Kind: KindValidation, Message: "validation failed"}
)

// Validation builds a ValidationError carrying a specific message.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf returns the Kind of err, or "" when err is not a core failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
