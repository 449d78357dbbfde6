package payload

import "errors"

var (
	ErrInvalidPayload      = errors.New("invalid user payload")
	ErrMissingID           = errors.New("user payload missing id")
	ErrInvalidNotification = errors.New("invalid notification")
)
