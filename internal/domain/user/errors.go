package user

import "errors"

var (
	ErrIdentityMismatch = errors.New("identity mismatch")
	ErrUserNotFound     = errors.New("user not found")
)
