package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
)

func isNull(b []byte) bool {
	t := bytes.TrimSpace(b)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// DecodeUser parses one user object. A null or empty body yields (nil, nil).
func DecodeUser(b []byte) (*User, error) {
	if isNull(b) {
		return nil, nil
	}

	var u User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if err := Validate(u); err != nil {
		return nil, err
	}

	return &u, nil
}

// DecodeUsers parses an array of user objects. null decodes to an empty slice.
func DecodeUsers(b []byte) ([]User, error) {
	if isNull(b) {
		return []User{}, nil
	}

	var us []User
	if err := json.Unmarshal(b, &us); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	for i := range us {
		if err := Validate(us[i]); err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
	}

	if us == nil {
		us = []User{}
	}

	return us, nil
}

// DecodeNotification parses a change event from the queue.
func DecodeNotification(b []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(b, &n); err != nil {
		return Notification{}, fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}

	if err := ValidateNotification(n); err != nil {
		return Notification{}, err
	}

	return n, nil
}
