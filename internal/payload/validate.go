package payload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the one thing a payload cannot do without: its id.
// Optional fields are never rejected here, the mapper applies default/skip policies.
func Validate(u User) error {
	u.ID = strings.TrimSpace(u.ID)

	err := validate.Struct(u)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "ID" {
				return fmt.Errorf("%w: %w", ErrMissingID, verrs)
			}
		}
	}

	return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
}

func ValidateNotification(n Notification) error {
	if err := validate.Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.StructNamespace() == "Notification.User.ID" {
					return fmt.Errorf("%w: %w", ErrMissingID, verrs)
				}
			}
		}
		return fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}
	return nil
}
