package mapper

import (
	"github.com/geocoder89/userdir/internal/domain/user"
	"github.com/geocoder89/userdir/internal/payload"
)

func (m *Mapper) MapUserJSON(b []byte) (*user.User, error) {
	raw, err := payload.DecodeUser(b)
	if err != nil {
		return nil, err
	}
	return m.MapUser(raw), nil
}

func (m *Mapper) MapSelfUserJSON(b []byte) (*user.User, error) {
	raw, err := payload.DecodeUser(b)
	if err != nil {
		return nil, err
	}
	return m.MapSelfUser(raw), nil
}

func (m *Mapper) MapUsersJSON(b []byte) ([]*user.User, error) {
	raws, err := payload.DecodeUsers(b)
	if err != nil {
		return nil, err
	}
	return m.MapUsers(raws), nil
}

// UpdateUserJSON decodes a patch body and applies it to u.
func (m *Mapper) UpdateUserJSON(u *user.User, b []byte) (*user.User, error) {
	patch, err := payload.DecodeUser(b)
	if err != nil {
		return u, err
	}
	if patch == nil {
		return u, payload.ErrMissingID
	}
	return m.UpdateUser(u, *patch)
}
