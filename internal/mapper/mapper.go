// Package mapper turns identity-service payloads into user records and
// applies change payloads to records the caller already owns.
package mapper

import (
	"fmt"
	"log/slog"

	"github.com/geocoder89/userdir/internal/assets"
	"github.com/geocoder89/userdir/internal/domain/user"
	"github.com/geocoder89/userdir/internal/payload"
)

type Mapper struct {
	assets *assets.Resolver
	log    *slog.Logger
}

func New(gen assets.URLGenerator, log *slog.Logger) *Mapper {
	if log == nil {
		log = slog.Default()
	}

	return &Mapper{
		assets: assets.NewResolver(gen),
		log:    log,
	}
}

// MapUser maps one account. A nil payload maps to a nil record.
func (m *Mapper) MapUser(raw *payload.User) *user.User {
	if raw == nil {
		return nil
	}

	u := user.NewUser(raw.ID)
	m.apply(u, *raw)

	return u
}

// MapSelfUser maps the authenticated account: like MapUser, plus locale and IsMe.
func (m *Mapper) MapSelfUser(raw *payload.User) *user.User {
	if raw == nil {
		return nil
	}

	u := user.NewUser(raw.ID)
	u.IsMe = true
	m.apply(u, *raw)

	return u
}

// MapUsers maps each payload in order. It never returns nil.
func (m *Mapper) MapUsers(raws []payload.User) []*user.User {
	out := make([]*user.User, 0, len(raws))

	for i := range raws {
		out = append(out, m.MapUser(&raws[i]))
	}

	return out
}

// UpdateUser applies the keys present in patch to u and returns u.
// A patch for another id fails with user.ErrIdentityMismatch and u is not touched.
func (m *Mapper) UpdateUser(u *user.User, patch payload.User) (*user.User, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: no record for patch %s", user.ErrIdentityMismatch, patch.ID)
	}

	if patch.ID != u.ID {
		return u, fmt.Errorf("%w: record %s, patch %s", user.ErrIdentityMismatch, u.ID, patch.ID)
	}

	m.apply(u, patch)

	return u, nil
}

// apply is shared by creation and update, so both paths follow one per-field policy.
func (m *Mapper) apply(u *user.User, p payload.User) {
	m.logTolerated(u.ID, p)

	if p.Name.Set {
		u.Name = p.Name.Value
	}
	if p.Email.Set {
		u.Email = p.Email.Value
	}
	if p.Phone.Set {
		u.Phone = p.Phone.Value
	}
	if p.Handle.Set {
		u.Username = p.Handle.Value
	}
	if p.AccentID.Set {
		u.AccentID = user.ResolveAccentID(p.AccentID.Ptr())
	}

	// locale is only meaningful for the caller's own account
	if p.Locale.Set && u.IsMe {
		u.Locale = p.Locale.Value
	}

	switch {
	case p.Assets.Set:
		m.setPictures(u, m.assets.Resolve(p.Assets.Value), len(p.Assets.Value))
	case p.Picture.Set:
		m.setPictures(u, m.assets.ResolvePictures(p.Picture.Value), len(p.Picture.Value))
	}
}

// setPictures only overwrites the sizes that resolved; the other stays as it was.
func (m *Mapper) setPictures(u *user.User, r assets.Resolved, descriptors int) {
	if r.Empty() && descriptors > 0 {
		m.log.Debug("no resolvable picture assets", "user_id", u.ID, "descriptors", descriptors)
	}

	if r.Preview != nil {
		u.PreviewPicture = r.Preview
	}
	if r.Medium != nil {
		u.MediumPicture = r.Medium
	}
}

func (m *Mapper) logTolerated(id string, p payload.User) {
	fields := []struct {
		key string
		err error
	}{
		{"name", p.Name.Err},
		{"email", p.Email.Err},
		{"phone", p.Phone.Err},
		{"handle", p.Handle.Err},
		{"accent_id", p.AccentID.Err},
		{"locale", p.Locale.Err},
		{"picture", p.Picture.Err},
		{"assets", p.Assets.Err},
	}

	for _, f := range fields {
		if f.err != nil {
			m.log.Debug("ignoring malformed payload field", "user_id", id, "field", f.key, "err", f.err)
		}
	}
}
