package mapper

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/geocoder89/userdir/internal/assets"
	"github.com/geocoder89/userdir/internal/domain/user"
	"github.com/geocoder89/userdir/internal/payload"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	johnDoeID = "d5a39ffb-6ce3-4cc8-9048-0e15d031b4c5"
	janeRoeID = "7025598b-ffac-4993-8a81-af3f35b7147f"
)

func newTestMapper() *Mapper {
	return New(assets.URLGeneratorFunc(func(string) string { return "FooBarURL" }), nil)
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

// selfPayload returns a fresh copy of the self fixture for each test to mutate.
func selfPayload(t *testing.T) *payload.User {
	t.Helper()
	raw, err := payload.DecodeUser(readFixture(t, "self.json"))
	require.NoError(t, err)
	require.NotNil(t, raw)
	return raw
}

func TestMapUser(t *testing.T) {
	m := newTestMapper()

	t.Run("converts a single payload", func(t *testing.T) {
		u := m.MapUser(selfPayload(t))
		require.Equal(t, "jd@wire.com", u.Email)
		require.Equal(t, "John Doe", u.Name)
		require.Equal(t, "+49177123456", u.Phone)
		require.Equal(t, "jdoe", u.Username)
		require.False(t, u.IsMe)
		require.Empty(t, u.Locale)
		require.Equal(t, user.AccentYellow, u.AccentID)
		require.NotNil(t, u.PreviewPicture)
		require.NotNil(t, u.MediumPicture)
		require.Equal(t, "FooBarURL", u.MediumPicture.URL)
	})

	t.Run("nil payload maps to nil", func(t *testing.T) {
		require.Nil(t, m.MapUser(nil))
	})

	t.Run("pictures marked non public", func(t *testing.T) {
		raw := selfPayload(t)
		raw.Picture.Value[0].Info.Public = payload.Some(false)
		raw.Picture.Value[1].Info.Public = payload.Some(false)

		u := m.MapUser(raw)
		require.Equal(t, "John Doe", u.Name)
		require.Nil(t, u.PreviewPicture)
		require.Nil(t, u.MediumPicture)
		// the source payload keeps its entries
		require.Len(t, raw.Picture.Value, 2)
	})

	t.Run("null accent falls back to default", func(t *testing.T) {
		raw := selfPayload(t)
		raw.AccentID = payload.Null[int]()

		u := m.MapUser(raw)
		require.Equal(t, "John Doe", u.Name)
		require.Equal(t, user.AccentBlue, u.AccentID)
	})

	t.Run("absent accent falls back to default", func(t *testing.T) {
		raw := selfPayload(t)
		raw.AccentID = payload.Field[int]{}

		require.Equal(t, user.DefaultAccentID, m.MapUser(raw).AccentID)
	})

	t.Run("zero accent falls back to default", func(t *testing.T) {
		raw := selfPayload(t)
		raw.AccentID = payload.Some(0)

		u := m.MapUser(raw)
		require.Equal(t, "John Doe", u.Name)
		require.Equal(t, uint32(526273169), u.IdentityHash)
		require.Equal(t, user.AccentBlue, u.AccentID)
	})

	t.Run("hash is stable across mappings", func(t *testing.T) {
		a := m.MapUser(selfPayload(t))
		b := m.MapUser(selfPayload(t))
		require.Equal(t, a.IdentityHash, b.IdentityHash)
	})
}

func TestMapSelfUser(t *testing.T) {
	m := newTestMapper()

	u := m.MapSelfUser(selfPayload(t))
	require.Equal(t, "jd@wire.com", u.Email)
	require.Equal(t, "John Doe", u.Name)
	require.Equal(t, "+49177123456", u.Phone)
	require.True(t, u.IsMe)
	require.Equal(t, "en", u.Locale)
	require.Equal(t, user.AccentYellow, u.AccentID)

	require.Nil(t, m.MapSelfUser(nil))
}

func TestMapUsers(t *testing.T) {
	m := newTestMapper()

	t.Run("converts many payloads in order", func(t *testing.T) {
		us, err := m.MapUsersJSON(readFixture(t, "users.json"))
		require.NoError(t, err)
		require.Len(t, us, 2)
		require.Equal(t, "jd@wire.com", us[0].Email)
		require.Equal(t, "Jane Roe", us[1].Name)
		require.Equal(t, user.AccentOrange, us[1].AccentID)
		require.Equal(t, user.IdentityHash(janeRoeID), us[1].IdentityHash)
		require.False(t, us[0].IsMe)
		require.False(t, us[1].IsMe)
	})

	t.Run("nil input yields empty slice", func(t *testing.T) {
		us := m.MapUsers(nil)
		require.NotNil(t, us)
		require.Empty(t, us)
	})

	t.Run("empty input yields empty slice", func(t *testing.T) {
		us := m.MapUsers([]payload.User{})
		require.NotNil(t, us)
		require.Empty(t, us)
	})
}

func TestUpdateUser(t *testing.T) {
	m := newTestMapper()

	decode := func(t *testing.T, v any) payload.User {
		t.Helper()
		b, err := json.Marshal(v)
		require.NoError(t, err)
		p, err := payload.DecodeUser(b)
		require.NoError(t, err)
		return *p
	}

	t.Run("updates the accent color", func(t *testing.T) {
		u := user.NewUser(johnDoeID)
		u.AccentID = user.AccentYellow

		got, err := m.UpdateUser(u, decode(t, map[string]any{"accent_id": 1, "id": johnDoeID}))
		require.NoError(t, err)
		require.Same(t, u, got)
		require.Equal(t, user.AccentBlue, got.AccentID)
	})

	t.Run("only present keys change", func(t *testing.T) {
		u := m.MapUser(selfPayload(t))
		before := *u

		_, err := m.UpdateUser(u, decode(t, map[string]any{"id": johnDoeID, "accent_id": 6}))
		require.NoError(t, err)
		require.Equal(t, user.AccentPink, u.AccentID)
		require.Equal(t, before.Name, u.Name)
		require.Equal(t, before.Username, u.Username)
		require.Equal(t, before.Email, u.Email)
		require.Equal(t, before.Phone, u.Phone)
		require.Same(t, before.PreviewPicture, u.PreviewPicture)
		require.Same(t, before.MediumPicture, u.MediumPicture)
	})

	t.Run("null accent resets to default", func(t *testing.T) {
		u := user.NewUser(johnDoeID)
		u.AccentID = user.AccentRed

		_, err := m.UpdateUser(u, decode(t, map[string]any{"id": johnDoeID, "accent_id": nil}))
		require.NoError(t, err)
		require.Equal(t, user.DefaultAccentID, u.AccentID)
	})

	t.Run("updates the user name", func(t *testing.T) {
		u := user.NewUser(johnDoeID)

		got, err := m.UpdateUser(u, decode(t, map[string]any{"id": johnDoeID, "name": "Jane Roe"}))
		require.NoError(t, err)
		require.Equal(t, "Jane Roe", got.Name)
	})

	t.Run("updates the user handle", func(t *testing.T) {
		u := user.NewUser(johnDoeID)

		got, err := m.UpdateUser(u, decode(t, map[string]any{"id": johnDoeID, "handle": "jroe"}))
		require.NoError(t, err)
		require.Equal(t, "jroe", got.Username)
	})

	t.Run("refuses a patch for another user", func(t *testing.T) {
		u := m.MapUser(selfPayload(t))
		before := u.Clone()

		_, err := m.UpdateUser(u, decode(t, map[string]any{"id": janeRoeID, "name": "Jane Roe"}))
		require.ErrorIs(t, err, user.ErrIdentityMismatch)
		require.Equal(t, before, u)
	})

	t.Run("refuses a nil record", func(t *testing.T) {
		_, err := m.UpdateUser(nil, decode(t, map[string]any{"id": johnDoeID}))
		require.ErrorIs(t, err, user.ErrIdentityMismatch)
	})

	t.Run("updates with v3 assets", func(t *testing.T) {
		u := user.NewUser(johnDoeID)

		got, err := m.UpdateUser(u, decode(t, map[string]any{
			"assets": []map[string]string{
				{"key": uuid.NewString(), "size": "preview", "type": "image"},
				{"key": uuid.NewString(), "size": "complete", "type": "image"},
			},
			"id":   johnDoeID,
			"name": "Jane Roe",
		}))
		require.NoError(t, err)
		require.NotNil(t, got.PreviewPicture)
		require.NotNil(t, got.MediumPicture)
		require.Equal(t, "Jane Roe", got.Name)
	})

	t.Run("empty asset list keeps pictures", func(t *testing.T) {
		u := m.MapUser(selfPayload(t))
		preview, medium := u.PreviewPicture, u.MediumPicture
		require.NotNil(t, preview)
		require.NotNil(t, medium)

		_, err := m.UpdateUser(u, decode(t, map[string]any{"id": johnDoeID, "assets": []any{}}))
		require.NoError(t, err)
		require.Equal(t, preview, u.PreviewPicture)
		require.Equal(t, medium, u.MediumPicture)
	})

	t.Run("preview only asset keeps medium picture", func(t *testing.T) {
		u := m.MapUser(selfPayload(t))
		medium := u.MediumPicture
		require.NotNil(t, medium)

		key := uuid.NewString()
		_, err := m.UpdateUser(u, decode(t, map[string]any{
			"id":     johnDoeID,
			"assets": []map[string]string{{"key": key, "size": "preview"}},
		}))
		require.NoError(t, err)
		require.Equal(t, key, u.PreviewPicture.Key)
		require.Equal(t, medium, u.MediumPicture)
	})

	t.Run("malformed optional fields are skipped", func(t *testing.T) {
		u := user.NewUser(johnDoeID)
		u.Name = "John Doe"
		u.AccentID = user.AccentRed

		p, err := payload.DecodeUser([]byte(`{"id":"` + johnDoeID + `","name":5,"accent_id":"3","email":"jd@wire.com"}`))
		require.NoError(t, err)

		_, err = m.UpdateUser(u, *p)
		require.NoError(t, err)
		require.Equal(t, "John Doe", u.Name)
		require.Equal(t, user.AccentRed, u.AccentID)
		require.Equal(t, "jd@wire.com", u.Email)
	})

	t.Run("locale ignored for other users", func(t *testing.T) {
		u := user.NewUser(johnDoeID)

		_, err := m.UpdateUser(u, decode(t, map[string]any{"id": johnDoeID, "locale": "de"}))
		require.NoError(t, err)
		require.Empty(t, u.Locale)
	})

	t.Run("self keeps is_me and takes locale", func(t *testing.T) {
		u := m.MapSelfUser(selfPayload(t))

		_, err := m.UpdateUser(u, decode(t, map[string]any{"id": johnDoeID, "locale": "de"}))
		require.NoError(t, err)
		require.True(t, u.IsMe)
		require.Equal(t, "de", u.Locale)
	})
}

func TestUpdateUserJSON(t *testing.T) {
	m := newTestMapper()
	u := user.NewUser(johnDoeID)

	_, err := m.UpdateUserJSON(u, []byte(`{"id":"`+johnDoeID+`","name":"Jane Roe"}`))
	require.NoError(t, err)
	require.Equal(t, "Jane Roe", u.Name)

	_, err = m.UpdateUserJSON(u, []byte(`null`))
	require.ErrorIs(t, err, payload.ErrMissingID)

	_, err = m.UpdateUserJSON(u, []byte(`{"name":"x"}`))
	require.ErrorIs(t, err, payload.ErrMissingID)
	require.Equal(t, "Jane Roe", u.Name)
}

func TestMapUserJSON(t *testing.T) {
	m := newTestMapper()

	u, err := m.MapUserJSON([]byte("null"))
	require.NoError(t, err)
	require.Nil(t, u)

	self, err := m.MapSelfUserJSON(readFixture(t, "self.json"))
	require.NoError(t, err)
	require.True(t, self.IsMe)

	t.Run("wrongly typed optional fields get defaults", func(t *testing.T) {
		u, err := m.MapUserJSON([]byte(`{"id":"x","name":"A","accent_id":"3","email":5}`))
		require.NoError(t, err)
		require.NotNil(t, u)
		require.Equal(t, "A", u.Name)
		require.Equal(t, user.DefaultAccentID, u.AccentID)
		require.Empty(t, u.Email)
	})

	t.Run("non boolean public flag hides the picture", func(t *testing.T) {
		u, err := m.MapUserJSON([]byte(`{"id":"x","picture":[
			{"id":"p1","info":{"tag":"smallProfile","public":"false"}},
			{"id":"p2","info":{"tag":"medium","width":"wide"}}
		]}`))
		require.NoError(t, err)
		require.Nil(t, u.PreviewPicture)
		require.NotNil(t, u.MediumPicture)
		require.Equal(t, "p2", u.MediumPicture.Key)
	})

	t.Run("wrongly typed id is still rejected", func(t *testing.T) {
		_, err := m.MapUserJSON([]byte(`{"id":42}`))
		require.ErrorIs(t, err, payload.ErrInvalidPayload)
	})
}
