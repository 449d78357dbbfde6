package user

// PictureResource is a resolved avatar variant.
type PictureResource struct {
	Key  string `json:"key"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

// User is the mapped in-memory representation of one account.
// ID and IsMe are fixed at creation; everything else changes only through mapper updates.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Username     string   `json:"username,omitempty"`
	AccentID     AccentID `json:"accentId"`
	Locale       string   `json:"locale,omitempty"`
	IsMe         bool     `json:"isMe"`
	IdentityHash uint32   `json:"identityHash"`

	PreviewPicture *PictureResource `json:"previewPicture,omitempty"`
	MediumPicture  *PictureResource `json:"mediumPicture,omitempty"`
}

// NewUser returns a bare record carrying only its identity.
func NewUser(id string) *User {
	return &User{
		ID:           id,
		AccentID:     DefaultAccentID,
		IdentityHash: IdentityHash(id),
	}
}

// KeepSelf carries the self flag and locale over from prev when u is a
// plain mapping of an account already stored as self. Once set, IsMe stays set.
func (u *User) KeepSelf(prev *User) {
	if prev == nil || !prev.IsMe || u.IsMe {
		return
	}

	u.IsMe = true
	u.Locale = prev.Locale
}

// Clone returns a deep copy so callers can hand records out without sharing picture handles.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	c := *u

	if u.PreviewPicture != nil {
		p := *u.PreviewPicture
		c.PreviewPicture = &p
	}
	if u.MediumPicture != nil {
		m := *u.MediumPicture
		c.MediumPicture = &m
	}

	return &c
}
