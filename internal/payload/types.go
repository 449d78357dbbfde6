package payload

// User is a raw account object from the identity service.
// The same shape carries sparse patches: only keys present in the JSON are Set.
type User struct {
	ID       string           `json:"id" validate:"required"`
	Name     Field[string]    `json:"name"`
	Email    Field[string]    `json:"email"`
	Phone    Field[string]    `json:"phone"`
	Handle   Field[string]    `json:"handle"`
	AccentID Field[int]       `json:"accent_id"`
	Locale   Field[string]    `json:"locale"`
	Picture  Field[[]Picture] `json:"picture"`
	Assets   Field[[]Asset]   `json:"assets"`
}

// Asset size tags understood by the resolver. Other tags are ignored.
const (
	SizePreview  = "preview"
	SizeComplete = "complete"
)

// Asset is a v3 avatar descriptor.
type Asset struct {
	Key  string `json:"key"`
	Size string `json:"size"`
	Type string `json:"type"`
}

// Legacy picture tags.
const (
	TagSmallProfile = "smallProfile"
	TagMedium       = "medium"
)

// Picture is a legacy v1 avatar entry.
type Picture struct {
	ID          string      `json:"id"`
	ContentType string      `json:"content_type"`
	Info        PictureInfo `json:"info"`
}

type PictureInfo struct {
	Tag    string      `json:"tag"`
	Public Field[bool] `json:"public"`
	Width  int         `json:"width,omitempty"`
	Height int         `json:"height,omitempty"`
}

// IsPublic treats a missing or null flag as public. An explicit false hides
// the entry, and so does a flag that is not a boolean.
func (i PictureInfo) IsPublic() bool {
	if i.Public.Err != nil {
		return false
	}
	return i.Public.Or(true)
}

// Notification types carried on the change queue.
const (
	NotificationUserUpdate = "user.update"
	NotificationUserDelete = "user.delete"
)

// Notification is one change event from the identity service.
type Notification struct {
	Type string `json:"type" validate:"required"`
	User User   `json:"user"`
}
