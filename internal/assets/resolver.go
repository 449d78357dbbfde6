package assets

import (
	"strings"

	"github.com/geocoder89/userdir/internal/domain/user"
	"github.com/geocoder89/userdir/internal/payload"
)

// URLGenerator turns an asset key into a fetchable URL.
type URLGenerator interface {
	GenerateAssetURL(key string) string
}

// URLGeneratorFunc adapts a plain function to URLGenerator.
type URLGeneratorFunc func(key string) string

func (f URLGeneratorFunc) GenerateAssetURL(key string) string {
	return f(key)
}

// Resolved holds the picture variants found in one descriptor list.
type Resolved struct {
	Preview *user.PictureResource
	Medium  *user.PictureResource
}

func (r Resolved) Empty() bool {
	return r.Preview == nil && r.Medium == nil
}

type Resolver struct {
	gen URLGenerator
}

func NewResolver(gen URLGenerator) *Resolver {
	return &Resolver{gen: gen}
}

// Resolve maps v3 descriptors by size tag: preview -> Preview, complete -> Medium.
// Unknown tags and entries without a key are skipped. Later entries win.
func (r *Resolver) Resolve(descs []payload.Asset) Resolved {
	var out Resolved

	for _, d := range descs {
		key := strings.TrimSpace(d.Key)
		if key == "" {
			continue
		}

		switch d.Size {
		case payload.SizePreview:
			out.Preview = r.resource(key, d.Type)
		case payload.SizeComplete:
			out.Medium = r.resource(key, d.Type)
		}
	}

	return out
}

// ResolvePictures maps legacy v1 pictures by tag.
// Entries flagged non-public are left out of the result.
func (r *Resolver) ResolvePictures(pics []payload.Picture) Resolved {
	var out Resolved

	for _, p := range pics {
		key := strings.TrimSpace(p.ID)
		if key == "" || !p.Info.IsPublic() {
			continue
		}

		switch p.Info.Tag {
		case payload.TagSmallProfile:
			out.Preview = r.resource(key, p.ContentType)
		case payload.TagMedium:
			out.Medium = r.resource(key, p.ContentType)
		}
	}

	return out
}

func (r *Resolver) resource(key, typ string) *user.PictureResource {
	return &user.PictureResource{
		Key:  key,
		Type: typ,
		URL:  r.gen.GenerateAssetURL(key),
	}
}
