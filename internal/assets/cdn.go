package assets

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

var ErrInvalidBaseURL = errors.New("invalid asset base url")

// CDNGenerator joins a CDN/object-storage base URL with asset keys.
type CDNGenerator struct {
	base *url.URL
}

func NewCDNGenerator(baseURL string) (*CDNGenerator, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return nil, ErrInvalidBaseURL
	}

	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	return &CDNGenerator{base: parsed}, nil
}

func (g *CDNGenerator) GenerateAssetURL(key string) string {
	u := *g.base
	u.Path = path.Join("/", g.base.Path, "assets", strings.TrimSpace(key))
	return u.String()
}
