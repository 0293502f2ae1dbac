package content

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-urlkit"
)

const permalinkGroup = "site"

// DefaultRoutes maps each kind to its public path template.
func DefaultRoutes() map[Kind]string {
	return map[Kind]string{
		KindBlog:       "/blog/:slug",
		KindCaseStudy:  "/case-studies/:slug",
		KindEvent:      "/events/:slug",
		KindWhitepaper: "/whitepapers/:slug",
	}
}

// Permalinks builds public URLs for entries with go-urlkit.
type Permalinks struct {
	manager *urlkit.RouteManager
}

// NewPermalinks registers routes under baseURL. Kinds missing from routes
// use DefaultRoutes.
func NewPermalinks(baseURL string, routes map[Kind]string) *Permalinks {
	paths := make(map[string]string)
	for kind, route := range DefaultRoutes() {
		paths[string(kind)] = route
	}
	for kind, route := range routes {
		if strings.TrimSpace(route) != "" {
			paths[string(kind)] = route
		}
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    permalinkGroup,
				BaseURL: strings.TrimRight(baseURL, "/"),
				Paths:   paths,
			},
		},
	})
	return &Permalinks{manager: manager}
}

// URL returns the permalink for an entry of kind with slug.
func (p *Permalinks) URL(kind Kind, slug string) (url string, err error) {
	if p == nil || p.manager == nil {
		return "", fmt.Errorf("content: permalinks not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("content: no route for kind %q: %v", kind, rec)
		}
	}()
	return p.manager.Group(permalinkGroup).
		Builder(string(kind)).
		WithParam("slug", slug).
		Build()
}
