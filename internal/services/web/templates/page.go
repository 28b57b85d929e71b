// Package templates renders the web pages as templ components.
package templates

import (
	"net/url"
	"strings"

	"github.com/louisbranch/codemother/internal/services/web/routepath"
	"github.com/louisbranch/codemother/internal/services/web/session"
)

// Toast is a one-time notice shown at the top of the page.
type Toast struct {
	Kind    string
	Message string
}

// PageContext provides shared layout context for pages.
type PageContext struct {
	Lang        string
	Loc         Localizer
	TitleKey    string
	CurrentPath string
	Query       url.Values
	Session     *session.Session
	Toast       *Toast
}

// SignedIn reports whether the page renders for an authenticated viewer.
func (p PageContext) SignedIn() bool {
	return session.IsAuthenticated(p.Session)
}

// Admin reports whether the page renders for an administrator.
func (p PageContext) Admin() bool {
	return session.IsAdmin(p.Session)
}

type navLink struct {
	key    string
	href   string
	active bool
}

func navLinks(page PageContext) []navLink {
	links := []navLink{
		{key: "common.nav.home", href: routepath.Root},
		{key: "common.nav.products", href: routepath.Products},
		{key: "common.nav.about", href: routepath.About},
		{key: "common.nav.contact", href: routepath.Contact},
	}
	if page.SignedIn() {
		links = append(links, navLink{key: "common.nav.profile", href: routepath.Profile})
	}
	if page.Admin() {
		links = append(links, navLink{key: "common.nav.admin", href: routepath.AdminUsers})
	}
	current := strings.TrimSpace(page.CurrentPath)
	for i := range links {
		links[i].active = links[i].href == current
	}
	return links
}
