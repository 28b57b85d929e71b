// Package routepath stores canonical HTTP paths for the web service.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root       = "/"
	Products   = "/products"
	About      = "/about"
	Contact    = "/contact"
	Login      = "/login"
	Logout     = "/logout"
	Profile    = "/profile"
	AdminRoot  = "/admin"
	AdminUsers = "/admin/users"
	Health     = "/up"
	APISession = "/api/session"
	Static     = "/static/"

	// RedirectQueryKey carries the post-login destination.
	RedirectQueryKey = "redirect"
)

// LoginWithRedirect returns the login path carrying target for post-login return.
func LoginWithRedirect(target string) string {
	return Login + "?" + RedirectQueryKey + "=" + url.QueryEscape(target)
}

// IsAdminPath reports whether path starts with the admin-reserved prefix.
// The match is textual, so /adminpanel is reserved too.
func IsAdminPath(path string) bool {
	return strings.HasPrefix(path, AdminRoot)
}

// SafeRedirect returns target when it is a local absolute path and fallback otherwise.
func SafeRedirect(target string, fallback string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") {
		return fallback
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return fallback
	}
	if parsed.Path == Login || parsed.Path == Logout {
		return fallback
	}
	return target
}
