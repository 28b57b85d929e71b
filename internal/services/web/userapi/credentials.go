package userapi

import (
	"context"
	"net/http"
	"strings"
)

type credentialsKey struct{}

// WithCredentials attaches the browser's credential cookies to ctx.
func WithCredentials(ctx context.Context, cookies []*http.Cookie) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	copied := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		if cookie == nil {
			continue
		}
		c := *cookie
		copied = append(copied, &c)
	}
	return context.WithValue(ctx, credentialsKey{}, copied)
}

// CredentialsFromContext returns the cookies attached by WithCredentials.
func CredentialsFromContext(ctx context.Context) []*http.Cookie {
	if ctx == nil {
		return nil
	}
	cookies, _ := ctx.Value(credentialsKey{}).([]*http.Cookie)
	return cookies
}

// CredentialCookies picks the named credential cookies from a browser request.
func CredentialCookies(r *http.Request, names []string) []*http.Cookie {
	if r == nil || len(names) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = struct{}{}
		}
	}
	var out []*http.Cookie
	for _, cookie := range r.Cookies() {
		if _, ok := wanted[cookie.Name]; ok && strings.TrimSpace(cookie.Value) != "" {
			out = append(out, cookie)
		}
	}
	return out
}
