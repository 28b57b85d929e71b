package guard

import (
	"net/http"
	"net/url"

	"github.com/louisbranch/codemother/internal/services/web/platform/flash"
	"github.com/louisbranch/codemother/internal/services/web/platform/httpx"
	"github.com/louisbranch/codemother/internal/services/web/route"
	"github.com/louisbranch/codemother/internal/services/web/session"
	"github.com/louisbranch/codemother/internal/services/web/userapi"
)

// StoreResolver returns the session store of the client making r.
type StoreResolver func(w http.ResponseWriter, r *http.Request) *session.Store

// NoticeWriter persists a notice for the page rendered after a redirect.
type NoticeWriter interface {
	Write(w http.ResponseWriter, r *http.Request, notice flash.Notice)
}

// MiddlewareConfig wires the guard into an HTTP handler chain.
type MiddlewareConfig struct {
	Guard        *Guard
	Table        *route.Table
	ResolveStore StoreResolver
	Notices      NoticeWriter
	// CredentialCookies names the browser cookies forwarded to the product API.
	CredentialCookies []string
}

// Middleware guards every request reaching next as a page navigation.
func Middleware(cfg MiddlewareConfig) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := userapi.WithCredentials(r.Context(), userapi.CredentialCookies(r, cfg.CredentialCookies))
			var store *session.Store
			if cfg.ResolveStore != nil {
				store = cfg.ResolveStore(w, r)
			}
			if store == nil {
				store = session.NewStore(nil)
			}

			tr := cfg.Guard.Navigate(ctx, store, TargetFromRequest(r, cfg.Table), referrerTarget(r, cfg.Table))
			if tr.Decision.Outcome == OutcomeRedirect {
				if cfg.Notices != nil {
					cfg.Notices.Write(w, r, flash.NoticeWarning(tr.Decision.Reason.NoticeKey()))
				}
				httpx.WriteRedirect(w, r, tr.Decision.Location)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithStore(ctx, store)))
		})
	}
}

// TargetFromRequest describes the navigation target of r. Paths outside the
// table carry empty metadata.
func TargetFromRequest(r *http.Request, table *route.Table) Target {
	if r == nil || r.URL == nil {
		return Target{}
	}
	target := Target{FullPath: r.URL.RequestURI(), Path: r.URL.Path}
	if d, ok := table.Match(r); ok {
		target.Meta = d.Meta
	}
	return target
}

// referrerTarget describes where the navigation came from, when the Referer
// names a local page.
func referrerTarget(r *http.Request, table *route.Table) Target {
	raw := r.Header.Get("Referer")
	if raw == "" {
		return Target{}
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Host != "" && parsed.Host != r.Host) {
		return Target{}
	}
	from := &http.Request{Method: http.MethodGet, URL: parsed, Host: r.Host}
	return TargetFromRequest(from, table)
}
