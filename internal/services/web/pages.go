package web

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/codemother/internal/platform/logging"
	"github.com/louisbranch/codemother/internal/services/web/i18n"
	"github.com/louisbranch/codemother/internal/services/web/platform/httpx"
	"github.com/louisbranch/codemother/internal/services/web/route"
	"github.com/louisbranch/codemother/internal/services/web/session"
	"github.com/louisbranch/codemother/internal/services/web/templates"
	"golang.org/x/text/message"
)

// localizer resolves the request locale, optionally persists a cookie,
// and returns a message printer with the resolved language tag string.
func localizer(w http.ResponseWriter, r *http.Request) (*message.Printer, string) {
	tag, setCookie := i18n.ResolveTag(r)
	if setCookie {
		i18n.SetLanguageCookie(w, tag)
	}
	return i18n.Printer(tag), tag.String()
}

func (h *handler) pageHandler(d route.Descriptor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.renderPage(w, r, http.StatusOK, d.Meta.Title, d.View)
	})
}

func (h *handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusNotFound, "page.not_found.heading", templates.NotFoundPage)
}

// renderPage renders view inside the shared layout for the session attached
// to the request context.
func (h *handler) renderPage(w http.ResponseWriter, r *http.Request, status int, titleKey string, view route.View) {
	printer, lang := localizer(w, r)
	page := templates.PageContext{
		Lang:        lang,
		Loc:         printer,
		TitleKey:    titleKey,
		CurrentPath: r.URL.Path,
		Query:       r.URL.Query(),
		Session:     session.FromContext(r.Context()),
	}
	if notice, ok := h.flash.ReadAndClear(w, r); ok {
		page.Toast = &templates.Toast{Kind: string(notice.Kind), Message: printer.Sprintf(notice.Key)}
	}

	var buf bytes.Buffer
	if err := templates.Layout(page).Render(templ.WithChildren(r.Context(), view(page)), &buf); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := httpx.WriteHTML(w, status, buf.String()); err != nil {
		logging.FromContext(r.Context()).Debug().Err(err).Msg("write page")
	}
}
