package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/louisbranch/codemother/internal/services/web/routepath"
)

// Layout renders the shared page shell around the children carried by the
// render context (templ.WithChildren).
func Layout(page PageContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		h := newHTMLWriter(ctx, w)
		appName := T(page.Loc, "common.app_name")
		title := appName
		if page.TitleKey != "" {
			title = T(page.Loc, page.TitleKey) + " | " + appName
		}

		h.raw("<!DOCTYPE html><html")
		h.attr("lang", page.Lang)
		h.raw("><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>")
		h.text(title)
		h.raw("</title><link rel=\"stylesheet\" href=\"/static/app.css\"></head><body>")

		h.raw("<header class=\"site-header\"><a class=\"brand\" href=\"/\">")
		h.text(appName)
		h.raw("</a><nav><ul>")
		for _, link := range navLinks(page) {
			h.raw("<li><a")
			h.attr("href", link.href)
			if link.active {
				h.raw(" aria-current=\"page\"")
			}
			h.raw(">")
			h.text(T(page.Loc, link.key))
			h.raw("</a></li>")
		}
		h.raw("</ul></nav>")
		h.child(accountMenu(page))
		h.raw("</header>")

		h.child(toast(page.Toast))
		h.raw("<main>")
		h.child(body)
		h.raw("</main><footer>")
		h.text(T(page.Loc, "common.footer"))
		h.raw("</footer></body></html>")
		return h.err
	})
}

func toast(t *Toast) templ.Component {
	if t == nil || t.Message == "" {
		return templ.NopComponent
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw("<div role=\"status\"")
		h.attr("class", "toast toast-"+t.Kind)
		h.raw(">")
		h.text(t.Message)
		h.raw("</div>")
		return h.err
	})
}

func accountMenu(page PageContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw("<div class=\"account\">")
		if page.SignedIn() {
			h.raw("<span class=\"account-name\">")
			h.text(page.Session.DisplayName())
			h.raw("</span><form method=\"post\"")
			h.attr("action", routepath.Logout)
			h.raw("><button type=\"submit\">")
			h.text(T(page.Loc, "common.nav.logout"))
			h.raw("</button></form>")
		} else {
			h.raw("<a")
			h.attr("href", routepath.LoginWithRedirect(currentTarget(page)))
			h.raw(">")
			h.text(T(page.Loc, "common.nav.login"))
			h.raw("</a>")
		}
		h.raw("</div>")
		return h.err
	})
}

func currentTarget(page PageContext) string {
	if page.CurrentPath == "" || page.CurrentPath == routepath.Login {
		return routepath.Root
	}
	if len(page.Query) == 0 {
		return page.CurrentPath
	}
	return page.CurrentPath + "?" + page.Query.Encode()
}
