package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/louisbranch/codemother/internal/services/web/routepath"
)

func simplePage(page PageContext, headingKey string, bodyKey string, bodyArgs ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw("<section><h1>")
		h.text(T(page.Loc, headingKey))
		h.raw("</h1><p>")
		h.text(T(page.Loc, bodyKey, bodyArgs...))
		h.raw("</p></section>")
		return h.err
	})
}

// HomePage renders the landing page.
func HomePage(page PageContext) templ.Component {
	return simplePage(page, "page.home.heading", "page.home.body")
}

// ProductsPage renders the product overview.
func ProductsPage(page PageContext) templ.Component {
	return simplePage(page, "page.products.heading", "page.products.body")
}

// AboutPage renders the about page. The contact route reuses it.
func AboutPage(page PageContext) templ.Component {
	return simplePage(page, "page.about.heading", "page.about.body")
}

// NotFoundPage renders the 404 body.
func NotFoundPage(page PageContext) templ.Component {
	return simplePage(page, "page.not_found.heading", "page.not_found.body")
}

// AdminUsersPage renders the administrator landing page.
func AdminUsersPage(page PageContext) templ.Component {
	return simplePage(page, "page.admin_users.heading", "page.admin_users.body", page.Session.DisplayName())
}

// ProfilePage renders the signed-in user's profile.
func ProfilePage(page PageContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		s := page.Session
		h.raw("<section class=\"profile\"><h1>")
		h.text(T(page.Loc, "page.profile.heading"))
		h.raw("</h1>")
		if s == nil {
			h.raw("</section>")
			return h.err
		}
		if s.UserAvatar != "" {
			h.raw("<img class=\"avatar\" alt=\"\"")
			h.attr("src", s.UserAvatar)
			h.raw(">")
		}
		h.raw("<dl>")
		for _, row := range [][2]string{
			{"page.profile.account", s.UserAccount},
			{"page.profile.name", s.UserName},
			{"page.profile.role", s.UserRole},
			{"page.profile.bio", s.UserProfile},
		} {
			h.raw("<dt>")
			h.text(T(page.Loc, row[0]))
			h.raw("</dt><dd>")
			h.text(row[1])
			h.raw("</dd>")
		}
		h.raw("</dl></section>")
		return h.err
	})
}

// LoginForm carries login form state across a failed submit.
type LoginForm struct {
	Account  string
	Redirect string
	ErrorKey string
}

// LoginPage renders the login form.
func LoginPage(page PageContext, form LoginForm) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw("<section class=\"login\"><h1>")
		h.text(T(page.Loc, "login.heading"))
		h.raw("</h1>")
		if form.ErrorKey != "" {
			h.raw("<p class=\"form-error\" role=\"alert\">")
			h.text(T(page.Loc, form.ErrorKey))
			h.raw("</p>")
		}
		h.raw("<form method=\"post\"")
		h.attr("action", routepath.Login)
		h.raw("><input type=\"hidden\"")
		h.attr("name", routepath.RedirectQueryKey)
		h.attr("value", form.Redirect)
		h.raw("><label>")
		h.text(T(page.Loc, "login.account"))
		h.raw("<input type=\"text\" name=\"userAccount\" autocomplete=\"username\" required")
		h.attr("value", form.Account)
		h.raw("></label><label>")
		h.text(T(page.Loc, "login.password"))
		h.raw("<input type=\"password\" name=\"userPassword\" autocomplete=\"current-password\" required></label><button type=\"submit\">")
		h.text(T(page.Loc, "login.submit"))
		h.raw("</button></form></section>")
		return h.err
	})
}

// LoginView adapts LoginPage to a route view, taking the destination from the query.
func LoginView(page PageContext) templ.Component {
	return LoginPage(page, LoginForm{Redirect: page.Query.Get(routepath.RedirectQueryKey)})
}
