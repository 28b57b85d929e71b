package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/codemother/internal/platform/logging"
	"github.com/louisbranch/codemother/internal/platform/timeouts"
	apperrors "github.com/louisbranch/codemother/internal/services/web/platform/errors"
	"github.com/louisbranch/codemother/internal/services/web/platform/flash"
	"github.com/louisbranch/codemother/internal/services/web/platform/httpx"
	"github.com/louisbranch/codemother/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/codemother/internal/services/web/routepath"
	"github.com/louisbranch/codemother/internal/services/web/session"
	"github.com/louisbranch/codemother/internal/services/web/templates"
	"github.com/louisbranch/codemother/internal/services/web/userapi"
)

const (
	formAccount  = "userAccount"
	formPassword = "userPassword"
)

// handleLoginSubmit exchanges the posted account and password for a product
// API session, hands the issued credentials to the browser, and returns the
// client to the page that sent it to login.
func (h *handler) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if !requestmeta.HasSameOriginProofWithPolicy(r, h.policy) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	store := h.clientStore(w, r)
	r = r.WithContext(session.WithStore(r.Context(), store))
	log := logging.FromContext(r.Context())

	form := templates.LoginForm{
		Account:  strings.TrimSpace(r.PostFormValue(formAccount)),
		Redirect: routepath.SafeRedirect(r.PostFormValue(routepath.RedirectQueryKey), routepath.Root),
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.APIRequest)
	defer cancel()
	user, cookies, err := h.login(ctx, form.Account, r.PostFormValue(formPassword))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUpstream {
			log.Warn().Err(err).Msg("login failed")
		} else {
			log.Info().Err(err).Str("account", form.Account).Msg("login rejected")
		}
		form.ErrorKey = apperrors.LocalizationKey(err)
		h.renderLogin(w, r, apperrors.HTTPStatus(err), form)
		return
	}

	h.relayCredentials(w, r, cookies)
	store.Set(user)
	log.Info().Str("user_id", user.ID.String()).Msg("login succeeded")
	h.flash.Write(w, r, flash.NoticeSuccess("login.notice_success"))
	httpx.WriteRedirect(w, r, form.Redirect)
}

// login classifies product API failures for the login form.
func (h *handler) login(ctx context.Context, account string, password string) (*session.Session, []*http.Cookie, error) {
	if account == "" || password == "" {
		return nil, nil, apperrors.E(apperrors.KindInvalidInput, "login.error_required")
	}
	user, cookies, err := h.api.Login(ctx, account, password)
	switch {
	case err == nil:
		return user, cookies, nil
	case userapi.IsInvalidCredentials(err):
		return nil, nil, apperrors.Wrap(apperrors.KindUnauthorized, "login.error_invalid", err)
	default:
		return nil, nil, apperrors.Wrap(apperrors.KindUpstream, "login.error_unavailable", err)
	}
}

func (h *handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form templates.LoginForm) {
	h.renderPage(w, r, status, "login.heading", func(page templates.PageContext) templ.Component {
		return templates.LoginPage(page, form)
	})
}

// handleLogout ends the product API session on a best-effort basis and
// always signs the client out locally.
func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !requestmeta.HasSameOriginProofWithPolicy(r, h.policy) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	ctx := userapi.WithCredentials(r.Context(), userapi.CredentialCookies(r, h.config.CredentialCookies))
	ctx, cancel := context.WithTimeout(ctx, timeouts.APIRequest)
	defer cancel()
	if err := h.api.Logout(ctx); err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("product api logout failed")
	}

	h.clientStore(w, r).Clear()
	h.expireCredentials(w, r)
	h.flash.Write(w, r, flash.NoticeSuccess("logout.notice_success"))
	httpx.WriteRedirect(w, r, routepath.Root)
}

// relayCredentials sets the configured credential cookies issued by the
// product API on the browser, scoped to this host.
func (h *handler) relayCredentials(w http.ResponseWriter, r *http.Request, issued []*http.Cookie) {
	wanted := make(map[string]struct{}, len(h.config.CredentialCookies))
	for _, name := range h.config.CredentialCookies {
		wanted[strings.TrimSpace(name)] = struct{}{}
	}
	for _, cookie := range issued {
		if cookie == nil {
			continue
		}
		if _, ok := wanted[cookie.Name]; !ok {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     "/",
			MaxAge:   cookie.MaxAge,
			Expires:  cookie.Expires,
			HttpOnly: true,
			Secure:   requestmeta.IsHTTPSWithPolicy(r, h.policy),
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *handler) expireCredentials(w http.ResponseWriter, r *http.Request) {
	for _, name := range h.config.CredentialCookies {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   requestmeta.IsHTTPSWithPolicy(r, h.policy),
			SameSite: http.SameSiteLaxMode,
		})
	}
}
