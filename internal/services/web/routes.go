package web

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/louisbranch/codemother/internal/services/web/guard"
	"github.com/louisbranch/codemother/internal/services/web/platform/clientcookie"
	"github.com/louisbranch/codemother/internal/services/web/platform/httpx"
	"github.com/louisbranch/codemother/internal/services/web/routepath"
	"github.com/louisbranch/codemother/internal/services/web/session"
	"github.com/louisbranch/codemother/internal/services/web/static"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "codemother-web"

// routes mounts non-navigation endpoints first and sends every other GET to
// the guarded page router.
func (h *handler) routes() http.Handler {
	root := mux.NewRouter()
	root.HandleFunc(routepath.Health, h.handleHealth).Methods(http.MethodGet, http.MethodHead)
	root.Handle(routepath.APISession, httpx.RequireMethod(http.MethodGet)(http.HandlerFunc(h.handleSessionAPI)))
	// GET /login falls through to the page router.
	root.HandleFunc(routepath.Login, h.handleLoginSubmit).Methods(http.MethodPost)
	root.Handle(routepath.Logout, httpx.RequireMethod(http.MethodPost)(http.HandlerFunc(h.handleLogout)))
	root.PathPrefix(routepath.Static).Handler(
		http.StripPrefix(routepath.Static, http.FileServer(http.FS(static.FS))),
	).Methods(http.MethodGet, http.MethodHead)

	pages := h.table.Router(h.pageHandler)
	pages.NotFoundHandler = http.HandlerFunc(h.handleNotFound)
	guarded := guard.Middleware(guard.MiddlewareConfig{
		Guard:             h.guard,
		Table:             h.table,
		ResolveStore:      h.clientStore,
		Notices:           h.flash,
		CredentialCookies: h.config.CredentialCookies,
	})(pages)
	root.PathPrefix("/").Handler(guarded).Methods(http.MethodGet, http.MethodHead)

	var traceOpts []otelhttp.Option
	if h.config.TracerProvider != nil {
		traceOpts = append(traceOpts, otelhttp.WithTracerProvider(h.config.TracerProvider))
	}
	return otelhttp.NewHandler(httpx.Chain(root,
		httpx.RequestID(h.logger),
		httpx.RecoverPanic(),
		httpx.AccessLog(),
	), serviceName, traceOpts...)
}

// clientStore returns the store of the client making r, issuing a client
// cookie when the browser has none.
func (h *handler) clientStore(w http.ResponseWriter, r *http.Request) *session.Store {
	return h.clients.Store(clientcookie.Ensure(w, r, h.policy))
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok\n")
}
