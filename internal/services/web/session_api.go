package web

import (
	"net/http"

	"github.com/louisbranch/codemother/internal/platform/logging"
	"github.com/louisbranch/codemother/internal/services/web/platform/httpx"
	"github.com/louisbranch/codemother/internal/services/web/session"
	"github.com/louisbranch/codemother/internal/services/web/userapi"
)

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Admin         bool             `json:"admin"`
	User          *session.Session `json:"user"`
}

// handleSessionAPI reports the client's session to browser scripts. It
// ensures the store like a navigation would, without guarding anything.
func (h *handler) handleSessionAPI(w http.ResponseWriter, r *http.Request) {
	store := h.clientStore(w, r)
	store.Ensure(userapi.WithCredentials(r.Context(), userapi.CredentialCookies(r, h.config.CredentialCookies)))

	user := store.Session()
	w.Header().Set("Cache-Control", "no-store")
	if err := httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Authenticated: session.IsAuthenticated(user),
		Admin:         session.IsAdmin(user),
		User:          user,
	}); err != nil {
		logging.FromContext(r.Context()).Debug().Err(err).Msg("write session response")
	}
}
