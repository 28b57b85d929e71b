// Package clientcookie identifies a browser client across requests.
package clientcookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/codemother/internal/services/web/platform/requestmeta"
)

// Name is the cookie carrying the client id.
const Name = "cm_client"

const maxAge = 30 * 24 * time.Hour

// Read returns the client id when the cookie holds a valid UUID.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil || cookie == nil {
		return "", false
	}
	id, err := uuid.Parse(strings.TrimSpace(cookie.Value))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Ensure returns the request's client id, issuing a new one when absent.
func Ensure(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) string {
	if id, ok := Read(r); ok {
		return id
	}
	id := uuid.NewString()
	if w != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     Name,
			Value:    id,
			Path:     "/",
			MaxAge:   int(maxAge.Seconds()),
			HttpOnly: true,
			Secure:   requestmeta.IsHTTPSWithPolicy(r, policy),
			SameSite: http.SameSiteLaxMode,
		})
	}
	return id
}
