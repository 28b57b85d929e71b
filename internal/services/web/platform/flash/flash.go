// Package flash carries one-time notices across a redirect in a signed cookie.
package flash

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/louisbranch/codemother/internal/services/web/platform/requestmeta"
)

// CookieName is the cookie used for one-time web notices.
const CookieName = "cm_flash"

const (
	issuer = "codemother-web"
	maxAge = 5 * time.Minute
)

// Kind classifies flash notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice stores one flash message reference.
type Notice struct {
	Kind Kind   `json:"kind"`
	Key  string `json:"key"`
}

// NoticeSuccess creates a success notice for the provided localization key.
func NoticeSuccess(key string) Notice {
	return Notice{Kind: KindSuccess, Key: key}
}

// NoticeWarning creates a warning notice for the provided localization key.
func NoticeWarning(key string) Notice {
	return Notice{Kind: KindWarning, Key: key}
}

type claims struct {
	Notice
	jwt.RegisteredClaims
}

// Signer writes and verifies flash cookies with an HMAC key.
type Signer struct {
	key    []byte
	policy requestmeta.SchemePolicy
	now    func() time.Time
}

var errEmptyKey = errors.New("flash signing key is required")

// NewSigner builds a signer. The key must not be empty.
func NewSigner(key []byte, policy requestmeta.SchemePolicy) (*Signer, error) {
	if len(key) == 0 {
		return nil, errEmptyKey
	}
	return &Signer{key: append([]byte(nil), key...), policy: policy, now: time.Now}, nil
}

// Write stores a flash notice cookie for the next page render.
func (s *Signer) Write(w http.ResponseWriter, r *http.Request, notice Notice) {
	if s == nil || w == nil {
		return
	}
	normalized, ok := normalizeNotice(notice)
	if !ok {
		return
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Notice: normalized,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
		},
	})
	value, err := token.SignedString(s.key)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, s.policy),
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadAndClear reads and clears the flash notice cookie.
// An unreadable cookie is still cleared.
func (s *Signer) ReadAndClear(w http.ResponseWriter, r *http.Request) (Notice, bool) {
	if s == nil || r == nil {
		return Notice{}, false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return Notice{}, false
	}
	s.Clear(w, r)
	return s.decode(cookie.Value)
}

// Clear expires any flash notice cookie.
func (s *Signer) Clear(w http.ResponseWriter, r *http.Request) {
	if s == nil || w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, s.policy),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Signer) decode(raw string) (Notice, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Notice{}, false
	}
	var parsed claims
	_, err := jwt.ParseWithClaims(value, &parsed, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Notice{}, false
	}
	return normalizeNotice(parsed.Notice)
}

func normalizeNotice(notice Notice) (Notice, bool) {
	notice.Key = strings.TrimSpace(notice.Key)
	if notice.Key == "" {
		return Notice{}, false
	}
	notice.Kind = Kind(strings.ToLower(strings.TrimSpace(string(notice.Kind))))
	switch notice.Kind {
	case KindSuccess, KindInfo, KindWarning, KindError:
		return notice, true
	default:
		return Notice{}, false
	}
}
