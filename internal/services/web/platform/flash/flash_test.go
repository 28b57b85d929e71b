package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/louisbranch/codemother/internal/services/web/platform/requestmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, key string) *Signer {
	t.Helper()
	s, err := NewSigner([]byte(key), requestmeta.SchemePolicy{})
	require.NoError(t, err)
	return s
}

func writtenCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestWriteAndReadAndClearRoundTrip(t *testing.T) {
	t.Parallel()
	signer := newTestSigner(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	writeRR := httptest.NewRecorder()
	signer.Write(writeRR, req, NoticeWarning("guard.login_required"))
	req.AddCookie(writtenCookie(t, writeRR))

	readRR := httptest.NewRecorder()
	notice, ok := signer.ReadAndClear(readRR, req)
	require.True(t, ok)
	assert.Equal(t, KindWarning, notice.Kind)
	assert.Equal(t, "guard.login_required", notice.Key)
	assert.Equal(t, -1, writtenCookie(t, readRR).MaxAge)
}

func TestReadAndClearRejectsForeignSignature(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	writeRR := httptest.NewRecorder()
	newTestSigner(t, "other").Write(writeRR, req, NoticeSuccess("login.notice_success"))
	req.AddCookie(writtenCookie(t, writeRR))

	rr := httptest.NewRecorder()
	_, ok := newTestSigner(t, "secret").ReadAndClear(rr, req)
	assert.False(t, ok)
	assert.NotEmpty(t, rr.Header().Get("Set-Cookie"))
}

func TestReadAndClearRejectsExpiredNotice(t *testing.T) {
	t.Parallel()
	signer := newTestSigner(t, "secret")
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	writeRR := httptest.NewRecorder()
	signer.Write(writeRR, req, NoticeSuccess("login.notice_success"))
	req.AddCookie(writtenCookie(t, writeRR))

	signer.now = func() time.Time { return issued.Add(time.Hour) }
	_, ok := signer.ReadAndClear(httptest.NewRecorder(), req)
	assert.False(t, ok)
}

func TestReadAndClearInvalidCookieValueStillClears(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-token"})
	rr := httptest.NewRecorder()

	_, ok := newTestSigner(t, "secret").ReadAndClear(rr, req)
	assert.False(t, ok)
	assert.NotEmpty(t, rr.Header().Get("Set-Cookie"))
}

func TestWriteIgnoresInvalidNotice(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	newTestSigner(t, "secret").Write(rr, httptest.NewRequest(http.MethodGet, "/", nil), Notice{Kind: "loud", Key: "x"})
	assert.Empty(t, rr.Header().Get("Set-Cookie"))
}

func TestNewSignerRequiresKey(t *testing.T) {
	_, err := NewSigner(nil, requestmeta.SchemePolicy{})
	assert.Error(t, err)
}
