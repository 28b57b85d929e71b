package httpx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainAppliesMiddlewareInOrder(t *testing.T) {
	t.Parallel()

	called := ""
	mark := func(tag string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called += tag
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called += "h"
		w.WriteHeader(http.StatusNoContent)
	}), mark("1"), nil, mark("2"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "12h", called)
}

func TestChainHandlesNilHandler(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Chain(nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRequireMethodRejectsUnexpectedMethod(t *testing.T) {
	t.Parallel()

	h := RequireMethod(http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestRequestIDAssignsAndLogsID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RequestID(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rr.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
}

func TestRequestIDPreservesIncomingHeader(t *testing.T) {
	t.Parallel()

	h := RequestID(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "req-1", rr.Header().Get(RequestIDHeader))
}

func TestRecoverPanicLogsAndReturnsInternalServerError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID(zerolog.New(&buf)), RecoverPanic())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/explode", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), `"path":"/explode"`)
}

func TestAccessLogRecordsStatus(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}), RequestID(zerolog.New(&buf)), AccessLog())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pot", nil))
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"bytes":3`)
}

func TestWriteJSONSetsContentTypeAndBody(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rr, http.StatusCreated, map[string]string{"ok": "yes"}))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":"yes"}`, rr.Body.String())
}

func TestWritersRequireResponseWriter(t *testing.T) {
	t.Parallel()

	assert.Error(t, WriteJSON(nil, http.StatusOK, nil))
	assert.Error(t, WriteHTML(nil, http.StatusOK, ""))
	WriteRedirect(nil, nil, "/")
}

func TestWriteRedirect(t *testing.T) {
	t.Parallel()

	t.Run("plain request", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteRedirect(rr, httptest.NewRequest(http.MethodGet, "/profile", nil), "/login?redirect=%2Fprofile")
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/login?redirect=%2Fprofile", rr.Header().Get("Location"))
	})

	t.Run("htmx request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		WriteRedirect(rr, req, "/login")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("HX-Redirect"))
		assert.Empty(t, rr.Header().Get("Location"))
	})

	t.Run("nil request", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteRedirect(rr, nil, "/")
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
	})
}
