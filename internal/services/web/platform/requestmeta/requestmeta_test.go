package requestmeta

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasSameOriginProofWithPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		headers map[string]string
		tls     bool
		policy  SchemePolicy
		want    bool
	}{
		{name: "matching origin", target: "http://shop.test/login", headers: map[string]string{"Origin": "http://shop.test"}, want: true},
		{name: "explicit default port", target: "http://shop.test/login", headers: map[string]string{"Origin": "http://shop.test:80"}, want: true},
		{name: "referer fallback", target: "http://shop.test/login", headers: map[string]string{"Referer": "http://shop.test/login?redirect=%2F"}, want: true},
		{name: "cross origin", target: "http://shop.test/login", headers: map[string]string{"Origin": "http://evil.test"}, want: false},
		{name: "scheme mismatch", target: "http://shop.test/login", headers: map[string]string{"Origin": "https://shop.test"}, want: false},
		{name: "missing proof", target: "http://shop.test/login", want: false},
		{name: "tls request", target: "/login", tls: true, headers: map[string]string{"Origin": "https://example.com"}, want: true},
		{
			name:    "untrusted forwarded proto is ignored",
			target:  "http://shop.test/login",
			headers: map[string]string{"Origin": "https://shop.test", "X-Forwarded-Proto": "https"},
			want:    false,
		},
		{
			name:    "trusted forwarded proto is used",
			target:  "http://shop.test/login",
			headers: map[string]string{"Origin": "https://shop.test", "X-Forwarded-Proto": "https"},
			policy:  SchemePolicy{TrustForwardedProto: true},
			want:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, tc.target, nil)
			if tc.tls {
				req.TLS = &tls.ConnectionState{}
				req.URL.Scheme = ""
			}
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, HasSameOriginProofWithPolicy(req, tc.policy))
		})
	}
}

func TestIsHTTPSWithPolicy(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, IsHTTPSWithPolicy(req, SchemePolicy{}))

	req.TLS = &tls.ConnectionState{}
	assert.True(t, IsHTTPSWithPolicy(req, SchemePolicy{}))

	assert.False(t, IsHTTPSWithPolicy(nil, SchemePolicy{}))
}
