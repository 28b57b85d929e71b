// Package requestmeta derives scheme and origin facts from incoming requests.
package requestmeta

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// SchemePolicy controls which request headers may influence the scheme.
//
// X-Forwarded-Proto is only honoured when TrustForwardedProto is set.
type SchemePolicy struct {
	TrustForwardedProto bool
}

// IsHTTPSWithPolicy reports whether r should be treated as HTTPS.
func IsHTTPSWithPolicy(r *http.Request, policy SchemePolicy) bool {
	return Scheme(r, policy) == "https"
}

// Scheme returns "https" or "http" for r.
func Scheme(r *http.Request, policy SchemePolicy) string {
	if r == nil {
		return ""
	}
	if policy.TrustForwardedProto {
		switch proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto {
		case "http", "https":
			return proto
		}
	}
	if r.URL != nil {
		switch scheme := strings.ToLower(r.URL.Scheme); scheme {
		case "http", "https":
			return scheme
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// HasSameOriginProofWithPolicy reports whether the Origin header, or the
// Referer when Origin is absent, names the same origin as r.
func HasSameOriginProofWithPolicy(r *http.Request, policy SchemePolicy) bool {
	if r == nil {
		return false
	}
	want, ok := requestOrigin(r, policy)
	if !ok {
		return false
	}
	claimed := strings.TrimSpace(r.Header.Get("Origin"))
	if claimed == "" {
		claimed = strings.TrimSpace(r.Header.Get("Referer"))
	}
	if claimed == "" {
		return false
	}
	parsed, err := url.Parse(claimed)
	if err != nil {
		return false
	}
	got, ok := normalizeOrigin(parsed.Scheme, parsed.Host)
	return ok && got == want
}

func requestOrigin(r *http.Request, policy SchemePolicy) (string, bool) {
	host := r.Host
	if host == "" && r.URL != nil {
		host = r.URL.Host
	}
	return normalizeOrigin(Scheme(r, policy), host)
}

// normalizeOrigin renders scheme://host:port with the default port filled in.
func normalizeOrigin(scheme string, hostport string) (string, bool) {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	hostport = strings.ToLower(strings.TrimSpace(hostport))
	if scheme == "" || hostport == "" {
		return "", false
	}
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = strings.Trim(hostport, "[]"), ""
	}
	if host == "" {
		return "", false
	}
	if port == "" {
		switch scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", false
		}
	}
	return scheme + "://" + net.JoinHostPort(host, port), true
}
