package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/louisbranch/codemother/internal/services/web/platform/flash"
	"github.com/louisbranch/codemother/internal/services/web/route"
	"github.com/louisbranch/codemother/internal/services/web/session"
	"github.com/louisbranch/codemother/internal/services/web/userapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type countingFetcher struct {
	calls   atomic.Int32
	session *session.Session
	err     error
}

func (f *countingFetcher) FetchSession(context.Context) (*session.Session, error) {
	f.calls.Add(1)
	return f.session.Clone(), f.err
}

var (
	adminSession = &session.Session{ID: "1", UserAccount: "root", UserRole: session.RoleAdmin}
	userSession  = &session.Session{ID: "2", UserAccount: "neo", UserRole: session.RoleUser}
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		target   Target
		session  *session.Session
		outcome  Outcome
		reason   Reason
		location string
	}{
		{
			name:     "requires admin without session",
			target:   Target{FullPath: "/admin/users", Path: "/admin/users", Meta: route.Meta{RequiresAdmin: true}},
			outcome:  OutcomeRedirect,
			reason:   ReasonNoPermission,
			location: "/login?redirect=%2Fadmin%2Fusers",
		},
		{
			name:    "requires admin with admin",
			target:  Target{Path: "/admin/users", Meta: route.Meta{RequiresAdmin: true}},
			session: adminSession,
			outcome: OutcomeProceed,
		},
		{
			name:     "requires admin with user",
			target:   Target{Path: "/reports", Meta: route.Meta{RequiresAdmin: true}},
			session:  userSession,
			outcome:  OutcomeRedirect,
			reason:   ReasonNoPermission,
			location: "/login?redirect=%2Freports",
		},
		{
			name:     "admin prefix without metadata",
			target:   Target{FullPath: "/admin/stats?range=7d", Path: "/admin/stats"},
			session:  userSession,
			outcome:  OutcomeRedirect,
			reason:   ReasonNoPermission,
			location: "/login?redirect=%2Fadmin%2Fstats%3Frange%3D7d",
		},
		{
			name:     "textual admin prefix",
			target:   Target{Path: "/administrators"},
			outcome:  OutcomeRedirect,
			reason:   ReasonNoPermission,
			location: "/login?redirect=%2Fadministrators",
		},
		{
			name:     "admin panel prefix",
			target:   Target{FullPath: "/adminpanel", Path: "/adminpanel"},
			outcome:  OutcomeRedirect,
			reason:   ReasonNoPermission,
			location: "/login?redirect=%2Fadminpanel",
		},
		{
			name:    "admin role without id",
			target:  Target{Path: "/admin-tools"},
			session: &session.Session{UserRole: session.RoleAdmin},
			outcome: OutcomeProceed,
		},
		{
			name:     "blank id is not logged in",
			target:   Target{Path: "/profile", Meta: route.Meta{RequiresAuth: true}},
			session:  &session.Session{UserRole: session.RoleAdmin},
			outcome:  OutcomeRedirect,
			reason:   ReasonLoginRequired,
			location: "/login?redirect=%2Fprofile",
		},
		{
			name:     "admin rule wins over auth rule",
			target:   Target{Path: "/admin", Meta: route.Meta{RequiresAuth: true}},
			outcome:  OutcomeRedirect,
			reason:   ReasonNoPermission,
			location: "/login?redirect=%2Fadmin",
		},
		{
			name:    "requires auth with user",
			target:  Target{Path: "/profile", Meta: route.Meta{RequiresAuth: true}},
			session: userSession,
			outcome: OutcomeProceed,
		},
		{
			name:     "requires auth without session",
			target:   Target{FullPath: "/profile?tab=orders", Path: "/profile", Meta: route.Meta{RequiresAuth: true}},
			outcome:  OutcomeRedirect,
			reason:   ReasonLoginRequired,
			location: "/login?redirect=%2Fprofile%3Ftab%3Dorders",
		},
		{
			name:     "requires auth with empty identity",
			target:   Target{Path: "/profile", Meta: route.Meta{RequiresAuth: true}},
			session:  &session.Session{ID: " ", UserRole: session.RoleUser},
			outcome:  OutcomeRedirect,
			reason:   ReasonLoginRequired,
			location: "/login?redirect=%2Fprofile",
		},
		{
			name:    "public route",
			target:  Target{Path: "/products"},
			outcome: OutcomeProceed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.target, tc.session)
			assert.Equal(t, tc.outcome, d.Outcome)
			assert.Equal(t, tc.reason, d.Reason)
			assert.Equal(t, tc.location, d.Location)
		})
	}
}

func TestReasonNoticeKeys(t *testing.T) {
	assert.Equal(t, "guard.no_permission", ReasonNoPermission.NoticeKey())
	assert.Equal(t, "guard.login_required", ReasonLoginRequired.NoticeKey())
	assert.Empty(t, ReasonNone.NoticeKey())
}

func TestNavigateFetchesOnlyOnFirstTransition(t *testing.T) {
	for _, tc := range []struct {
		name    string
		fetcher *countingFetcher
	}{
		{name: "fetch succeeds", fetcher: &countingFetcher{session: userSession}},
		{name: "fetch fails", fetcher: &countingFetcher{err: errors.New("unreachable")}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g := New()
			store := session.NewStore(tc.fetcher)

			first := g.Navigate(context.Background(), store, Target{Path: "/"}, Target{})
			assert.True(t, first.Fetched)
			assert.Equal(t, PhaseDecided, first.Phase)
			assert.EqualValues(t, 1, tc.fetcher.calls.Load())

			second := g.Navigate(context.Background(), store, Target{Path: "/products"}, Target{Path: "/"})
			assert.False(t, second.Fetched)
			assert.EqualValues(t, 1, tc.fetcher.calls.Load())
		})
	}
}

func TestNavigateAfterClearRedirects(t *testing.T) {
	g := New()
	store := session.NewStore(&countingFetcher{session: userSession})
	profile := Target{FullPath: "/profile", Path: "/profile", Meta: route.Meta{RequiresAuth: true}}

	require.Equal(t, OutcomeProceed, g.Navigate(context.Background(), store, profile, Target{}).Decision.Outcome)

	store.Clear()
	tr := g.Navigate(context.Background(), store, profile, Target{})
	assert.Equal(t, OutcomeRedirect, tr.Decision.Outcome)
	assert.Equal(t, "/login?redirect=%2Fprofile", tr.Decision.Location)
}

func TestNavigateRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	g := New(WithTracerProvider(tp))

	g.Navigate(context.Background(), session.NewStore(nil), Target{Path: "/admin/users"}, Target{})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "guard.Navigate", spans[0].Name())
}

type recordingNotices struct {
	notices []flash.Notice
}

func (r *recordingNotices) Write(_ http.ResponseWriter, _ *http.Request, notice flash.Notice) {
	r.notices = append(r.notices, notice)
}

type fixture struct {
	handler  http.Handler
	store    *session.Store
	fetcher  *countingFetcher
	notices  *recordingNotices
	reached  *atomic.Int32
	lastSeen *atomic.Pointer[session.Store]
}

func newFixture(fetched *session.Session) fixture {
	f := fixture{
		fetcher:  &countingFetcher{session: fetched},
		notices:  &recordingNotices{},
		reached:  &atomic.Int32{},
		lastSeen: &atomic.Pointer[session.Store]{},
	}
	f.store = session.NewStore(f.fetcher)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.reached.Add(1)
		if store, ok := session.StoreFromContext(r.Context()); ok {
			f.lastSeen.Store(store)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	f.handler = Middleware(MiddlewareConfig{
		Guard:        New(),
		Table:        route.Default(),
		ResolveStore: func(http.ResponseWriter, *http.Request) *session.Store { return f.store },
		Notices:      f.notices,
	})(next)
	return f
}

func (f fixture) get(target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestMiddlewareRedirectsAnonymousAdminNavigation(t *testing.T) {
	f := newFixture(nil)

	rr := f.get("/admin/users", nil)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login?redirect=%2Fadmin%2Fusers", rr.Header().Get("Location"))
	assert.Zero(t, f.reached.Load())
	require.Len(t, f.notices.notices, 1)
	assert.Equal(t, flash.NoticeWarning("guard.no_permission"), f.notices.notices[0])
}

func TestMiddlewareGuardsUnroutedAdminPaths(t *testing.T) {
	f := newFixture(userSession)

	rr := f.get("/admin/unknown?x=1", nil)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login?redirect=%2Fadmin%2Funknown%3Fx%3D1", rr.Header().Get("Location"))
	assert.Zero(t, f.reached.Load())
}

func TestMiddlewareLetsAdminThrough(t *testing.T) {
	f := newFixture(adminSession)

	rr := f.get("/admin/users", nil)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.EqualValues(t, 1, f.reached.Load())
	assert.Same(t, f.store, f.lastSeen.Load())
}

func TestMiddlewareLoginRequiredUsesHTMXRedirect(t *testing.T) {
	f := newFixture(nil)

	rr := f.get("/profile", http.Header{"Hx-Request": {"true"}})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/login?redirect=%2Fprofile", rr.Header().Get("HX-Redirect"))
	require.Len(t, f.notices.notices, 1)
	assert.Equal(t, "guard.login_required", f.notices.notices[0].Key)
}

func TestMiddlewareFetchesOncePerStore(t *testing.T) {
	f := newFixture(userSession)

	f.get("/", nil)
	f.get("/profile", nil)
	f.get("/about", nil)

	assert.EqualValues(t, 1, f.fetcher.calls.Load())
	assert.EqualValues(t, 3, f.reached.Load())
}

func TestMiddlewareForwardsCredentialCookies(t *testing.T) {
	var seen []*http.Cookie
	store := session.NewStore(session.FetcherFunc(func(ctx context.Context) (*session.Session, error) {
		seen = userapi.CredentialsFromContext(ctx)
		return nil, nil
	}))
	h := Middleware(MiddlewareConfig{
		Guard:             New(),
		Table:             route.Default(),
		ResolveStore:      func(http.ResponseWriter, *http.Request) *session.Store { return store },
		CredentialCookies: []string{"JSESSIONID"},
	})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "JSESSIONID", Value: "abc"})
	req.AddCookie(&http.Cookie{Name: "other", Value: "x"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, seen, 1)
	assert.Equal(t, "abc", seen[0].Value)
}

func TestTargetFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/profile?tab=orders", nil)

	target := TargetFromRequest(req, route.Default())

	assert.Equal(t, "/profile?tab=orders", target.FullPath)
	assert.Equal(t, "/profile", target.Path)
	assert.True(t, target.Meta.RequiresAuth)

	unknown := TargetFromRequest(httptest.NewRequest(http.MethodGet, "/nowhere", nil), route.Default())
	assert.Equal(t, route.Meta{}, unknown.Meta)
}
