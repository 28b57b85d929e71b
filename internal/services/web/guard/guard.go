// Package guard decides whether a page navigation may proceed.
//
// Each transition moves through three phases. The session is ensured
// (fetched only on the first transition a store ever sees), then the target's
// route metadata is evaluated against the session by Decide, and the
// transition ends either proceeding to the target or redirecting to the login
// page carrying the original target.
package guard

import (
	"context"
	"strings"

	"github.com/louisbranch/codemother/internal/services/web/route"
	"github.com/louisbranch/codemother/internal/services/web/routepath"
	"github.com/louisbranch/codemother/internal/services/web/session"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/louisbranch/codemother/internal/services/web/guard"

// Phase is the progress of one transition.
type Phase int

const (
	PhaseUnchecked Phase = iota
	PhaseSessionEnsured
	PhaseDecided
)

func (p Phase) String() string {
	switch p {
	case PhaseUnchecked:
		return "unchecked"
	case PhaseSessionEnsured:
		return "session_ensured"
	case PhaseDecided:
		return "decided"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a transition.
type Outcome int

const (
	OutcomeProceed Outcome = iota
	OutcomeRedirect
)

func (o Outcome) String() string {
	if o == OutcomeRedirect {
		return "redirect"
	}
	return "proceed"
}

// Reason explains a redirect.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoPermission
	ReasonLoginRequired
)

// NoticeKey returns the localization key shown to the user for r.
func (r Reason) NoticeKey() string {
	switch r {
	case ReasonNoPermission:
		return "guard.no_permission"
	case ReasonLoginRequired:
		return "guard.login_required"
	default:
		return ""
	}
}

func (r Reason) String() string {
	switch r {
	case ReasonNoPermission:
		return "no_permission"
	case ReasonLoginRequired:
		return "login_required"
	default:
		return "none"
	}
}

// Target identifies one side of a transition.
type Target struct {
	// FullPath is the path plus raw query, used as the post-login destination.
	FullPath string
	Path     string
	Meta     route.Meta
}

// Decision is the result of evaluating a target against a session.
type Decision struct {
	Outcome  Outcome
	Location string
	Reason   Reason
}

// Decide applies the access rules in order. The first matching rule wins.
func Decide(target Target, s *session.Session) Decision {
	if routepath.IsAdminPath(target.Path) || target.Meta.RequiresAdmin {
		if session.IsAdmin(s) {
			return Decision{Outcome: OutcomeProceed}
		}
		return redirectToLogin(target, ReasonNoPermission)
	}
	if target.Meta.RequiresAuth && !session.IsAuthenticated(s) {
		return redirectToLogin(target, ReasonLoginRequired)
	}
	return Decision{Outcome: OutcomeProceed}
}

func redirectToLogin(target Target, reason Reason) Decision {
	destination := strings.TrimSpace(target.FullPath)
	if destination == "" {
		destination = target.Path
	}
	return Decision{
		Outcome:  OutcomeRedirect,
		Location: routepath.LoginWithRedirect(destination),
		Reason:   reason,
	}
}

// Transition records one evaluated navigation.
type Transition struct {
	To       Target
	From     Target
	Phase    Phase
	Decision Decision
	// Fetched reports whether this transition performed the session fetch.
	Fetched bool
}

// Guard evaluates navigations against a client's session store.
type Guard struct {
	logger zerolog.Logger
	tracer trace.Tracer
}

// Option configures a Guard.
type Option func(*guardOptions)

type guardOptions struct {
	logger         zerolog.Logger
	tracerProvider trace.TracerProvider
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *guardOptions) {
		o.logger = logger
	}
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *guardOptions) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// New builds a Guard.
func New(opts ...Option) *Guard {
	o := guardOptions{logger: zerolog.Nop(), tracerProvider: otel.GetTracerProvider()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Guard{logger: o.logger, tracer: o.tracerProvider.Tracer(instrumentationName)}
}

// Navigate ensures the store's session and decides the transition to to.
// A nil store behaves as a client with no session.
func (g *Guard) Navigate(ctx context.Context, store *session.Store, to Target, from Target) Transition {
	if g == nil {
		g = New()
	}
	if store == nil {
		store = session.NewStore(nil)
	}
	ctx, span := g.tracer.Start(ctx, "guard.Navigate", trace.WithAttributes(
		attribute.String("guard.to", to.Path),
		attribute.String("guard.from", from.Path),
	))
	defer span.End()

	tr := Transition{To: to, From: from, Phase: PhaseUnchecked}
	tr.Fetched = store.Ensure(ctx)
	tr.Phase = PhaseSessionEnsured

	tr.Decision = Decide(to, store.Session())
	tr.Phase = PhaseDecided

	span.SetAttributes(
		attribute.Bool("guard.fetched", tr.Fetched),
		attribute.String("guard.outcome", tr.Decision.Outcome.String()),
		attribute.String("guard.reason", tr.Decision.Reason.String()),
	)
	g.log(ctx).Debug().
		Str("to", to.FullPath).
		Str("from", from.FullPath).
		Bool("fetched", tr.Fetched).
		Stringer("outcome", tr.Decision.Outcome).
		Stringer("reason", tr.Decision.Reason).
		Msg("navigation decided")
	return tr
}

func (g *Guard) log(ctx context.Context) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return &g.logger
}
