package web

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/codemother/internal/platform/timeouts"
	"github.com/louisbranch/codemother/internal/services/web/guard"
	"github.com/louisbranch/codemother/internal/services/web/platform/flash"
	"github.com/louisbranch/codemother/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/codemother/internal/services/web/route"
	"github.com/louisbranch/codemother/internal/services/web/session"
	"github.com/louisbranch/codemother/internal/services/web/userapi"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Config defines the inputs for the web server.
type Config struct {
	HTTPAddr string
	// APIBaseURL roots the product API, e.g. http://localhost:8123/api.
	APIBaseURL string
	// CredentialCookies names the product API cookies relayed between the
	// browser and the API.
	CredentialCookies   []string
	SessionFetchTimeout time.Duration
	ClientIdleTTL       time.Duration
	// FlashSecret signs flash cookies. A random key is used when empty, so
	// notices do not survive a restart.
	FlashSecret         string
	TrustForwardedProto bool

	Logger         zerolog.Logger
	TracerProvider trace.TracerProvider
	HTTPClient     *http.Client
}

// Server hosts the web HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	clients    *session.Registry
	logger     zerolog.Logger
}

type handler struct {
	config  Config
	api     *userapi.Client
	clients *session.Registry
	table   *route.Table
	guard   *guard.Guard
	flash   *flash.Signer
	policy  requestmeta.SchemePolicy
	logger  zerolog.Logger
}

// NewHandler builds the HTTP handler serving every web route.
func NewHandler(config Config) (http.Handler, error) {
	h, err := newHandler(config)
	if err != nil {
		return nil, err
	}
	return h.routes(), nil
}

func newHandler(config Config) (*handler, error) {
	if len(config.CredentialCookies) == 0 {
		return nil, errors.New("at least one credential cookie name is required")
	}
	if config.SessionFetchTimeout <= 0 {
		config.SessionFetchTimeout = timeouts.SessionFetch
	}
	if config.ClientIdleTTL <= 0 {
		config.ClientIdleTTL = timeouts.ClientIdle
	}

	apiOpts := []userapi.Option{userapi.WithTracerProvider(config.TracerProvider)}
	if config.HTTPClient != nil {
		apiOpts = append(apiOpts, userapi.WithHTTPClient(config.HTTPClient))
	}
	api, err := userapi.New(config.APIBaseURL, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("build user api client: %w", err)
	}

	policy := requestmeta.SchemePolicy{TrustForwardedProto: config.TrustForwardedProto}
	key := []byte(strings.TrimSpace(config.FlashSecret))
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate flash key: %w", err)
		}
		config.Logger.Warn().Msg("flash secret not configured, using an ephemeral key")
	}
	signer, err := flash.NewSigner(key, policy)
	if err != nil {
		return nil, fmt.Errorf("build flash signer: %w", err)
	}

	h := &handler{
		config: config,
		api:    api,
		table:  route.Default(),
		guard:  guard.New(guard.WithLogger(config.Logger), guard.WithTracerProvider(config.TracerProvider)),
		flash:  signer,
		policy: policy,
		logger: config.Logger,
	}
	h.clients = session.NewRegistry(h.newClientStore, config.ClientIdleTTL)
	return h, nil
}

// NewServer builds a configured web server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	h, err := newHandler(config)
	if err != nil {
		return nil, fmt.Errorf("build handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           h.routes(),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		clients: h.clients,
		logger:  config.Logger,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close. Idle clients are swept while serving.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.clients.Run(sweepCtx, timeouts.ClientSweep)

	serveErr := make(chan error, 1)
	s.logger.Info().Str("addr", s.httpAddr).Msg("web listening")
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func (h *handler) newClientStore(clientID string) *session.Store {
	logger := h.logger.With().Str("client_id", clientID).Logger()
	store := session.NewStore(h.api,
		session.WithLogger(logger),
		session.WithFetchTimeout(h.config.SessionFetchTimeout),
	)
	store.Subscribe(func(s *session.Session) {
		logger.Debug().
			Bool("authenticated", session.IsAuthenticated(s)).
			Bool("admin", session.IsAdmin(s)).
			Msg("session changed")
	})
	return store
}
