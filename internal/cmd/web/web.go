// Package web parses web command configuration and runs the web server.
package web

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/louisbranch/codemother/internal/platform/logging"
	entrypoint "github.com/louisbranch/codemother/internal/platform/cmd"
	"github.com/louisbranch/codemother/internal/services/web"
)

// Config holds the web command configuration. Environment keys carry the
// CODEMOTHER_ prefix.
type Config struct {
	HTTPAddr            string        `env:"WEB_HTTP_ADDR"              envDefault:"localhost:8080"`
	APIBaseURL          string        `env:"WEB_API_BASE_URL"           envDefault:"http://localhost:8123/api"`
	CredentialCookies   []string      `env:"WEB_CREDENTIAL_COOKIES"     envDefault:"JSESSIONID,SESSION"`
	SessionFetchTimeout time.Duration `env:"WEB_SESSION_FETCH_TIMEOUT"  envDefault:"10s"`
	ClientIdleTTL       time.Duration `env:"WEB_CLIENT_IDLE_TTL"        envDefault:"30m"`
	FlashSecret         string        `env:"WEB_FLASH_SECRET"`
	TrustForwardedProto bool          `env:"WEB_TRUST_FORWARDED_PROTO"`
	LogLevel            string        `env:"LOG_LEVEL"                  envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT"                 envDefault:"json"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	cookies := strings.Join(cfg.CredentialCookies, ",")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "product API base URL")
	fs.StringVar(&cookies, "credential-cookies", cookies, "comma-separated product API credential cookie names")
	fs.DurationVar(&cfg.SessionFetchTimeout, "session-fetch-timeout", cfg.SessionFetchTimeout, "first-navigation session fetch timeout")
	fs.DurationVar(&cfg.ClientIdleTTL, "client-idle-ttl", cfg.ClientIdleTTL, "idle time before a client's session is forgotten")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "honour X-Forwarded-Proto")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (json or console)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.CredentialCookies = splitNames(cookies)
	return cfg, nil
}

// Run builds the web server and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(logging.Options{
		Service: entrypoint.ServiceWeb,
		Level:   cfg.LogLevel,
		Format:  logging.Format(cfg.LogFormat),
		Writer:  os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	ctx = logger.WithContext(ctx)

	options := entrypoint.RunOptions{Logger: logger}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceWeb, options, func(ctx context.Context) error {
		server, err := web.NewServer(web.Config{
			HTTPAddr:            cfg.HTTPAddr,
			APIBaseURL:          cfg.APIBaseURL,
			CredentialCookies:   cfg.CredentialCookies,
			SessionFetchTimeout: cfg.SessionFetchTimeout,
			ClientIdleTTL:       cfg.ClientIdleTTL,
			FlashSecret:         cfg.FlashSecret,
			TrustForwardedProto: cfg.TrustForwardedProto,
			Logger:              logger,
		})
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}

func splitNames(raw string) []string {
	var out []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
