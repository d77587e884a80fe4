// Command storegate runs the dashboard's authentication server: the JSON
// auth API behind the page-level authorization gate, backed by Postgres
// credentials and an optional Redis login limiter.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	storegate "github.com/arvindpj/storegate"
	"github.com/arvindpj/storegate/httpapi"
	"github.com/arvindpj/storegate/internal/stores/postgres"
	"github.com/arvindpj/storegate/middleware"
)

type cli struct {
	Addr          string        `help:"Listen address." default:":8080" env:"STOREGATE_ADDR"`
	DatabaseURL   string        `help:"Postgres connection string." required:"" env:"DATABASE_URL"`
	RedisAddr     string        `help:"Redis address for login rate limiting. Empty disables limiting." env:"REDIS_ADDR"`
	SessionSecret string        `help:"HMAC secret for session tokens." env:"SESSION_SECRET"`
	SessionTTL    time.Duration `help:"Session lifetime." default:"168h" env:"SESSION_TTL"`
	Debug         bool          `help:"Enable debug logging." env:"STOREGATE_DEBUG"`
}

func main() {
	var flags cli
	kctx := kong.Parse(&flags,
		kong.Name("storegate"),
		kong.Description("Store admin dashboard authentication server."))

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if flags.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	kctx.FatalIfErrorf(run(flags, logger))
}

func run(flags cli, logger zerolog.Logger) error {
	// Refuse to start without a signing secret. Serving with an empty key
	// would let anyone forge admin sessions.
	if flags.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, flags.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	store := postgres.New(pool)

	cfg := storegate.DefaultConfig()
	cfg.Secret = flags.SessionSecret
	cfg.SessionTTL = flags.SessionTTL

	builder := storegate.New().
		WithConfig(cfg).
		WithUserStore(store).
		WithAuditSink(storegate.NewZerologSink(logger))
	if flags.RedisAddr != "" {
		builder = builder.WithRedis(redis.NewClient(&redis.Options{Addr: flags.RedisAddr}))
	}
	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	api := httpapi.NewHandler(engine, store, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.Routes())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// Page routes are rendered by the frontend; the server only enforces
	// the gate on them.
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	gate := middleware.Gate(engine.Codec(), engine.Cookies(), middleware.DefaultGateConfig())
	server := &http.Server{
		Addr:              flags.Addr,
		Handler:           gate(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", flags.Addr).Msg("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	return server.Shutdown(shutdownCtx)
}
