// Command interviewd runs the mock interview HTTP service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/novexa-ai/interviewd/api"
	"github.com/novexa-ai/interviewd/config"
	"github.com/novexa-ai/interviewd/interview"
	"github.com/novexa-ai/interviewd/interview/store"
	"github.com/novexa-ai/interviewd/pkg/logging"
	"github.com/novexa-ai/interviewd/pkg/telemetry"
	"github.com/novexa-ai/interviewd/prompt"
	"github.com/novexa-ai/interviewd/provider"
	"github.com/novexa-ai/interviewd/provider/claude"
	"github.com/novexa-ai/interviewd/provider/gemini"
	"github.com/novexa-ai/interviewd/provider/ollama"
	"github.com/novexa-ai/interviewd/provider/openai"
	"github.com/novexa-ai/interviewd/seedbank"
	"github.com/novexa-ai/interviewd/summary"
)

var (
	addr            = flag.String("addr", ":8000", "HTTP listen address")
	providerName    = flag.String("provider", envOr("INTERVIEWD_PROVIDER", "ollama"), "generation backend: openai, claude, gemini or ollama")
	model           = flag.String("model", os.Getenv("INTERVIEWD_MODEL"), "model name for the chosen backend")
	baseURL         = flag.String("base-url", os.Getenv("INTERVIEWD_BASE_URL"), "backend base URL override")
	rolesDir        = flag.String("roles-dir", envOr("INTERVIEWD_ROLES_DIR", "roles"), "directory of role profile JSON files")
	redisAddr       = flag.String("redis-addr", os.Getenv("INTERVIEWD_REDIS_ADDR"), "Redis address for session record mirroring (optional)")
	mongoURI        = flag.String("mongo-uri", os.Getenv("INTERVIEWD_MONGO_URI"), "MongoDB URI for session record mirroring (optional)")
	postgresHost    = flag.String("postgres-host", os.Getenv("INTERVIEWD_POSTGRES_HOST"), "PostgreSQL host for the question bank (optional, falls back to file bank)")
	maxConcurrency  = flag.Int("max-concurrency", 10, "max concurrent backend calls")
	disableTracing  = flag.Bool("disable-tracing", os.Getenv("INTERVIEWD_DISABLE_TRACING") == "true", "disable OpenTelemetry tracing")
	shutdownTimeout = flag.Duration("shutdown-timeout", 15*time.Second, "graceful shutdown timeout")
)

func main() {
	flag.Parse()
	logger := logging.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "interviewd",
		Disable:     *disableTracing,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	backend, cleanup, err := newBackend(ctx)
	if err != nil {
		logger.Error("failed to create generation backend", "provider", *providerName, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	engineCfg := config.DefaultEngine()
	if err := engineCfg.Validate(); err != nil {
		logger.Error("invalid engine configuration", "error", err)
		os.Exit(1)
	}

	pool := provider.NewPool(backend, *maxConcurrency, engineCfg.GenerateTimeout)

	bank, closeBank, err := newBank()
	if err != nil {
		logger.Error("failed to create question bank", "error", err)
		os.Exit(1)
	}
	defer closeBank()

	sessions, closeMirror, err := newSessionStore()
	if err != nil {
		logger.Error("failed to create session store", "error", err)
		os.Exit(1)
	}
	defer closeMirror()

	var engineOpts []interview.EngineOption
	tokenizerModel := *model
	if tokenizerModel == "" {
		tokenizerModel = "gpt-4o-mini"
	}
	if tok, err := prompt.NewTokenizer(tokenizerModel); err == nil {
		arbiter := interview.NewArbiter(pool, interview.WithHistoryBudget(tok, 4096))
		engineOpts = append(engineOpts, interview.WithArbiter(arbiter))
	} else {
		logger.Warn("tokenizer unavailable, prompt history not budgeted", "error", err)
	}

	engine := interview.NewEngine(engineCfg, pool, bank, sessions, engineOpts...)
	summarizer := summary.NewSummarizer(pool)
	server := api.NewServer(engine, summarizer)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(*addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// newBackend builds the generation backend selected by flags. The returned
// cleanup releases provider resources; it is a no-op for stateless backends.
func newBackend(ctx context.Context) (provider.Backend, func(), error) {
	noop := func() {}

	switch *providerName {
	case "openai":
		cfg := openai.DefaultConfig().
			WithAPIKey(os.Getenv("OPENAI_API_KEY")).
			WithBaseURL(*baseURL)
		if *model != "" {
			cfg.WithModel(*model)
		}
		return openai.New(cfg), noop, nil

	case "claude":
		cfg := claude.DefaultConfig(os.Getenv("ANTHROPIC_API_KEY"))
		cfg.BaseURL = *baseURL
		if *model != "" {
			cfg.Model = *model
		}
		return claude.New(cfg), noop, nil

	case "gemini":
		cfg := gemini.DefaultConfig(os.Getenv("GEMINI_API_KEY"))
		if *model != "" {
			cfg.Model = *model
		}
		backend, err := gemini.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() { _ = backend.Close() }, nil

	default:
		cfg := ollama.DefaultConfig()
		if *baseURL != "" {
			cfg.BaseURL = *baseURL
		}
		if *model != "" {
			cfg.Model = *model
		}
		return ollama.New(cfg), noop, nil
	}
}

// newBank selects the question bank: PostgreSQL when configured, otherwise
// the file-based bank over the roles directory.
func newBank() (seedbank.Bank, func(), error) {
	noop := func() {}

	if *postgresHost != "" {
		cfg := seedbank.DefaultPostgresConfig()
		cfg.Host = *postgresHost
		if user := os.Getenv("INTERVIEWD_POSTGRES_USER"); user != "" {
			cfg.User = user
		}
		if password := os.Getenv("INTERVIEWD_POSTGRES_PASSWORD"); password != "" {
			cfg.Password = password
		}
		if dbname := os.Getenv("INTERVIEWD_POSTGRES_DB"); dbname != "" {
			cfg.DBName = dbname
		}
		bank, err := seedbank.NewPostgresBank(cfg)
		if err != nil {
			return nil, nil, err
		}
		return bank, func() { _ = bank.Close() }, nil
	}

	return seedbank.NewFileBank(*rolesDir), noop, nil
}

// newSessionStore wires the live session store with an optional record mirror.
func newSessionStore() (*interview.SessionStore, func(), error) {
	noop := func() {}

	if *redisAddr != "" {
		mirror := store.NewRedisStore(&store.RedisConfig{
			Addr:     *redisAddr,
			Password: os.Getenv("INTERVIEWD_REDIS_PASSWORD"),
		})
		return interview.NewSessionStore(interview.WithMirror(mirror)),
			func() { _ = mirror.Close() }, nil
	}

	if *mongoURI != "" {
		cfg := store.DefaultMongoConfig()
		cfg.URI = *mongoURI
		mirror, err := store.NewMongoStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		return interview.NewSessionStore(interview.WithMirror(mirror)),
			func() { _ = mirror.Close(context.Background()) }, nil
	}

	return interview.NewSessionStore(interview.WithMirror(store.NewInMemoryStore())), noop, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
