package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"example.com/codebreaker/internal/auth"
	"example.com/codebreaker/internal/config"
	"example.com/codebreaker/internal/game"
	"example.com/codebreaker/internal/httpapi"
	"example.com/codebreaker/internal/migrate"
	"example.com/codebreaker/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const pingTimeout = 10 * time.Second

type App struct {
	cfg config.Config
	log *slog.Logger

	db  *pgxpool.Pool // nil when stats are disabled
	rdb *redis.Client // nil with SESSION_STORE=memory

	srv *http.Server
}

type Options struct {
	Static http.Handler // optional; if nil, no frontend is served
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts Options) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{cfg: cfg, log: log}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	// --- Postgres (optional) ---
	if cfg.StatsEnabled() {
		if cfg.Postgres.RunMigrations {
			if err := migrate.Up(cfg.Postgres.URL, cfg.Postgres.MigrationsDir, log); err != nil {
				return nil, err
			}
		}
		dbpool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("pgxpool: %w", err)
		}
		a.db = dbpool
		if err := dbpool.Ping(pingCtx); err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
	}

	// --- Redis (optional) ---
	var persist game.SessionPersistence
	if cfg.Game.SessionStore == "redis" {
		a.rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := a.rdb.Ping(pingCtx).Err(); err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		persist = game.NewRedisSessionStore(a.rdb, cfg.Redis.SessionTTL)
	} else {
		persist = game.NewInMemorySessionStore()
	}

	// --- Auth service ---
	authSvc := auth.NewService([]byte(cfg.Auth.Secret))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// --- Stores + auth routes ---
	var results game.ResultRecorder
	if a.db != nil {
		users := store.NewUserStore(a.db)
		stats := store.NewStatsStore(a.db)
		results = stats

		authH := &httpapi.AuthHandler{
			Users:    users,
			Stats:    stats,
			Auth:     authSvc,
			TokenTTL: cfg.Auth.TokenTTL,
			Log:      log,
		}
		authH.RegisterRoutes(mux, authSvc)
	} else {
		log.Info("DATABASE_URL not set: accounts and stats disabled")
	}

	// --- Game ---
	gameCfg := game.Config{
		Defaults: game.Settings{
			Length:       cfg.Game.DefaultLength,
			AlphabetSize: cfg.Game.DefaultSymbols,
			AllowRepeats: cfg.Game.AllowRepeats,
		},
		MaxLength: cfg.Game.MaxLength,
	}
	sessions := game.NewSessionService(gameCfg, persist, results, log)
	game.NewServer(gameCfg, sessions, authSvc, log).RegisterRoutes(mux)

	if opts.Static != nil {
		mux.Handle("/", opts.Static)
	}

	a.srv = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	return a, nil
}

// Handler exposes the routed mux, mainly for tests.
func (a *App) Handler() http.Handler { return a.srv.Handler }

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr, "sessionStore", a.cfg.Game.SessionStore)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return nil
}
