package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
	"github.com/YossiCharash/project-menagment-sub004/internal/config"
	"github.com/YossiCharash/project-menagment-sub004/internal/dashboard"
	"github.com/YossiCharash/project-menagment-sub004/internal/httpapi"
	"github.com/YossiCharash/project-menagment-sub004/internal/invites"
	"github.com/YossiCharash/project-menagment-sub004/internal/obs"
	"github.com/YossiCharash/project-menagment-sub004/internal/session"
	"github.com/YossiCharash/project-menagment-sub004/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)
	cfg := config.Load()

	client, err := backend.New(cfg.BackendBaseURL,
		backend.WithTokenSource(backend.TokenSourceFunc(func(ctx context.Context) (string, bool) {
			return session.TokenFromContext(ctx)
		})),
	)
	if err != nil {
		log.Fatalf("backend client: %v", err)
	}

	var ready httpapi.ReadyProbe
	var store session.Store
	switch cfg.SessionStore {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = session.NewRedis(rdb, 0)
		ready.Redis = rdb
	case "postgres":
		pg, err := session.OpenPG(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open session db: %v", err)
		}
		defer pg.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("ensure session schema: %v", err)
		}
		cancel()
		store = pg
		ready.DB = pg.DB()
	default:
		store = session.NewMemory()
	}

	sessions := session.NewManager(client, store)
	dash := dashboard.NewService(client)
	str := stream.New()
	poller := dashboard.NewPoller(dash, cfg.PollInterval, cfg.IncludeArchived, str.PublishProjects)

	var oauth *session.OAuth
	if cfg.OAuthClientID != "" {
		oauth = session.NewOAuth(cfg.BackendBaseURL, cfg.OAuthRedirect, cfg.OAuthClientID, cfg.OAuthSecret)
	}

	api := httpapi.New(httpapi.Deps{
		Sessions:       sessions,
		Backend:        client,
		Dash:           dash,
		Poller:         poller,
		Invites:        invites.NewService(client),
		Stream:         str,
		OAuth:          oauth,
		Ready:          ready,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	}, version)

	pollCtx, stopPoller := context.WithCancel(context.Background())
	go poller.Run(pollCtx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting dashboard-gateway %s on %s (backend %s)", version, srv.Addr, cfg.BackendBaseURL)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	stopPoller()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
