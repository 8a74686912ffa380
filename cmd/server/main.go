// Command server runs the chambers API: the public content surface and the
// session-gated admin panel backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"chambers/internal/admin"
	"chambers/internal/auth/guard"
	authmetrics "chambers/internal/auth/metrics"
	"chambers/internal/auth/resolver"
	"chambers/internal/auth/session"
	"chambers/internal/auth/store"
	"chambers/internal/content/article"
	"chambers/internal/content/job"
	"chambers/internal/content/stats"
	"chambers/internal/content/tag"
	"chambers/internal/identity"
	"chambers/internal/identity/httpapi"
	"chambers/internal/identity/memory"
	"chambers/internal/media"
	"chambers/internal/platform/config"
	"chambers/internal/platform/database"
	"chambers/internal/platform/health"
	"chambers/internal/platform/logger"
	pmetrics "chambers/internal/platform/metrics"
	"chambers/internal/platform/redis"
	"chambers/internal/platform/tracer"
	"chambers/internal/seeder"
	transport "chambers/internal/transport/http"
	"chambers/migrations"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Infrastructure. Both are optional: without a database the service
	// runs on in-memory stores, without Redis the page cache is off.
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	redisCfg := redis.DefaultConfig()
	redisCfg.URL = cfg.RedisURL
	cache, err := redis.New(redisCfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if cache != nil {
		defer cache.Close()
	}

	if pool != nil {
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	// Identity provider: hosted API when configured, in-process otherwise.
	var (
		provider      identity.Admin
		authenticator session.PasswordAuthenticator
		memProvider   *memory.Provider
	)
	if cfg.Auth.ProviderURL != "" {
		provider = httpapi.New(httpapi.Config{
			BaseURL:      cfg.Auth.ProviderURL,
			ServiceToken: cfg.Auth.ServiceToken,
			JWTSecret:    cfg.Auth.JWTSecret,
		}, log)
	} else {
		memProvider = memory.New()
		provider = memProvider
		authenticator = memProvider
		log.Warn("no auth provider configured, using in-memory identities")
	}

	// Stores: postgres when a pool exists, memory otherwise.
	var (
		roleStore    store.RoleStore
		articleStore article.Store
		tagStore     tag.Store
		jobStore     job.Store
	)
	if pool != nil {
		roleStore = store.NewPostgres(pool.DB())
		articleStore = article.NewPostgres(pool.DB())
		tagStore = tag.NewPostgres(pool.DB())
		jobStore = job.NewPostgres(pool.DB())
	} else {
		memRoles := store.NewMemory()
		memArticles := article.NewMemory()
		memTags := tag.NewMemory()
		memJobs := job.NewMemory()
		roleStore, articleStore, tagStore, jobStore = memRoles, memArticles, memTags, memJobs

		if memProvider != nil {
			if err := seeder.Run(ctx, seeder.Stores{
				Provider: memProvider,
				Roles:    memRoles,
				Articles: memArticles,
				Tags:     memTags,
				Jobs:     memJobs,
			}, log); err != nil {
				return fmt.Errorf("seed demo data: %w", err)
			}
		}
	}

	trc := tracer.NewOTel()
	authM := authmetrics.New()
	contentM := pmetrics.New()

	res := resolver.New(provider, roleStore, resolver.Config{
		AuthTimeout:       cfg.Auth.AuthTimeout,
		RoleLookupTimeout: cfg.Auth.RoleLookupTimeout,
		RoleCacheTTL:      cfg.Auth.RoleCacheTTL,
	}, log, authM, trc)

	var listCache *article.ListCache
	if cache != nil {
		listCache = article.NewListCache(cache.Client, log)
	}
	articleSvc := article.NewService(articleStore, listCache, log, contentM)
	tagSvc := tag.NewService(tagStore, log, contentM)
	jobSvc := job.NewService(jobStore, log, contentM)
	statsSvc := stats.NewService(articleStore, jobStore, roleStore, stats.Config{
		TTL: cfg.Auth.StatsCacheTTL,
	}, log, contentM, trc)
	adminSvc := admin.NewService(provider, roleStore, log, contentM)

	var mediaHandler *media.Handler
	if cfg.Media.Bucket != "" {
		mediaStore, err := media.NewS3(ctx, cfg.Media.Bucket, cfg.Media.Region, cfg.Media.PublicBaseURL)
		if err != nil {
			return fmt.Errorf("media storage: %w", err)
		}
		mediaHandler = media.NewHandler(mediaStore, cfg.Media.MaxUploadMB, log, contentM, trc)
	} else if cfg.Environment == "development" {
		mediaHandler = media.NewHandler(media.NewMemory(), cfg.Media.MaxUploadMB, log, contentM, trc)
	}

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error { return pool.Health(ctx) })
	}
	if cache != nil {
		healthHandler.RegisterCheck("redis", func() error { return cache.Health(ctx) })
	}

	router := transport.NewRouter(transport.Handlers{
		Guard:    guard.New(res, cfg.LoginPath, cfg.Auth.CookieName, log, authM),
		Session:  session.NewHandler(res, provider, authenticator, cfg.Auth.CookieName, log, authM),
		Articles: article.NewHandler(articleSvc, log),
		Tags:     tag.NewHandler(tagSvc, log),
		Jobs:     job.NewHandler(jobSvc, log),
		Stats:    stats.NewHandler(statsSvc),
		Admin:    admin.NewHandler(adminSvc, log),
		Media:    mediaHandler,
		Health:   healthHandler,
	}, log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// The resolver consumes identity-change events until shutdown.
	group.Go(func() error {
		res.Run(groupCtx)
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cache != nil {
		group.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-groupCtx.Done():
					return nil
				case <-ticker.C:
					cache.RecordPoolStats()
				}
			}
		})
	}

	return group.Wait()
}
