package main

import (
	"cinechat/cinechat/config"
	"cinechat/cinechat/controllers"
	"cinechat/cinechat/routes"
	"cinechat/cinechat/services/assets"
	"cinechat/cinechat/services/auth"
	"cinechat/cinechat/services/recommender"
	"cinechat/cinechat/sources/localstore"
	"cinechat/cinechat/sources/remote"
	"cinechat/cinechat/sources/storage"
	"cinechat/cinechat/utils/jsonutils"
	"cinechat/cinechat/utils/logging"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	logging.AppLogger.Info("configuration loaded", zap.String("config", jsonutils.ToJSON(cfg.Redacted())))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ids, err := localstore.NewStore(cfg.LocalStorePath)
	if err != nil {
		logging.ErrorLogger.Error("localstore open error", zap.Error(err))
		os.Exit(1)
	}

	// Poster cache is optional: no endpoint, no mirroring.
	var cache assets.PosterCache
	var posterSource routes.PosterSource
	if cfg.MinIOEndpoint != "" {
		posterCache, err := storage.NewPosterCache(cfg)
		if err != nil {
			logging.ErrorLogger.Error("poster cache init error", zap.Error(err))
			os.Exit(1)
		}
		cache = posterCache
		posterSource = posterCache
	}

	rec := recommender.NewClient(cfg.APIBaseURL)
	enricher := assets.NewClient(cfg.APIBaseURL, cache)
	remoteStore := remote.NewStore(cfg.APIBaseURL)
	authClient := auth.NewClient(cfg.APIBaseURL)

	app := controllers.NewAppController(ids, authClient, remoteStore, rec, enricher)
	notifier := routes.NewNotifier()
	app.SetOnChange(notifier.Broadcast)
	app.Bootstrap(ctx)

	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/", routes.BridgeRoutes(app, notifier, posterSource))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("bridge listen error", zap.Error(err))
		}
	}()
	logging.AppLogger.Info("view bridge listening", zap.String("addr", cfg.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("bridge shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("bridge shutdown complete")
}
