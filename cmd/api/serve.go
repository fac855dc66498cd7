package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/barber-booking/internal/cache"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	"github.com/BruksfildServices01/barber-booking/internal/integrations/mailer"
	"github.com/BruksfildServices01/barber-booking/internal/integrations/media"
	"github.com/BruksfildServices01/barber-booking/internal/integrations/moloni"
	"github.com/BruksfildServices01/barber-booking/internal/integrations/oauth"
	"github.com/BruksfildServices01/barber-booking/internal/integrations/turnstile"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/routes"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

func newServeCommand() *cobra.Command {
	var (
		shutdownTimeout time.Duration
		autoMigrate     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := bootstrap()
			return serve(cfg, log, autoMigrate, shutdownTimeout)
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "maximum time to wait for graceful shutdown")
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "apply migrations before serving")

	return cmd
}

func serve(cfg *config.Config, log *slog.Logger, autoMigrate bool, shutdownTimeout time.Duration) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ======================================================
	// STORAGE
	// ======================================================
	db, err := dbpkg.Open(cfg)
	if err != nil {
		return err
	}
	if autoMigrate {
		if err := dbpkg.Migrate(db); err != nil {
			return err
		}
	}

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}

	var (
		states  cache.StateStore
		limiter cache.LoginLimiter
	)
	if rdb != nil {
		defer rdb.Close()
		states = cache.NewRedisStateStore(rdb)
		limiter = cache.NewRedisLoginLimiter(rdb)
	} else {
		log.Warn("REDIS_ADDR not set, using in-memory oauth state and login throttling")
		states = cache.NewMemoryStateStore()
		limiter = cache.NewMemoryLoginLimiter()
	}

	// ======================================================
	// NOTIFICATIONS
	// ======================================================
	store := notify.NewStore(db)
	sinks := []notify.Sink{store}

	mail := mailer.New(cfg.SMTP)
	if mail.Enabled() {
		sinks = append(sinks, notify.NewMailSink(mail, timezone.Default()))
	} else {
		log.Info("SMTP not configured, client emails disabled")
	}

	dispatcher := notify.NewDispatcher(log, notify.DefaultQueueSize, sinks...)

	// ======================================================
	// ADAPTERS
	// ======================================================
	captcha := turnstile.New(cfg.Turnstile.Secret)
	if !captcha.Enabled() {
		log.Warn("TURNSTILE_SECRET not set, captcha checks disabled")
	}

	invoicer := moloni.New(cfg.Moloni)

	var photos handlers.PhotoUploader
	if ms, err := media.New(cfg.Media); err == nil {
		photos = ms
	} else if !errors.Is(err, media.ErrNotConfigured) {
		return err
	}

	// ======================================================
	// HTTP
	// ======================================================
	router := routes.NewRouter(routes.Deps{
		DB:            db,
		Config:        cfg,
		Log:           log,
		Emitter:       dispatcher,
		Notifications: store,
		States:        states,
		Limiter:       limiter,
		Captcha:       captcha,
		Invoicer:      invoicer,
		Photos:        photos,
		OAuth:         oauth.NewRegistry(cfg.OAuth),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", slog.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", slog.Any("error", err))
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.Error("notification drain", slog.Any("error", err))
	}

	return nil
}
