package main

import (
	"complaint-portal/config"
	"complaint-portal/controllers"
	db "complaint-portal/database"
	"complaint-portal/database/memstore"
	"complaint-portal/jobs"
	"complaint-portal/logger"
	middlewares "complaint-portal/middleware"
	"complaint-portal/routes"
	"complaint-portal/services"
	"complaint-portal/storage"
	"complaint-portal/utils"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println("Warning: error loading .env file:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "complaint-portal")
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}

	if err := run(cfg, zl); err != nil {
		os.Exit(fail(zl, err))
	}
	_ = zl.Sync()
}

// fail records why the server stopped and flushes the logger, which os.Exit
// would otherwise skip. It returns the process exit code.
func fail(zl *zap.Logger, err error) int {
	zl.Error("server stopped", zap.Error(err))
	_ = zl.Sync()
	return 1
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store  *services.Store
		pinger controllers.Pinger
	)
	switch cfg.DBDriver {
	case "mongo":
		database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB, cfg.DBTimeout, zl)
		if err != nil {
			return err
		}
		defer database.Disconnect()
		if err := database.EnsureIndexes(ctx); err != nil {
			return err
		}
		store = database.Store(cfg.MongoTransactions)
		pinger = database
	default:
		zl.Warn("using in-memory store, data is lost on restart")
		store = memstore.New()
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		zl.Warn("JWT_SECRET not set, generated a random one; sessions end on restart")
	}
	tokens := utils.NewTokenIssuer(secret, cfg.JWTExpiresIn)

	backend, closeBackend, err := newBackend(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeBackend()
	files := storage.NewResolver(backend, zl)
	if err := files.Init(ctx); err != nil {
		return err
	}

	var notifier services.Notifier
	if cfg.SMTP.Enabled() {
		notifier = utils.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
		zl.Info("assignment emails enabled", zap.String("smtp", cfg.SMTP.Addr()))
	}

	complaints := services.NewComplaintService(store, files, notifier, services.ComplaintOptions{
		StrictTransitions:     cfg.StrictStatusTransitions,
		NormalizePerpetrators: cfg.PerpetratorNormalize,
		AdminCanViewAll:       cfg.AdminCanViewAll,
		UploadRoot:            cfg.UploadDir,
	}, zl)
	defer complaints.Wait()

	ctl := &controllers.Controller{
		Auth:          services.NewAuthService(store, tokens, zl),
		HRs:           services.NewHRService(store),
		Complaints:    complaints,
		Reports:       services.NewReportService(store, zl),
		DB:            pinger,
		Logger:        zl,
		SecureCookies: cfg.CookieSecure,
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := routes.NewRouter(ctl, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     middlewares.NewMetrics(),
		Logger:      zl,
	})
	if err != nil {
		return err
	}

	reconciler := jobs.NewPromotionReconciler(complaints, cfg.DBTimeout*4, zl)
	reconciler.RunOnce(ctx)
	if err := reconciler.Start(cfg.ReconcileSchedule); err != nil {
		return err
	}
	defer reconciler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zl.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newBackend(ctx context.Context, cfg *config.Config, zl *zap.Logger) (storage.Backend, func(), error) {
	if cfg.StorageBackend == "gcs" {
		backend, err := storage.NewGCSBackend(ctx, cfg.GCSBucket, cfg.GCSPrefix, cfg.GCSCredentialsFile, zl)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() {
			if err := backend.Close(); err != nil {
				zl.Warn("failed to close gcs client", zap.Error(err))
			}
		}, nil
	}
	return storage.NewLocalBackend(cfg.UploadDir), func() {}, nil
}
