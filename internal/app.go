package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"file-share-api/config"
	"file-share-api/internal/application/ports"
	"file-share-api/internal/application/services"
	"file-share-api/internal/infrastructure/db/postgres"
	filedb "file-share-api/internal/infrastructure/db/postgres/file"
	profiledb "file-share-api/internal/infrastructure/db/postgres/profile"
	"file-share-api/internal/infrastructure/jwt"
	"file-share-api/internal/infrastructure/metrics"
	"file-share-api/internal/infrastructure/mq"
	natspub "file-share-api/internal/infrastructure/nats"
	"file-share-api/internal/infrastructure/oidc"
	"file-share-api/internal/infrastructure/s3"
	"file-share-api/internal/infrastructure/token"
	"file-share-api/internal/interface/api/rest"
	"file-share-api/internal/interface/api/rest/middleware"
	"file-share-api/pkg/rmqconsumer"
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	s3         *s3.Client
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	verifier   ports.IdentityVerifier
	events     ports.EventPublisher
	mqConsumer ports.RMQConsumer
	accountant *services.DownloadAccountant
}

func NewApp(ctx context.Context) (*App, error) {
	// logger
	logger, err := newLogger(os.Getenv("SERVICE_ENV"))
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}

	// config
	if err = godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal("error loading .env file", zap.Error(err))
	}
	cfg := config.Load()
	if err = cfg.Validate(); err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	// metrics
	mCounter := metrics.NewCounter()

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogGin(logger, mCounter))

	// httpServer
	httpSrv := &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		logger.Fatal("DB config error", zap.Error(err))
	}
	migrateDsn, err := cfg.MigrateDSN()
	if err != nil {
		logger.Fatal("DB config error", zap.Error(err))
	}
	if err = postgres.Migrate(migrateDsn, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	dbPool, err := postgres.New(ctx, logger, dbDsn)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// s3
	s3Client, err := s3.New(ctx, logger, cfg.S3)
	if err != nil {
		logger.Fatal("failed to connect to S3", zap.Error(err))
	}

	// identity
	var verifier ports.IdentityVerifier
	switch cfg.Auth.Mode {
	case config.AuthModeOIDC:
		verifier, err = oidc.New(ctx, logger, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID)
		if err != nil {
			logger.Fatal("failed to init OIDC verifier", zap.Error(err))
		}
	default:
		verifier = jwt.New(cfg.Auth.JWTSecret)
	}

	app := &App{
		logger:   logger,
		cfg:      cfg,
		db:       dbPool,
		s3:       s3Client,
		httpSrv:  httpSrv,
		router:   r,
		mCounter: mCounter,
		verifier: verifier,
	}

	// events
	switch cfg.Events.Driver {
	case config.EventsDriverRabbitMQ:
		app.events, app.mqConsumer = initRabbitMQ(ctx, cfg, logger, mCounter)
	case config.EventsDriverNATS:
		pub := natspub.New(cfg.NATS, logger, mCounter)
		if err = pub.Connect(); err != nil {
			logger.Fatal("failed to connect to NATS", zap.Error(err))
		}
		if err = pub.Init(); err != nil {
			logger.Fatal("failed to init NATS stream", zap.Error(err))
		}
		app.events = pub
	default:
		logger.Info("file events disabled")
	}

	return app, nil
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" || env == gin.DebugMode {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func initRabbitMQ(
	ctx context.Context,
	cfg config.Config,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) (ports.EventPublisher, ports.RMQConsumer) {
	rabbitDsn, err := cfg.AMQPDSN()
	if err != nil {
		logger.Fatal("RabbitMQ config error", zap.Error(err))
	}
	rbMQ := mq.New(cfg.MQ, logger, mCounter)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		logger.Fatal("failed to connect to rabbitMQ", zap.Error(err))
	}
	if err = rbMQ.Init(); err != nil {
		logger.Fatal("failed init rabbitMQ", zap.Error(err))
	}

	// audit consumer
	rmqConsumer := rmqconsumer.New(cfg.MQ, logger)
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		logger.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
	}
	if err = rmqConsumer.Init(); err != nil {
		logger.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
	}

	return rbMQ, rmqConsumer
}

func (a *App) Close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("events close error", zap.Error(err))
		}
	}
	if a.mqConsumer != nil {
		_ = a.mqConsumer.Close()
	}
	// pending download increments still need the pool
	if a.accountant != nil {
		a.accountant.Wait()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	if a.events != nil {
		g.Go(func() error {
			a.events.PublisherWorker(ctx)
			return nil
		})
	}

	if a.mqConsumer != nil {
		g.Go(func() error {
			a.mqConsumer.DeliveryWorker(ctx)
			return nil
		})
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() {
	// repos
	fileRepo := filedb.NewRepository(a.db)
	profileRepo := profiledb.NewRepository(a.db)

	// services
	owners := services.NewOwnerDirectory(
		profileRepo,
		a.cfg.Cache.OwnerNamesSize,
		a.cfg.Cache.OwnerNamesTTL,
		a.logger,
		a.mCounter,
	)
	a.accountant = services.NewDownloadAccountant(fileRepo, a.logger, a.mCounter, a.cfg.Share.AccountingTimeout)
	fileShareService := services.NewFileShareService(
		fileRepo,
		a.s3,
		token.New(),
		owners,
		a.accountant,
		a.events,
		a.logger,
		a.mCounter,
		services.Options{
			SignedURLTTL:  a.cfg.Share.SignedURLTTL,
			TokenAttempts: a.cfg.Share.TokenAttempts,
		},
	)

	// controllers
	rest.NewFileController(a.router, fileShareService, a.logger, a.verifier, a.cfg.ShareURL, a.cfg.Share.MaxUploadBytes)
	rest.NewShareController(a.router, fileShareService, a.logger)

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) { c.Status(http.StatusOK) })
	a.router.GET(rest.RouteReady, a.readyHandler)
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

func (a *App) readyHandler(c *gin.Context) {
	checks := gin.H{"postgres": "ok", "s3": "ok"}
	status := http.StatusOK

	if err := postgres.Ready(c.Request.Context(), a.db); err != nil {
		checks["postgres"], status = err.Error(), http.StatusServiceUnavailable
	}
	if err := a.s3.Ready(c.Request.Context()); err != nil {
		checks["s3"], status = err.Error(), http.StatusServiceUnavailable
	}

	c.JSON(status, checks)
}

func (a *App) Logger() *zap.Logger { return a.logger }
