package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/bonsai-buddy/config"
	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/container"
	"github.com/oksasatya/bonsai-buddy/internal/infrastructure/memory"
	"github.com/oksasatya/bonsai-buddy/internal/infrastructure/objectstore"
	pginfra "github.com/oksasatya/bonsai-buddy/internal/infrastructure/postgres"
	"github.com/oksasatya/bonsai-buddy/internal/infrastructure/search"
	"github.com/oksasatya/bonsai-buddy/internal/interface/middleware"
	"github.com/oksasatya/bonsai-buddy/internal/router"
	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
	"github.com/oksasatya/bonsai-buddy/pkg/mailer"
	"github.com/oksasatya/bonsai-buddy/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	repos, err := buildRepos(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("relation store: %v", err)
	}
	if pool := container.GetPGPool(); pool != nil {
		defer pool.Close()
	}

	// Redis backs sessions, rate limits, reset tokens and theme broadcasts
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.RedisPing(ctx, rdb, 3*time.Second); err != nil {
		logger.WithError(err).Warn("redis unreachable; sign-in will fail until it is back")
	}

	objects, closeObjects, err := buildObjectStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to init object storage: %v", err)
	}
	defer closeObjects()

	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	themes := application.NewThemeHub(logger)
	themes.Subscribe(application.RedisThemeObserver{Client: rdb})

	deps := application.Deps{
		Repos:      repos,
		Objects:    objects,
		Redis:      rdb,
		JWT:        jwtManager,
		Themes:     themes,
		Logger:     logger,
		Images:     application.ImageProcessor{MaxBytes: int64(cfg.MaxImageBytes), MaxWidth: cfg.ImageMaxWidth, Quality: 85},
		Contact:    application.ContactConfig{From: cfg.ContactEmailFrom, To: cfg.ContactEmailTo},
		Branding:   cfg.Branding(),
		ResetURL:   cfg.ResetPasswordURL,
		SessionTTL: cfg.RefreshTTL,
	}
	if idx := buildSearchIndex(ctx, cfg, logger); idx != nil {
		deps.Index = idx
	}
	if sender := buildMailer(cfg, logger); sender != nil {
		deps.Mail = sender
	}
	if pub := container.GetRabbitPub(); pub != nil {
		defer pub.Close()
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)
	container.SetServices(application.NewServices(deps))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RealIP())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorLogger(logger))
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.Env == "development" || cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// buildRepos returns the memory store when STORE_DRIVER=memory, otherwise
// connects to Postgres and applies migrations.
func buildRepos(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (application.Repos, error) {
	if cfg.UseMemoryStore() {
		logger.Warn("using the in-memory store; data is lost on restart")
		s := memory.NewStore()
		return application.Repos{
			Users:         memory.NewUserRepository(s),
			Profiles:      memory.NewProfileRepository(s),
			Specimens:     memory.NewSpecimenRepository(s),
			Posts:         memory.NewPostRepository(s),
			Comments:      memory.NewCommentRepository(s),
			Likes:         memory.NewLikeRepository(s),
			Subscriptions: memory.NewSubscriptionRepository(s),
		}, nil
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return application.Repos{}, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		pool.Close()
		return application.Repos{}, fmt.Errorf("migrate: %w", err)
	}
	container.SetPGPool(pool)
	return application.Repos{
		Users:         pginfra.NewUserRepository(pool),
		Profiles:      pginfra.NewProfileRepository(pool),
		Specimens:     pginfra.NewSpecimenRepository(pool),
		Posts:         pginfra.NewPostRepository(pool),
		Comments:      pginfra.NewCommentRepository(pool),
		Likes:         pginfra.NewLikeRepository(pool),
		Subscriptions: pginfra.NewSubscriptionRepository(pool),
	}, nil
}

// buildObjectStore uses GCS when a bucket is configured and keeps images in
// memory otherwise.
func buildObjectStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (application.ObjectStore, func(), error) {
	if cfg.GCSBucket == "" {
		logger.Warn("GCS_BUCKET not set; images are kept in memory")
		return memory.NewObjectStore("memory://bonsai-images"), func() {}, nil
	}
	client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		return nil, nil, err
	}
	container.SetGCS(client)
	return objectstore.NewGCS(client, cfg.GCSBucket), func() { _ = client.Close() }, nil
}

// buildSearchIndex returns nil when Elasticsearch is not configured. An
// unreachable cluster is only logged; searches fall back to the relation store.
func buildSearchIndex(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *search.Index {
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		return nil
	}
	es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch client init failed; search uses the relation store")
		return nil
	}
	container.SetES(es)
	idx := search.NewIndex(es, cfg.ESProfilesIndex, cfg.ESSpecimensIndex)
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := helpers.ESPing(c, es); err != nil {
		logger.WithError(err).Warn("elasticsearch unreachable; search uses the relation store until it is back")
		return idx
	}
	if err := idx.EnsureIndices(c); err != nil {
		logger.WithError(err).Warn("elasticsearch indices not ready")
	}
	return idx
}

// buildMailer queues email for the worker when RabbitMQ is reachable and
// sends through Mailgun directly otherwise.
func buildMailer(cfg *config.Config, logger *logrus.Logger) application.EmailSender {
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; contact and reset emails are unavailable")
		return nil
	}
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err == nil {
			container.SetRabbitPub(pub)
			return mailer.NewQueuedSender(pub)
		}
		logger.WithError(err).Warn("rabbitmq unavailable; sending email inline")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		logger.Warn("mailgun not configured; contact and reset emails are unavailable")
		return nil
	}
	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	container.SetMailgun(mg)
	return mg
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
