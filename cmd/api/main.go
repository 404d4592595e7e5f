package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/rafabene/onemore-backend/docs"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
	httphandlers "github.com/rafabene/onemore-backend/internal/handlers/http"
	"github.com/rafabene/onemore-backend/internal/handlers/middleware"
	"github.com/rafabene/onemore-backend/internal/infrastructure/config"
	"github.com/rafabene/onemore-backend/internal/infrastructure/email"
	"github.com/rafabene/onemore-backend/internal/infrastructure/i18n"
	"github.com/rafabene/onemore-backend/internal/infrastructure/logging"
	"github.com/rafabene/onemore-backend/internal/infrastructure/persistence/postgres"
	"github.com/rafabene/onemore-backend/internal/infrastructure/queue"
	"github.com/rafabene/onemore-backend/internal/infrastructure/ratelimit"
	"github.com/rafabene/onemore-backend/internal/infrastructure/realtime"
	"github.com/rafabene/onemore-backend/internal/infrastructure/security"
	"github.com/rafabene/onemore-backend/internal/services"
)

//	@title						1More Game API
//	@version					1.0
//	@description				Account, profile, notification and admin API for 1More Game.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.
func main() {
	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := logging.NewSlogLogger(cfg.Logging.Level)
	logger.Info("starting onemore backend",
		"env", cfg.Env,
		"email_transport", cfg.Email.Transport,
	)

	db, err := postgres.NewDatabaseConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		log.Fatal(err)
	}
	if err := postgres.Migrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		log.Fatal(err)
	}

	i18nService, err := i18n.NewEmbeddedService("en")
	if err != nil {
		logger.Error("failed to initialize i18n", "error", err)
		log.Fatal(err)
	}
	logger.Info("i18n initialized",
		"default_language", i18nService.GetDefaultLanguage(),
		"supported_languages", i18nService.GetSupportedLanguages(),
	)

	limits, closeLimits, err := newRateLimits(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		log.Fatal(err)
	}
	defer closeLimits()

	mailer, closeMailer, err := newMailer(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize mailer", "error", err)
		log.Fatal(err)
	}
	defer closeMailer()

	sessions, err := security.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	if err != nil {
		logger.Error("failed to initialize sessions", "error", err)
		log.Fatal(err)
	}
	credentials := services.Credentials{
		Hasher:   security.NewBcryptHasher(bcrypt.DefaultCost),
		Tokens:   security.NewRandomTokenGenerator(),
		Sessions: sessions,
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	activityRepo := postgres.NewActivityLogRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	uow := postgres.NewUnitOfWork(db)

	// Services
	hub := realtime.NewHub(logger)
	notifier := services.NewNotifier(notificationRepo, hub, logger)
	authService := services.NewAuthService(userRepo, notifier, uow, credentials, mailer, limits, logger)
	userService := services.NewUserService(userRepo, notifier, uow, logger)
	adminService := services.NewAdminService(userRepo, activityRepo, notifier, uow, credentials, logger)

	if cfg.Bootstrap.AdminEmail != "" {
		if _, _, err := adminService.BootstrapSuperAdmin(context.Background(), cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			logger.Error("failed to bootstrap super admin", "error", err)
			log.Fatal(err)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	// requisições já são logadas pelo middleware estruturado
	gin.DefaultWriter = io.Discard

	router := httphandlers.NewRouter(httphandlers.RouterConfig{
		BaseURL:        cfg.Server.BaseURL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		I18n:           i18nService,
		Auth:           middleware.NewAuth(services.NewAccessControl(sessions, userRepo)),
		Logger:         logger,
	}, httphandlers.Handlers{
		Auth:   httphandlers.NewAuthHandler(authService),
		User:   httphandlers.NewUserHandler(userService),
		Admin:  httphandlers.NewAdminHandler(adminService),
		Stream: httphandlers.NewNotificationStreamHandler(hub, logger, splitOrigins(cfg.CORS.AllowedOrigins)),
		Health: httphandlers.NewHealthHandler(db, cfg.Env),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// newRateLimits usa Redis quando REDIS_URL está definido; sem ele, não há limite
func newRateLimits(cfg *config.Config, logger ports.Logger) (services.RateLimits, func(), error) {
	if cfg.Redis.URL == "" {
		logger.Warn("REDIS_URL not set, rate limiting disabled")
		return services.RateLimits{
			PasswordReset: ratelimit.NoopLimiter{},
			Login:         ratelimit.NoopLimiter{},
		}, func() {}, nil
	}

	client, err := ratelimit.NewRedisClient(cfg.Redis.URL)
	if err != nil {
		return services.RateLimits{}, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return services.RateLimits{}, nil, err
	}

	return services.RateLimits{
			PasswordReset: ratelimit.NewRedisLimiter(client, "reset", cfg.RateLimit.ResetMaxAttempts, cfg.RateLimit.ResetWindow),
			Login:         ratelimit.NewRedisLimiter(client, "login", cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow),
		}, func() {
			_ = client.Close()
		}, nil
}

// newMailer escolhe o transporte de email configurado em EMAIL_TRANSPORT
func newMailer(cfg *config.Config, logger ports.Logger) (ports.Mailer, func(), error) {
	switch cfg.Email.Transport {
	case config.EmailTransportKafka:
		producer := queue.NewEmailProducer(cfg.Kafka, logger)
		return producer, func() {
			if err := producer.Close(); err != nil {
				logger.Warn("failed to close email producer", "error", err)
			}
		}, nil
	case config.EmailTransportSMTP:
		composer, err := email.NewComposer(cfg.App.PublicURL)
		if err != nil {
			return nil, nil, err
		}
		return email.NewMailer(composer, email.NewSMTPSender(cfg.SMTP), logger), func() {}, nil
	default:
		composer, err := email.NewComposer(cfg.App.PublicURL)
		if err != nil {
			return nil, nil, err
		}
		return email.NewMailer(composer, email.NewLogSender(logger), logger), func() {}, nil
	}
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
