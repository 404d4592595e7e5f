package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/handlers/dto"
	"github.com/rafabene/onemore-backend/internal/handlers/middleware"
	"github.com/rafabene/onemore-backend/internal/infrastructure/i18n"
	"github.com/rafabene/onemore-backend/internal/services"
)

// RouterConfig reúne o que o router precisa além dos handlers
type RouterConfig struct {
	BaseURL        string
	AllowedOrigins string
	I18n           *i18n.Service
	Auth           *middleware.Auth
	Logger         ports.Logger
}

// Handlers agrupa os handlers registrados nas rotas
type Handlers struct {
	Auth   *AuthHandler
	User   *UserHandler
	Admin  *AdminHandler
	Stream *NotificationStreamHandler
	Health *HealthHandler
}

// NewRouter monta o engine do gin com middlewares globais e rotas /api/v1
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	// mensagens de validação do binding usam os nomes JSON dos campos
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(services.JSONFieldName)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))

	router.Use(func(c *gin.Context) {
		c.Set(dto.BaseURLContextKey, cfg.BaseURL)
		c.Next()
	})
	router.Use(middleware.NewI18nMiddleware(cfg.I18n).DetectLanguage())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(ErrorHandler(cfg.Logger))

	router.GET("/health", h.Health.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/verify-email", h.Auth.VerifyEmail)
			auth.POST("/social-login", h.Auth.SocialLogin)
			auth.POST("/password-reset/request", h.Auth.RequestPasswordReset)
			auth.POST("/password-reset/confirm", h.Auth.ResetPassword)
			auth.POST("/login", h.Auth.Login)
		}

		user := v1.Group("/user", cfg.Auth.Protected())
		{
			user.GET("/profile", h.User.GetProfile)
			user.PATCH("/profile", h.User.UpdateProfile)
			user.GET("/notifications", h.User.GetNotifications)
			user.GET("/notifications/stream", h.Stream.Stream)
		}

		admin := v1.Group("/admin", cfg.Auth.Admin())
		{
			admin.GET("/users", h.Admin.ListUsers)
			admin.PATCH("/users/:id/role", h.Admin.UpdateUserRole)
			admin.DELETE("/users/:id", h.Admin.DeleteUser)
			admin.GET("/activity-logs", h.Admin.ListActivityLogs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		respondError(c, domainerrors.ErrRouteNotFound)
	})

	return router
}
