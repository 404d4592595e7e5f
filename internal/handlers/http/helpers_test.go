package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rafabene/onemore-backend/internal/handlers/middleware"
	"github.com/rafabene/onemore-backend/internal/infrastructure/i18n"
	"github.com/rafabene/onemore-backend/internal/infrastructure/logging"
	"github.com/rafabene/onemore-backend/internal/infrastructure/persistence/postgres"
	"github.com/rafabene/onemore-backend/internal/infrastructure/ratelimit"
	"github.com/rafabene/onemore-backend/internal/infrastructure/realtime"
	"github.com/rafabene/onemore-backend/internal/infrastructure/security"
	"github.com/rafabene/onemore-backend/internal/services"
)

const testPassword = "password1"

// inbox guarda o último token enviado para cada destinatário
type inbox struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *inbox) SendVerificationEmail(_ context.Context, to, token string) error {
	return m.store(to, token)
}

func (m *inbox) SendPasswordResetEmail(_ context.Context, to, token string) error {
	return m.store(to, token)
}

func (m *inbox) store(to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[to] = token
	return nil
}

func (m *inbox) token(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[to]
	if !ok {
		t.Fatalf("nenhum email enviado para %s", to)
	}
	return token
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	inbox  *inbox
	hub    *realtime.Hub
	admin  *services.AdminService
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), postgres.GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := postgres.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions, err := security.NewJWTManager("handler-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create jwt manager: %v", err)
	}

	log := logging.NewNopLogger()
	hub := realtime.NewHub(log)
	mails := &inbox{tokens: make(map[string]string)}

	userRepo := postgres.NewUserRepository(db)
	uow := postgres.NewUnitOfWork(db)
	notifier := services.NewNotifier(postgres.NewNotificationRepository(db), hub, log)
	credentials := services.Credentials{
		Hasher:   security.NewBcryptHasher(bcrypt.MinCost),
		Tokens:   security.NewRandomTokenGenerator(),
		Sessions: sessions,
	}
	limits := services.RateLimits{
		PasswordReset: ratelimit.NewRedisLimiter(client, "reset", 2, time.Hour),
		Login:         ratelimit.NoopLimiter{},
	}

	authService := services.NewAuthService(userRepo, notifier, uow, credentials, mails, limits, log)
	userService := services.NewUserService(userRepo, notifier, uow, log)
	adminService := services.NewAdminService(userRepo, postgres.NewActivityLogRepository(db), notifier, uow, credentials, log)

	i18nService, err := i18n.NewEmbeddedService("en")
	if err != nil {
		t.Fatalf("failed to load locales: %v", err)
	}

	router := NewRouter(RouterConfig{
		BaseURL:        "http://api.test",
		AllowedOrigins: "http://localhost:3000",
		I18n:           i18nService,
		Auth:           middleware.NewAuth(services.NewAccessControl(sessions, userRepo)),
		Logger:         log,
	}, Handlers{
		Auth:   NewAuthHandler(authService),
		User:   NewUserHandler(userService),
		Admin:  NewAdminHandler(adminService),
		Stream: NewNotificationStreamHandler(hub, log, []string{"http://localhost:3000"}),
		Health: NewHealthHandler(db, "test"),
	})

	return &testServer{t: t, router: router, db: db, inbox: mails, hub: hub, admin: adminService, redis: mr}
}

// do executa uma requisição JSON; token vazio não envia Authorization
func (s *testServer) do(method, target string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			payload.WriteString(raw)
		} else if err := json.NewEncoder(&payload).Encode(body); err != nil {
			s.t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("resposta não é JSON: %v (%s)", err, w.Body.String())
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("esperava status %d, obteve %d: %s", status, w.Code, w.Body.String())
	}
}

// problem é o corpo RFC 7807 visto pelo cliente
type problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
	Code     string `json:"code"`
	Errors   []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
		Tag     string `json:"tag"`
	} `json:"errors"`
}

func expectProblem(t *testing.T, w *httptest.ResponseRecorder, status int) problem {
	t.Helper()
	expectStatus(t, w, status)
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type inesperado: %s", ct)
	}
	p := decode[problem](t, w)
	if p.Status != status {
		t.Errorf("status do corpo %d difere de %d", p.Status, status)
	}
	return p
}

type sessionBody struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	User        struct {
		ID              string `json:"id"`
		Email           string `json:"email"`
		Role            string `json:"role"`
		IsEmailVerified bool   `json:"is_email_verified"`
	} `json:"user"`
}

// signUp cadastra, verifica e autentica uma conta por email
func (s *testServer) signUp(email string) sessionBody {
	s.t.Helper()

	w := s.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":      email,
		"password":   testPassword,
		"first_name": "Jo",
		"last_name":  "Doe",
	}, "")
	expectStatus(s.t, w, http.StatusCreated)

	w = s.do(http.MethodPost, "/api/v1/auth/verify-email", map[string]string{"token": s.inbox.token(s.t, email)}, "")
	expectStatus(s.t, w, http.StatusOK)

	return s.login(email, testPassword)
}

func (s *testServer) login(email, password string) sessionBody {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, "")
	expectStatus(s.t, w, http.StatusOK)
	return decode[sessionBody](s.t, w)
}

// superAdmin cria o super admin de bootstrap e retorna sua sessão
func (s *testServer) superAdmin() sessionBody {
	s.t.Helper()
	if _, _, err := s.admin.BootstrapSuperAdmin(context.Background(), "root@1more.game", "bootstrap-pass"); err != nil {
		s.t.Fatalf("failed to bootstrap admin: %v", err)
	}
	return s.login("root@1more.game", "bootstrap-pass")
}
