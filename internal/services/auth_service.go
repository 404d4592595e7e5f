package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/domain/repositories"
	"github.com/rafabene/onemore-backend/internal/domain/valueobjects"
)

// ResetTokenTTL é a validade do link de redefinição de senha
const ResetTokenTTL = time.Hour

// Credentials agrupa as primitivas de segurança usadas na autenticação
type Credentials struct {
	Hasher   ports.PasswordHasher
	Tokens   ports.TokenGenerator
	Sessions ports.SessionIssuer
}

// RateLimits agrupa os limitadores dos fluxos sensíveis
type RateLimits struct {
	PasswordReset ports.RateLimiter
	Login         ports.RateLimiter
}

// AuthService contém a lógica de cadastro, verificação e credenciais
type AuthService struct {
	userRepo    repositories.UserRepository
	notifier    *Notifier
	uow         ports.UnitOfWork
	credentials Credentials
	mailer      ports.Mailer
	limits      RateLimits
	logger      ports.Logger
	now         func() time.Time
}

// NewAuthService cria um novo AuthService
func NewAuthService(
	userRepo repositories.UserRepository,
	notifier *Notifier,
	uow ports.UnitOfWork,
	credentials Credentials,
	mailer ports.Mailer,
	limits RateLimits,
	logger ports.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		notifier:    notifier,
		uow:         uow,
		credentials: credentials,
		mailer:      mailer,
		limits:      limits,
		logger:      logger,
		now:         time.Now,
	}
}

// RegisterInput representa os dados de cadastro
type RegisterInput struct {
	Email     string                `json:"email" validate:"required,email,max=254"`
	Password  string                `json:"password" validate:"omitempty,min=8,max=72"`
	FirstName string                `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string                `json:"last_name" validate:"required,min=2,max=100"`
	Provider  entities.AuthProvider `json:"auth_provider" validate:"omitempty,oneof=EMAIL GOOGLE FACEBOOK"`
	SocialID  string                `json:"social_id" validate:"omitempty,max=255"`
}

func (in *RegisterInput) normalize() {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.SocialID = strings.TrimSpace(in.SocialID)
	if in.Provider == "" {
		in.Provider = entities.AuthProviderEmail
	}
}

// RegisterResult é o usuário criado e a mensagem para o cliente
type RegisterResult struct {
	User    *entities.User
	Message string
}

// Register cria uma conta por email/senha ou vinculada a um provedor social
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	input.normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	switch {
	case input.Provider == entities.AuthProviderEmail && input.Password == "":
		return nil, domainerrors.NewValidationError("password", "required", "")
	case input.Provider.IsSocial() && input.SocialID == "":
		return nil, domainerrors.NewValidationError("social_id", "required", "")
	}

	email, err := valueobjects.NewEmail(input.Email)
	if err != nil {
		return nil, domainerrors.NewValidationError("email", "email", "")
	}

	s.logger.Info("Registering user", "email_domain", email.Domain(), "provider", input.Provider)

	now := s.now()
	var (
		user              *entities.User
		identity          entities.SocialIdentity
		verificationToken string
	)

	if input.Provider == entities.AuthProviderEmail {
		passwordHash, err := s.credentials.Hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		verificationToken, err = s.credentials.Tokens.Generate()
		if err != nil {
			return nil, err
		}
		user = entities.NewEmailUser(email, input.FirstName, input.LastName, passwordHash, s.credentials.Tokens.Hash(verificationToken), now)
	} else {
		identity, err = entities.NewSocialIdentity(input.Provider, input.SocialID)
		if err != nil {
			return nil, domainerrors.NewValidationError("auth_provider", "oneof", "EMAIL GOOGLE FACEBOOK")
		}
		user = entities.NewSocialUser(email, input.FirstName, input.LastName, identity, false, now)
	}

	var welcome *entities.Notification
	err = s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.userRepo.FindByEmail(txCtx, email.String())
		if err != nil {
			return err
		}
		if existing != nil {
			return domainerrors.ErrUserAlreadyExists
		}

		if !identity.IsZero() {
			existing, err = s.userRepo.FindBySocialIdentity(txCtx, identity)
			if err != nil {
				return err
			}
			if existing != nil {
				return domainerrors.ErrUserAlreadyExists
			}
		}

		if err := s.userRepo.Create(txCtx, user); err != nil {
			return err
		}

		welcome, err = s.notifier.Create(txCtx, entities.MessageWelcome, now, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(welcome)
	s.logger.Info("User registered", "user_id", user.ID)

	if input.Provider != entities.AuthProviderEmail {
		return &RegisterResult{User: user, Message: MessageRegistered}, nil
	}

	s.dispatch(ctx, "verification", user.ID, func(ctx context.Context) error {
		return s.mailer.SendVerificationEmail(ctx, user.Email.String(), verificationToken)
	})

	return &RegisterResult{User: user, Message: MessageCheckEmail}, nil
}

// VerifyEmail confirma o email do dono do token de verificação.
// Repetir a verificação com o mesmo token é um sucesso sem efeitos.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*entities.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainerrors.NewValidationError("token", "required", "")
	}

	tokenHash := s.credentials.Tokens.Hash(token)
	now := s.now()

	var (
		user     *entities.User
		verified *entities.Notification
	)
	err := s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.userRepo.FindByVerificationToken(txCtx, tokenHash)
		if err != nil {
			return err
		}
		if user == nil {
			return domainerrors.ErrUserNotFound
		}

		if !user.MarkEmailVerified(now) {
			return nil
		}
		if err := s.userRepo.Update(txCtx, user); err != nil {
			return err
		}

		verified, err = s.notifier.Create(txCtx, entities.MessageEmailVerified, now, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if verified != nil {
		s.notifier.Publish(verified)
		s.logger.Info("Email verified", "user_id", user.ID)
	}

	return user, nil
}

// SocialLoginInput representa a identidade confirmada por um provedor externo
type SocialLoginInput struct {
	Email     string                `json:"email" validate:"required,email,max=254"`
	Provider  entities.AuthProvider `json:"auth_provider" validate:"required,oneof=GOOGLE FACEBOOK"`
	SocialID  string                `json:"social_id" validate:"required,max=255"`
	FirstName string                `json:"first_name" validate:"max=100"`
	LastName  string                `json:"last_name" validate:"max=100"`
}

// Session é um token de acesso emitido para o usuário
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
}

// SocialLoginResult é o usuário vinculado e sua sessão
type SocialLoginResult struct {
	User    *entities.User
	Session *Session
	Created bool
}

// VerifySocialLogin cria ou atualiza, pelo email, a conta vinculada ao provedor
func (s *AuthService) VerifySocialLogin(ctx context.Context, input SocialLoginInput) (*SocialLoginResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.SocialID = strings.TrimSpace(input.SocialID)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	email, err := valueobjects.NewEmail(input.Email)
	if err != nil {
		return nil, domainerrors.NewValidationError("email", "email", "")
	}
	identity, err := entities.NewSocialIdentity(input.Provider, input.SocialID)
	if err != nil {
		return nil, domainerrors.NewValidationError("auth_provider", "oneof", "GOOGLE FACEBOOK")
	}

	now := s.now()
	var (
		user    *entities.User
		created bool
		welcome *entities.Notification
	)

	err = s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		owner, err := s.userRepo.FindBySocialIdentity(txCtx, identity)
		if err != nil {
			return err
		}

		user, err = s.userRepo.FindByEmail(txCtx, email.String())
		if err != nil {
			return err
		}

		if owner != nil && (user == nil || owner.ID != user.ID) {
			return domainerrors.ErrSocialIDTaken
		}

		if user != nil {
			user.LinkSocialIdentity(identity, now)
			return s.userRepo.Update(txCtx, user)
		}

		user = entities.NewSocialUser(email, input.FirstName, input.LastName, identity, true, now)
		if err := s.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		created = true

		welcome, err = s.notifier.Create(txCtx, entities.MessageWelcome, now, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(welcome)
	s.logger.Info("Social login verified", "user_id", user.ID, "provider", identity.Provider(), "created", created)

	session, err := issueSession(s.credentials.Sessions, user)
	if err != nil {
		return nil, err
	}

	return &SocialLoginResult{User: user, Session: session, Created: created}, nil
}

// RequestPasswordReset envia o link de redefinição. A resposta é a mesma
// para emails desconhecidos; a diferença fica apenas no log.
func (s *AuthService) RequestPasswordReset(ctx context.Context, rawEmail, clientIP string) (string, error) {
	email, err := valueobjects.NewEmail(rawEmail)
	if err != nil {
		return "", domainerrors.NewValidationError("email", "email", "")
	}

	if clientIP != "" {
		if err := s.allow(ctx, s.limits.PasswordReset, "ip:"+clientIP); err != nil {
			return "", err
		}
	}
	if err := s.allow(ctx, s.limits.PasswordReset, "email:"+email.String()); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, email.String())
	if err != nil {
		return "", err
	}
	if user == nil {
		s.logger.Info("Password reset requested for unknown email", "email_domain", email.Domain())
		return MessagePasswordResetSent, nil
	}
	if user.AuthProvider != entities.AuthProviderEmail {
		s.logger.Info("Password reset requested for social account", "user_id", user.ID, "provider", user.AuthProvider)
		return MessagePasswordResetSent, nil
	}

	token, err := s.credentials.Tokens.Generate()
	if err != nil {
		return "", err
	}

	user.SetResetToken(s.credentials.Tokens.Hash(token), s.now().Add(ResetTokenTTL))
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	s.dispatch(ctx, "password_reset", user.ID, func(ctx context.Context) error {
		return s.mailer.SendPasswordResetEmail(ctx, user.Email.String(), token)
	})

	s.logger.Info("Password reset requested", "user_id", user.ID)
	return MessagePasswordResetSent, nil
}

// ResetPasswordInput representa a confirmação da redefinição
type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// ResetPassword troca a senha se o token existir e não estiver expirado
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) (string, error) {
	input.Token = strings.TrimSpace(input.Token)
	if err := validateInput(input); err != nil {
		return "", err
	}

	tokenHash := s.credentials.Tokens.Hash(input.Token)
	now := s.now()

	user, err := s.userRepo.FindByResetToken(ctx, tokenHash)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domainerrors.ErrInvalidToken
	}

	if !user.HasValidResetToken(now) {
		user.ClearResetToken()
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Warn("Failed to clear expired reset token", "user_id", user.ID, "error", err)
		}
		return "", domainerrors.ErrInvalidToken
	}

	passwordHash, err := s.credentials.Hasher.Hash(input.NewPassword)
	if err != nil {
		return "", err
	}

	ok, err := s.userRepo.CompletePasswordReset(ctx, user.ID, tokenHash, passwordHash, now)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domainerrors.ErrInvalidToken
	}

	s.logger.Info("Password reset completed", "user_id", user.ID)
	return MessagePasswordReset, nil
}

// LoginInput representa credenciais de email e senha
type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginResult é o usuário autenticado e sua sessão
type LoginResult struct {
	User    *entities.User
	Session *Session
}

// Login autentica por email e senha e emite uma sessão
func (s *AuthService) Login(ctx context.Context, input LoginInput, clientIP string) (*LoginResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	email, err := valueobjects.NewEmail(input.Email)
	if err != nil {
		return nil, domainerrors.NewValidationError("email", "email", "")
	}

	if clientIP != "" {
		if err := s.allow(ctx, s.limits.Login, "ip:"+clientIP); err != nil {
			return nil, err
		}
	}
	if err := s.allow(ctx, s.limits.Login, "email:"+email.String()); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, email.String())
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasPassword() || !s.credentials.Hasher.Verify(input.Password, *user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	if user.AuthProvider == entities.AuthProviderEmail && !user.IsEmailVerified {
		return nil, domainerrors.ErrEmailNotVerified
	}

	session, err := issueSession(s.credentials.Sessions, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return &LoginResult{User: user, Session: session}, nil
}

// allow consulta o limitador; indisponibilidade não bloqueia o fluxo
func (s *AuthService) allow(ctx context.Context, limiter ports.RateLimiter, key string) error {
	if limiter == nil {
		return nil
	}

	err := limiter.Allow(ctx, key)
	if err == nil {
		return nil
	}
	if errors.Is(err, domainerrors.ErrTooManyRequests) {
		s.logger.Warn("Rate limit exceeded", "key", key)
		return err
	}

	s.logger.Warn("Rate limiter unavailable", "error", err)
	return nil
}

// dispatch envia um email depois do commit; falhas são logadas e nunca desfazem a operação
func (s *AuthService) dispatch(ctx context.Context, kind, userID string, send func(context.Context) error) {
	if err := send(ctx); err != nil {
		s.logger.Warn("Failed to send email", "kind", kind, "user_id", userID, "error", err)
	}
}
