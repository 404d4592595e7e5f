package dto

import (
	"time"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	"github.com/rafabene/onemore-backend/internal/services"
)

// RegisterRequest representa o cadastro por email ou provedor social
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AuthProvider string `json:"auth_provider"`
	SocialID     string `json:"social_id"`
}

func (r RegisterRequest) ToInput() services.RegisterInput {
	return services.RegisterInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Provider:  entities.AuthProvider(r.AuthProvider),
		SocialID:  r.SocialID,
	}
}

// VerifyEmailRequest carrega o token recebido por email
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// SocialLoginRequest é a identidade já verificada pelo provedor
type SocialLoginRequest struct {
	SocialID     string `json:"social_id"`
	AuthProvider string `json:"auth_provider"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

func (r SocialLoginRequest) ToInput() services.SocialLoginInput {
	return services.SocialLoginInput{
		Email:     r.Email,
		Provider:  entities.AuthProvider(r.AuthProvider),
		SocialID:  r.SocialID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) ToInput() services.ResetPasswordInput {
	return services.ResetPasswordInput{Token: r.Token, NewPassword: r.NewPassword}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) ToInput() services.LoginInput {
	return services.LoginInput{Email: r.Email, Password: r.Password}
}

// SessionResponse é a resposta de login com o token de acesso
type SessionResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message,omitempty"`
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// ToSessionResponse monta a resposta de sessão para o usuário autenticado
func ToSessionResponse(user *entities.User, session *services.Session, message string) SessionResponse {
	return SessionResponse{
		Success:     true,
		Message:     message,
		User:        ToUserResponse(user),
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
	}
}
