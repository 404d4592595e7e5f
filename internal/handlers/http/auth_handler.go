package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafabene/onemore-backend/internal/handlers/dto"
	"github.com/rafabene/onemore-backend/internal/services"
)

// AuthHandler lida com cadastro, verificação, login e redefinição de senha
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler cria um novo AuthHandler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register cria uma conta por email/senha ou provedor social
//
//	@Summary	Register a new account
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.RegisterRequest	true	"Account data"
//	@Success	201		{object}	dto.UserEnvelope
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	409		{object}	dto.ErrorResponse
//	@Router		/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError("body", err))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserEnvelope{
		Success: true,
		User:    dto.ToUserResponse(result.User),
		Message: dto.T(c, result.Message),
	})
}

// VerifyEmail confirma o email do dono do token
//
//	@Summary	Verify an email address
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.VerifyEmailRequest	true	"Verification token"
//	@Success	200		{object}	dto.UserEnvelope
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Router		/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError("body", err))
		return
	}

	user, err := h.auth.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserEnvelope{
		Success: true,
		User:    dto.ToUserResponse(user),
		Message: dto.T(c, services.MessageEmailVerified),
	})
}

// SocialLogin cria ou vincula a conta do provedor e abre uma sessão
//
//	@Summary	Sign in with a social provider
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.SocialLoginRequest	true	"Provider identity"
//	@Success	200		{object}	dto.SessionResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	409		{object}	dto.ErrorResponse
//	@Router		/auth/social-login [post]
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req dto.SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError("body", err))
		return
	}

	result, err := h.auth.VerifySocialLogin(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToSessionResponse(result.User, result.Session, dto.T(c, services.MessageSocialLogin)))
}

// RequestPasswordReset envia o email de redefinição de senha.
// A resposta é a mesma para emails desconhecidos.
//
//	@Summary	Request a password reset email
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.PasswordResetRequest	true	"Account email"
//	@Success	200		{object}	dto.MessageResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	429		{object}	dto.ErrorResponse
//	@Router		/auth/password-reset/request [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError("body", err))
		return
	}

	message, err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: dto.T(c, message)})
}

// ResetPassword troca a senha usando o token recebido por email
//
//	@Summary	Reset the password
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.ResetPasswordRequest	true	"Reset token and new password"
//	@Success	200		{object}	dto.MessageResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Router		/auth/password-reset/confirm [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError("body", err))
		return
	}

	message, err := h.auth.ResetPassword(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: dto.T(c, message)})
}

// Login autentica por email e senha
//
//	@Summary	Sign in with email and password
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.LoginRequest	true	"Credentials"
//	@Success	200		{object}	dto.SessionResponse
//	@Failure	401		{object}	dto.ErrorResponse
//	@Failure	403		{object}	dto.ErrorResponse
//	@Failure	429		{object}	dto.ErrorResponse
//	@Router		/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError("body", err))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.ToInput(), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(result.User, result.Session, dto.T(c, services.MessageLoggedIn)))
}
