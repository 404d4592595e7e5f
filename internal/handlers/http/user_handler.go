package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafabene/onemore-backend/internal/handlers/dto"
	"github.com/rafabene/onemore-backend/internal/handlers/middleware"
	"github.com/rafabene/onemore-backend/internal/services"
)

// UserHandler lida com o perfil do usuário da sessão
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler cria um novo UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile retorna o usuário da sessão com suas notificações
//
//	@Summary	Get the current user's profile
//	@Tags		user
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	dto.UserEnvelope{user=dto.ProfileResponse}
//	@Failure	401	{object}	dto.ErrorResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	principal, err := middleware.MustPrincipal(c)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserEnvelope{Success: true, User: dto.ToProfileResponse(profile)})
}

// UpdateProfile altera nome e email do usuário da sessão
//
//	@Summary	Update the current user's profile
//	@Tags		user
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		dto.UpdateProfileRequest	true	"Fields to change"
//	@Success	200		{object}	dto.UserEnvelope{user=dto.UserResponse}
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	409		{object}	dto.ErrorResponse
//	@Router		/user/profile [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	principal, err := middleware.MustPrincipal(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError("body", err))
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), principal, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserEnvelope{
		Success: true,
		User:    dto.ToUserResponse(user),
		Message: dto.T(c, services.MessageProfileUpdated),
	})
}

// GetNotifications lista as notificações ativas do usuário
//
//	@Summary	List the current user's notifications
//	@Tags		user
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	dto.NotificationsResponse
//	@Failure	401	{object}	dto.ErrorResponse
//	@Router		/user/notifications [get]
func (h *UserHandler) GetNotifications(c *gin.Context) {
	principal, err := middleware.MustPrincipal(c)
	if err != nil {
		respondError(c, err)
		return
	}

	notifications, err := h.users.GetNotifications(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotificationsResponse{
		Success:       true,
		Notifications: dto.ToNotificationResponses(notifications),
	})
}
