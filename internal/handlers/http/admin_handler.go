package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafabene/onemore-backend/internal/handlers/dto"
	"github.com/rafabene/onemore-backend/internal/handlers/middleware"
	"github.com/rafabene/onemore-backend/internal/services"
)

// AdminHandler expõe o console administrativo
type AdminHandler struct {
	admin *services.AdminService
}

// NewAdminHandler cria um novo AdminHandler
func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListUsers lista usuários com paginação, busca e filtro por papel
//
//	@Summary	List users
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page	query		int		false	"Page (default 1)"
//	@Param		limit	query		int		false	"Page size (default 10, max 100)"
//	@Param		search	query		string	false	"Substring of email or name"
//	@Param		role	query		string	false	"USER, PREMIUM, ADMIN or SUPER_ADMIN"
//	@Success	200		{object}	dto.PageResponse[dto.UserResponse]
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	403		{object}	dto.ErrorResponse
//	@Router		/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query dto.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, bindingError("query", err))
		return
	}

	page, err := h.admin.GetUsers(c.Request.Context(), middleware.GetPrincipal(c), query.ToQuery())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserPage(page))
}

// ListActivityLogs lista as ações administrativas registradas
//
//	@Summary	List admin activity logs
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page	query		int	false	"Page (default 1)"
//	@Param		limit	query		int	false	"Page size (default 10, max 100)"
//	@Success	200		{object}	dto.PageResponse[dto.ActivityLogResponse]
//	@Failure	403		{object}	dto.ErrorResponse
//	@Router		/admin/activity-logs [get]
func (h *AdminHandler) ListActivityLogs(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, bindingError("query", err))
		return
	}

	page, err := h.admin.GetActivityLogs(c.Request.Context(), middleware.GetPrincipal(c), services.PageQuery{
		Page:  query.Page,
		Limit: query.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityLogPage(page))
}

// UpdateUserRole altera o papel de um usuário
//
//	@Summary	Change a user's role
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"User ID"
//	@Param		request	body		dto.UpdateRoleRequest	true	"New role"
//	@Success	200		{object}	dto.UserEnvelope{user=dto.UserResponse}
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	403		{object}	dto.ErrorResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Router		/admin/users/{id}/role [patch]
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError("body", err))
		return
	}

	user, err := h.admin.UpdateUserRole(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserEnvelope{
		Success: true,
		User:    dto.ToUserResponse(user),
		Message: dto.T(c, services.MessageRoleUpdated, map[string]interface{}{"Role": user.Role}),
	})
}

// DeleteUser remove um usuário
//
//	@Summary	Delete a user
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	dto.MessageResponse
//	@Failure	403	{object}	dto.ErrorResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: dto.T(c, services.MessageUserDeleted)})
}
