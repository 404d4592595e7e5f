package dto

import (
	"time"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	"github.com/rafabene/onemore-backend/internal/services"
)

// UserResponse é a projeção pública de um usuário; hash e tokens nunca saem daqui
type UserResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	AuthProvider    string    `json:"auth_provider"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToUserResponse converte uma entidade User para UserResponse
func ToUserResponse(user *entities.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Email:           user.Email.String(),
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		AuthProvider:    string(user.AuthProvider),
		Role:            string(user.Role),
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

// ToUserResponses converte uma lista de entidades User para UserResponse
func ToUserResponses(users []*entities.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = ToUserResponse(user)
	}
	return responses
}

// UserSummary identifica o autor de uma ação administrativa
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NotificationResponse representa uma notificação do usuário
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func ToNotificationResponse(n *entities.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Type:      string(n.Type),
		CreatedAt: n.CreatedAt,
	}
}

func ToNotificationResponses(notifications []*entities.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = ToNotificationResponse(n)
	}
	return responses
}

// ProfileResponse é o usuário da sessão com suas notificações
type ProfileResponse struct {
	UserResponse
	Notifications []NotificationResponse `json:"notifications"`
}

// UserEnvelope é a resposta {success, user, message}
type UserEnvelope struct {
	Success bool        `json:"success"`
	User    interface{} `json:"user"`
	Message string      `json:"message,omitempty"`
}

// NotificationsResponse é a lista de notificações do usuário
type NotificationsResponse struct {
	Success       bool                   `json:"success"`
	Notifications []NotificationResponse `json:"notifications"`
}

// ToProfileResponse converte o perfil retornado pelo serviço
func ToProfileResponse(profile *services.Profile) ProfileResponse {
	return ProfileResponse{
		UserResponse:  ToUserResponse(profile.User),
		Notifications: ToNotificationResponses(profile.Notifications),
	}
}

// UpdateProfileRequest representa a atualização parcial do perfil
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

func (r UpdateProfileRequest) ToInput() services.UpdateProfileInput {
	return services.UpdateProfileInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
}
