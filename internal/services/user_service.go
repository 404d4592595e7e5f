package services

import (
	"context"
	"strings"
	"time"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/domain/repositories"
	"github.com/rafabene/onemore-backend/internal/domain/valueobjects"
)

// UserService contém a lógica de negócio do perfil do usuário autenticado
type UserService struct {
	userRepo repositories.UserRepository
	notifier *Notifier
	uow      ports.UnitOfWork
	logger   ports.Logger
	now      func() time.Time
}

// NewUserService cria um novo UserService
func NewUserService(
	userRepo repositories.UserRepository,
	notifier *Notifier,
	uow ports.UnitOfWork,
	logger ports.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		notifier: notifier,
		uow:      uow,
		logger:   logger,
		now:      time.Now,
	}
}

// Profile é o usuário com suas notificações ativas
type Profile struct {
	User          *entities.User
	Notifications []*entities.Notification
}

// GetProfile busca o usuário da sessão com as notificações mais recentes primeiro
func (s *UserService) GetProfile(ctx context.Context, principal *Principal) (*Profile, error) {
	user, err := s.currentUser(ctx, principal)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notifier.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Notifications: notifications}, nil
}

// UpdateProfileInput contém os campos opcionais do perfil
type UpdateProfileInput struct {
	FirstName *string `json:"first_name" validate:"omitnil,min=2,max=100"`
	LastName  *string `json:"last_name" validate:"omitnil,min=2,max=100"`
	Email     *string `json:"email" validate:"omitnil,email,max=254"`
}

func (in *UpdateProfileInput) normalize() {
	for _, field := range []*string{in.FirstName, in.LastName, in.Email} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

// UpdateProfile aplica apenas os campos informados
func (s *UserService) UpdateProfile(ctx context.Context, principal *Principal, input UpdateProfileInput) (*entities.User, error) {
	if err := RequireRole(principal); err != nil {
		return nil, err
	}

	input.normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var email *valueobjects.Email
	if input.Email != nil {
		e, err := valueobjects.NewEmail(*input.Email)
		if err != nil {
			return nil, domainerrors.NewValidationError("email", "email", "")
		}
		email = &e
	}

	var user *entities.User
	err := s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.currentUser(txCtx, principal)
		if err != nil {
			return err
		}

		if email != nil && !email.Equals(user.Email) {
			owner, err := s.userRepo.FindByEmail(txCtx, email.String())
			if err != nil {
				return err
			}
			if owner != nil && owner.ID != user.ID {
				return domainerrors.ErrEmailAlreadyExists
			}
			user.Email = *email
		}
		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		user.UpdatedAt = s.now()

		return s.userRepo.Update(txCtx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", "user_id", user.ID)
	return user, nil
}

// GetNotifications lista as notificações ativas do usuário, mais recentes primeiro
func (s *UserService) GetNotifications(ctx context.Context, principal *Principal) ([]*entities.Notification, error) {
	if err := RequireRole(principal); err != nil {
		return nil, err
	}
	return s.notifier.ListForUser(ctx, principal.UserID)
}

func (s *UserService) currentUser(ctx context.Context, principal *Principal) (*entities.User, error) {
	if err := RequireRole(principal); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}
	return user, nil
}
