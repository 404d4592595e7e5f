package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/domain/repositories"
	"github.com/rafabene/onemore-backend/internal/domain/valueobjects"
)

// AdminService contém as operações do console administrativo
type AdminService struct {
	userRepo     repositories.UserRepository
	activityRepo repositories.ActivityLogRepository
	notifier     *Notifier
	uow          ports.UnitOfWork
	credentials  Credentials
	logger       ports.Logger
	now          func() time.Time
}

// NewAdminService cria um novo AdminService
func NewAdminService(
	userRepo repositories.UserRepository,
	activityRepo repositories.ActivityLogRepository,
	notifier *Notifier,
	uow ports.UnitOfWork,
	credentials Credentials,
	logger ports.Logger,
) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		notifier:     notifier,
		uow:          uow,
		credentials:  credentials,
		logger:       logger,
		now:          time.Now,
	}
}

// UserListQuery são os filtros da listagem de usuários
type UserListQuery struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search" validate:"max=100"`
	Role   string `json:"role" validate:"omitempty,oneof=USER PREMIUM ADMIN SUPER_ADMIN"`
}

// PageQuery é a paginação de listagens sem filtros
type PageQuery struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// GetUsers lista usuários não deletados, mais recentes primeiro
func (s *AdminService) GetUsers(ctx context.Context, principal *Principal, query UserListQuery) (*repositories.Page[*entities.User], error) {
	if err := RequireAdmin(principal); err != nil {
		return nil, err
	}

	query.Search = strings.TrimSpace(query.Search)
	query.Role = strings.ToUpper(strings.TrimSpace(query.Role))
	if err := validateInput(query); err != nil {
		return nil, err
	}

	p := repositories.Pagination{Page: query.Page, Limit: query.Limit}.Normalize()
	filters := repositories.UserFilters{Pagination: p}
	if query.Search != "" {
		filters.Search = &query.Search
	}
	if query.Role != "" {
		role := entities.Role(query.Role)
		filters.Role = &role
	}

	users, total, err := s.userRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &repositories.Page[*entities.User]{
		Data:     users,
		Metadata: repositories.NewPageMetadata(total, p),
	}, nil
}

// GetActivityLogs lista o log administrativo com o admin de cada ação
func (s *AdminService) GetActivityLogs(ctx context.Context, principal *Principal, query PageQuery) (*repositories.Page[*entities.ActivityLog], error) {
	if err := RequireAdmin(principal); err != nil {
		return nil, err
	}

	p := repositories.Pagination{Page: query.Page, Limit: query.Limit}.Normalize()
	logs, total, err := s.activityRepo.List(ctx, p)
	if err != nil {
		return nil, err
	}

	return &repositories.Page[*entities.ActivityLog]{
		Data:     logs,
		Metadata: repositories.NewPageMetadata(total, p),
	}, nil
}

// UpdateUserRole altera o papel de um usuário e registra a ação.
// Conceder ou revogar papéis administrativos exige SUPER_ADMIN.
func (s *AdminService) UpdateUserRole(ctx context.Context, principal *Principal, userID, rawRole string) (*entities.User, error) {
	if err := RequireAdmin(principal); err != nil {
		return nil, err
	}

	role, ok := entities.ParseRole(strings.ToUpper(strings.TrimSpace(rawRole)))
	if !ok {
		return nil, domainerrors.NewValidationError("role", "oneof", "USER PREMIUM ADMIN SUPER_ADMIN")
	}
	if userID == principal.UserID {
		return nil, domainerrors.ErrForbidden
	}

	now := s.now()
	var (
		target       *entities.User
		notification *entities.Notification
	)

	err := s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		target, err = s.userRepo.FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		if target == nil {
			return domainerrors.ErrUserNotFound
		}

		if (target.Role.IsAdmin() || role.IsAdmin()) && !principal.Role.HasPermission(entities.PermissionAdminRolesManage) {
			return domainerrors.ErrForbidden
		}
		if target.Role == role {
			return nil
		}

		previous := target.Role
		target.Role = role
		target.UpdatedAt = now
		if err := s.userRepo.Update(txCtx, target); err != nil {
			return err
		}

		details := fmt.Sprintf("role changed from %s to %s", previous, role)
		if err := s.activityRepo.Create(txCtx, entities.NewActivityLog(principal.UserID, entities.ActivityUserRoleUpdated, target.ID, details, now)); err != nil {
			return err
		}

		notification, err = s.notifier.Create(txCtx, fmt.Sprintf(entities.MessageRoleUpdated, role), now, target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if notification != nil {
		s.notifier.Publish(notification)
		s.logger.Info("User role updated", "admin_id", principal.UserID, "user_id", target.ID, "role", role)
	}

	return target, nil
}

// DeleteUser remove um usuário (soft delete) e registra a ação
func (s *AdminService) DeleteUser(ctx context.Context, principal *Principal, userID string) error {
	if err := RequireAdmin(principal); err != nil {
		return err
	}
	if userID == principal.UserID {
		return domainerrors.ErrCannotDeleteSelf
	}

	now := s.now()
	err := s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		target, err := s.userRepo.FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		if target == nil {
			return domainerrors.ErrUserNotFound
		}

		if target.IsAdmin() && !principal.Role.HasPermission(entities.PermissionAdminRolesManage) {
			return domainerrors.ErrForbidden
		}

		if err := s.userRepo.Delete(txCtx, target.ID, now); err != nil {
			return err
		}

		details := fmt.Sprintf("deleted user %s", target.Email)
		return s.activityRepo.Create(txCtx, entities.NewActivityLog(principal.UserID, entities.ActivityUserDeleted, target.ID, details, now))
	})
	if err != nil {
		return err
	}

	s.logger.Info("User deleted", "admin_id", principal.UserID, "user_id", userID)
	return nil
}

// BootstrapSuperAdmin garante um SUPER_ADMIN inicial. Se o email já existe,
// nada é alterado e created é false.
func (s *AdminService) BootstrapSuperAdmin(ctx context.Context, rawEmail, password string) (user *entities.User, created bool, err error) {
	email, err := valueobjects.NewEmail(rawEmail)
	if err != nil {
		return nil, false, domainerrors.NewValidationError("email", "email", "")
	}
	if len(password) < 8 || len(password) > 72 {
		return nil, false, domainerrors.NewValidationError("password", "min", "8")
	}

	err = s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		user, err = s.userRepo.FindByEmail(txCtx, email.String())
		if err != nil || user != nil {
			return err
		}

		passwordHash, err := s.credentials.Hasher.Hash(password)
		if err != nil {
			return err
		}
		token, err := s.credentials.Tokens.Generate()
		if err != nil {
			return err
		}

		now := s.now()
		user = entities.NewEmailUser(email, "Super", "Admin", passwordHash, s.credentials.Tokens.Hash(token), now)
		user.Role = entities.RoleSuperAdmin
		user.MarkEmailVerified(now)

		if err := s.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("Super admin created", "user_id", user.ID)
	} else if user.Role != entities.RoleSuperAdmin {
		s.logger.Warn("Bootstrap admin email belongs to a non super admin account", "user_id", user.ID, "role", user.Role)
	}

	return user, created, nil
}
