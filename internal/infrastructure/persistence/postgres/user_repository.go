package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/repositories"
	"github.com/rafabene/onemore-backend/internal/domain/valueobjects"
)

// UserRepository implementa repositories.UserRepository
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository cria um novo UserRepository
func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("refusing to create inconsistent user: %w", err)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	model := r.toModel(user)
	model.Version = 1

	db := dbFromContext(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrUserAlreadyExists.Wrap(err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = fromMillis(model.CreatedAt)
	user.UpdatedAt = fromMillis(model.UpdatedAt)
	user.Version = model.Version
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) FindBySocialIdentity(ctx context.Context, identity entities.SocialIdentity) (*entities.User, error) {
	switch identity.Provider() {
	case entities.AuthProviderGoogle:
		return r.findOne(ctx, "google_id = ?", identity.ID())
	case entities.AuthProviderFacebook:
		return r.findOne(ctx, "facebook_id = ?", identity.ID())
	default:
		return nil, fmt.Errorf("unsupported social provider %q", identity.Provider())
	}
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, tokenHash string) (*entities.User, error) {
	return r.findOne(ctx, "verification_token = ?", tokenHash)
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string) (*entities.User, error) {
	return r.findOne(ctx, "reset_token = ?", tokenHash)
}

// userWritableColumns são as colunas que Update pode reescrever.
// created_at e deleted_at ficam de fora; a remoção só acontece via Delete.
var userWritableColumns = []string{
	"email", "first_name", "last_name", "password_hash", "auth_provider",
	"google_id", "facebook_id", "is_email_verified", "verification_token",
	"reset_token", "reset_token_expires", "role", "updated_at", "version",
}

// Update grava o usuário somente se a versão lida ainda for a atual.
// Usuário deletado retorna ErrUserNotFound; escrita concorrente retorna ErrUserModified.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("refusing to save inconsistent user: %w", err)
	}
	db := dbFromContext(ctx, r.db)
	model := r.toModel(user)
	model.Version = user.Version + 1
	model.UpdatedAt = db.NowFunc().UnixMilli()

	result := db.Model(model).
		Where("id = ? AND version = ? AND deleted_at IS NULL", user.ID, user.Version).
		Select(userWritableColumns).
		Updates(model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrEmailAlreadyExists.Wrap(result.Error)
		}
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.staleWriteError(ctx, user.ID)
	}

	user.UpdatedAt = fromMillis(model.UpdatedAt)
	user.Version = model.Version
	return nil
}

func (r *UserRepository) staleWriteError(ctx context.Context, id string) error {
	var alive int64
	db := dbFromContext(ctx, r.db)
	if err := db.Model(&UserModel{}).Where("id = ? AND deleted_at IS NULL", id).Count(&alive).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if alive == 0 {
		return domainerrors.ErrUserNotFound
	}
	return domainerrors.ErrUserModified
}

func (r *UserRepository) CompletePasswordReset(ctx context.Context, userID, tokenHash, passwordHash string, now time.Time) (bool, error) {
	db := dbFromContext(ctx, r.db)
	result := db.Model(&UserModel{}).
		Where("id = ? AND reset_token = ? AND reset_token_expires >= ? AND deleted_at IS NULL", userID, tokenHash, now.UnixMilli()).
		Updates(map[string]interface{}{
			"password_hash":       passwordHash,
			"reset_token":         nil,
			"reset_token_expires": nil,
			"updated_at":          now.UnixMilli(),
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to reset password: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string, now time.Time) error {
	db := dbFromContext(ctx, r.db)
	// Soft delete: atualizar deleted_at ao invés de deletar
	result := db.Model(&UserModel{}).Where("id = ? AND deleted_at IS NULL", id).Updates(map[string]interface{}{
		"deleted_at": now.UnixMilli(),
		"version":    gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, filters repositories.UserFilters) ([]*entities.User, int64, error) {
	p := filters.Pagination.Normalize()

	var total int64
	if err := r.listQuery(ctx, filters).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if p.Exceeds(total) {
		return []*entities.User{}, total, nil
	}
	offset, _ := p.Offset()

	var models []*UserModel
	err := r.listQuery(ctx, filters).
		Order("created_at DESC, id DESC").
		Limit(p.Limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users, err := r.toEntities(models)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// listQuery monta uma query nova a cada chamada para não compartilhar estado entre Count e Find
func (r *UserRepository) listQuery(ctx context.Context, filters repositories.UserFilters) *gorm.DB {
	db := dbFromContext(ctx, r.db)

	// Soft delete: ignorar registros deletados
	query := db.Model(&UserModel{}).Where("deleted_at IS NULL")

	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(*filters.Search))) + "%"
		query = query.Where(
			`(LOWER(email) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}

	if filters.Role != nil {
		query = query.Where("role = ?", string(*filters.Role))
	}

	return query
}

func (r *UserRepository) findOne(ctx context.Context, condition string, args ...interface{}) (*entities.User, error) {
	var model UserModel

	db := dbFromContext(ctx, r.db)
	// Soft delete: ignorar registros deletados
	if err := db.Where(condition, args...).Where("deleted_at IS NULL").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return r.toEntity(&model)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Conversores
func (r *UserRepository) toModel(user *entities.User) *UserModel {
	return &UserModel{
		ID:                user.ID,
		Email:             user.Email.String(),
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		PasswordHash:      user.PasswordHash,
		AuthProvider:      string(user.AuthProvider),
		GoogleID:          user.GoogleID,
		FacebookID:        user.FacebookID,
		IsEmailVerified:   user.IsEmailVerified,
		VerificationToken: user.VerificationToken,
		ResetToken:        user.ResetToken,
		ResetTokenExpires: toMillisPtr(user.ResetTokenExpires),
		Role:              string(user.Role),
		CreatedAt:         toMillis(user.CreatedAt),
		UpdatedAt:         toMillis(user.UpdatedAt),
		DeletedAt:         toMillisPtr(user.DeletedAt),
		Version:           user.Version,
	}
}

func (r *UserRepository) toEntity(model *UserModel) (*entities.User, error) {
	email, err := valueobjects.NewEmail(model.Email)
	if err != nil {
		return nil, err
	}

	return &entities.User{
		ID:                model.ID,
		Email:             email,
		FirstName:         model.FirstName,
		LastName:          model.LastName,
		PasswordHash:      model.PasswordHash,
		AuthProvider:      entities.AuthProvider(model.AuthProvider),
		GoogleID:          model.GoogleID,
		FacebookID:        model.FacebookID,
		IsEmailVerified:   model.IsEmailVerified,
		VerificationToken: model.VerificationToken,
		ResetToken:        model.ResetToken,
		ResetTokenExpires: fromMillisPtr(model.ResetTokenExpires),
		Role:              entities.Role(model.Role),
		CreatedAt:         fromMillis(model.CreatedAt),
		UpdatedAt:         fromMillis(model.UpdatedAt),
		DeletedAt:         fromMillisPtr(model.DeletedAt),
		Version:           model.Version,
	}, nil
}

func (r *UserRepository) toEntities(models []*UserModel) ([]*entities.User, error) {
	users := make([]*entities.User, 0, len(models))

	for _, model := range models {
		entity, err := r.toEntity(model)
		if err != nil {
			return nil, err
		}
		users = append(users, entity)
	}

	return users, nil
}
