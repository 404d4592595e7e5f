package repositories

import (
	"context"
	"time"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
)

// UserRepository define a interface para persistência de usuários.
// Buscas retornam (nil, nil) quando nada é encontrado e ignoram registros deletados.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	FindByID(ctx context.Context, id string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindBySocialIdentity(ctx context.Context, identity entities.SocialIdentity) (*entities.User, error)
	FindByVerificationToken(ctx context.Context, tokenHash string) (*entities.User, error)
	FindByResetToken(ctx context.Context, tokenHash string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	// CompletePasswordReset troca a senha e limpa token e expiração numa única
	// atualização condicionada ao token ainda válido. Retorna false se nada mudou.
	CompletePasswordReset(ctx context.Context, userID, tokenHash, passwordHash string, now time.Time) (bool, error)
	Delete(ctx context.Context, id string, now time.Time) error
	List(ctx context.Context, filters UserFilters) ([]*entities.User, int64, error)
}

// UserFilters contém filtros para listagem de usuários
type UserFilters struct {
	Search *string // substring sem diferenciar maiúsculas em email, nome e sobrenome
	Role   *entities.Role
	Pagination
}
