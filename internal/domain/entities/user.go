package entities

import (
	"errors"
	"time"

	"github.com/rafabene/onemore-backend/internal/domain/valueobjects"
)

// User representa um usuário do sistema
type User struct {
	ID                string
	Email             valueobjects.Email
	FirstName         string
	LastName          string
	PasswordHash      *string // nil para contas apenas sociais
	AuthProvider      AuthProvider
	GoogleID          *string
	FacebookID        *string
	IsEmailVerified   bool
	VerificationToken *string // hash do token enviado por email
	ResetToken        *string // hash do token de redefinição
	ResetTokenExpires *time.Time
	Role              Role
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time // Soft delete
	Version           int64      // incrementado pelo repositório a cada escrita
}

// NewEmailUser cria uma conta autenticada por senha, ainda não verificada
func NewEmailUser(email valueobjects.Email, firstName, lastName, passwordHash, verificationTokenHash string, now time.Time) *User {
	return &User{
		Email:             email,
		FirstName:         firstName,
		LastName:          lastName,
		PasswordHash:      &passwordHash,
		AuthProvider:      AuthProviderEmail,
		VerificationToken: &verificationTokenHash,
		Role:              RoleUser,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// NewSocialUser cria uma conta vinculada a um provedor externo
func NewSocialUser(email valueobjects.Email, firstName, lastName string, identity SocialIdentity, verified bool, now time.Time) *User {
	u := &User{
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		Role:            RoleUser,
		IsEmailVerified: verified,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	u.setSocialIdentity(identity)
	return u
}

// SocialIdentity retorna o vínculo social da conta, se houver
func (u *User) SocialIdentity() (SocialIdentity, bool) {
	switch u.AuthProvider {
	case AuthProviderGoogle:
		if u.GoogleID != nil {
			return GoogleIdentity(*u.GoogleID), true
		}
	case AuthProviderFacebook:
		if u.FacebookID != nil {
			return FacebookIdentity(*u.FacebookID), true
		}
	case AuthProviderEmail:
	}
	return SocialIdentity{}, false
}

// LinkSocialIdentity vincula a conta a um provedor externo e a marca como verificada.
// A conta passa a se autenticar apenas pelo provedor: o hash de senha é removido.
func (u *User) LinkSocialIdentity(identity SocialIdentity, now time.Time) {
	u.setSocialIdentity(identity)
	u.PasswordHash = nil
	u.IsEmailVerified = true
	u.UpdatedAt = now
}

func (u *User) setSocialIdentity(identity SocialIdentity) {
	id := identity.ID()
	switch identity.Provider() {
	case AuthProviderGoogle:
		u.GoogleID = &id
		u.FacebookID = nil
	case AuthProviderFacebook:
		u.FacebookID = &id
		u.GoogleID = nil
	case AuthProviderEmail:
		return
	}
	u.AuthProvider = identity.Provider()
}

// MarkEmailVerified marca o email como verificado.
// Retorna false se já estava verificado.
func (u *User) MarkEmailVerified(now time.Time) bool {
	if u.IsEmailVerified {
		return false
	}
	u.IsEmailVerified = true
	u.UpdatedAt = now
	return true
}

// SetResetToken registra o hash do token de redefinição e sua expiração
func (u *User) SetResetToken(tokenHash string, expires time.Time) {
	u.ResetToken = &tokenHash
	u.ResetTokenExpires = &expires
}

// ClearResetToken remove token e expiração juntos
func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpires = nil
}

// HasValidResetToken verifica se existe token de redefinição ainda não expirado
func (u *User) HasValidResetToken(now time.Time) bool {
	if u.ResetToken == nil || u.ResetTokenExpires == nil {
		return false
	}
	return !now.After(*u.ResetTokenExpires)
}

// HasPassword indica se a conta pode se autenticar por senha
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsAdmin verifica se o usuário é admin
func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

// HasPermission verifica se o usuário tem uma permissão
func (u *User) HasPermission(permission Permission) bool {
	return u.Role.HasPermission(permission)
}

// FullName retorna nome e sobrenome
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsDeleted verifica se o usuário foi deletado (soft delete)
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// SoftDelete marca o usuário como deletado
func (u *User) SoftDelete(now time.Time) {
	u.DeletedAt = &now
}

// Validate valida regras de negócio da entidade User
func (u *User) Validate() error {
	if u.Email.String() == "" {
		return errors.New("email is required")
	}

	if !u.Role.IsValid() {
		return errors.New("invalid role")
	}

	switch u.AuthProvider {
	case AuthProviderEmail:
		if !u.HasPassword() || u.GoogleID != nil || u.FacebookID != nil {
			return errors.New("email accounts must have a password and no social id")
		}
	case AuthProviderGoogle:
		if u.GoogleID == nil || u.FacebookID != nil || u.PasswordHash != nil {
			return errors.New("google accounts must have only a google id")
		}
	case AuthProviderFacebook:
		if u.FacebookID == nil || u.GoogleID != nil || u.PasswordHash != nil {
			return errors.New("facebook accounts must have only a facebook id")
		}
	default:
		return errors.New("invalid auth provider")
	}

	if (u.ResetToken == nil) != (u.ResetTokenExpires == nil) {
		return errors.New("reset token and expiry must be set together")
	}

	return nil
}
