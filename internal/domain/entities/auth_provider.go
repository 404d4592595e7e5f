package entities

import "fmt"

// AuthProvider identifica como o usuário se autentica
type AuthProvider string

const (
	AuthProviderEmail    AuthProvider = "EMAIL"
	AuthProviderGoogle   AuthProvider = "GOOGLE"
	AuthProviderFacebook AuthProvider = "FACEBOOK"
)

// IsValid verifica se o provider é conhecido
func (p AuthProvider) IsValid() bool {
	switch p {
	case AuthProviderEmail, AuthProviderGoogle, AuthProviderFacebook:
		return true
	}
	return false
}

// IsSocial indica se o provider é um provedor de identidade externo
func (p AuthProvider) IsSocial() bool {
	return p == AuthProviderGoogle || p == AuthProviderFacebook
}

// SocialIdentity é o vínculo de uma conta com um provedor externo.
// Só pode ser construída via GoogleIdentity ou FacebookIdentity.
type SocialIdentity struct {
	provider AuthProvider
	id       string
}

// GoogleIdentity cria um vínculo com uma conta Google
func GoogleIdentity(id string) SocialIdentity {
	return SocialIdentity{provider: AuthProviderGoogle, id: id}
}

// FacebookIdentity cria um vínculo com uma conta Facebook
func FacebookIdentity(id string) SocialIdentity {
	return SocialIdentity{provider: AuthProviderFacebook, id: id}
}

// NewSocialIdentity resolve o vínculo a partir do provider informado
func NewSocialIdentity(provider AuthProvider, id string) (SocialIdentity, error) {
	switch provider {
	case AuthProviderGoogle:
		return GoogleIdentity(id), nil
	case AuthProviderFacebook:
		return FacebookIdentity(id), nil
	case AuthProviderEmail:
		return SocialIdentity{}, fmt.Errorf("provider %s has no social identity", provider)
	default:
		return SocialIdentity{}, fmt.Errorf("unknown auth provider %q", provider)
	}
}

func (s SocialIdentity) Provider() AuthProvider { return s.provider }
func (s SocialIdentity) ID() string             { return s.id }

// IsZero indica ausência de vínculo
func (s SocialIdentity) IsZero() bool {
	return s.provider == "" && s.id == ""
}
