package services

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/infrastructure/security"
)

var _ = Describe("AccessControl", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	issue := func(userID, role string) string {
		token, _, err := env.sessions.Issue(ports.SessionClaims{UserID: userID, Email: "a@x.com", Role: role})
		Expect(err).NotTo(HaveOccurred())
		return token
	}

	loginAs := func(email string) string {
		result, err := env.auth.Login(env.ctx, LoginInput{Email: email, Password: "password1"}, "")
		Expect(err).NotTo(HaveOccurred())
		return result.Session.AccessToken
	}

	Describe("Authenticate", func() {
		It("retorna o principal com os dados gravados", func() {
			admin := env.seedUser("admin@x.com", entities.RoleAdmin)

			principal, err := env.access.Authenticate(env.ctx, loginAs("admin@x.com"))
			Expect(err).NotTo(HaveOccurred())
			Expect(principal).To(Equal(&Principal{UserID: admin.ID, Email: "admin@x.com", Role: entities.RoleAdmin}))
		})

		It("usa o papel gravado e não o do token", func() {
			user := env.seedUser("user@x.com", entities.RoleUser)

			principal, err := env.access.Authenticate(env.ctx, issue(user.ID, "SUPER_ADMIN"))
			Expect(err).NotTo(HaveOccurred())
			Expect(principal.Role).To(Equal(entities.RoleUser))
			Expect(principal.Email).To(Equal("user@x.com"))
		})

		It("sessão antiga perde o acesso quando o admin é rebaixado e depois removido", func() {
			admin := env.seedUser("admin@x.com", entities.RoleAdmin)
			super := env.seedUser("root@x.com", entities.RoleSuperAdmin)
			token := loginAs("admin@x.com")

			_, err := env.admin.UpdateUserRole(env.ctx, principalOf(super), admin.ID, "USER")
			Expect(err).NotTo(HaveOccurred())

			principal, err := env.access.Authenticate(env.ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(principal.Role).To(Equal(entities.RoleUser))
			Expect(RequireAdmin(principal)).To(MatchError(domainerrors.ErrForbidden))
			_, err = env.admin.GetUsers(env.ctx, principal, UserListQuery{})
			Expect(err).To(MatchError(domainerrors.ErrForbidden))

			Expect(env.admin.DeleteUser(env.ctx, principalOf(super), admin.ID)).To(Succeed())

			_, err = env.access.Authenticate(env.ctx, token)
			Expect(err).To(MatchError(domainerrors.ErrUnauthorized))
		})

		DescribeTable("rejeita tokens inválidos com Unauthorized",
			func(token func() string) {
				_, err := env.access.Authenticate(env.ctx, token())
				Expect(err).To(MatchError(domainerrors.ErrUnauthorized))
			},
			Entry("vazio", func() string { return "" }),
			Entry("lixo", func() string { return "not.a.jwt" }),
			Entry("sem usuário", func() string { return issue("", "USER") }),
			Entry("usuário inexistente", func() string { return issue("missing", "ADMIN") }),
			Entry("assinado com outro segredo", func() string {
				other, err := security.NewJWTManager("other-secret", time.Hour)
				Expect(err).NotTo(HaveOccurred())
				token, _, err := other.Issue(ports.SessionClaims{UserID: "u-1", Role: "USER"})
				Expect(err).NotTo(HaveOccurred())
				return token
			}),
		)
	})

	Describe("RequireRole", func() {
		It("sem sessão é Unauthorized", func() {
			Expect(RequireRole(nil, entities.RoleAdmin)).To(MatchError(domainerrors.ErrUnauthorized))
			Expect(RequireAdmin(nil)).To(MatchError(domainerrors.ErrUnauthorized))
		})

		It("sem papéis basta estar autenticado", func() {
			Expect(RequireRole(&Principal{UserID: "u", Role: entities.RoleUser})).To(Succeed())
		})

		DescribeTable("console administrativo",
			func(role entities.Role, allowed bool) {
				err := RequireAdmin(&Principal{UserID: "u", Role: role})
				if allowed {
					Expect(err).NotTo(HaveOccurred())
				} else {
					Expect(err).To(MatchError(domainerrors.ErrForbidden))
				}
			},
			Entry("USER", entities.RoleUser, false),
			Entry("PREMIUM", entities.RolePremium, false),
			Entry("ADMIN", entities.RoleAdmin, true),
			Entry("SUPER_ADMIN", entities.RoleSuperAdmin, true),
		)
	})
})
