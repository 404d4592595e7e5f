package services

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
)

func strPtr(s string) *string { return &s }

var _ = Describe("UserService", func() {
	var (
		env  *testEnv
		user *entities.User
	)

	BeforeEach(func() {
		env = newTestEnv()
		user = env.registerVerified("a@x.com", "Jo", "Doe")
	})

	Describe("GetProfile", func() {
		It("retorna o usuário com notificações mais recentes primeiro", func() {
			profile, err := env.users.GetProfile(env.ctx, principalOf(user))
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.User.ID).To(Equal(user.ID))
			Expect(profile.User.IsEmailVerified).To(BeTrue())
			Expect(profile.Notifications).To(HaveLen(2))
			Expect(profile.Notifications[0].Message).To(Equal(entities.MessageEmailVerified))
			Expect(profile.Notifications[1].Message).To(Equal(entities.MessageWelcome))
		})

		It("exige sessão", func() {
			_, err := env.users.GetProfile(env.ctx, nil)
			Expect(err).To(MatchError(domainerrors.ErrUnauthorized))
		})

		It("retorna NotFound para usuário removido", func() {
			Expect(env.userRepo.Delete(env.ctx, user.ID, env.clock.Now())).To(Succeed())

			_, err := env.users.GetProfile(env.ctx, principalOf(user))
			Expect(err).To(MatchError(domainerrors.ErrUserNotFound))
		})
	})

	Describe("UpdateProfile", func() {
		It("atualiza apenas os campos informados", func() {
			updated, err := env.users.UpdateProfile(env.ctx, principalOf(user), UpdateProfileInput{
				FirstName: strPtr("  Joana "),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FirstName).To(Equal("Joana"))
			Expect(updated.LastName).To(Equal("Doe"))

			stored, err := env.userRepo.FindByID(env.ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.FirstName).To(Equal("Joana"))
			Expect(stored.Email.String()).To(Equal("a@x.com"))
			Expect(stored.IsEmailVerified).To(BeTrue())
		})

		It("troca o email normalizado", func() {
			updated, err := env.users.UpdateProfile(env.ctx, principalOf(user), UpdateProfileInput{
				Email: strPtr("New@X.com"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Email.String()).To(Equal("new@x.com"))

			found, err := env.userRepo.FindByEmail(env.ctx, "new@x.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(user.ID))
		})

		It("mantém o próprio email sem conflito", func() {
			_, err := env.users.UpdateProfile(env.ctx, principalOf(user), UpdateProfileInput{Email: strPtr("a@x.com")})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejeita email de outro usuário com Conflict", func() {
			env.registerVerified("b@x.com", "Bo", "Doe")

			_, err := env.users.UpdateProfile(env.ctx, principalOf(user), UpdateProfileInput{Email: strPtr("b@x.com")})
			Expect(err).To(MatchError(domainerrors.ErrEmailAlreadyExists))
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindConflict))
		})

		It("permite reutilizar email de usuário removido", func() {
			other := env.registerVerified("b@x.com", "Bo", "Doe")
			Expect(env.userRepo.Delete(env.ctx, other.ID, env.clock.Now())).To(Succeed())

			_, err := env.users.UpdateProfile(env.ctx, principalOf(user), UpdateProfileInput{Email: strPtr("b@x.com")})
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("valida os campos",
			func(input UpdateProfileInput) {
				_, err := env.users.UpdateProfile(env.ctx, principalOf(user), input)
				Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindValidation))
			},
			Entry("nome curto", UpdateProfileInput{FirstName: strPtr("J")}),
			Entry("sobrenome vazio", UpdateProfileInput{LastName: strPtr("   ")}),
			Entry("email inválido", UpdateProfileInput{Email: strPtr("nope")}),
		)
	})

	Describe("GetNotifications", func() {
		It("ignora notificações removidas", func() {
			notifications, err := env.users.GetNotifications(env.ctx, principalOf(user))
			Expect(err).NotTo(HaveOccurred())
			Expect(notifications).To(HaveLen(2))

			deletedAt := env.clock.Tick(time.Second).UnixMilli()
			Expect(env.db.Table("notifications").
				Where("id = ?", notifications[0].ID).
				Update("deleted_at", deletedAt).Error).To(Succeed())

			notifications, err = env.users.GetNotifications(env.ctx, principalOf(user))
			Expect(err).NotTo(HaveOccurred())
			Expect(notifications).To(HaveLen(1))
			Expect(notifications[0].Message).To(Equal(entities.MessageWelcome))
		})

		It("não mostra notificações de outros usuários", func() {
			other := env.registerVerified("b@x.com", "Bo", "Doe")

			notifications, err := env.users.GetNotifications(env.ctx, principalOf(other))
			Expect(err).NotTo(HaveOccurred())
			Expect(notifications).To(HaveLen(2))
			for _, n := range notifications {
				Expect(n.UserIDs).To(ConsistOf(other.ID))
			}
		})
	})
})
