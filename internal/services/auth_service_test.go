package services

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
)

var _ = Describe("AuthService", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	Describe("Register", func() {
		It("cria conta por email não verificada e envia o link de verificação", func() {
			result, err := env.auth.Register(env.ctx, RegisterInput{
				Email:     "a@x.com",
				Password:  "password1",
				FirstName: "Jo",
				LastName:  "Doe",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal(MessageCheckEmail))
			Expect(result.User.ID).NotTo(BeEmpty())
			Expect(result.User.IsEmailVerified).To(BeFalse())
			Expect(result.User.AuthProvider).To(Equal(entities.AuthProviderEmail))
			Expect(result.User.Role).To(Equal(entities.RoleUser))

			stored, err := env.userRepo.FindByEmail(env.ctx, "a@x.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.VerificationToken).NotTo(BeNil())
			Expect(stored.HasPassword()).To(BeTrue())
			Expect(*stored.PasswordHash).NotTo(Equal("password1"))

			sent := env.mailer.last()
			Expect(sent.Kind).To(Equal("verification"))
			Expect(sent.To).To(Equal("a@x.com"))
			Expect(*stored.VerificationToken).To(Equal(env.tokens.Hash(sent.Token)))

			Expect(env.publisher.messages()).To(ConsistOf(entities.MessageWelcome))
		})

		It("grava a notificação de boas-vindas junto com o usuário", func() {
			result, err := env.auth.Register(env.ctx, RegisterInput{
				Email: "a@x.com", Password: "password1", FirstName: "Jo", LastName: "Doe",
			})
			Expect(err).NotTo(HaveOccurred())

			profile, err := env.users.GetProfile(env.ctx, principalOf(result.User))
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Notifications).To(HaveLen(1))
			Expect(profile.Notifications[0].Message).To(Equal("Welcome to 1More Game!"))
			Expect(profile.Notifications[0].Type).To(Equal(entities.NotificationTypeSystem))
		})

		It("rejeita email duplicado com Conflict", func() {
			input := RegisterInput{Email: "a@x.com", Password: "password1", FirstName: "Jo", LastName: "Doe"}
			_, err := env.auth.Register(env.ctx, input)
			Expect(err).NotTo(HaveOccurred())

			_, err = env.auth.Register(env.ctx, input)
			Expect(err).To(MatchError(domainerrors.ErrUserAlreadyExists))
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindConflict))
			Expect(err.Error()).To(Equal("User already exists"))
		})

		It("trata email duplicado sem diferenciar maiúsculas, para qualquer provider", func() {
			_, err := env.auth.Register(env.ctx, RegisterInput{Email: "a@x.com", Password: "password1", FirstName: "Jo", LastName: "Doe"})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.auth.Register(env.ctx, RegisterInput{
				Email: "A@X.com", FirstName: "Jo", LastName: "Doe",
				Provider: entities.AuthProviderGoogle, SocialID: "g-1",
			})
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindConflict))
		})

		It("rejeita social id já vinculado", func() {
			_, err := env.auth.Register(env.ctx, RegisterInput{
				Email: "a@x.com", FirstName: "Jo", LastName: "Doe",
				Provider: entities.AuthProviderFacebook, SocialID: "fb-1",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.auth.Register(env.ctx, RegisterInput{
				Email: "b@x.com", FirstName: "Bo", LastName: "Doe",
				Provider: entities.AuthProviderFacebook, SocialID: "fb-1",
			})
			Expect(err).To(MatchError(domainerrors.ErrUserAlreadyExists))
		})

		It("cria conta social sem senha, sem token e sem email", func() {
			result, err := env.auth.Register(env.ctx, RegisterInput{
				Email: "g@x.com", FirstName: "Gi", LastName: "Doe",
				Provider: entities.AuthProviderGoogle, SocialID: "g-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal(MessageRegistered))
			Expect(result.User.PasswordHash).To(BeNil())
			Expect(result.User.VerificationToken).To(BeNil())
			Expect(result.User.IsEmailVerified).To(BeFalse())
			Expect(*result.User.GoogleID).To(Equal("g-1"))
			Expect(result.User.Validate()).To(Succeed())
			Expect(env.mailer.count()).To(Equal(0))
		})

		DescribeTable("valida a entrada antes de qualquer gravação",
			func(input RegisterInput, field string) {
				_, err := env.auth.Register(env.ctx, input)
				Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindValidation))

				var verr *domainerrors.ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Fields).To(ContainElement(HaveField("Field", field)))

				users, total, err := env.userRepo.List(env.ctx, emptyFilters())
				Expect(err).NotTo(HaveOccurred())
				Expect(total).To(BeZero())
				Expect(users).To(BeEmpty())
			},
			Entry("email sem senha", RegisterInput{Email: "a@x.com", FirstName: "Jo", LastName: "Doe"}, "password"),
			Entry("senha curta", RegisterInput{Email: "a@x.com", Password: "short", FirstName: "Jo", LastName: "Doe"}, "password"),
			Entry("email inválido", RegisterInput{Email: "not-an-email", Password: "password1", FirstName: "Jo", LastName: "Doe"}, "email"),
			Entry("nome curto", RegisterInput{Email: "a@x.com", Password: "password1", FirstName: "J", LastName: "Doe"}, "first_name"),
			Entry("sobrenome ausente", RegisterInput{Email: "a@x.com", Password: "password1", FirstName: "Jo"}, "last_name"),
			Entry("provider desconhecido", RegisterInput{Email: "a@x.com", Password: "password1", FirstName: "Jo", LastName: "Doe", Provider: "TWITTER"}, "auth_provider"),
			Entry("social sem id", RegisterInput{Email: "a@x.com", FirstName: "Jo", LastName: "Doe", Provider: entities.AuthProviderGoogle}, "social_id"),
		)

		It("mantém a conta quando o envio do email falha", func() {
			env.mailer.err = errors.New("smtp down")

			result, err := env.auth.Register(env.ctx, RegisterInput{
				Email: "a@x.com", Password: "password1", FirstName: "Jo", LastName: "Doe",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal(MessageCheckEmail))

			stored, err := env.userRepo.FindByEmail(env.ctx, "a@x.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).NotTo(BeNil())
		})
	})

	Describe("VerifyEmail", func() {
		var token string

		BeforeEach(func() {
			_, err := env.auth.Register(env.ctx, RegisterInput{
				Email: "a@x.com", Password: "password1", FirstName: "Jo", LastName: "Doe",
			})
			Expect(err).NotTo(HaveOccurred())
			token = env.mailer.last().Token
		})

		It("marca o email como verificado e notifica", func() {
			user, err := env.auth.VerifyEmail(env.ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.IsEmailVerified).To(BeTrue())

			stored, err := env.userRepo.FindByEmail(env.ctx, "a@x.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsEmailVerified).To(BeTrue())

			Expect(env.publisher.messages()).To(ContainElement(entities.MessageEmailVerified))
		})

		It("é idempotente: segunda verificação não gera nova notificação", func() {
			user, err := env.auth.VerifyEmail(env.ctx, token)
			Expect(err).NotTo(HaveOccurred())

			again, err := env.auth.VerifyEmail(env.ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.IsEmailVerified).To(BeTrue())

			notifications, err := env.users.GetNotifications(env.ctx, principalOf(user))
			Expect(err).NotTo(HaveOccurred())
			Expect(notifications).To(HaveLen(2))
		})

		It("não aceita o id do usuário como token", func() {
			stored, err := env.userRepo.FindByEmail(env.ctx, "a@x.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = env.auth.VerifyEmail(env.ctx, stored.ID)
			Expect(err).To(MatchError(domainerrors.ErrUserNotFound))
		})

		It("retorna NotFound para token desconhecido", func() {
			_, err := env.auth.VerifyEmail(env.ctx, "unknown-token")
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindNotFound))
		})

		It("exige token", func() {
			_, err := env.auth.VerifyEmail(env.ctx, "  ")
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindValidation))
		})
	})

	Describe("VerifySocialLogin", func() {
		It("cria conta verificada e emite sessão", func() {
			result, err := env.auth.VerifySocialLogin(env.ctx, SocialLoginInput{
				Email: "g@x.com", Provider: entities.AuthProviderGoogle, SocialID: "g-1",
				FirstName: "Gi", LastName: "Doe",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Created).To(BeTrue())
			Expect(result.User.IsEmailVerified).To(BeTrue())
			Expect(result.User.Role).To(Equal(entities.RoleUser))
			Expect(*result.User.GoogleID).To(Equal("g-1"))

			principal, err := env.access.Authenticate(env.ctx, result.Session.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(principal.UserID).To(Equal(result.User.ID))
		})

		It("vincula conta existente pelo email mantendo os invariantes", func() {
			_, err := env.auth.Register(env.ctx, RegisterInput{
				Email: "a@x.com", Password: "password1", FirstName: "Jo", LastName: "Doe",
			})
			Expect(err).NotTo(HaveOccurred())

			result, err := env.auth.VerifySocialLogin(env.ctx, SocialLoginInput{
				Email: "a@x.com", Provider: entities.AuthProviderFacebook, SocialID: "fb-9",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Created).To(BeFalse())

			stored, err := env.userRepo.FindByEmail(env.ctx, "a@x.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.AuthProvider).To(Equal(entities.AuthProviderFacebook))
			Expect(*stored.FacebookID).To(Equal("fb-9"))
			Expect(stored.GoogleID).To(BeNil())
			Expect(stored.PasswordHash).To(BeNil())
			Expect(stored.IsEmailVerified).To(BeTrue())
			Expect(stored.FirstName).To(Equal("Jo"))
			Expect(stored.Validate()).To(Succeed())
		})

		It("troca o vínculo social e limpa o anterior", func() {
			_, err := env.auth.VerifySocialLogin(env.ctx, SocialLoginInput{
				Email: "a@x.com", Provider: entities.AuthProviderGoogle, SocialID: "g-1", FirstName: "Jo", LastName: "Doe",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.auth.VerifySocialLogin(env.ctx, SocialLoginInput{
				Email: "a@x.com", Provider: entities.AuthProviderFacebook, SocialID: "fb-1",
			})
			Expect(err).NotTo(HaveOccurred())

			stored, err := env.userRepo.FindByEmail(env.ctx, "a@x.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.GoogleID).To(BeNil())
			Expect(*stored.FacebookID).To(Equal("fb-1"))
		})

		It("rejeita social id de outro usuário", func() {
			_, err := env.auth.VerifySocialLogin(env.ctx, SocialLoginInput{
				Email: "a@x.com", Provider: entities.AuthProviderGoogle, SocialID: "g-1", FirstName: "Jo", LastName: "Doe",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.auth.VerifySocialLogin(env.ctx, SocialLoginInput{
				Email: "b@x.com", Provider: entities.AuthProviderGoogle, SocialID: "g-1", FirstName: "Bo", LastName: "Doe",
			})
			Expect(err).To(MatchError(domainerrors.ErrSocialIDTaken))
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindConflict))
		})

		It("não aceita EMAIL como provider social", func() {
			_, err := env.auth.VerifySocialLogin(env.ctx, SocialLoginInput{
				Email: "a@x.com", Provider: entities.AuthProviderEmail, SocialID: "x",
			})
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindValidation))
		})
	})

	Describe("password reset", func() {
		var user *entities.User

		BeforeEach(func() {
			user = env.registerVerified("a@x.com", "Jo", "Doe")
		})

		requestToken := func() string {
			message, err := env.auth.RequestPasswordReset(env.ctx, "a@x.com", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(message).To(Equal(MessagePasswordResetSent))

			sent := env.mailer.last()
			Expect(sent.Kind).To(Equal("password_reset"))
			return sent.Token
		}

		It("grava token e expiração de uma hora", func() {
			token := requestToken()

			stored, err := env.userRepo.FindByID(env.ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*stored.ResetToken).To(Equal(env.tokens.Hash(token)))
			Expect(stored.ResetTokenExpires.Equal(env.clock.Now().Add(time.Hour))).To(BeTrue())
		})

		It("redefine a senha dentro da janela e invalida o token", func() {
			token := requestToken()
			env.clock.Tick(30 * time.Minute)

			message, err := env.auth.ResetPassword(env.ctx, ResetPasswordInput{Token: token, NewPassword: "newpassword1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(message).To(Equal(MessagePasswordReset))

			stored, err := env.userRepo.FindByID(env.ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ResetToken).To(BeNil())
			Expect(stored.ResetTokenExpires).To(BeNil())
			Expect(env.hasher.Verify("newpassword1", *stored.PasswordHash)).To(BeTrue())

			_, err = env.auth.ResetPassword(env.ctx, ResetPasswordInput{Token: token, NewPassword: "another-pass"})
			Expect(err).To(MatchError(domainerrors.ErrInvalidToken))
		})

		It("rejeita token expirado e limpa os campos", func() {
			token := requestToken()
			env.clock.Tick(time.Hour + time.Second)

			_, err := env.auth.ResetPassword(env.ctx, ResetPasswordInput{Token: token, NewPassword: "newpassword1"})
			Expect(err).To(MatchError(domainerrors.ErrInvalidToken))
			Expect(err.Error()).To(Equal("Invalid or expired token"))

			stored, err := env.userRepo.FindByID(env.ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ResetToken).To(BeNil())
			Expect(stored.ResetTokenExpires).To(BeNil())
			Expect(env.hasher.Verify("password1", *stored.PasswordHash)).To(BeTrue())
		})

		It("rejeita token desconhecido", func() {
			_, err := env.auth.ResetPassword(env.ctx, ResetPasswordInput{Token: "nope", NewPassword: "newpassword1"})
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindInvalidToken))
		})

		It("valida a nova senha", func() {
			token := requestToken()
			_, err := env.auth.ResetPassword(env.ctx, ResetPasswordInput{Token: token, NewPassword: "short"})
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindValidation))
		})

		It("responde igual para email desconhecido sem enviar nada", func() {
			sentBefore := env.mailer.count()

			message, err := env.auth.RequestPasswordReset(env.ctx, "ghost@x.com", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(message).To(Equal(MessagePasswordResetSent))
			Expect(env.mailer.count()).To(Equal(sentBefore))
		})

		It("limita tentativas por email", func() {
			for i := 0; i < 3; i++ {
				_, err := env.auth.RequestPasswordReset(env.ctx, "a@x.com", "")
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := env.auth.RequestPasswordReset(env.ctx, "a@x.com", "")
			Expect(err).To(MatchError(domainerrors.ErrTooManyRequests))
		})

		It("limita tentativas por IP", func() {
			for _, email := range []string{"b@x.com", "c@x.com", "d@x.com"} {
				_, err := env.auth.RequestPasswordReset(env.ctx, email, "10.9.9.9")
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := env.auth.RequestPasswordReset(env.ctx, "e@x.com", "10.9.9.9")
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindTooManyRequests))
		})

		It("segue sem limite quando o limitador está indisponível", func() {
			env.limiter.err = errors.New("redis down")

			_, err := env.auth.RequestPasswordReset(env.ctx, "a@x.com", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Login", func() {
		It("emite sessão para conta verificada", func() {
			user := env.registerVerified("a@x.com", "Jo", "Doe")

			result, err := env.auth.Login(env.ctx, LoginInput{Email: "A@x.com", Password: "password1"}, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.User.ID).To(Equal(user.ID))
			Expect(result.Session.AccessToken).NotTo(BeEmpty())

			principal, err := env.access.Authenticate(env.ctx, result.Session.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(principal.Role).To(Equal(entities.RoleUser))
			Expect(principal.Email).To(Equal("a@x.com"))
		})

		It("rejeita senha errada e email desconhecido da mesma forma", func() {
			env.registerVerified("a@x.com", "Jo", "Doe")

			_, err := env.auth.Login(env.ctx, LoginInput{Email: "a@x.com", Password: "wrong-pass"}, "")
			Expect(err).To(MatchError(domainerrors.ErrInvalidCredentials))

			_, err = env.auth.Login(env.ctx, LoginInput{Email: "ghost@x.com", Password: "password1"}, "")
			Expect(err).To(MatchError(domainerrors.ErrInvalidCredentials))
		})

		It("exige email verificado", func() {
			_, err := env.auth.Register(env.ctx, RegisterInput{
				Email: "a@x.com", Password: "password1", FirstName: "Jo", LastName: "Doe",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.auth.Login(env.ctx, LoginInput{Email: "a@x.com", Password: "password1"}, "")
			Expect(err).To(MatchError(domainerrors.ErrEmailNotVerified))
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindForbidden))
		})

		It("contas sociais não têm senha", func() {
			_, err := env.auth.VerifySocialLogin(env.ctx, SocialLoginInput{
				Email: "g@x.com", Provider: entities.AuthProviderGoogle, SocialID: "g-1", FirstName: "Gi", LastName: "Doe",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.auth.Login(env.ctx, LoginInput{Email: "g@x.com", Password: "password1"}, "")
			Expect(err).To(MatchError(domainerrors.ErrInvalidCredentials))
		})
	})
})
