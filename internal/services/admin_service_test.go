package services

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/repositories"
)

var _ = Describe("AdminService", func() {
	var (
		env        *testEnv
		admin      *entities.User
		superAdmin *entities.User
	)

	BeforeEach(func() {
		env = newTestEnv()
		admin = env.seedUser("admin@x.com", entities.RoleAdmin)
		superAdmin = env.seedUser("root@x.com", entities.RoleSuperAdmin)
	})

	Describe("GetUsers", func() {
		BeforeEach(func() {
			for i := 1; i <= 23; i++ {
				env.seedUser(fmt.Sprintf("player%02d@x.com", i), entities.RoleUser)
			}
		})

		It("pagina com padrões e calcula totalPages = ceil(total/limit)", func() {
			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(repositories.DefaultLimit))
			Expect(page.Metadata).To(Equal(repositories.PageMetadata{Total: 25, Page: 1, Limit: 10, TotalPages: 3}))
		})

		It("ordena do mais recente para o mais antigo", func() {
			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Page: 1, Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data[0].Email.String()).To(Equal("player23@x.com"))
			Expect(page.Data[1].Email.String()).To(Equal("player22@x.com"))
		})

		It("retorna a última página parcial", func() {
			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Page: 3, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(5))
		})

		It("página fora do intervalo retorna vazio com metadata correta", func() {
			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Page: 9, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(BeEmpty())
			Expect(page.Metadata).To(Equal(repositories.PageMetadata{Total: 25, Page: 9, Limit: 10, TotalPages: 3}))
		})

		It("página gigante não volta ao início", func() {
			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Page: 1<<62 + 1, Limit: 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(BeEmpty())
			Expect(page.Metadata).To(Equal(repositories.PageMetadata{Total: 25, Page: 1<<62 + 1, Limit: 4, TotalPages: 7}))
		})

		It("limita o tamanho da página", func() {
			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Limit: 1000})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Metadata.Limit).To(Equal(repositories.MaxLimit))
			Expect(page.Data).To(HaveLen(25))
		})

		It("busca sem diferenciar maiúsculas em email e nomes", func() {
			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Search: "PLAYER0"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Metadata.Total).To(Equal(int64(9)))
		})

		It("trata curingas da busca como texto", func() {
			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Search: "%"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Metadata.Total).To(BeZero())

			page, err = env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Search: "_"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Metadata.Total).To(BeZero())
		})

		It("filtra por papel", func() {
			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Role: "super_admin"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(1))
			Expect(page.Data[0].ID).To(Equal(superAdmin.ID))
		})

		It("rejeita papel desconhecido", func() {
			_, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Role: "GOD"})
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindValidation))
		})

		It("não lista usuários removidos", func() {
			victim := env.seedUser("victim@x.com", entities.RoleUser)
			Expect(env.admin.DeleteUser(env.ctx, principalOf(admin), victim.ID)).To(Succeed())

			page, err := env.admin.GetUsers(env.ctx, principalOf(admin), UserListQuery{Search: "victim"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(BeEmpty())
			Expect(page.Metadata.Total).To(BeZero())
		})

		It("exige papel administrativo", func() {
			player, err := env.userRepo.FindByEmail(env.ctx, "player01@x.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = env.admin.GetUsers(env.ctx, principalOf(player), UserListQuery{})
			Expect(err).To(MatchError(domainerrors.ErrForbidden))

			_, err = env.admin.GetUsers(env.ctx, nil, UserListQuery{})
			Expect(err).To(MatchError(domainerrors.ErrUnauthorized))
		})
	})

	Describe("UpdateUserRole", func() {
		var player *entities.User

		BeforeEach(func() {
			player = env.seedUser("player@x.com", entities.RoleUser)
		})

		It("altera o papel, registra a ação e notifica o usuário", func() {
			updated, err := env.admin.UpdateUserRole(env.ctx, principalOf(admin), player.ID, "PREMIUM")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(entities.RolePremium))

			logs, err := env.admin.GetActivityLogs(env.ctx, principalOf(admin), PageQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.Data).To(HaveLen(1))
			Expect(logs.Data[0].Action).To(Equal(entities.ActivityUserRoleUpdated))
			Expect(logs.Data[0].TargetUserID).To(Equal(player.ID))
			Expect(logs.Data[0].Admin).NotTo(BeNil())
			Expect(logs.Data[0].Admin.Email.String()).To(Equal("admin@x.com"))

			Expect(env.publisher.messages()).To(ContainElement("Your account role was updated to PREMIUM"))
		})

		It("admin comum não concede papéis administrativos", func() {
			_, err := env.admin.UpdateUserRole(env.ctx, principalOf(admin), player.ID, "ADMIN")
			Expect(err).To(MatchError(domainerrors.ErrForbidden))

			stored, err := env.userRepo.FindByID(env.ctx, player.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Role).To(Equal(entities.RoleUser))
		})

		It("super admin concede e revoga papéis administrativos", func() {
			_, err := env.admin.UpdateUserRole(env.ctx, principalOf(superAdmin), player.ID, "ADMIN")
			Expect(err).NotTo(HaveOccurred())

			_, err = env.admin.UpdateUserRole(env.ctx, principalOf(superAdmin), admin.ID, "USER")
			Expect(err).NotTo(HaveOccurred())

			logs, err := env.admin.GetActivityLogs(env.ctx, principalOf(superAdmin), PageQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.Metadata.Total).To(Equal(int64(2)))
		})

		It("não altera o próprio papel", func() {
			_, err := env.admin.UpdateUserRole(env.ctx, principalOf(superAdmin), superAdmin.ID, "USER")
			Expect(err).To(MatchError(domainerrors.ErrForbidden))
		})

		It("mesmo papel não gera log", func() {
			_, err := env.admin.UpdateUserRole(env.ctx, principalOf(admin), player.ID, "USER")
			Expect(err).NotTo(HaveOccurred())

			logs, err := env.admin.GetActivityLogs(env.ctx, principalOf(admin), PageQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.Data).To(BeEmpty())
		})

		It("valida papel e existência do alvo", func() {
			_, err := env.admin.UpdateUserRole(env.ctx, principalOf(admin), player.ID, "GOD")
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindValidation))

			_, err = env.admin.UpdateUserRole(env.ctx, principalOf(admin), "missing-id", "PREMIUM")
			Expect(err).To(MatchError(domainerrors.ErrUserNotFound))
		})
	})

	Describe("DeleteUser", func() {
		It("remove logicamente e registra a ação", func() {
			player := env.seedUser("player@x.com", entities.RoleUser)

			Expect(env.admin.DeleteUser(env.ctx, principalOf(admin), player.ID)).To(Succeed())

			found, err := env.userRepo.FindByID(env.ctx, player.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())

			var count int64
			Expect(env.db.Table("users").Where("id = ?", player.ID).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))

			logs, err := env.admin.GetActivityLogs(env.ctx, principalOf(admin), PageQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.Data).To(HaveLen(1))
			Expect(logs.Data[0].Action).To(Equal(entities.ActivityUserDeleted))
		})

		It("não remove a própria conta", func() {
			err := env.admin.DeleteUser(env.ctx, principalOf(admin), admin.ID)
			Expect(err).To(MatchError(domainerrors.ErrCannotDeleteSelf))
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindForbidden))
		})

		It("admin comum não remove outro admin", func() {
			err := env.admin.DeleteUser(env.ctx, principalOf(admin), superAdmin.ID)
			Expect(err).To(MatchError(domainerrors.ErrForbidden))
		})

		It("retorna NotFound para usuário já removido", func() {
			player := env.seedUser("player@x.com", entities.RoleUser)
			Expect(env.admin.DeleteUser(env.ctx, principalOf(admin), player.ID)).To(Succeed())

			err := env.admin.DeleteUser(env.ctx, principalOf(admin), player.ID)
			Expect(err).To(MatchError(domainerrors.ErrUserNotFound))
		})
	})

	Describe("GetActivityLogs", func() {
		It("pagina os logs mais recentes primeiro", func() {
			for i := 0; i < 3; i++ {
				player := env.seedUser(fmt.Sprintf("p%d@x.com", i), entities.RoleUser)
				Expect(env.admin.DeleteUser(env.ctx, principalOf(admin), player.ID)).To(Succeed())
			}

			page, err := env.admin.GetActivityLogs(env.ctx, principalOf(admin), PageQuery{Page: 1, Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(2))
			Expect(page.Metadata).To(Equal(repositories.PageMetadata{Total: 3, Page: 1, Limit: 2, TotalPages: 2}))
			Expect(page.Data[0].Details).To(ContainSubstring("p2@x.com"))
		})
	})

	Describe("BootstrapSuperAdmin", func() {
		It("cria super admin verificado e não duplica", func() {
			user, created, err := env.admin.BootstrapSuperAdmin(env.ctx, "Boot@x.com", "bootstrap-pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(user.Role).To(Equal(entities.RoleSuperAdmin))
			Expect(user.IsEmailVerified).To(BeTrue())

			result, err := env.auth.Login(env.ctx, LoginInput{Email: "boot@x.com", Password: "bootstrap-pass"}, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.User.ID).To(Equal(user.ID))

			again, created, err := env.admin.BootstrapSuperAdmin(env.ctx, "boot@x.com", "bootstrap-pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(again.ID).To(Equal(user.ID))
		})

		It("valida email e senha", func() {
			_, _, err := env.admin.BootstrapSuperAdmin(env.ctx, "nope", "bootstrap-pass")
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindValidation))

			_, _, err = env.admin.BootstrapSuperAdmin(env.ctx, "boot@x.com", "short")
			Expect(domainerrors.KindOf(err)).To(Equal(domainerrors.KindValidation))
		})
	})
})
