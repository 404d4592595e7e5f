package services

// Message IDs de sucesso; o texto final vem do i18n
const (
	MessageCheckEmail        = "auth.register.check_email"
	MessageRegistered        = "auth.register.success"
	MessageEmailVerified     = "auth.verify_email.success"
	MessageSocialLogin       = "auth.social_login.success"
	MessagePasswordResetSent = "auth.password_reset.sent"
	MessagePasswordReset     = "auth.password_reset.success"
	MessageLoggedIn          = "auth.login.success"
	MessageProfileUpdated    = "user.profile.updated"
	MessageRoleUpdated       = "admin.user.role_updated"
	MessageUserDeleted       = "admin.user.deleted"
)
