package postgres

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// UserModel é o model GORM para usuários.
// Timestamps em milissegundos Unix; unicidade vale apenas para registros não deletados.
type UserModel struct {
	ID                string  `gorm:"type:varchar(36);primaryKey"`
	Email             string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email_active,where:deleted_at IS NULL"`
	FirstName         string  `gorm:"type:varchar(100);not null"`
	LastName          string  `gorm:"type:varchar(100);not null"`
	PasswordHash      *string `gorm:"type:varchar(255)"`
	AuthProvider      string  `gorm:"type:varchar(20);not null"`
	GoogleID          *string `gorm:"type:varchar(255);uniqueIndex:idx_users_google_id_active,where:deleted_at IS NULL"`
	FacebookID        *string `gorm:"type:varchar(255);uniqueIndex:idx_users_facebook_id_active,where:deleted_at IS NULL"`
	IsEmailVerified   bool    `gorm:"not null;default:false"`
	VerificationToken *string `gorm:"type:varchar(64);index"`
	ResetToken        *string `gorm:"type:varchar(64);index"`
	ResetTokenExpires *int64
	Role              string `gorm:"type:varchar(50);not null;index"`
	CreatedAt         int64  `gorm:"autoCreateTime:milli;index"`
	UpdatedAt         int64  `gorm:"autoUpdateTime:milli"`
	DeletedAt         *int64 `gorm:"index"` // Soft delete
	Version           int64  `gorm:"not null;default:1"`
}

func (UserModel) TableName() string {
	return "users"
}

// NotificationModel é o model GORM para notificações
type NotificationModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	Message   string `gorm:"type:text;not null"`
	Type      string `gorm:"type:varchar(30);not null;index"`
	CreatedAt int64  `gorm:"autoCreateTime:milli;index"`
	DeletedAt *int64 `gorm:"index"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// UserNotificationModel vincula notificações aos usuários que as compartilham
type UserNotificationModel struct {
	UserID         string `gorm:"type:varchar(36);primaryKey"`
	NotificationID string `gorm:"type:varchar(36);primaryKey;index"`
}

func (UserNotificationModel) TableName() string {
	return "user_notifications"
}

// ActivityLogModel é o model GORM para ações administrativas
type ActivityLogModel struct {
	ID           string     `gorm:"type:varchar(36);primaryKey"`
	AdminID      string     `gorm:"type:varchar(36);not null;index"`
	Admin        *UserModel `gorm:"foreignKey:AdminID"`
	Action       string     `gorm:"type:varchar(50);not null;index"`
	TargetUserID string     `gorm:"type:varchar(36);index"`
	Details      string     `gorm:"type:text"`
	CreatedAt    int64      `gorm:"autoCreateTime:milli;index"`
	DeletedAt    *int64     `gorm:"index"`
}

func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// Migrate cria ou atualiza o schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&UserModel{},
		&NotificationModel{},
		&UserNotificationModel{},
		&ActivityLogModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Conversores de tempo

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0 // deixa autoCreateTime/autoUpdateTime preencherem
	}
	return t.UnixMilli()
}

func toMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func fromMillisPtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := fromMillis(*ms)
	return &t
}
