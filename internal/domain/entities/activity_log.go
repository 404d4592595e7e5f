package entities

import "time"

// ActivityAction identifica a ação administrativa registrada
type ActivityAction string

const (
	ActivityUserRoleUpdated ActivityAction = "USER_ROLE_UPDATED"
	ActivityUserDeleted     ActivityAction = "USER_DELETED"
)

// ActivityLog registra uma ação executada por um administrador
type ActivityLog struct {
	ID           string
	AdminID      string
	Admin        *User // preenchido apenas na listagem
	Action       ActivityAction
	TargetUserID string
	Details      string
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// NewActivityLog cria um registro de atividade administrativa
func NewActivityLog(adminID string, action ActivityAction, targetUserID, details string, now time.Time) *ActivityLog {
	return &ActivityLog{
		AdminID:      adminID,
		Action:       action,
		TargetUserID: targetUserID,
		Details:      details,
		CreatedAt:    now,
	}
}
