package queue

import (
	"encoding/json"
	"fmt"
)

// EmailEventType identifica qual email de conta deve ser enviado
type EmailEventType string

const (
	EmailEventVerification  EmailEventType = "EMAIL_VERIFICATION"
	EmailEventPasswordReset EmailEventType = "PASSWORD_RESET"
)

// EmailEvent é o payload publicado no tópico de emails
type EmailEvent struct {
	Type       EmailEventType `json:"type"`
	Email      string         `json:"email"`
	Token      string         `json:"token"`
	OccurredAt int64          `json:"occurred_at"`
}

func decodeEmailEvent(value []byte) (*EmailEvent, error) {
	var event EmailEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, fmt.Errorf("invalid email event: %w", err)
	}
	if event.Email == "" || event.Token == "" {
		return nil, fmt.Errorf("invalid email event: missing email or token")
	}
	return &event, nil
}
