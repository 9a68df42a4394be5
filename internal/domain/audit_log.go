package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate       AuditAction = "create"
	AuditUpdate       AuditAction = "update"
	AuditDelete       AuditAction = "delete"
	AuditStatusChange AuditAction = "status_change"
	AuditLogin        AuditAction = "login"
	AuditLogout       AuditAction = "logout"
)

// AuditLog is append-only. UserID is nullable so entries survive user
// deletion. Nothing in the codebase updates or deletes these rows.
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	ActionType AuditAction     `json:"action_type" db:"action_type"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty" db:"entity_id"`
	Details    string          `json:"details" db:"details"`
	OldValue   json.RawMessage `json:"old_value,omitempty" db:"old_value"`
	NewValue   json.RawMessage `json:"new_value,omitempty" db:"new_value"`
	IPAddress  *string         `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string         `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type AuditLogFilter struct {
	UserID     *uuid.UUID
	ActionType *AuditAction
	EntityType *string
	From       *time.Time
	To         *time.Time
}

// RequestMeta carries caller context captured by middleware into audit rows.
type RequestMeta struct {
	IPAddress *string
	UserAgent *string
}
