package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID          int64      `json:"id"`
	ActorUserID *uuid.UUID `json:"actor_user_id,omitempty"`
	Action      string     `json:"action"`
	EntityType  string     `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

type AuditFilter struct {
	EntityType string
	Action     string
	Limit      int
	Offset     int
}

const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
	AuditActionRead   = "READ"
)

const (
	EntityUser         = "User"
	EntityEvent        = "Event"
	EntityRegistration = "Registration"
	EntityCertificate  = "Certificate"
)

func ValidAuditAction(action string) bool {
	switch action {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete, AuditActionRead:
		return true
	}
	return false
}
