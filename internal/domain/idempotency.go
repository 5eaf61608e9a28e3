package domain

import "time"

// Idempotency represents a recorded result of a previously processed request,
// keyed by (identity, scope, key). It enables safe retries of public POST
// endpoints (e.g. the contact form) by returning the originally created
// resource without re-executing side effects.
//
// Identity is the caller identity the request arrived with, Scope names the
// operation ("contact"), and ResourceID is the ID of the created record.
type Idempotency struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Identity   string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_identity_scope_key,priority:1"`
	Scope      string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_identity_scope_key,priority:2"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_identity_scope_key,priority:3"`
	ResourceID string    `gorm:"type:TEXT NOT NULL"`
	Status     int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
