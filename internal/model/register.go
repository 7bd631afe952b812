package model

import (
	"time"

	"github.com/google/uuid"
)

// Register is a physical or logical point-of-sale cash drawer owned by a
// business. Registers are never deleted: deactivation retires the drawer
// while keeping every session that ever referenced it.
type Register struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"not null"`
	// LocationID points at a location managed by the external register/location
	// collaborator; this engine only stores the reference.
	LocationID *uuid.UUID `gorm:"type:uuid"`
	Active     bool       `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
