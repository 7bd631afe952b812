package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a CashSession.
// The transition OPEN → CLOSED happens exactly once and is irreversible.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// MovementType classifies a manual, non-sale cash adjustment.
type MovementType string

const (
	MovementCashIn  MovementType = "cash_in"
	MovementCashOut MovementType = "cash_out"
	MovementPayIn   MovementType = "pay_in"
	MovementPayOut  MovementType = "pay_out"
)

// Valid reports whether t is one of the four recognized movement types.
func (t MovementType) Valid() bool {
	switch t {
	case MovementCashIn, MovementCashOut, MovementPayIn, MovementPayOut:
		return true
	}
	return false
}

// Inbound reports whether the movement adds cash to the drawer.
// cash_in and pay_in increase the cash pool; cash_out and pay_out drain it.
func (t MovementType) Inbound() bool {
	return t == MovementCashIn || t == MovementPayIn
}

// Payment methods the engine aggregates by. The method field itself is an
// open string (the surrounding system may configure others); only cash and
// card are routed into their own running buckets.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// CashSession is one open-to-close operating cycle of a register.
//
// Every monetary aggregate on the row is maintained exclusively by the
// movement recorder inside the same transaction that appends the underlying
// event — aggregates are never edited directly, and once Status is CLOSED
// the row is frozen.
type CashSession struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterID uuid.UUID     `gorm:"type:uuid;not null;index"`
	BusinessID uuid.UUID     `gorm:"type:uuid;not null;index"`
	OpenedByID uuid.UUID     `gorm:"type:uuid;not null"`
	ClosedByID *uuid.UUID    `gorm:"type:uuid"`
	Status     SessionStatus `gorm:"type:varchar(10);not null;default:'OPEN'"`

	// OpeningFloat is the operator-declared starting cash.
	OpeningFloat decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ClosingFloat is the float the operator declares they leave in the drawer
	// at close. Informational — it never enters the reconciliation arithmetic.
	ClosingFloat *decimal.Decimal `gorm:"type:decimal(12,2)"`

	// Reconciliation figures, nil until close.
	// ExpectedCash = OpeningFloat + TotalCashPayments + TotalCashIn + TotalPayIn
	//              − TotalCashOut − TotalPayOut
	// (TotalCashPayments is already net of cash refunds.)
	ExpectedCash   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ActualCash     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CashDifference *decimal.Decimal `gorm:"type:decimal(12,2)"`

	// Running sale aggregates. TotalSales and the per-method buckets are net
	// of refunds; TotalRefunds accumulates the refunded amounts.
	TotalSales        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalRefunds      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCashPayments decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCardPayments decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Running movement sums, one per movement type, so close never re-derives
	// from movement rows.
	TotalCashIn  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCashOut decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPayIn   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPayOut  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	TransactionCount int `gorm:"not null;default:0"`

	OpenedAt time.Time
	ClosedAt *time.Time
	Notes    *string

	Movements []CashMovement `gorm:"foreignKey:SessionID"`
}

// CashMovement is an immutable ledger entry for a manual cash adjustment.
// Amount is strictly positive; the direction lives in Type. Movements are
// NEVER updated or deleted — corrections are offsetting movements.
type CashMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BusinessID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type        MovementType    `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason      string          `gorm:"not null"`
	PerformedBy uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}
