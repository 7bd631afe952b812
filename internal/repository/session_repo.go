package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository persists cash sessions and their movement ledger.
//
// Mutating methods take the *gorm.DB handed to the Transaction callback so a
// whole open/close/record cycle commits or rolls back as one unit. There is
// deliberately no update or delete for movements: the ledger is append-only.
type SessionRepository interface {
	// Transaction runs fn in one database transaction with the configured
	// lock_timeout applied. Lock waits that expire and serialization
	// failures surface as model.ErrBusy after a clean rollback.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	// LockRegister serializes concurrent opens on one register. The advisory
	// lock is transaction-scoped and released automatically on commit/rollback.
	LockRegister(ctx context.Context, tx *gorm.DB, registerID uuid.UUID) error
	Create(ctx context.Context, tx *gorm.DB, s *model.CashSession) error
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.CashSession, error)
	FindOpenByRegister(ctx context.Context, tx *gorm.DB, registerID uuid.UUID) (*model.CashSession, error)
	// LockByID reads the session FOR UPDATE. Tenant check is the caller's job
	// because the row lock must be taken regardless of who asks.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error)
	Update(ctx context.Context, tx *gorm.DB, s *model.CashSession) error
	CreateMovement(ctx context.Context, tx *gorm.DB, m *model.CashMovement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)
	SumMovements(ctx context.Context, sessionID uuid.UUID) (map[model.MovementType]decimal.Decimal, error)
	List(ctx context.Context, businessID uuid.UUID, f dto.HistoryFilter) ([]model.CashSession, int64, error)
	ClosedSince(ctx context.Context, since time.Time) ([]model.CashSession, error)
	RegistersWithMultipleOpen(ctx context.Context) ([]uuid.UUID, error)
}

type sessionRepo struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewSessionRepository(db *gorm.DB, lockTimeout time.Duration) SessionRepository {
	return &sessionRepo{db: db, lockTimeout: lockTimeout}
}

// conn picks the transaction handle when one is in flight.
func (r *sessionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sessionRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			// SET does not take bind parameters; the value comes from config.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
	if err != nil && isContention(err) {
		return fmt.Errorf("%w: %v", model.ErrBusy, err)
	}
	return err
}

func (r *sessionRepo) LockRegister(ctx context.Context, tx *gorm.DB, registerID uuid.UUID) error {
	return tx.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", registerID.String()).Error
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, s *model.CashSession) error {
	if err := r.conn(tx).WithContext(ctx).Create(s).Error; err != nil {
		// The partial unique index on (register_id) WHERE status='OPEN' is the
		// structural backstop behind the advisory lock.
		if isUniqueViolation(err) {
			return model.ErrRegisterAlreadyOpen
		}
		return err
	}
	return nil
}

func (r *sessionRepo) FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).Preload("Movements").
		Where("business_id = ? AND id = ?", businessID, id).First(&s).Error
	return &s, err
}

func (r *sessionRepo) FindOpenByRegister(ctx context.Context, tx *gorm.DB, registerID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.conn(tx).WithContext(ctx).
		Where("register_id = ? AND status = ?", registerID, model.SessionOpen).First(&s).Error
	return &s, err
}

func (r *sessionRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.conn(tx).WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *sessionRepo) Update(ctx context.Context, tx *gorm.DB, s *model.CashSession) error {
	return r.conn(tx).WithContext(ctx).Save(s).Error
}

func (r *sessionRepo) CreateMovement(ctx context.Context, tx *gorm.DB, m *model.CashMovement) error {
	return r.conn(tx).WithContext(ctx).Create(m).Error
}

func (r *sessionRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).
		Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *sessionRepo) SumMovements(ctx context.Context, sessionID uuid.UUID) (map[model.MovementType]decimal.Decimal, error) {
	var rows []struct {
		Type  model.MovementType
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.CashMovement{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("session_id = ?", sessionID).
		Group("type").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[model.MovementType]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.Type] = row.Total
	}
	return sums, nil
}

func (r *sessionRepo) List(ctx context.Context, businessID uuid.UUID, f dto.HistoryFilter) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64
	offset := (f.Page - 1) * f.Limit

	q := r.db.WithContext(ctx).Model(&model.CashSession{}).
		Where("business_id = ? AND status = ?", businessID, model.SessionClosed)
	if f.RegisterID != "" {
		q = q.Where("register_id = ?", f.RegisterID)
	}
	if f.From != "" {
		q = q.Where("DATE(closed_at) >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("DATE(closed_at) <= ?", f.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("closed_at DESC").Offset(offset).Limit(f.Limit).Find(&sessions).Error
	return sessions, total, err
}

func (r *sessionRepo) ClosedSince(ctx context.Context, since time.Time) ([]model.CashSession, error) {
	var sessions []model.CashSession
	err := r.db.WithContext(ctx).
		Where("status = ? AND closed_at >= ?", model.SessionClosed, since).
		Order("closed_at ASC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) RegistersWithMultipleOpen(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.CashSession{}).
		Where("status = ?", model.SessionOpen).
		Group("register_id").
		Having("COUNT(*) > 1").
		Pluck("register_id", &ids).Error
	return ids, err
}
