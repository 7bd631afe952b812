package infra

import (
	"fmt"

	"github.com/BrightonDube/BizPilot2-sub004/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes, CHECK constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the model schema plus the patches. Also used by the
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Register{},
		&model.CashSession{},
		&model.CashMovement{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Each statement is guarded by an existence check so re-running on an
// already-patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// gen_random_uuid() lives in pgcrypto on PostgreSQL < 13.
		{"pgcrypto extension",
			`CREATE EXTENSION IF NOT EXISTS pgcrypto`},

		// The structural backstop for register exclusivity: at most one OPEN
		// session per register, enforced by the database no matter what the
		// application layer does.
		{"partial unique index on open sessions", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_cash_sessions_open_register') THEN
    CREATE UNIQUE INDEX uq_cash_sessions_open_register
        ON cash_sessions (register_id)
        WHERE status = 'OPEN';
  END IF;
END $$`},

		// Movements carry direction in type, so amount must be strictly
		// positive at the storage layer too.
		{"positive amount check on movements", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_cash_movements_amount_positive') THEN
    ALTER TABLE cash_movements
      ADD CONSTRAINT chk_cash_movements_amount_positive CHECK (amount > 0);
  END IF;
END $$`},

		// Ledger listing always reads one session's movements in insert order.
		{"movement listing index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_movements_session_created') THEN
    CREATE INDEX idx_cash_movements_session_created
        ON cash_movements (session_id, created_at);
  END IF;
END $$`},

		// History and report queries filter closed sessions by business+date.
		{"closed session report index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_sessions_business_closed') THEN
    CREATE INDEX idx_cash_sessions_business_closed
        ON cash_sessions (business_id, closed_at)
        WHERE status = 'CLOSED';
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
