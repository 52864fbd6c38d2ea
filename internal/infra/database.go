package infra

import (
	"fmt"

	"anypos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes, sequences).
//
// TranslateError is on so that unique-constraint violations surface as
// gorm.ErrDuplicatedKey — the service layer relies on this for its
// get-or-create retry.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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

// RunMigrations creates/updates the schema. Also used by the integration
// test suite against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Sale{},
		&model.SaleItem{},
		&model.DayEnd{},
		&model.DayEndSale{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle on its
// own. Each statement is safe to re-run on an already-patched database.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open day-end per cashier per calendar day. The partial
		// unique index turns the service's check-then-act open into a safe
		// insert-or-lose-the-race.
		{"one open day-end per cashier per day",
			`CREATE UNIQUE INDEX IF NOT EXISTS uni_day_ends_open_cashier_day
			     ON day_ends (cashier_id, (date(opened_at)))
			     WHERE is_closed = false`},
		// Atomic sale reference number generation.
		{"sales reference sequence",
			`CREATE SEQUENCE IF NOT EXISTS sales_reference_seq`},
		// Frequent query path: open/closed day-ends by cashier over time.
		{"day-end cashier/opened index",
			`CREATE INDEX IF NOT EXISTS idx_day_ends_cashier_opened
			     ON day_ends (cashier_id, opened_at DESC)`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
