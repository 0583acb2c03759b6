package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const createSlotsTable = `
	CREATE TABLE IF NOT EXISTS storefront_slots (
		slot_key   VARCHAR(191) NOT NULL PRIMARY KEY,
		slot_value LONGTEXT     NOT NULL,
		updated_at DATETIME     NOT NULL
	)`

// MySQLSlot keeps slots in the storefront_slots table.
type MySQLSlot struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLSlot(db *sql.DB) *MySQLSlot {
	return &MySQLSlot{db: db, now: time.Now}
}

// EnsureSchema creates the table when missing.
func (m *MySQLSlot) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, createSlotsTable)
	return err
}

func (m *MySQLSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := m.db.QueryRowContext(ctx, "SELECT slot_value FROM storefront_slots WHERE slot_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (m *MySQLSlot) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO storefront_slots (slot_key, slot_value, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			slot_value = VALUES(slot_value),
			updated_at = VALUES(updated_at)`,
		key, value, m.now())
	return err
}

func (m *MySQLSlot) Remove(ctx context.Context, key string) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM storefront_slots WHERE slot_key = ?", key)
	return err
}
