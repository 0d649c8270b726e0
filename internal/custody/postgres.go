/*

This file contains the Postgres-backed holding-account ledger. Each
transfer is a single database transaction debiting the source row and
crediting the destination row, so the all-or-nothing contract of the
transfer port holds even across process crashes.

*/

package custody

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/optionsvault/ovm/internal/logger"
	"github.com/optionsvault/ovm/internal/types"
)

var custodyLogger = logger.GetForComponent("custody")

// PostgresLedger is the live AssetTransferPort over a holding_accounts table.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger wraps an open database handle.
func NewPostgresLedger(db *sql.DB) (*PostgresLedger, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	return &PostgresLedger{db: db}, nil
}

// EnsureSchema applies the holding_accounts DDL. Safe to run repeatedly.
func (l *PostgresLedger) EnsureSchema() error {
	schemaSQL := `
		CREATE TABLE IF NOT EXISTS holding_accounts (
			account TEXT PRIMARY KEY,
			balance NUMERIC(20, 0) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT non_negative_balance CHECK (balance >= 0)
		);
	`
	if _, err := l.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure holding_accounts schema: %w", err)
	}
	custodyLogger.Debug().Msg("Holding accounts schema ensured")
	return nil
}

// Transfer atomically debits from and credits to. Amounts are passed as
// decimal strings because uint64 exceeds the driver's signed integer range.
func (l *PostgresLedger) Transfer(ctx context.Context, from, to types.AccountRef, _ types.Identity, amount uint64) error {
	amountStr := strconv.FormatUint(amount, 10)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transfer transaction: %w", err)
	}
	defer tx.Rollback()

	debit := `
		UPDATE holding_accounts
		SET balance = balance - $2, updated_at = CURRENT_TIMESTAMP
		WHERE account = $1 AND balance >= $2;`
	result, err := tx.ExecContext(ctx, debit, string(from), amountStr)
	if err != nil {
		return fmt.Errorf("failed to debit account %s: %w", from, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check debit result: %w", err)
	}
	if affected == 0 {
		return ErrInsufficientAccountBalance
	}

	credit := `
		INSERT INTO holding_accounts (account, balance)
		VALUES ($1, $2)
		ON CONFLICT (account) DO UPDATE
		SET balance = holding_accounts.balance + EXCLUDED.balance, updated_at = CURRENT_TIMESTAMP;`
	if _, err := tx.ExecContext(ctx, credit, string(to), amountStr); err != nil {
		return fmt.Errorf("failed to credit account %s: %w", to, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}

	custodyLogger.Debug().
		Str("from", string(from)).
		Str("to", string(to)).
		Uint64("amount", amount).
		Msg("Transfer settled")
	return nil
}

// Credit funds an account outside transfer semantics, for operator top-ups.
func (l *PostgresLedger) Credit(ctx context.Context, account types.AccountRef, amount uint64) error {
	stmt := `
		INSERT INTO holding_accounts (account, balance)
		VALUES ($1, $2)
		ON CONFLICT (account) DO UPDATE
		SET balance = holding_accounts.balance + EXCLUDED.balance, updated_at = CURRENT_TIMESTAMP;`
	if _, err := l.db.ExecContext(ctx, stmt, string(account), strconv.FormatUint(amount, 10)); err != nil {
		return fmt.Errorf("failed to credit account %s: %w", account, err)
	}
	return nil
}

// Balance returns the current balance of a holding account.
func (l *PostgresLedger) Balance(ctx context.Context, account types.AccountRef) (uint64, error) {
	var balanceStr string
	err := l.db.QueryRowContext(ctx,
		`SELECT balance FROM holding_accounts WHERE account = $1;`, string(account)).Scan(&balanceStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query balance for %s: %w", account, err)
	}
	balance, err := strconv.ParseUint(balanceStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse balance for %s: %w", account, err)
	}
	return balance, nil
}
