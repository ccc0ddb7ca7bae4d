package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type EarningsRepository interface {
	TotalShare(ctx context.Context, consultantID uuid.UUID) (decimal.Decimal, error)
	WalletBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	SettleCompletion(ctx context.Context, bookingID, consultantID, ownerUserID uuid.UUID, share decimal.Decimal) (bool, error)
	Withdraw(ctx context.Context, consultantID, ownerUserID uuid.UUID, currency string, send func(amount decimal.Decimal) (string, error)) (string, decimal.Decimal, error)
}

type earningsRepository struct {
	pool *pgxpool.Pool
}

func NewEarningsRepository(pool *pgxpool.Pool) EarningsRepository {
	return &earningsRepository{pool: pool}
}

func (r *earningsRepository) TotalShare(ctx context.Context, consultantID uuid.UUID) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(SUM(consultant_share), 0) FROM consultant_earnings WHERE consultant_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, q, consultantID).Scan(&total)
	return total, err
}

func (r *earningsRepository) WalletBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(
		(SELECT balance FROM wallets WHERE user_id=$1), 0)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, q, userID).Scan(&balance)
	return balance, err
}

// SettleCompletion flips the booking to completed and records the
// consultant's share in one transaction. The status update doubles as
// the terminal guard: zero rows means the booking was already terminal
// and nothing is recorded. A false return with nil error reports that
// case; any error rolls the whole settlement back, leaving the booking
// non-terminal so the caller can retry.
func (r *earningsRepository) SettleCompletion(ctx context.Context, bookingID, consultantID, ownerUserID uuid.UUID, share decimal.Decimal) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE bookings SET status='completed' WHERE id=$1 AND status NOT IN ('completed','cancelled')`,
		bookingID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO consultant_earnings (consultant_id, booking_id, consultant_share) VALUES ($1,$2,$3)`,
		consultantID, bookingID, share); err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO wallets (user_id, balance) VALUES ($1,$2)
		ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = now()`,
		ownerUserID, share); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// Withdraw marks every unwithdrawn share as paid, sends the summed
// amount through the provider while those rows stay locked, then
// records the payout and debits the wallet, all in one transaction.
// A provider failure rolls the marks back, so the shares stay
// withdrawable; the row locks also serialize concurrent payout
// requests for the same consultant. A zero amount with nil error means
// there was nothing to withdraw.
func (r *earningsRepository) Withdraw(ctx context.Context, consultantID, ownerUserID uuid.UUID, currency string, send func(amount decimal.Decimal) (string, error)) (string, decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx,
		`UPDATE consultant_earnings SET withdrawn_at = now()
		WHERE consultant_id=$1 AND withdrawn_at IS NULL
		RETURNING consultant_share`, consultantID)
	if err != nil {
		return "", decimal.Zero, err
	}

	total := decimal.Zero
	for rows.Next() {
		var share decimal.Decimal
		if err := rows.Scan(&share); err != nil {
			rows.Close()
			return "", decimal.Zero, err
		}
		total = total.Add(share)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", decimal.Zero, err
	}
	if !total.IsPositive() {
		return "", decimal.Zero, nil
	}

	payoutID, err := send(total)
	if err != nil {
		return "", decimal.Zero, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO payouts (consultant_id, provider_payout_id, amount, currency) VALUES ($1,$2,$3,$4)`,
		consultantID, payoutID, total, currency); err != nil {
		return "", decimal.Zero, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE wallets SET balance = wallets.balance - $2, updated_at = now() WHERE user_id=$1`,
		ownerUserID, total); err != nil {
		return "", decimal.Zero, err
	}

	return payoutID, total, tx.Commit(ctx)
}
