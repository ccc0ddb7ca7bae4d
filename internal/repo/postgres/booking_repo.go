package postgres

import (
	"context"
	"time"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, clientID uuid.UUID, req *domain.BookingCreateReq, ratePerMinute, totalAmount string) (*domain.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]domain.Booking, error)
	ListByConsultant(ctx context.Context, consultantID uuid.UUID, limit, offset int) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (bool, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, client_id, consultant_id, consultation_type,
scheduled_at, duration_minutes, rate_per_minute, total_amount,
status, notes, created_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.ClientID, &b.ConsultantID, &b.ConsultationType,
		&b.ScheduledAt, &b.DurationMinutes, &b.RatePerMinute, &b.TotalAmount,
		&b.Status, &b.Notes, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persists a booking with the already-derived, frozen pricing
// fields. Rates are passed as strings so the exact quoted amounts reach
// the numeric columns untouched.
func (r *bookingRepository) Create(ctx context.Context, clientID uuid.UUID, req *domain.BookingCreateReq, ratePerMinute, totalAmount string) (*domain.Booking, error) {
	const q = `INSERT INTO bookings (
		client_id, consultant_id, consultation_type,
		scheduled_at, duration_minutes, rate_per_minute, total_amount,
		status, notes
	) VALUES ($1,$2,$3,$4,$5,$6,$7,'pending',$8)
	RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q,
		clientID, req.ConsultantID, req.ConsultationType,
		req.ScheduledAt, req.DurationMinutes, ratePerMinute, totalAmount,
		req.Notes,
	))
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *bookingRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
	WHERE client_id=$1 ORDER BY scheduled_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, q, clientID, limit, offset)
}

func (r *bookingRepository) ListByConsultant(ctx context.Context, consultantID uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
	WHERE consultant_id=$1 ORDER BY scheduled_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, q, consultantID, limit, offset)
}

func (r *bookingRepository) list(ctx context.Context, q string, id uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.ClientID, &b.ConsultantID, &b.ConsultationType,
			&b.ScheduledAt, &b.DurationMinutes, &b.RatePerMinute, &b.TotalAmount,
			&b.Status, &b.Notes, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateStatus advances a booking's status. Terminal rows are never
// updated; the guard lives in the query so concurrent writers cannot
// resurrect a completed or cancelled booking.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (bool, error) {
	const q = `UPDATE bookings SET status=$2
	WHERE id=$1 AND status NOT IN ('completed','cancelled')`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
