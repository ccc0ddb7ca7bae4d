package postgres

import (
	"context"
	"time"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository interface {
	Insert(ctx context.Context, bookingID, senderID, receiverID uuid.UUID, content string) (*domain.Message, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID, limit int) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

const messageCols = `id, booking_id, sender_id, receiver_id, content, created_at`

func (r *messageRepository) Insert(ctx context.Context, bookingID, senderID, receiverID uuid.UUID, content string) (*domain.Message, error) {
	const q = `INSERT INTO messages (booking_id, sender_id, receiver_id, content)
	VALUES ($1,$2,$3,$4)
	RETURNING ` + messageCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.Message
	err := r.pool.QueryRow(ctx, q, bookingID, senderID, receiverID, content).Scan(
		&m.ID, &m.BookingID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	const q = `SELECT ` + messageCols + ` FROM messages
	WHERE booking_id=$1 ORDER BY created_at ASC LIMIT $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, bookingID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID, &m.BookingID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
