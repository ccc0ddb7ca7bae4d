package postgres

import (
	"context"
	"time"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type RateCardRepository interface {
	Create(ctx context.Context, userID uuid.UUID, fullName, title string) (*domain.RateCard, error)
	GetByConsultantID(ctx context.Context, consultantID uuid.UUID) (*domain.RateCard, error)
	GetByOwnerUserID(ctx context.Context, userID uuid.UUID) (*domain.RateCard, error)
	List(ctx context.Context, limit, offset int) ([]domain.RateCard, error)
	UpdateRates(ctx context.Context, ownerUserID uuid.UUID, text, voice, video decimal.Decimal) error
}

type rateCardRepository struct {
	pool *pgxpool.Pool
}

func NewRateCardRepository(pool *pgxpool.Pool) RateCardRepository {
	return &rateCardRepository{pool: pool}
}

const rateCardCols = `id, user_id, full_name, title, text_rate, voice_rate, video_rate`

func (r *rateCardRepository) Create(ctx context.Context, userID uuid.UUID, fullName, title string) (*domain.RateCard, error) {
	const q = `INSERT INTO consultant_profiles (user_id, full_name, title)
	VALUES ($1,$2,$3)
	RETURNING ` + rateCardCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.RateCard
	err := r.pool.QueryRow(ctx, q, userID, fullName, title).Scan(
		&c.ConsultantID, &c.OwnerUserID, &c.FullName, &c.Title,
		&c.TextRate, &c.VoiceRate, &c.VideoRate,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *rateCardRepository) GetByConsultantID(ctx context.Context, consultantID uuid.UUID) (*domain.RateCard, error) {
	const q = `SELECT ` + rateCardCols + ` FROM consultant_profiles WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.RateCard
	err := r.pool.QueryRow(ctx, q, consultantID).Scan(
		&c.ConsultantID, &c.OwnerUserID, &c.FullName, &c.Title,
		&c.TextRate, &c.VoiceRate, &c.VideoRate,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &c, err
}

func (r *rateCardRepository) GetByOwnerUserID(ctx context.Context, userID uuid.UUID) (*domain.RateCard, error) {
	const q = `SELECT ` + rateCardCols + ` FROM consultant_profiles WHERE user_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.RateCard
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&c.ConsultantID, &c.OwnerUserID, &c.FullName, &c.Title,
		&c.TextRate, &c.VoiceRate, &c.VideoRate,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &c, err
}

func (r *rateCardRepository) List(ctx context.Context, limit, offset int) ([]domain.RateCard, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + rateCardCols + ` FROM consultant_profiles ORDER BY full_name LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []domain.RateCard
	for rows.Next() {
		var c domain.RateCard
		if err := rows.Scan(
			&c.ConsultantID, &c.OwnerUserID, &c.FullName, &c.Title,
			&c.TextRate, &c.VoiceRate, &c.VideoRate,
		); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *rateCardRepository) UpdateRates(ctx context.Context, ownerUserID uuid.UUID, text, voice, video decimal.Decimal) error {
	const q = `UPDATE consultant_profiles SET text_rate=$2, voice_rate=$3, video_rate=$4 WHERE user_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, ownerUserID, text, voice, video)
	return err
}
