package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
)

// RoundRepositoryInterface defines operations for round history access
type RoundRepositoryInterface interface {
	Create(ctx context.Context, round *domain.Round) error
	Scoreboard(ctx context.Context) (*domain.Scoreboard, error)
}

type RoundRepository struct {
	pool PgxPool
}

func NewRoundRepository(pool PgxPool) *RoundRepository {
	return &RoundRepository{pool: pool}
}

func (r *RoundRepository) Create(ctx context.Context, round *domain.Round) error {
	query := `
		INSERT INTO rounds (id, predicted_key, guess_key, guess_display, confidence, matched, correct, verdict, backend, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING created_at
	`

	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		round.ID,
		round.PredictedKey,
		round.GuessKey,
		round.GuessDisplay,
		round.Confidence,
		round.Matched,
		round.Correct,
		round.Verdict,
		round.Backend,
		round.LatencyMs,
	).Scan(&round.CreatedAt)

	if err != nil {
		return fmt.Errorf("create round: %w", err)
	}

	return nil
}

func (r *RoundRepository) Scoreboard(ctx context.Context) (*domain.Scoreboard, error) {
	totals := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE matched),
			COUNT(*) FILTER (WHERE correct IS NOT NULL),
			COUNT(*) FILTER (WHERE correct)
		FROM rounds
	`

	board := &domain.Scoreboard{PerMember: []domain.MemberCount{}}
	err := r.pool.QueryRow(ctx, totals).Scan(
		&board.TotalRounds,
		&board.MatchedRounds,
		&board.GuessedRounds,
		&board.Agreements,
	)
	if err != nil {
		return nil, fmt.Errorf("scoreboard totals: %w", err)
	}

	perMember := `
		SELECT predicted_key, COUNT(*)
		FROM rounds
		WHERE matched
		GROUP BY predicted_key
		ORDER BY COUNT(*) DESC, predicted_key
	`

	rows, err := r.pool.Query(ctx, perMember)
	if err != nil {
		return nil, fmt.Errorf("scoreboard per member: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mc domain.MemberCount
		if err := rows.Scan(&mc.Key, &mc.Count); err != nil {
			return nil, fmt.Errorf("scan member count: %w", err)
		}
		board.PerMember = append(board.PerMember, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member counts: %w", err)
	}

	return board, nil
}
