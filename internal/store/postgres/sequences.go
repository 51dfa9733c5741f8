package postgres

import (
	"context"
	"fmt"

	"scholarshipserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The counter upsert is a single statement so concurrent issuers can
// never read the same value; Postgres serializes the row update. The
// counter row is created lazily, so the first id for an entity is 1.
const nextSequenceSQL = `
	INSERT INTO entity_counters (entity, count)
	VALUES ($1, 1)
	ON CONFLICT (entity) DO UPDATE
	SET count = entity_counters.count + 1
	RETURNING count
`

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func nextSequence(ctx context.Context, q rowQuerier, entity domain.EntityType) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, nextSequenceSQL, string(entity)).Scan(&n); err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", entity, err)
	}
	return n, nil
}

// SequenceStore issues sequential ids outside of an entity-creating
// transaction. Entity creation paths call nextSequence on their own tx
// instead, so the id assignment and the insert commit together.
type SequenceStore struct {
	q rowQuerier
}

func NewSequenceStore(pool *pgxpool.Pool) *SequenceStore {
	return &SequenceStore{q: pool}
}

func (s *SequenceStore) Next(ctx context.Context, entity domain.EntityType) (int64, error) {
	return nextSequence(ctx, s.q, entity)
}
