package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// BlockRepository tracks block relations between users.
type BlockRepository interface {
	Block(ctx context.Context, blockerID, blockedID int) error
	Unblock(ctx context.Context, blockerID, blockedID int) error
	IsBlockedEither(ctx context.Context, userID, otherID int) (bool, error)
}

// BlockRepo is a sqlx-backed repository.
type BlockRepo struct {
	db *sqlx.DB
}

// NewBlockRepo constructs BlockRepo.
func NewBlockRepo(db *sqlx.DB) *BlockRepo {
	return &BlockRepo{db: db}
}

// Block records that blockerID blocked blockedID. Idempotent.
func (r *BlockRepo) Block(ctx context.Context, blockerID, blockedID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blocked_users (blocker_id, blocked_id) VALUES ($1, $2)
         ON CONFLICT (blocker_id, blocked_id) DO NOTHING`, blockerID, blockedID)
	return err
}

// Unblock removes the relation if present.
func (r *BlockRepo) Unblock(ctx context.Context, blockerID, blockedID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM blocked_users WHERE blocker_id=$1 AND blocked_id=$2`, blockerID, blockedID)
	return err
}

// IsBlockedEither reports whether a block exists in either direction. Any
// relation between the pair forbids direct messaging both ways.
func (r *BlockRepo) IsBlockedEither(ctx context.Context, userID, otherID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(
            SELECT 1 FROM blocked_users
            WHERE (blocker_id=$1 AND blocked_id=$2) OR (blocker_id=$2 AND blocked_id=$1)
        )`, userID, otherID)
	return exists, err
}
