package feedback

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// lockAttraction takes the attraction's row lock for the duration of the
// transaction, serializing concurrent feedback writes against the same
// attraction so the AVG read and the average_rating write cannot
// interleave. It doubles as the existence check.
func lockAttraction(ctx context.Context, tx pgx.Tx, attractionID string) error {
	var id string
	return tx.QueryRow(ctx, `
		SELECT id FROM attractions WHERE id=$1 FOR UPDATE
	`, attractionID).Scan(&id)
}

// recomputeAverageRating re-derives average_rating from the live feedback
// set inside the caller's transaction. COALESCE pins the empty set to 0.0
// so deleting the last feedback row resets the value instead of leaving
// it stale.
func recomputeAverageRating(ctx context.Context, tx pgx.Tx, attractionID string) error {
	var avg float64
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0) FROM feedback WHERE attraction_id=$1
	`, attractionID).Scan(&avg); err != nil {
		return err
	}

	_, err := tx.Exec(ctx, `
		UPDATE attractions SET average_rating=$2, updated_at=now() WHERE id=$1
	`, attractionID, avg)
	return err
}
