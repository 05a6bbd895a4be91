package feedback

import (
	"context"
	"errors"

	"github.com/globalbuilder/tourismserver/internal/db"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) List(ctx context.Context, scope policy.Scope) ([]Feedback, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, attraction_id, rating, COALESCE(comment,''), created_at
		FROM feedback
		WHERE $1 OR user_id = $2
		ORDER BY created_at DESC
	`, scope.All, scope.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.AttractionID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, nil
}

// Get returns a single row, reporting not-found for rows outside the
// caller's scope so their existence does not leak.
func (s *Service) Get(ctx context.Context, scope policy.Scope, id string) (Feedback, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return Feedback{}, err
	}
	if !scope.InScope(f.UserID) {
		return Feedback{}, policy.ErrNotFound
	}
	return f, nil
}

// Create inserts the feedback row and recomputes the attraction's average
// rating in one transaction. The owner is always the caller; any user id
// in the request body is discarded.
func (s *Service) Create(ctx context.Context, caller policy.Caller, input Feedback) (Feedback, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return Feedback{}, ErrRatingOutOfRange
	}
	if input.AttractionID == "" {
		return Feedback{}, errors.New("attraction_id required")
	}

	input.ID = uuid.NewString()
	input.UserID = caller.ID

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Feedback{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockAttraction(ctx, tx, input.AttractionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Feedback{}, policy.ErrNotFound
		}
		return Feedback{}, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO feedback (id, user_id, attraction_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, input.ID, input.UserID, input.AttractionID, input.Rating, input.Comment)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Feedback{}, err
	}

	if err := recomputeAverageRating(ctx, tx, input.AttractionID); err != nil {
		return Feedback{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Feedback{}, err
	}
	return input, nil
}

func (s *Service) Update(ctx context.Context, caller policy.Caller, id string, patch Feedback) (Feedback, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return Feedback{}, err
	}
	if err := policy.CanWrite(caller, policy.ResourceFeedback, f.UserID); err != nil {
		return Feedback{}, err
	}

	if patch.Rating != 0 {
		if patch.Rating < 1 || patch.Rating > 5 {
			return Feedback{}, ErrRatingOutOfRange
		}
		f.Rating = patch.Rating
	}
	if patch.Comment != "" {
		f.Comment = patch.Comment
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Feedback{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockAttraction(ctx, tx, f.AttractionID); err != nil {
		return Feedback{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE feedback SET rating=$2, comment=$3 WHERE id=$1
	`, f.ID, f.Rating, f.Comment); err != nil {
		return Feedback{}, err
	}

	if err := recomputeAverageRating(ctx, tx, f.AttractionID); err != nil {
		return Feedback{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Feedback{}, err
	}
	return f, nil
}

func (s *Service) Delete(ctx context.Context, caller policy.Caller, id string) error {
	f, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanWrite(caller, policy.ResourceFeedback, f.UserID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockAttraction(ctx, tx, f.AttractionID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM feedback WHERE id=$1`, f.ID); err != nil {
		return err
	}

	if err := recomputeAverageRating(ctx, tx, f.AttractionID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Service) load(ctx context.Context, id string) (Feedback, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, attraction_id, rating, COALESCE(comment,''), created_at
		FROM feedback WHERE id=$1
	`, id)
	var f Feedback
	if err := row.Scan(&f.ID, &f.UserID, &f.AttractionID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Feedback{}, policy.ErrNotFound
		}
		return Feedback{}, err
	}
	return f, nil
}
