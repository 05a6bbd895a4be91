package favorite

import (
	"context"
	"errors"
	"time"

	"github.com/globalbuilder/tourismserver/internal/db"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Favorite struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AttractionID string    `json:"attraction_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) List(ctx context.Context, scope policy.Scope) ([]Favorite, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, attraction_id, created_at
		FROM favorites
		WHERE $1 OR user_id = $2
		ORDER BY created_at DESC
	`, scope.All, scope.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.AttractionID, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, nil
}

// Create bookmarks an attraction for the caller. The owner is always the
// caller regardless of the request body.
func (s *Service) Create(ctx context.Context, caller policy.Caller, input Favorite) (Favorite, error) {
	if input.AttractionID == "" {
		return Favorite{}, errors.New("attraction_id required")
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM attractions WHERE id=$1)
	`, input.AttractionID).Scan(&exists); err != nil {
		return Favorite{}, err
	}
	if !exists {
		return Favorite{}, policy.ErrNotFound
	}

	input.ID = uuid.NewString()
	input.UserID = caller.ID

	row := s.db.QueryRow(ctx, `
		INSERT INTO favorites (id, user_id, attraction_id)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, input.ID, input.UserID, input.AttractionID)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Favorite{}, err
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, scope policy.Scope, id string) (Favorite, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return Favorite{}, err
	}
	if !scope.InScope(f.UserID) {
		return Favorite{}, policy.ErrNotFound
	}
	return f, nil
}

func (s *Service) Delete(ctx context.Context, caller policy.Caller, id string) error {
	f, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanWrite(caller, policy.ResourceFavorite, f.UserID); err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `DELETE FROM favorites WHERE id=$1`, f.ID)
	return err
}

func (s *Service) load(ctx context.Context, id string) (Favorite, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, attraction_id, created_at
		FROM favorites WHERE id=$1
	`, id)
	var f Favorite
	if err := row.Scan(&f.ID, &f.UserID, &f.AttractionID, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Favorite{}, policy.ErrNotFound
		}
		return Favorite{}, err
	}
	return f, nil
}
