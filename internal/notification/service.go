package notification

import (
	"context"
	"errors"
	"time"

	"github.com/globalbuilder/tourismserver/internal/db"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Notification carries a message to one user, or to everyone when UserID
// is empty (broadcast).
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) List(ctx context.Context, scope policy.Scope) ([]Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, COALESCE(user_id,''), title, message, is_read, COALESCE(created_by,''), created_at
		FROM notifications
		WHERE $1 OR user_id = $2 OR ($3 AND user_id IS NULL)
		ORDER BY created_at DESC
	`, scope.All, scope.OwnerID, scope.IncludeBroadcast)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, nil
}

// Get returns a single notification and, as a side effect of the fetch,
// transitions it unread -> read. The transition is one-directional and a
// repeat read leaves is_read true. Listing never triggers it.
func (s *Service) Get(ctx context.Context, scope policy.Scope, id string) (Notification, error) {
	n, err := s.load(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if !scope.InScope(n.UserID) {
		return Notification{}, policy.ErrNotFound
	}

	if !n.IsRead {
		if _, err := s.db.Exec(ctx, `
			UPDATE notifications SET is_read=true WHERE id=$1 AND is_read=false
		`, n.ID); err != nil {
			return Notification{}, err
		}
		n.IsRead = true
	}
	return n, nil
}

// Create stores a notification. An empty recipient means broadcast; the
// creator is always the caller.
func (s *Service) Create(ctx context.Context, caller policy.Caller, input Notification) (Notification, error) {
	if input.Title == "" || input.Message == "" {
		return Notification{}, errors.New("title and message required")
	}

	input.ID = uuid.NewString()
	input.IsRead = false
	input.CreatedBy = caller.ID

	row := s.db.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, title, message, created_by)
		VALUES ($1, NULLIF($2,''), $3, $4, $5)
		RETURNING created_at
	`, input.ID, input.UserID, input.Title, input.Message, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Notification{}, err
	}
	return input, nil
}

func (s *Service) load(ctx context.Context, id string) (Notification, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, COALESCE(user_id,''), title, message, is_read, COALESCE(created_by,''), created_at
		FROM notifications WHERE id=$1
	`, id)
	var n Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedBy, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, policy.ErrNotFound
		}
		return Notification{}, err
	}
	return n, nil
}
