package catalog

import (
	"context"
	"errors"

	"github.com/globalbuilder/tourismserver/internal/db"
	"github.com/globalbuilder/tourismserver/internal/policy"
	"github.com/globalbuilder/tourismserver/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) Categories(ctx context.Context, search string) ([]Category, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(image_url,''), created_at, updated_at
		FROM categories
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
	`, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.ImageURL, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (Category, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(image_url,''), created_at, updated_at
		FROM categories WHERE id=$1
	`, id)
	var cat Category
	if err := row.Scan(&cat.ID, &cat.Name, &cat.ImageURL, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, policy.ErrNotFound
		}
		return Category{}, err
	}
	return cat, nil
}

func (s *Service) CreateCategory(ctx context.Context, input Category) (Category, error) {
	if input.Name == "" {
		return Category{}, errors.New("name required")
	}
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO categories (id, name, image_url)
		VALUES ($1,$2,$3)
		RETURNING created_at, updated_at
	`, input.ID, input.Name, input.ImageURL)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Category{}, err
	}
	return input, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, patch Category) (Category, error) {
	cat, err := s.GetCategory(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if patch.Name != "" {
		cat.Name = patch.Name
	}
	if patch.ImageURL != "" {
		cat.ImageURL = patch.ImageURL
	}

	_, err = s.db.Exec(ctx, `
		UPDATE categories SET name=$2, image_url=$3, updated_at=now()
		WHERE id=$1
	`, cat.ID, cat.Name, cat.ImageURL)
	if err != nil {
		return Category{}, err
	}
	return cat, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	return err
}

func (s *Service) Attractions(ctx context.Context, filter AttractionFilter) ([]Attraction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, category_id, name, latitude, longitude, COALESCE(address,''),
		       COALESCE(description,''), COALESCE(image_url,''), price, average_rating,
		       created_at, updated_at
		FROM attractions
		WHERE ($1 = '' OR category_id = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR address ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
	`, filter.CategoryID, filter.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attractions []Attraction
	for rows.Next() {
		var a Attraction
		if err := scanAttraction(rows, &a); err != nil {
			return nil, err
		}
		attractions = append(attractions, a)
	}
	return attractions, nil
}

func (s *Service) GetAttraction(ctx context.Context, id string) (Attraction, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, category_id, name, latitude, longitude, COALESCE(address,''),
		       COALESCE(description,''), COALESCE(image_url,''), price, average_rating,
		       created_at, updated_at
		FROM attractions WHERE id=$1
	`, id)
	var a Attraction
	if err := scanAttraction(row, &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Attraction{}, policy.ErrNotFound
		}
		return Attraction{}, err
	}
	return a, nil
}

func (s *Service) CreateAttraction(ctx context.Context, input Attraction) (Attraction, error) {
	if input.Name == "" || input.CategoryID == "" {
		return Attraction{}, errors.New("name and category_id required")
	}
	input.ID = uuid.NewString()
	input.AverageRating = 0
	row := s.db.QueryRow(ctx, `
		INSERT INTO attractions (id, category_id, name, latitude, longitude, address, description, image_url, price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at
	`, input.ID, input.CategoryID, input.Name, input.Latitude, input.Longitude,
		input.Address, input.Description, input.ImageURL, input.Price)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Attraction{}, err
	}
	return input, nil
}

// UpdateAttraction patches descriptive fields. average_rating is owned by
// the feedback aggregator and is deliberately never written here.
func (s *Service) UpdateAttraction(ctx context.Context, id string, patch Attraction) (Attraction, error) {
	a, err := s.GetAttraction(ctx, id)
	if err != nil {
		return Attraction{}, err
	}
	if patch.CategoryID != "" {
		a.CategoryID = patch.CategoryID
	}
	if patch.Name != "" {
		a.Name = patch.Name
	}
	if patch.Latitude != 0 {
		a.Latitude = patch.Latitude
	}
	if patch.Longitude != 0 {
		a.Longitude = patch.Longitude
	}
	if patch.Address != "" {
		a.Address = patch.Address
	}
	if patch.Description != "" {
		a.Description = patch.Description
	}
	if patch.ImageURL != "" {
		a.ImageURL = patch.ImageURL
	}
	if patch.Price != 0 {
		a.Price = patch.Price
	}

	_, err = s.db.Exec(ctx, `
		UPDATE attractions
		SET category_id=$2, name=$3, latitude=$4, longitude=$5, address=$6,
		    description=$7, image_url=$8, price=$9, updated_at=now()
		WHERE id=$1
	`, a.ID, a.CategoryID, a.Name, a.Latitude, a.Longitude, a.Address, a.Description, a.ImageURL, a.Price)
	if err != nil {
		return Attraction{}, err
	}
	return a, nil
}

func (s *Service) DeleteAttraction(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM attractions WHERE id=$1`, id)
	return err
}

// Nearby filters attractions by great-circle distance from a point.
// Coordinates are plain numeric columns, so the distance check happens
// here instead of in SQL.
func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]Attraction, error) {
	all, err := s.Attractions(ctx, AttractionFilter{})
	if err != nil {
		return nil, err
	}

	var results []Attraction
	for _, a := range all {
		if geo.HaversineKm(lat, lng, a.Latitude, a.Longitude) <= radiusKm {
			results = append(results, a)
		}
	}
	return results, nil
}

func scanAttraction(row pgx.Row, a *Attraction) error {
	return row.Scan(&a.ID, &a.CategoryID, &a.Name, &a.Latitude, &a.Longitude, &a.Address,
		&a.Description, &a.ImageURL, &a.Price, &a.AverageRating, &a.CreatedAt, &a.UpdatedAt)
}
