package media

import (
	"context"
	"strings"
	"time"

	"github.com/globalbuilder/tourismserver/internal/auth"
	"github.com/globalbuilder/tourismserver/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Service records references to uploaded blobs. The blobs themselves live
// behind the media store; only opaque URLs pass through here.
type Service struct {
	db      db.Querier
	baseURL string
}

func NewService(q db.Querier, baseURL string) *Service {
	return &Service{db: q, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Service) SaveObject(ctx context.Context, userID, fileName, kind string) (string, string, error) {
	id := uuid.NewString()
	url := s.baseURL + "/" + id + "/" + fileName
	_, err := s.db.Exec(ctx, `
		INSERT INTO media_objects (id, user_id, url, kind)
		VALUES ($1,$2,$3,$4)
	`, id, userID, url, kind)
	if err != nil {
		return "", "", err
	}
	return id, url, nil
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			FileName string `json:"file_name"`
			Kind     string `json:"kind"`
		}
		_ = c.BodyParser(&body)
		if body.FileName == "" {
			body.FileName = "upload"
		}
		id, url, err := svc.SaveObject(c.Context(), auth.CallerFromCtx(c).ID, body.FileName, body.Kind)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"id":         id,
			"url":        url,
			"expires_at": time.Now().Add(15 * time.Minute),
		})
	})
}
