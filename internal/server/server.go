package server

import (
	"github.com/globalbuilder/tourismserver/internal/account"
	"github.com/globalbuilder/tourismserver/internal/auth"
	"github.com/globalbuilder/tourismserver/internal/catalog"
	"github.com/globalbuilder/tourismserver/internal/config"
	"github.com/globalbuilder/tourismserver/internal/favorite"
	"github.com/globalbuilder/tourismserver/internal/feedback"
	"github.com/globalbuilder/tourismserver/internal/media"
	"github.com/globalbuilder/tourismserver/internal/notification"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	tokens := auth.NewService(s.Cfg.JWTSecret, s.DB, s.Redis)
	catalogSvc := catalog.NewService(s.DB)

	account.RegisterRoutes(s.App.Group("/accounts"), account.NewService(s.DB), tokens, jwtMiddleware)
	catalog.RegisterCategoryRoutes(s.App.Group("/categories"), catalogSvc, jwtMiddleware)
	catalog.RegisterAttractionRoutes(s.App.Group("/attractions"), catalogSvc, jwtMiddleware)
	feedback.RegisterRoutes(s.App.Group("/feedback"), feedback.NewService(s.DB), jwtMiddleware)
	favorite.RegisterRoutes(s.App.Group("/favorites"), favorite.NewService(s.DB), jwtMiddleware)
	notification.RegisterRoutes(s.App.Group("/notifications"), notification.NewService(s.DB), jwtMiddleware)
	media.RegisterRoutes(s.App.Group("/media"), media.NewService(s.DB, s.Cfg.MediaBaseURL), jwtMiddleware)
}
