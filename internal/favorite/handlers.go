package favorite

import (
	"github.com/globalbuilder/tourismserver/internal/auth"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		scope := policy.ListScope(auth.CallerFromCtx(c), policy.ResourceFavorite)
		items, err := svc.List(c.Context(), scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(items)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		scope := policy.ListScope(auth.CallerFromCtx(c), policy.ResourceFavorite)
		f, err := svc.Get(c.Context(), scope, c.Params("id"))
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(f)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Favorite
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.AttractionID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "attraction_id required")
		}
		f, err := svc.Create(c.Context(), auth.CallerFromCtx(c), req)
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), auth.CallerFromCtx(c), c.Params("id")); err != nil {
			return policy.ToHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
