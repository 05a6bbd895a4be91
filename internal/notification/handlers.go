package notification

import (
	"github.com/globalbuilder/tourismserver/internal/auth"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		scope := policy.ListScope(auth.CallerFromCtx(c), policy.ResourceNotification)
		items, err := svc.List(c.Context(), scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(items)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		scope := policy.ListScope(auth.CallerFromCtx(c), policy.ResourceNotification)
		n, err := svc.Get(c.Context(), scope, c.Params("id"))
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(n)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		if err := policy.CanWrite(auth.CallerFromCtx(c), policy.ResourceNotification, ""); err != nil {
			return policy.ToHTTPError(err)
		}
		var req Notification
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		n, err := svc.Create(c.Context(), auth.CallerFromCtx(c), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(n)
	})
}
