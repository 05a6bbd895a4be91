package feedback

import (
	"errors"

	"github.com/globalbuilder/tourismserver/internal/auth"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		scope := policy.ListScope(auth.CallerFromCtx(c), policy.ResourceFeedback)
		items, err := svc.List(c.Context(), scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(items)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		scope := policy.ListScope(auth.CallerFromCtx(c), policy.ResourceFeedback)
		f, err := svc.Get(c.Context(), scope, c.Params("id"))
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(f)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Feedback
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		f, err := svc.Create(c.Context(), auth.CallerFromCtx(c), req)
		if err != nil {
			if errors.Is(err, ErrRatingOutOfRange) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return policy.ToHTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var patch Feedback
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		f, err := svc.Update(c.Context(), auth.CallerFromCtx(c), c.Params("id"), patch)
		if err != nil {
			if errors.Is(err, ErrRatingOutOfRange) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return policy.ToHTTPError(err)
		}
		return c.JSON(f)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), auth.CallerFromCtx(c), c.Params("id")); err != nil {
			return policy.ToHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
