package catalog

import (
	"strconv"

	"github.com/globalbuilder/tourismserver/internal/auth"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// RegisterCategoryRoutes wires category CRUD. Reads are open to any
// authenticated caller; mutations are rejected by policy before any row
// is touched.
func RegisterCategoryRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		categories, err := svc.Categories(c.Context(), c.Query("search"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(categories)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		cat, err := svc.GetCategory(c.Context(), c.Params("id"))
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(cat)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		if err := policy.CanWrite(auth.CallerFromCtx(c), policy.ResourceCategory, ""); err != nil {
			return policy.ToHTTPError(err)
		}
		var req Category
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		cat, err := svc.CreateCategory(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := policy.CanWrite(auth.CallerFromCtx(c), policy.ResourceCategory, ""); err != nil {
			return policy.ToHTTPError(err)
		}
		var patch Category
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		cat, err := svc.UpdateCategory(c.Context(), c.Params("id"), patch)
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(cat)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := policy.CanWrite(auth.CallerFromCtx(c), policy.ResourceCategory, ""); err != nil {
			return policy.ToHTTPError(err)
		}
		if err := svc.DeleteCategory(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func RegisterAttractionRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		filter := AttractionFilter{
			CategoryID: c.Query("category"),
			Search:     c.Query("search"),
		}
		attractions, err := svc.Attractions(c.Context(), filter)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(attractions)
	})

	r.Get("/nearby", authMiddleware, func(c *fiber.Ctx) error {
		lat, _ := strconv.ParseFloat(c.Query("lat"), 64)
		lng, _ := strconv.ParseFloat(c.Query("lng"), 64)
		radius, _ := strconv.ParseFloat(c.Query("radius_km"), 64)
		if radius == 0 {
			radius = 10
		}
		attractions, err := svc.Nearby(c.Context(), lat, lng, radius)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(attractions)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		a, err := svc.GetAttraction(c.Context(), c.Params("id"))
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(a)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		if err := policy.CanWrite(auth.CallerFromCtx(c), policy.ResourceAttraction, ""); err != nil {
			return policy.ToHTTPError(err)
		}
		var req Attraction
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		a, err := svc.CreateAttraction(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := policy.CanWrite(auth.CallerFromCtx(c), policy.ResourceAttraction, ""); err != nil {
			return policy.ToHTTPError(err)
		}
		var patch Attraction
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		a, err := svc.UpdateAttraction(c.Context(), c.Params("id"), patch)
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(a)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := policy.CanWrite(auth.CallerFromCtx(c), policy.ResourceAttraction, ""); err != nil {
			return policy.ToHTTPError(err)
		}
		if err := svc.DeleteAttraction(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
