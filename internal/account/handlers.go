package account

import (
	"errors"

	"github.com/globalbuilder/tourismserver/internal/auth"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, tokens *auth.Service, authMiddleware fiber.Handler) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.Register(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		pair, err := tokens.GenerateTokens(c.Context(), CallerFor(user))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "tokens": pair})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username and password required")
		}
		user, err := svc.Authenticate(c.Context(), req.Username, req.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		pair, err := tokens.GenerateTokens(c.Context(), CallerFor(user))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(pair)
	})

	r.Post("/refresh", func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh_token required")
		}
		caller, err := tokens.ValidateRefreshToken(c.Context(), req.RefreshToken)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		pair, err := tokens.GenerateTokens(c.Context(), caller)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(pair)
	})

	r.Post("/logout", authMiddleware, func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh_token required")
		}
		if err := tokens.Logout(c.Context(), req.RefreshToken); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusResetContent).JSON(fiber.Map{"detail": "logged out"})
	})

	r.Get("/user", authMiddleware, func(c *fiber.Ctx) error {
		user, err := svc.GetUser(c.Context(), auth.CallerFromCtx(c).ID)
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(user)
	})

	r.Put("/user", authMiddleware, func(c *fiber.Ctx) error {
		var patch User
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.UpdateUser(c.Context(), auth.CallerFromCtx(c).ID, patch)
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(user)
	})

	r.Get("/profile", authMiddleware, func(c *fiber.Ctx) error {
		profile, err := svc.GetProfile(c.Context(), auth.CallerFromCtx(c).ID)
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(profile)
	})

	r.Post("/profile", authMiddleware, func(c *fiber.Ctx) error {
		var p Profile
		if err := c.BodyParser(&p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		profile, err := svc.CreateProfile(c.Context(), auth.CallerFromCtx(c).ID, p)
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(profile)
	})

	r.Put("/profile", authMiddleware, func(c *fiber.Ctx) error {
		var patch Profile
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		profile, err := svc.UpdateProfile(c.Context(), auth.CallerFromCtx(c).ID, patch)
		if err != nil {
			return policy.ToHTTPError(err)
		}
		return c.JSON(profile)
	})

	r.Put("/change-password", authMiddleware, func(c *fiber.Ctx) error {
		var req ChangePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if err := svc.ChangePassword(c.Context(), auth.CallerFromCtx(c).ID, req); err != nil {
			if errors.Is(err, ErrPasswordMismatch) || errors.Is(err, ErrOldPasswordWrong) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return policy.ToHTTPError(err)
		}
		return c.JSON(fiber.Map{"detail": "password updated successfully"})
	})
}
