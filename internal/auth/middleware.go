package auth

import (
	"strings"

	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const callerLocal = "caller"

// JWTMiddleware validates bearer tokens and stores the resolved caller in
// locals for CallerFromCtx.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
			return secretBytes, nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims, ok := parsed.Claims.(*Claims)
		if !ok || !parsed.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "token invalid")
		}

		SetCaller(c, callerFromClaims(claims))
		return c.Next()
	}
}

// SetCaller stores the caller identity on the request.
func SetCaller(c *fiber.Ctx, caller policy.Caller) {
	c.Locals(callerLocal, caller)
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

// CallerFromCtx returns the caller stored by JWTMiddleware, or the zero
// (anonymous) caller when the route ran without it.
func CallerFromCtx(c *fiber.Ctx) policy.Caller {
	caller, _ := c.Locals(callerLocal).(policy.Caller)
	return caller
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
