package fiber

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/kelsara/sigil"
)

// RequireAuth builds a middleware that resolves the bearer token to an
// account and stores it in the context for downstream handlers.
func RequireAuth(s *sigil.Sigil) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := extractToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		account, err := s.Auth.Resolve(token)
		if err != nil {
			return handleAuthError(c, err)
		}

		c.Locals("account", account)

		return c.Next()
	}
}

// extractToken pulls the bearer token out of the Authorization header.
func extractToken(c fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", sigil.ErrMissingAuthHeader
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", sigil.ErrInvalidAuthHeader
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", sigil.ErrInvalidAuthHeader
	}
	return token, nil
}
