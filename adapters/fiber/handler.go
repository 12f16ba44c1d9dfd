package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/kelsara/sigil"
	"github.com/kelsara/sigil/core"
)

// signUp handles local account registration.
func (a *Adapter) signUp(s *sigil.Sigil) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input sigil.SignUpInput
		if err := c.Bind().Body(&input); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		result, err := s.Auth.SignUp(input)
		if err != nil {
			return handleAuthError(c, err)
		}

		return c.Status(http.StatusCreated).JSON(result)
	}
}

// signIn handles local credential sign-in.
func (a *Adapter) signIn(s *sigil.Sigil) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input sigil.SignInInput
		if err := c.Bind().Body(&input); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		result, err := s.Auth.SignIn(input)
		if err != nil {
			return handleAuthError(c, err)
		}

		return c.Status(http.StatusOK).JSON(result)
	}
}

// signInSocial handles provider sign-in; the provider tag comes from
// the path, the provider-native identity from the body.
func (a *Adapter) signInSocial(s *sigil.Sigil) fiber.Handler {
	return func(c fiber.Ctx) error {
		var profile sigil.SocialProfile
		if err := c.Bind().Body(&profile); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		profile.Provider = c.Params("provider")

		result, err := s.Auth.SignInSocial(profile)
		if err != nil {
			return handleAuthError(c, err)
		}

		return c.Status(http.StatusOK).JSON(result)
	}
}

// session returns the resolved caller account.
func (a *Adapter) session() fiber.Handler {
	return func(c fiber.Ctx) error {
		account, ok := c.Locals("account").(*sigil.Account)
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": sigil.ErrInvalidToken.Error(),
			})
		}
		return c.Status(http.StatusOK).JSON(account.Public())
	}
}

// updateProfile applies a partial profile mutation to the target
// account on behalf of the authenticated caller.
func (a *Adapter) updateProfile(s *sigil.Sigil) fiber.Handler {
	return func(c fiber.Ctx) error {
		account, ok := c.Locals("account").(*sigil.Account)
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": sigil.ErrInvalidToken.Error(),
			})
		}

		var patch sigil.ProfilePatch
		if err := c.Bind().Body(&patch); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		requester := &sigil.Identity{AccountID: account.ID, Role: account.Role}
		updated, err := s.Profiles.Update(requester, c.Params("id"), patch)
		if err != nil {
			return handleAuthError(c, err)
		}

		return c.Status(http.StatusOK).JSON(updated.Public())
	}
}

// handleAuthError maps the error taxonomy onto HTTP statuses.
func handleAuthError(c fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch core.KindOf(err) {
	case core.KindConflict:
		status = http.StatusConflict
	case core.KindForbidden:
		status = http.StatusForbidden
	case core.KindNotFound:
		status = http.StatusNotFound
	case core.KindInvalid:
		status = http.StatusBadRequest
	case core.KindUnauthorized:
		status = http.StatusUnauthorized
	case core.KindUpstream:
		status = http.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
