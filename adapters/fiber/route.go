package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kelsara/sigil"
)

// Adapter mounts sigil's identity and subscription endpoints on a
// Fiber app.
type Adapter struct {
	app *fiber.App
}

var _ sigil.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

func (a *Adapter) RegisterRoutes(s *sigil.Sigil) error {
	api := a.app.Group(s.BasePath)

	// Public routes
	api.Post("/sign-up", a.signUp(s))
	api.Post("/sign-in", a.signIn(s))
	api.Post("/sign-in/:provider", a.signInSocial(s))

	// Protected routes
	auth := RequireAuth(s)
	api.Get("/session", auth, a.session())
	api.Patch("/accounts/:id", auth, a.updateProfile(s))
	api.Get("/accounts/:id/events", auth, a.accountEvents(s))

	return nil
}
