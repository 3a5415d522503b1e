package middleware

import (
	"strings"

	"arthemis/internal/models"
	"arthemis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenCookie is the cookie carrying the session token for browser clients.
const TokenCookie = "token"

const (
	localUser   = "user"
	localUserID = "user_id"
)

var errNotAuthorized = &services.Error{Kind: services.KindUnauthenticated, Message: "Not authorized to access this route"}

// tokenFrom reads a bearer token from the Authorization header, falling back
// to the session cookie.
func tokenFrom(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return c.Cookies(TokenCookie)
}

func setUser(c *fiber.Ctx, user *models.User) {
	c.Locals(localUser, user)
	c.Locals(localUserID, user.ID)
}

// AuthRequired rejects requests without a valid token and stores the
// authenticated user in the context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return errNotAuthorized
		}

		user, err := authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}
		setUser(c, user)
		return c.Next()
	}
}

// OptionalAuth stores the user when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := tokenFrom(c); token != "" {
			if user, err := authService.Authenticate(c.UserContext(), token); err == nil {
				setUser(c, user)
			}
		}
		return c.Next()
	}
}

// Authorize allows only users holding one of roles. It must run after
// AuthRequired.
func Authorize(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return errNotAuthorized
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return &services.Error{
			Kind:    services.KindUnauthorized,
			Message: "User role " + string(user.Role) + " is not authorized to access this route",
		}
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// ViewerID is the id of the authenticated user, empty when anonymous.
func ViewerID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// ActorFrom builds the service actor of the request.
func ActorFrom(c *fiber.Ctx) services.Actor {
	if user := CurrentUser(c); user != nil {
		return services.ActorOf(user)
	}
	return services.Actor{}
}
