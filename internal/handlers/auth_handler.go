package handlers

import (
	"time"

	"arthemis/internal/middleware"
	"arthemis/internal/models"
	"arthemis/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService  *services.AuthService
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the session
// cookie HTTPS-only.
func NewAuthHandler(authService *services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")

	public := authRoutes.Group("", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later")
		},
	}))
	public.Post("/register", h.HandleRegister)
	public.Post("/login", h.HandleLogin)
	public.Post("/forgotpassword", h.HandleForgotPassword)
	public.Put("/resetpassword/:resettoken", h.HandleResetPassword)

	protected := authRoutes.Group("", middleware.AuthRequired(h.authService))
	protected.Get("/me", h.HandleMe)
	protected.Put("/updatedetails", h.HandleUpdateDetails)
	protected.Put("/updatepassword", h.HandleUpdatePassword)
	protected.Get("/logout", h.HandleLogout)
}

// sendToken sets the session cookie and responds with the token.
func (h *AuthHandler) sendToken(c *fiber.Ctx, status int, user *models.User, token string) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(h.authService.TokenDuration()),
		HTTPOnly: true,
		Secure:   h.secureCookie,
	})
	body := fiber.Map{
		"success": true,
		"token":   token,
	}
	if user != nil {
		body["data"] = user
	}
	return c.Status(status).JSON(body)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	user, token, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusCreated, user, token)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest("Please provide an email and password")
	}

	user, token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, user, token)
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.Me(c.UserContext(), middleware.ViewerID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user)
}

// HandleUpdateDetails changes the profile of the authenticated user.
func (h *AuthHandler) HandleUpdateDetails(c *fiber.Ctx) error {
	var req services.DetailsInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	user, err := h.authService.UpdateDetails(c.UserContext(), middleware.ViewerID(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user)
}

type passwordUpdateRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleUpdatePassword replaces the password and issues a new token.
func (h *AuthHandler) HandleUpdatePassword(c *fiber.Ctx) error {
	var req passwordUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	token, err := h.authService.UpdatePassword(c.UserContext(), middleware.ViewerID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, nil, token)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword issues a reset token. The token itself only travels
// through the reset event.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if req.Email == "" {
		return badRequest("Please include a valid email")
	}

	if _, err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Email sent")
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// HandleResetPassword sets a new password from a reset token.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	user, token, err := h.authService.ResetPassword(c.UserContext(), c.Params("resettoken"), req.Password)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, user, token)
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "none",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   h.secureCookie,
	})
	return respond(c, fiber.StatusOK, fiber.Map{})
}
