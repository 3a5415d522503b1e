package handlers

import (
	"arthemis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CurationHandler serves the AI curation features. Every route answers with
// a default payload when the model is unavailable.
type CurationHandler struct {
	service *services.CurationService
}

// NewCurationHandler creates a new CurationHandler.
func NewCurationHandler(service *services.CurationService) *CurationHandler {
	return &CurationHandler{service: service}
}

// RegisterRoutes registers the curation routes with the Fiber app.
func (h *CurationHandler) RegisterRoutes(router fiber.Router) {
	curationRoutes := router.Group("/curation")
	curationRoutes.Post("/dna", h.HandleArtDNA)
	curationRoutes.Get("/daily-mix", h.HandleDailyMix)
	curationRoutes.Get("/news", h.HandleArtNews)
}

type artDNARequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HandleArtDNA analyses an artwork's title and story.
func (h *CurationHandler) HandleArtDNA(c *fiber.Ctx) error {
	var req artDNARequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if req.Title == "" {
		return badRequest("Please add a title")
	}
	return respond(c, fiber.StatusOK, h.service.AnalyzeArtDNA(c.UserContext(), req.Title, req.Description))
}

// HandleDailyMix builds a playlist concept for the "mood" query.
func (h *CurationHandler) HandleDailyMix(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, h.service.DailyMix(c.UserContext(), c.Query("mood")))
}

// HandleArtNews summarises exhibitions for the "location" query.
func (h *CurationHandler) HandleArtNews(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, h.service.ArtNews(c.UserContext(), c.Query("location")))
}
