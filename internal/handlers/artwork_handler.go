package handlers

import (
	"strconv"
	"strings"

	"arthemis/internal/middleware"
	"arthemis/internal/models"
	"arthemis/internal/repositories"
	"arthemis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ArtworkHandler handles HTTP requests for artworks.
type ArtworkHandler struct {
	service     *services.ArtworkService
	authService *services.AuthService
}

// NewArtworkHandler creates a new ArtworkHandler.
func NewArtworkHandler(service *services.ArtworkService, authService *services.AuthService) *ArtworkHandler {
	return &ArtworkHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the artwork routes with the Fiber app.
func (h *ArtworkHandler) RegisterRoutes(router fiber.Router) {
	artworkRoutes := router.Group("/artworks")
	auth := middleware.AuthRequired(h.authService)
	sanitize := middleware.Sanitize("image")

	artworkRoutes.Get("/", h.HandleSearch)
	artworkRoutes.Get("/search", h.HandleSearch)
	artworkRoutes.Get("/:id", h.HandleGetArtwork)
	artworkRoutes.Get("/:id/likes", h.HandleGetLikes)
	artworkRoutes.Get("/:id/saves", h.HandleGetSaves)
	artworkRoutes.Get("/:id/comments", h.HandleGetComments)

	artworkRoutes.Post("/", auth, middleware.Authorize(models.RoleArtist, models.RoleAdmin), sanitize, h.HandleCreateArtwork)
	artworkRoutes.Put("/:id", auth, sanitize, h.HandleUpdateArtwork)
	artworkRoutes.Delete("/:id", auth, h.HandleDeleteArtwork)
	artworkRoutes.Put("/:id/image", auth, h.HandleUploadImage)
	artworkRoutes.Post("/:id/image", auth, h.HandleUploadImage)
	artworkRoutes.Post("/:id/comments", auth, sanitize, h.HandleAddComment)

	artworkRoutes.Post("/:id/like", auth, h.HandleLike)
	artworkRoutes.Delete("/:id/like", auth, h.HandleUnlike)
	artworkRoutes.Post("/:id/save", auth, h.HandleSave)
	artworkRoutes.Delete("/:id/save", auth, h.HandleUnsave)
}

// splitList parses a comma separated query value.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func optionalInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, badRequest("Invalid value for " + key)
	}
	return &v, nil
}

// parseArtworkQuery reads the filters, sort and page window of a listing.
func parseArtworkQuery(c *fiber.Ctx) (services.ArtworkQuery, error) {
	q := services.ArtworkQuery{
		Filter: repositories.ArtworkFilter{
			Query:    c.Query("q"),
			Medium:   splitList(c.Query("medium")),
			Style:    splitList(c.Query("style")),
			ArtistID: c.Query("artist"),
			Status:   models.ArtworkStatus(c.Query("status")),
		},
		Sort: repositories.ParseArtworkSort(c.Query("sort")),
		Page: services.PageRequest{
			Page:  c.QueryInt("page", services.DefaultPage),
			Limit: c.QueryInt("limit", services.DefaultLimit),
		},
	}

	var err error
	if q.Filter.MinYear, err = optionalInt(c, "minYear"); err != nil {
		return q, err
	}
	if q.Filter.MaxYear, err = optionalInt(c, "maxYear"); err != nil {
		return q, err
	}
	return q, nil
}

// HandleSearch lists one page of artworks matching the query string.
func (h *ArtworkHandler) HandleSearch(c *fiber.Ctx) error {
	q, err := parseArtworkQuery(c)
	if err != nil {
		return err
	}

	page, err := h.service.Search(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(page.Items),
		"total":      page.Total,
		"pagination": page.Pagination,
		"data":       page.Items,
	})
}

// HandleGetArtwork returns a single artwork and counts the view.
func (h *ArtworkHandler) HandleGetArtwork(c *fiber.Ctx) error {
	artwork, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, artwork)
}

// HandleCreateArtwork stores a new artwork for the authenticated artist.
func (h *ArtworkHandler) HandleCreateArtwork(c *fiber.Ctx) error {
	var artwork models.Artwork
	if err := c.BodyParser(&artwork); err != nil {
		return badRequest("Invalid request body")
	}

	created, err := h.service.Create(c.UserContext(), middleware.ActorFrom(c), &artwork)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, created)
}

// HandleUpdateArtwork changes the fields present in the body.
func (h *ArtworkHandler) HandleUpdateArtwork(c *fiber.Ctx) error {
	var patch services.ArtworkPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest("Invalid request body")
	}

	updated, err := h.service.Update(c.UserContext(), middleware.ActorFrom(c), c.Params("id"), &patch)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, updated)
}

// HandleDeleteArtwork removes an artwork and its comments.
func (h *ArtworkHandler) HandleDeleteArtwork(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.ActorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{})
}

// HandleUploadImage replaces the artwork image with the multipart "image" file.
func (h *ArtworkHandler) HandleUploadImage(c *fiber.Ctx) error {
	var upload *services.ImageUpload
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return badRequest("Please upload a file")
		}
		defer f.Close()
		upload = &services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		}
	}

	artwork, err := h.service.UploadImage(c.UserContext(), middleware.ActorFrom(c), c.Params("id"), upload)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, artwork)
}

// HandleLike adds the caller to the artwork's likes.
func (h *ArtworkHandler) HandleLike(c *fiber.Ctx) error {
	likes, err := h.service.Like(c.UserContext(), c.Params("id"), middleware.ViewerID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, likes)
}

// HandleUnlike removes the caller from the artwork's likes.
func (h *ArtworkHandler) HandleUnlike(c *fiber.Ctx) error {
	likes, err := h.service.Unlike(c.UserContext(), c.Params("id"), middleware.ViewerID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, likes)
}

// HandleSave bookmarks the artwork for the caller.
func (h *ArtworkHandler) HandleSave(c *fiber.Ctx) error {
	saves, err := h.service.Save(c.UserContext(), c.Params("id"), middleware.ViewerID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, saves)
}

// HandleUnsave removes the caller's bookmark.
func (h *ArtworkHandler) HandleUnsave(c *fiber.Ctx) error {
	saves, err := h.service.Unsave(c.UserContext(), c.Params("id"), middleware.ViewerID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, saves)
}

// HandleGetLikes lists the users who liked the artwork.
func (h *ArtworkHandler) HandleGetLikes(c *fiber.Ctx) error {
	users, err := h.service.Likes(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondList(c, users, len(users))
}

// HandleGetSaves lists the users who saved the artwork.
func (h *ArtworkHandler) HandleGetSaves(c *fiber.Ctx) error {
	users, err := h.service.Saves(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondList(c, users, len(users))
}

// HandleGetComments lists the artwork's comments, newest first.
func (h *ArtworkHandler) HandleGetComments(c *fiber.Ctx) error {
	comments, err := h.service.ArtworkComments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondList(c, comments, len(comments))
}

type commentRequest struct {
	Text string `json:"text"`
}

// HandleAddComment posts a comment as the caller.
func (h *ArtworkHandler) HandleAddComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	comment, err := h.service.AddComment(c.UserContext(), middleware.ActorFrom(c), c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, comment)
}
