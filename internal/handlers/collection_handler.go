package handlers

import (
	"arthemis/internal/middleware"
	"arthemis/internal/models"
	"arthemis/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CollectionHandler handles HTTP requests for collections.
type CollectionHandler struct {
	service     *services.CollectionService
	authService *services.AuthService
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(service *services.CollectionService, authService *services.AuthService) *CollectionHandler {
	return &CollectionHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the collection routes with the Fiber app.
func (h *CollectionHandler) RegisterRoutes(router fiber.Router) {
	collectionRoutes := router.Group("/collections")
	auth := middleware.AuthRequired(h.authService)
	optional := middleware.OptionalAuth(h.authService)
	sanitize := middleware.Sanitize("coverImage")

	collectionRoutes.Get("/", optional, h.HandleGetCollections)
	collectionRoutes.Get("/:id", optional, h.HandleGetCollection)
	collectionRoutes.Get("/:id/artworks", optional, h.HandleGetCollectionArtworks)

	collectionRoutes.Post("/", auth, sanitize, h.HandleCreateCollection)
	collectionRoutes.Put("/:id", auth, sanitize, h.HandleUpdateCollection)
	collectionRoutes.Delete("/:id", auth, h.HandleDeleteCollection)
	collectionRoutes.Post("/:collectionId/artworks/:artworkId", auth, h.HandleAddArtwork)
	collectionRoutes.Delete("/:collectionId/artworks/:artworkId", auth, h.HandleRemoveArtwork)
}

// HandleGetCollections lists the collections visible to the caller. The
// "user" query narrows the listing to one owner; "me" is the caller.
func (h *CollectionHandler) HandleGetCollections(c *fiber.Ctx) error {
	viewerID := middleware.ViewerID(c)
	ownerID := c.Query("user")
	if ownerID == "me" {
		if viewerID == "" {
			return &services.Error{Kind: services.KindUnauthenticated, Message: "Not authorized to access this route"}
		}
		ownerID = viewerID
	}

	collections, err := h.service.List(c.UserContext(), viewerID, ownerID)
	if err != nil {
		return err
	}
	return respondList(c, collections, len(collections))
}

// HandleGetCollection returns one collection with its artworks.
func (h *CollectionHandler) HandleGetCollection(c *fiber.Ctx) error {
	collection, err := h.service.Get(c.UserContext(), middleware.ViewerID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, collection)
}

// HandleGetCollectionArtworks lists the artworks of a collection in order.
func (h *CollectionHandler) HandleGetCollectionArtworks(c *fiber.Ctx) error {
	artworks, err := h.service.Artworks(c.UserContext(), middleware.ViewerID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return respondList(c, artworks, len(artworks))
}

// HandleCreateCollection creates a collection owned by the caller.
func (h *CollectionHandler) HandleCreateCollection(c *fiber.Ctx) error {
	var collection models.Collection
	if err := c.BodyParser(&collection); err != nil {
		return badRequest("Invalid request body")
	}

	created, err := h.service.Create(c.UserContext(), middleware.ActorFrom(c), &collection)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, created)
}

// HandleUpdateCollection changes a collection's fields or its cover.
func (h *CollectionHandler) HandleUpdateCollection(c *fiber.Ctx) error {
	var patch services.CollectionPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest("Invalid request body")
	}

	updated, err := h.service.Update(c.UserContext(), middleware.ActorFrom(c), c.Params("id"), &patch)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, updated)
}

// HandleDeleteCollection removes a collection.
func (h *CollectionHandler) HandleDeleteCollection(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.ActorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{})
}

// HandleAddArtwork puts an artwork at the front of a collection.
func (h *CollectionHandler) HandleAddArtwork(c *fiber.Ctx) error {
	collection, err := h.service.AddArtwork(c.UserContext(), middleware.ActorFrom(c), c.Params("collectionId"), c.Params("artworkId"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, collection)
}

// HandleRemoveArtwork takes an artwork out of a collection.
func (h *CollectionHandler) HandleRemoveArtwork(c *fiber.Ctx) error {
	collection, err := h.service.RemoveArtwork(c.UserContext(), middleware.ActorFrom(c), c.Params("collectionId"), c.Params("artworkId"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, collection)
}
