package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/fluxolab/fluxo-api/internal/models"
	"github.com/fluxolab/fluxo-api/internal/utils"
)

// CategoryStore is the category surface the handler depends on.
type CategoryStore interface {
	List(ctx context.Context, userID string) ([]models.Category, error)
	Create(ctx context.Context, c models.Category) (models.Category, error)
}

// CategoryHandler manages user-defined categories.
type CategoryHandler struct {
	store CategoryStore
}

// NewCategoryHandler creates the handler.
func NewCategoryHandler(store CategoryStore) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// GetCategories lists the user's categories.
// GET /v1/categories
func (h *CategoryHandler) GetCategories(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	categories, err := h.store.List(c.Context(), userID)
	if err != nil {
		return utils.NewUpstreamError(err)
	}
	return utils.SuccessResponse(c, categories)
}

// CreateCategoryRequest is the body for CreateCategory.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

var categoryTypes = map[string]bool{
	"income":   true,
	"expense":  true,
	"transfer": true,
}

// CreateCategory adds a category.
// POST /v1/categories
func (h *CategoryHandler) CreateCategory(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	var req CreateCategoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}
	if !categoryTypes[req.Type] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be income, expense or transfer",
		})
	}

	created, err := h.store.Create(c.Context(), models.Category{
		UserID: userID,
		Name:   req.Name,
		Type:   req.Type,
	})
	if err != nil {
		return utils.NewUpstreamError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}
