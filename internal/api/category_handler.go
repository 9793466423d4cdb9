package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/bszczerba/taskdeck/internal/api/shared"
	"github.com/bszczerba/taskdeck/internal/domain"
	"github.com/bszczerba/taskdeck/internal/service"
)

// CategoryHandler handles category-related API requests.
type CategoryHandler struct {
	categoryService service.CategoryService
	validator       *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler with the given dependencies.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
	}
}

// ListCategories handles GET /api/categories.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.GetCategories(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list categories")
		return
	}

	if categories == nil {
		categories = []*domain.Category{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, categories)
}

// GetCategory handles GET /api/categories/{id}.
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	category, err := h.categoryService.GetCategory(r.Context(), categoryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve category")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, category)
}

// CreateCategory handles POST /api/categories.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), req.Name, req.Color)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create category")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/categories/{id}.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	category, err := h.categoryService.UpdateCategory(r.Context(), categoryID, req.Name, req.Color)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update category")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/categories/{id}. Tasks referencing the
// category are detached, not deleted.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.categoryService.DeleteCategory(r.Context(), categoryID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
