package university

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/coldenflo/ICeducation/model"
	"github.com/coldenflo/ICeducation/services"
	"github.com/coldenflo/ICeducation/utils/response"
	"github.com/coldenflo/ICeducation/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UniversityHandler serves the catalogue
type UniversityHandler struct {
	store     *services.CatalogueStore
	validator *validation.Validator
	log       *zap.Logger
}

// NewUniversityHandler creates a new university handler
func NewUniversityHandler(store *services.CatalogueStore, logger *zap.Logger) *UniversityHandler {
	return &UniversityHandler{
		store:     store,
		validator: validation.NewValidator(),
		log:       logger.Named("university"),
	}
}

// ListUniversities handles GET /api/v1/universities
//
// Without page or limit the whole (filtered) list is returned, which is what
// the listing page renders. With either, the result is paginated.
func (h *UniversityHandler) ListUniversities(c *fiber.Ctx) error {
	list := h.store.Search(c.UserContext(), c.Query("search"))

	if c.Query("page") == "" && c.Query("limit") == "" {
		return response.Success(c, list)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	pagination := response.CalculatePagination(page, limit, len(list))
	start, end := response.PageBounds(pagination)

	return response.Paginated(c, list[start:end], pagination)
}

// GetUniversity handles GET /api/v1/universities/:slugOrId
func (h *UniversityHandler) GetUniversity(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("slugOrId"))
	if err != nil {
		return response.BadRequest(c, "Invalid university key")
	}

	inst, ok := h.store.Resolve(c.UserContext(), key)
	if !ok {
		return response.NotFound(c, "University not found")
	}
	return response.Success(c, inst)
}

// CreateUniversity handles POST /api/v1/universities
//
// A body whose id already exists replaces that record instead.
func (h *UniversityHandler) CreateUniversity(c *fiber.Ctx) error {
	var inst model.Institution
	if err := c.BodyParser(&inst); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if inst.ID == "" {
		inst.ID = uuid.New().String()
	}
	if inst.Slug == "" {
		inst.Slug = services.Slugify(inst.Name)
	}

	return h.save(c, inst)
}

// CreateFromForm handles POST /api/v1/universities/form, the admin editor's
// multi-line draft format
func (h *UniversityHandler) CreateFromForm(c *fiber.Ctx) error {
	var form services.InstitutionForm
	if err := c.BodyParser(&form); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	inst, err := form.Build()
	if errors.Is(err, services.ErrNameRequired) {
		return response.ValidationError(c, map[string]string{"name": "University name is required."})
	}
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	return h.save(c, inst)
}

func (h *UniversityHandler) save(c *fiber.Ctx, inst model.Institution) error {
	if err := h.validator.ValidateStruct(inst); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	ctx := c.UserContext()
	if err := h.store.Create(ctx, inst); err != nil {
		h.log.Error("create university failed", zap.String("id", inst.ID), zap.Error(err))
		return response.InternalServerError(c, "Failed to save university")
	}

	saved, _ := h.store.FindByID(ctx, inst.ID)
	return response.Created(c, saved)
}

// UpdateUniversity handles PUT /api/v1/universities/:id
func (h *UniversityHandler) UpdateUniversity(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	if _, ok := h.store.FindByID(ctx, id); !ok {
		return response.NotFound(c, "University not found")
	}

	var inst model.Institution
	if err := c.BodyParser(&inst); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	// the path decides which record changes; identifiers never move
	inst.ID = id

	if err := h.validator.ValidateStruct(inst); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if err := h.store.Update(ctx, inst); err != nil {
		h.log.Error("update university failed", zap.String("id", id), zap.Error(err))
		return response.InternalServerError(c, "Failed to update university")
	}

	updated, _ := h.store.FindByID(ctx, id)
	return response.SuccessWithMessage(c, "University updated successfully", updated)
}

// DeleteUniversity handles DELETE /api/v1/universities/:id
func (h *UniversityHandler) DeleteUniversity(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	if _, ok := h.store.FindByID(ctx, id); !ok {
		return response.NotFound(c, "University not found")
	}

	if err := h.store.Remove(ctx, id); err != nil {
		h.log.Error("delete university failed", zap.String("id", id), zap.Error(err))
		return response.InternalServerError(c, "Failed to delete university")
	}

	return response.SuccessWithMessage(c, "University deleted successfully", nil)
}
