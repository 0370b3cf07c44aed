package reference

import (
	"github.com/coldenflo/ICeducation/model"
	"github.com/coldenflo/ICeducation/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ReferenceHandler serves the bundled documents checklist and services list.
// Both are read-only.
type ReferenceHandler struct {
	documents []model.Document
	services  []model.Service
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(documents []model.Document, services []model.Service) *ReferenceHandler {
	if documents == nil {
		documents = []model.Document{}
	}
	if services == nil {
		services = []model.Service{}
	}
	return &ReferenceHandler{documents: documents, services: services}
}

// ListDocuments handles GET /api/v1/documents
func (h *ReferenceHandler) ListDocuments(c *fiber.Ctx) error {
	return response.Success(c, h.documents)
}

// ListServices handles GET /api/v1/services
func (h *ReferenceHandler) ListServices(c *fiber.Ctx) error {
	return response.Success(c, h.services)
}
