package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admissions-crm/internal/api/dto"
	"github.com/spec-kit/admissions-crm/internal/service"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// FiltersHandler serves the caller's saved filter presets.
type FiltersHandler struct {
	service *service.SavedFilterService
}

// NewFiltersHandler constructs handler.
func NewFiltersHandler(filterService *service.SavedFilterService) *FiltersHandler {
	return &FiltersHandler{service: filterService}
}

// List GET /filters.
func (h *FiltersHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filters, err := h.service.List(c.UserContext(), actor)
	if err != nil {
		return err
	}
	resp := make([]dto.SavedFilterResponse, 0, len(filters))
	for _, filter := range filters {
		resp = append(resp, dto.SavedFilterResponse{Name: filter.Name, Criteria: filter.Criteria})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Save PUT /filters/:name.
func (h *FiltersHandler) Save(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	name, err := filterName(c)
	if err != nil {
		return err
	}
	var req dto.SaveFilterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := checkCriteria(req.Criteria); err != nil {
		return err
	}
	filter, err := h.service.Save(c.UserContext(), actor, name, req.Criteria)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SavedFilterResponse{Name: filter.Name, Criteria: filter.Criteria}})
}

// Delete DELETE /filters/:name.
func (h *FiltersHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	name, err := filterName(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func filterName(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return "", apperrors.NewValidationError("invalid filter name", nil)
	}
	return name, nil
}
