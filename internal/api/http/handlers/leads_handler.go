package handlers

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admissions-crm/internal/api/dto"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/leadfilter"
	"github.com/spec-kit/admissions-crm/internal/service"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

const maxImportBytes = 10 << 20

// LeadsHandler serves lead intake, the visibility-scoped views and lead mutations.
type LeadsHandler struct {
	leads      *service.LeadService
	assignment *service.AssignmentService
	filters    *service.SavedFilterService
}

// NewLeadsHandler constructs handler.
func NewLeadsHandler(leads *service.LeadService, assignment *service.AssignmentService, filters *service.SavedFilterService) *LeadsHandler {
	return &LeadsHandler{leads: leads, assignment: assignment, filters: filters}
}

// List GET /leads.
func (h *LeadsHandler) List(c *fiber.Ctx) error {
	actor, criteria, err := h.criteria(c)
	if err != nil {
		return err
	}
	leads, err := h.leads.List(c.UserContext(), actor, criteria)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponses(leads), "meta": fiber.Map{"total": len(leads)}})
}

// Kanban GET /leads/kanban.
func (h *LeadsHandler) Kanban(c *fiber.Ctx) error {
	actor, criteria, err := h.criteria(c)
	if err != nil {
		return err
	}
	board, err := h.leads.Board(c.UserContext(), actor, criteria)
	if err != nil {
		return err
	}
	resp := dto.KanbanResponse{Columns: make([]dto.KanbanColumnResponse, 0, len(board.Columns)), Unplaced: board.Unplaced}
	for _, column := range board.Columns {
		resp.Columns = append(resp.Columns, dto.KanbanColumnResponse{
			Status: column.Status,
			Count:  len(column.Leads),
			Leads:  leadResponses(column.Leads),
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Export GET /leads/export.
func (h *LeadsHandler) Export(c *fiber.Ctx) error {
	actor, criteria, err := h.criteria(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.leads.Export(c.UserContext(), actor, criteria, &buf); err != nil {
		return err
	}
	c.Attachment(fmt.Sprintf("leads-%s.csv", time.Now().UTC().Format(isoDate)))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Import POST /leads/import. Accepts a text/csv body or a multipart "file" field.
func (h *LeadsHandler) Import(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var body io.Reader = bytes.NewReader(c.Body())
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		header, err := c.FormFile("file")
		if err != nil {
			return apperrors.NewValidationError("file field required", nil)
		}
		if header.Size > maxImportBytes {
			return apperrors.NewValidationError("file too large", map[string]any{"max_bytes": maxImportBytes})
		}
		file, err := header.Open()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		defer file.Close()
		body = file
	} else if len(c.Body()) == 0 {
		return apperrors.NewValidationError("csv body required", nil)
	}

	result, err := h.leads.Import(c.UserContext(), actor, body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ImportResponse{
		Imported: result.Imported,
		Skipped:  result.Skipped,
	}})
}

// Create POST /leads.
func (h *LeadsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateLeadRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	lead, err := h.leads.Create(c.UserContext(), actor, service.CreateLeadInput{
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		Country:           req.Country,
		Qualification:     req.Qualification,
		Source:            req.Source,
		Status:            req.Status,
		AssignedTo:        req.AssignedTo,
		CourseInterest:    req.CourseInterest,
		Priority:          req.Priority,
		Location:          req.Location,
		Notes:             req.Notes,
		NotesDate:         req.NotesDate,
		WhatsAppNumber:    req.WhatsAppNumber,
		PreferredLanguage: req.PreferredLanguage,
		Sales:             salesInfo(req.Sales),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": leadResponse(lead)})
}

// Get GET /leads/:id.
func (h *LeadsHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	lead, err := h.leads.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// Update PATCH /leads/:id.
func (h *LeadsHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateLeadRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	lead, err := h.leads.Update(c.UserContext(), actor, c.Params("id"), service.UpdateLeadInput{
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		Country:           req.Country,
		Qualification:     req.Qualification,
		Source:            req.Source,
		CourseInterest:    req.CourseInterest,
		Priority:          req.Priority,
		Location:          req.Location,
		Notes:             req.Notes,
		NotesDate:         req.NotesDate,
		WhatsAppNumber:    req.WhatsAppNumber,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// Delete DELETE /leads/:id.
func (h *LeadsHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.leads.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ChangeStatus POST /leads/:id/status.
func (h *LeadsHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.StatusChangeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	lead, err := h.leads.ChangeStatus(c.UserContext(), actor, c.Params("id"), req.Status, salesInfo(req.Sales))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// Move POST /leads/:id/move.
func (h *LeadsHandler) Move(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.MoveCardRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	lead, err := h.leads.MoveCard(c.UserContext(), actor, c.Params("id"), req.Column, salesInfo(req.Sales))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// Assign POST /leads/:id/assign.
func (h *LeadsHandler) Assign(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignLeadRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	lead, err := h.assignment.AssignLead(c.UserContext(), actor, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// Distribute POST /leads/distribute.
func (h *LeadsHandler) Distribute(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.DistributeLeadsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	leads, err := h.assignment.DistributeUnassigned(c.UserContext(), actor, req.LeadIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponses(leads)})
}

// Activity GET /leads/:id/activity.
func (h *LeadsHandler) Activity(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	entries, err := h.leads.Activity(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.LeadActivityResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.LeadActivityResponse{
			ID:          entry.ID,
			ChangeType:  string(entry.ChangeType),
			ChangedByID: entry.ChangedByID,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// criteria resolves the caller and the filter of a list-style request. A
// "saved" parameter loads a preset that other parameters then override.
func (h *LeadsHandler) criteria(c *fiber.Ctx) (*domain.User, leadfilter.Criteria, error) {
	actor, err := currentUser(c)
	if err != nil {
		return nil, leadfilter.Criteria{}, err
	}
	base := leadfilter.Criteria{}
	if name := c.Query("saved"); name != "" && h.filters != nil {
		base, err = h.filters.Resolve(c.UserContext(), actor, name)
		if err != nil {
			return nil, leadfilter.Criteria{}, err
		}
	}
	criteria, err := parseCriteria(c, base)
	if err != nil {
		return nil, leadfilter.Criteria{}, err
	}
	return actor, criteria, nil
}

func salesInfo(req *dto.SalesInfoRequest) *domain.SalesInfo {
	if req == nil {
		return nil
	}
	return &domain.SalesInfo{
		Fees:          req.Fees,
		TotalFees:     req.TotalFees,
		FeesCollected: req.FeesCollected,
		FeesType:      domain.FeesType(req.FeesType),
		Note:          req.Note,
	}
}

func leadResponses(leads []domain.Lead) []dto.LeadResponse {
	out := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		out = append(out, leadResponse(&leads[i]))
	}
	return out
}

func leadResponse(lead *domain.Lead) dto.LeadResponse {
	resp := dto.LeadResponse{
		ID:                lead.ID,
		FullName:          lead.FullName,
		Email:             lead.Email,
		Phone:             lead.Phone,
		Country:           lead.Country,
		Qualification:     lead.Qualification,
		Source:            lead.Source,
		Status:            lead.Status,
		AssignedTo:        lead.AssignedTo,
		CourseInterest:    lead.CourseInterest,
		Priority:          lead.Priority,
		Location:          lead.Location,
		Notes:             lead.Notes,
		NotesDate:         lead.NotesDate,
		WhatsAppNumber:    lead.WhatsAppNumber,
		PreferredLanguage: lead.PreferredLanguage,
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
	}
	if lead.Sales != nil {
		resp.Sales = &dto.SalesInfoResponse{
			Fees:          lead.Sales.Fees,
			TotalFees:     lead.Sales.TotalFees,
			FeesCollected: lead.Sales.FeesCollected,
			Outstanding:   lead.Sales.Outstanding(),
			FeesType:      string(lead.Sales.FeesType),
			Note:          lead.Sales.Note,
		}
	}
	return resp
}
