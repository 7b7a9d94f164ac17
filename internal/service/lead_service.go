package service

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/admissions-crm/internal/access"
	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/leadfilter"
	"github.com/spec-kit/admissions-crm/internal/report"
	"github.com/spec-kit/admissions-crm/internal/repository"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// LeadService implements lead intake, editing and the visibility-scoped views.
type LeadService struct {
	leads      repository.LeadRepository
	users      repository.UserRepository
	activity   repository.LeadActivityRepository
	resolver   *access.Resolver
	dispatcher events.Dispatcher
	columns    []string
	location   *time.Location
	logger     *zap.Logger
}

// LeadDependencies bundles repositories and collaborators.
type LeadDependencies struct {
	LeadRepo     repository.LeadRepository
	UserRepo     repository.UserRepository
	ActivityRepo repository.LeadActivityRepository
	Resolver     *access.Resolver
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewLeadService constructs the service.
func NewLeadService(cfg config.Config, deps LeadDependencies) *LeadService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	columns := cfg.Kanban.Columns
	if len(columns) == 0 {
		columns = report.DefaultKanbanColumns
	}
	return &LeadService{
		leads:      deps.LeadRepo,
		users:      deps.UserRepo,
		activity:   deps.ActivityRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		columns:    columns,
		location:   cfg.App.Location(),
		logger:     logger,
	}
}

// CreateLeadInput carries intake form fields.
type CreateLeadInput struct {
	FullName          string
	Email             string
	Phone             string
	Country           string
	Qualification     string
	Source            string
	Status            string
	AssignedTo        string
	CourseInterest    string
	Priority          string
	Location          string
	Notes             string
	NotesDate         string
	WhatsAppNumber    string
	PreferredLanguage string
	Sales             *domain.SalesInfo
}

// UpdateLeadInput carries optional edits. Status and assignee have dedicated operations.
type UpdateLeadInput struct {
	FullName          *string
	Email             *string
	Phone             *string
	Country           *string
	Qualification     *string
	Source            *string
	CourseInterest    *string
	Priority          *string
	Location          *string
	Notes             *string
	NotesDate         *string
	WhatsAppNumber    *string
	PreferredLanguage *string
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int
	Skipped  []report.RowError
}

// Visible returns the leads in the actor's scope, newest first, plus the
// directory it was computed from.
func (s *LeadService) Visible(ctx context.Context, actor *domain.User) ([]domain.Lead, []domain.User, error) {
	if actor == nil {
		return nil, nil, apperrors.NewUnauthorized("authentication required")
	}
	users, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, nil, apperrors.ToDomainError(err)
	}

	filter := repository.LeadFilter{}
	if ids, all := s.resolver.Scope(*actor, users); !all {
		filter.AssignedTo = make([]string, 0, len(ids))
		for id := range ids {
			filter.AssignedTo = append(filter.AssignedTo, id)
		}
	}
	leads, err := s.leads.List(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.ToDomainError(err)
	}
	// The store narrows by assignee; Resolve stays the authority on scope.
	return s.resolver.Resolve(*actor, users, leads), users, nil
}

// List returns the visible leads matching criteria.
func (s *LeadService) List(ctx context.Context, actor *domain.User, criteria leadfilter.Criteria) ([]domain.Lead, error) {
	leads, _, err := s.Visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	return leadfilter.Apply(leads, criteria), nil
}

// Board groups the filtered visible leads into the configured kanban columns.
func (s *LeadService) Board(ctx context.Context, actor *domain.User, criteria leadfilter.Criteria) (report.Board, error) {
	leads, err := s.List(ctx, actor, criteria)
	if err != nil {
		return report.Board{}, err
	}
	return report.GroupByStatus(leads, s.columns), nil
}

// Export writes the filtered visible leads as CSV.
func (s *LeadService) Export(ctx context.Context, actor *domain.User, criteria leadfilter.Criteria, w io.Writer) error {
	leads, users, err := s.Visible(ctx, actor)
	if err != nil {
		return err
	}
	if err := report.WriteLeadsCSV(w, leadfilter.Apply(leads, criteria), users); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Get returns a lead the actor can see.
func (s *LeadService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Lead, error) {
	lead, _, err := s.load(ctx, actor, id)
	return lead, err
}

// Create records a new lead. Unassigned leads go to the actor so they remain visible to them.
func (s *LeadService) Create(ctx context.Context, actor *domain.User, input CreateLeadInput) (*domain.Lead, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, apperrors.NewValidationError("full name is required", nil)
	}
	if err := validateNotesDate(input.NotesDate); err != nil {
		return nil, err
	}

	assignee := strings.TrimSpace(input.AssignedTo)
	if assignee == "" {
		assignee = actor.ID
	}
	if err := s.checkAssignee(ctx, actor, assignee); err != nil {
		return nil, err
	}

	lead := &domain.Lead{
		FullName:          strings.TrimSpace(input.FullName),
		Email:             strings.TrimSpace(input.Email),
		Phone:             strings.TrimSpace(input.Phone),
		Country:           input.Country,
		Qualification:     input.Qualification,
		Source:            input.Source,
		Status:            domain.StatusFreshLead,
		AssignedTo:        assignee,
		CourseInterest:    input.CourseInterest,
		Priority:          input.Priority,
		Location:          input.Location,
		Notes:             input.Notes,
		NotesDate:         input.NotesDate,
		WhatsAppNumber:    input.WhatsAppNumber,
		PreferredLanguage: input.PreferredLanguage,
	}
	if strings.TrimSpace(input.Status) != "" {
		lead.Status = domain.CanonicalStatus(input.Status)
	}
	if lead.IsAdmission() {
		if input.Sales == nil {
			return nil, apperrors.NewValidationError(domain.ErrSalesInfoIncomplete.Error(), nil)
		}
		if err := lead.Admit(*input.Sales); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	s.record(ctx, actor.ID, lead.ID, domain.ChangeTypeCreated, nil, map[string]any{
		"status":      lead.Status,
		"assigned_to": lead.AssignedTo,
	})
	s.publish(ctx, events.New(events.EventLeadCreated, lead.ID, actor.ID, events.LeadCreatedPayload{
		FullName:   lead.FullName,
		Source:     lead.Source,
		AssignedTo: lead.AssignedTo,
	}))
	return lead, nil
}

// Update edits descriptive fields and follow-up notes.
func (s *LeadService) Update(ctx context.Context, actor *domain.User, id string, input UpdateLeadInput) (*domain.Lead, error) {
	lead, _, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	oldNotes := map[string]any{"notes": lead.Notes, "notes_date": lead.NotesDate}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&lead.FullName, input.FullName)
	assign(&lead.Email, input.Email)
	assign(&lead.Phone, input.Phone)
	assign(&lead.Country, input.Country)
	assign(&lead.Qualification, input.Qualification)
	assign(&lead.Source, input.Source)
	assign(&lead.CourseInterest, input.CourseInterest)
	assign(&lead.Priority, input.Priority)
	assign(&lead.Location, input.Location)
	assign(&lead.WhatsAppNumber, input.WhatsAppNumber)
	assign(&lead.PreferredLanguage, input.PreferredLanguage)
	if input.Notes != nil {
		lead.Notes = *input.Notes
	}
	if input.NotesDate != nil {
		if err := validateNotesDate(*input.NotesDate); err != nil {
			return nil, err
		}
		lead.NotesDate = strings.TrimSpace(*input.NotesDate)
	}
	if lead.FullName == "" {
		return nil, apperrors.NewValidationError("full name is required", nil)
	}

	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, notFoundOr(err, "lead", id)
	}
	if input.Notes != nil || input.NotesDate != nil {
		s.record(ctx, actor.ID, lead.ID, domain.ChangeTypeNotes, oldNotes, map[string]any{
			"notes":      lead.Notes,
			"notes_date": lead.NotesDate,
		})
	}
	return lead, nil
}

// ChangeStatus sets a new status. Entering the admission state requires fee
// details, either passed in or already on the lead. Leaving it clears them.
func (s *LeadService) ChangeStatus(ctx context.Context, actor *domain.User, id, status string, sales *domain.SalesInfo) (*domain.Lead, error) {
	if strings.TrimSpace(status) == "" {
		return nil, apperrors.NewValidationError("status is required", nil)
	}
	lead, _, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	oldStatus := lead.Status
	target := domain.CanonicalStatus(status)
	admitted := domain.IsAdmissionStatus(target) && !lead.IsAdmission()
	if domain.IsAdmissionStatus(target) {
		info := sales
		if info == nil {
			info = lead.Sales
		}
		if info == nil {
			return nil, apperrors.NewValidationError(domain.ErrSalesInfoIncomplete.Error(), map[string]any{"status": target})
		}
		if err := lead.Admit(*info); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"status": target})
		}
	} else {
		lead.SetStatus(target)
	}

	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, notFoundOr(err, "lead", id)
	}
	s.record(ctx, actor.ID, lead.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": lead.Status})
	s.publish(ctx, events.New(events.EventLeadStatusChanged, lead.ID, actor.ID, events.LeadStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: lead.Status,
	}))
	if admitted {
		s.record(ctx, actor.ID, lead.ID, domain.ChangeTypeAdmitted, nil, map[string]any{
			"total_fees":     lead.Sales.TotalFees.String(),
			"fees_collected": lead.Sales.FeesCollected.String(),
		})
		s.publish(ctx, events.New(events.EventLeadAdmitted, lead.ID, actor.ID, events.LeadAdmittedPayload{
			Course:        lead.CourseInterest,
			TotalFees:     lead.Sales.TotalFees.String(),
			FeesCollected: lead.Sales.FeesCollected.String(),
		}))
	}
	return lead, nil
}

// MoveCard applies a kanban drop. Only a configured column is a valid target.
func (s *LeadService) MoveCard(ctx context.Context, actor *domain.User, id, column string, sales *domain.SalesInfo) (*domain.Lead, error) {
	status, ok := report.ResolveColumn(s.columns, column)
	if !ok {
		return nil, apperrors.NewValidationError("drop target is not a board column", map[string]any{"column": column})
	}
	return s.ChangeStatus(ctx, actor, id, status, sales)
}

// Columns returns the configured board columns.
func (s *LeadService) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Delete removes a visible lead.
func (s *LeadService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if _, _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.leads.Delete(ctx, id); err != nil {
		return notFoundOr(err, "lead", id)
	}
	s.logger.Info("lead deleted", zap.String("lead_id", id), zap.String("actor_id", actor.ID))
	return nil
}

// Activity returns the change log of a visible lead, oldest first.
func (s *LeadService) Activity(ctx context.Context, actor *domain.User, id string) ([]domain.LeadActivity, error) {
	if _, _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.activity.ListByLead(ctx, id)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return entries, nil
}

// Import parses a CSV upload and stores the valid rows in one batch. Rows
// assigned to users the actor may not assign to fall back to the actor.
func (s *LeadService) Import(ctx context.Context, actor *domain.User, r io.Reader) (ImportResult, error) {
	if actor == nil {
		return ImportResult{}, apperrors.NewUnauthorized("authentication required")
	}
	users, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return ImportResult{}, apperrors.ToDomainError(err)
	}
	leads, skipped, err := report.ReadLeadsCSV(r, users)
	if err != nil {
		return ImportResult{}, apperrors.NewValidationError(err.Error(), nil)
	}

	byID := report.UsersByID(users)
	for i := range leads {
		assignee, ok := byID[leads[i].AssignedTo]
		if !ok || (assignee.ID != actor.ID && !access.CanAssignTo(actor.Role, assignee.Role)) {
			leads[i].AssignedTo = actor.ID
		}
		if leads[i].IsAdmission() {
			// Imported admissions carry no fee record; they enter as follow-ups.
			leads[i].Status = domain.StatusFollowup
		}
	}
	if len(leads) > 0 {
		if err := s.leads.CreateBatch(ctx, leads); err != nil {
			return ImportResult{}, apperrors.ToDomainError(err)
		}
	}

	result := ImportResult{Imported: len(leads), Skipped: skipped}
	if result.Skipped == nil {
		result.Skipped = []report.RowError{}
	}
	s.publish(ctx, events.New(events.EventLeadsImported, "", actor.ID, events.LeadsImportedPayload{
		Imported: result.Imported,
		Skipped:  len(result.Skipped),
	}))
	return result, nil
}

// DueFollowUps returns leads whose follow-up time fell within (now-window, now].
func (s *LeadService) DueFollowUps(ctx context.Context, now time.Time, window time.Duration) ([]domain.Lead, error) {
	leads, err := s.leads.List(ctx, repository.LeadFilter{WithFollowUp: true})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	due := make([]domain.Lead, 0)
	for _, lead := range leads {
		at, ok := s.FollowUpTime(lead)
		if !ok {
			continue
		}
		if !at.After(now) && now.Sub(at) < window {
			due = append(due, lead)
		}
	}
	return due, nil
}

// FollowUpTime parses a lead's notes date in the office time zone.
func (s *LeadService) FollowUpTime(lead domain.Lead) (time.Time, bool) {
	at, err := time.ParseInLocation(domain.NotesDateLayout, strings.TrimSpace(lead.NotesDate), s.location)
	return at, err == nil
}

func (s *LeadService) load(ctx context.Context, actor *domain.User, id string) (*domain.Lead, []domain.User, error) {
	if actor == nil {
		return nil, nil, apperrors.NewUnauthorized("authentication required")
	}
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "lead", id)
	}
	users, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, nil, apperrors.ToDomainError(err)
	}
	if !s.resolver.CanSee(*actor, users, *lead) {
		return nil, nil, apperrors.NewForbidden("lead outside caller's scope")
	}
	return lead, users, nil
}

// checkAssignee accepts the actor themselves or an active user whose role the actor may assign to.
func (s *LeadService) checkAssignee(ctx context.Context, actor *domain.User, assigneeID string) error {
	if assigneeID == actor.ID {
		return nil
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("assignee not found", map[string]any{"assigned_to": assigneeID})
		}
		return apperrors.ToDomainError(err)
	}
	if !assignee.IsActive {
		return apperrors.NewConflict("assignee inactive", map[string]any{"assigned_to": assigneeID})
	}
	if !access.CanAssignTo(actor.Role, assignee.Role) {
		return apperrors.NewForbidden("assignee role not assignable by caller")
	}
	return nil
}

func (s *LeadService) record(ctx context.Context, actorID, leadID string, change domain.LeadChangeType, oldValue, newValue map[string]any) {
	if s.activity == nil {
		return
	}
	entry := &domain.LeadActivity{
		LeadID:      leadID,
		ChangedByID: actorID,
		ChangeType:  change,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		s.logger.Warn("record lead activity", zap.String("lead_id", leadID), zap.Error(err))
	}
}

func (s *LeadService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func validateNotesDate(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if _, err := time.Parse(domain.NotesDateLayout, value); err != nil {
		return apperrors.NewValidationError("notes date must be YYYY-MM-DD HH:MM", map[string]any{"notes_date": value})
	}
	return nil
}
