package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// The memory repositories back local mode and service tests. They copy on
// every read and write so callers never share state with the store.

type memoryUserRepository struct {
	mu    sync.RWMutex
	order []string
	users map[string]domain.User
}

// NewMemoryUserRepository returns an empty in-memory directory.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]domain.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return errorutil.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = cloneUser(*user)
	r.order = append(r.order, user.ID)
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[user.ID]
	if !ok {
		return errorutil.ErrNotFound
	}
	user.Email = strings.ToLower(user.Email)
	for id, existing := range r.users {
		if id != user.ID && existing.Email == user.Email {
			return errorutil.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errorutil.ErrNotFound
	}
	out := cloneUser(user)
	return &out, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(email)
	for _, user := range r.users {
		if user.Email == email {
			out := cloneUser(user)
			return &out, nil
		}
	}
	return nil, errorutil.ErrNotFound
}

func (r *memoryUserRepository) List(_ context.Context, filter UserFilter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.User
	for _, id := range r.order {
		user := r.users[id]
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Branch != nil && user.Branch != *filter.Branch {
			continue
		}
		if filter.Active != nil && user.IsActive != *filter.Active {
			continue
		}
		result = append(result, cloneUser(user))
	}
	return result, nil
}

func cloneUser(user domain.User) domain.User {
	if user.ReportsTo != nil {
		managerID := *user.ReportsTo
		user.ReportsTo = &managerID
	}
	return user
}

type memoryLeadRepository struct {
	mu    sync.RWMutex
	order []string
	leads map[string]domain.Lead
}

// NewMemoryLeadRepository returns an empty in-memory lead store.
func NewMemoryLeadRepository() LeadRepository {
	return &memoryLeadRepository{leads: make(map[string]domain.Lead)}
}

func (r *memoryLeadRepository) Create(_ context.Context, lead *domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(lead)
	return nil
}

func (r *memoryLeadRepository) CreateBatch(_ context.Context, leads []domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range leads {
		r.insert(&leads[i])
	}
	return nil
}

func (r *memoryLeadRepository) insert(lead *domain.Lead) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	if lead.UpdatedAt.IsZero() {
		lead.UpdatedAt = now
	}
	r.leads[lead.ID] = cloneLead(*lead)
	r.order = append(r.order, lead.ID)
}

func (r *memoryLeadRepository) Update(_ context.Context, lead *domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.leads[lead.ID]
	if !ok {
		return errorutil.ErrNotFound
	}
	lead.CreatedAt = current.CreatedAt
	lead.UpdatedAt = time.Now().UTC()
	r.leads[lead.ID] = cloneLead(*lead)
	return nil
}

func (r *memoryLeadRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[id]; !ok {
		return errorutil.ErrNotFound
	}
	delete(r.leads, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryLeadRepository) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, errorutil.ErrNotFound
	}
	out := cloneLead(lead)
	return &out, nil
}

// List returns newest leads first, matching the SQL ordering.
func (r *memoryLeadRepository) List(_ context.Context, filter LeadFilter) ([]domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var assignees map[string]struct{}
	if filter.AssignedTo != nil {
		assignees = make(map[string]struct{}, len(filter.AssignedTo))
		for _, id := range filter.AssignedTo {
			assignees[id] = struct{}{}
		}
	}

	result := make([]domain.Lead, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		lead := r.leads[r.order[i]]
		if assignees != nil {
			if _, ok := assignees[lead.AssignedTo]; !ok {
				continue
			}
		}
		if filter.AdmissionsOnly && !lead.IsAdmission() {
			continue
		}
		if filter.WithFollowUp && lead.NotesDate == "" {
			continue
		}
		result = append(result, cloneLead(lead))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func cloneLead(lead domain.Lead) domain.Lead {
	if lead.Sales != nil {
		sales := *lead.Sales
		lead.Sales = &sales
	}
	return lead
}

type memoryCourseRepository struct {
	mu      sync.RWMutex
	courses map[string]domain.Course
}

// NewMemoryCourseRepository returns an empty in-memory catalog.
func NewMemoryCourseRepository() CourseRepository {
	return &memoryCourseRepository{courses: make(map[string]domain.Course)}
}

func (r *memoryCourseRepository) Create(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.courses {
		if strings.EqualFold(existing.Name, course.Name) {
			return errorutil.NewConflict("course already exists", map[string]any{"name": course.Name})
		}
	}
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt, course.UpdatedAt = now, now
	r.courses[course.ID] = *course
	return nil
}

func (r *memoryCourseRepository) Update(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.courses[course.ID]
	if !ok {
		return errorutil.ErrNotFound
	}
	course.CreatedAt = current.CreatedAt
	course.UpdatedAt = time.Now().UTC()
	r.courses[course.ID] = *course
	return nil
}

func (r *memoryCourseRepository) GetByID(_ context.Context, id string) (*domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	course, ok := r.courses[id]
	if !ok {
		return nil, errorutil.ErrNotFound
	}
	return &course, nil
}

func (r *memoryCourseRepository) List(_ context.Context, activeOnly bool) ([]domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Course, 0, len(r.courses))
	for _, course := range r.courses {
		if activeOnly && !course.IsActive {
			continue
		}
		result = append(result, course)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

type memoryLeadActivityRepository struct {
	mu         sync.RWMutex
	activities []domain.LeadActivity
}

// NewMemoryLeadActivityRepository returns an empty in-memory activity log.
func NewMemoryLeadActivityRepository() LeadActivityRepository {
	return &memoryLeadActivityRepository{}
}

func (r *memoryLeadActivityRepository) Create(_ context.Context, activity *domain.LeadActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	activity.CreatedAt = time.Now().UTC()
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *memoryLeadActivityRepository) ListByLead(_ context.Context, leadID string) ([]domain.LeadActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.LeadActivity
	for _, activity := range r.activities {
		if activity.LeadID == leadID {
			result = append(result, activity)
		}
	}
	return result, nil
}
