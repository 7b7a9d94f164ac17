package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/admissions-crm/internal/leadfilter"
	"github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// SavedFilter is a named criteria preset owned by one user.
type SavedFilter struct {
	Name     string
	Criteria leadfilter.Criteria
}

// SavedFilterRepository stores per-user filter presets.
type SavedFilterRepository interface {
	List(ctx context.Context, userID string) ([]SavedFilter, error)
	Get(ctx context.Context, userID, name string) (*SavedFilter, error)
	Save(ctx context.Context, userID string, filter SavedFilter) error
	Delete(ctx context.Context, userID, name string) error
}

type redisSavedFilterRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisSavedFilterRepository keeps each user's presets in one hash.
func NewRedisSavedFilterRepository(client *redis.Client, prefix string) SavedFilterRepository {
	return &redisSavedFilterRepository{client: client, prefix: prefix}
}

func (r *redisSavedFilterRepository) key(userID string) string {
	return fmt.Sprintf("%s:saved_filters:%s", r.prefix, userID)
}

func (r *redisSavedFilterRepository) List(ctx context.Context, userID string) ([]SavedFilter, error) {
	values, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	result := make([]SavedFilter, 0, len(values))
	for name, raw := range values {
		var criteria leadfilter.Criteria
		if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
			return nil, fmt.Errorf("decode saved filter %q: %w", name, err)
		}
		result = append(result, SavedFilter{Name: name, Criteria: criteria})
	}
	sortFilters(result)
	return result, nil
}

func (r *redisSavedFilterRepository) Get(ctx context.Context, userID, name string) (*SavedFilter, error) {
	raw, err := r.client.HGet(ctx, r.key(userID), name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, errorutil.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var criteria leadfilter.Criteria
	if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
		return nil, fmt.Errorf("decode saved filter %q: %w", name, err)
	}
	return &SavedFilter{Name: name, Criteria: criteria}, nil
}

func (r *redisSavedFilterRepository) Save(ctx context.Context, userID string, filter SavedFilter) error {
	payload, err := json.Marshal(filter.Criteria)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.key(userID), filter.Name, payload).Err()
}

func (r *redisSavedFilterRepository) Delete(ctx context.Context, userID, name string) error {
	removed, err := r.client.HDel(ctx, r.key(userID), name).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return errorutil.ErrNotFound
	}
	return nil
}

type memorySavedFilterRepository struct {
	mu      sync.RWMutex
	filters map[string]map[string]leadfilter.Criteria
}

// NewMemorySavedFilterRepository is used when Redis is not configured.
func NewMemorySavedFilterRepository() SavedFilterRepository {
	return &memorySavedFilterRepository{filters: make(map[string]map[string]leadfilter.Criteria)}
}

func (r *memorySavedFilterRepository) List(_ context.Context, userID string) ([]SavedFilter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]SavedFilter, 0, len(r.filters[userID]))
	for name, criteria := range r.filters[userID] {
		result = append(result, SavedFilter{Name: name, Criteria: cloneCriteria(criteria)})
	}
	sortFilters(result)
	return result, nil
}

func (r *memorySavedFilterRepository) Get(_ context.Context, userID, name string) (*SavedFilter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	criteria, ok := r.filters[userID][name]
	if !ok {
		return nil, errorutil.ErrNotFound
	}
	return &SavedFilter{Name: name, Criteria: cloneCriteria(criteria)}, nil
}

func (r *memorySavedFilterRepository) Save(_ context.Context, userID string, filter SavedFilter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.filters[userID] == nil {
		r.filters[userID] = make(map[string]leadfilter.Criteria)
	}
	r.filters[userID][filter.Name] = cloneCriteria(filter.Criteria)
	return nil
}

func (r *memorySavedFilterRepository) Delete(_ context.Context, userID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.filters[userID][name]; !ok {
		return errorutil.ErrNotFound
	}
	delete(r.filters[userID], name)
	return nil
}

func sortFilters(filters []SavedFilter) {
	sort.Slice(filters, func(i, j int) bool { return filters[i].Name < filters[j].Name })
}

// cloneCriteria round-trips through JSON so stored presets never alias caller slices.
func cloneCriteria(c leadfilter.Criteria) leadfilter.Criteria {
	payload, err := json.Marshal(c)
	if err != nil {
		return c
	}
	var out leadfilter.Criteria
	if err := json.Unmarshal(payload, &out); err != nil {
		return c
	}
	return out
}
