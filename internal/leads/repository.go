package leads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	GetByID(ctx context.Context, agencyID, id string) (*Lead, error)
	// CheckDuplicate returns the id of an existing lead in the agency with the
	// same phone. Empty first/last names are ignored rather than matched.
	// Returns "" when nothing matches.
	CheckDuplicate(ctx context.Context, agencyID, firstName, lastName, phone string) (string, error)
	ListByAgency(ctx context.Context, agencyID string, filter ListLeadsFilter) ([]*Lead, error)
}

// InMemoryRepository is an implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Create creates a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := req.toLead(uuid.New().String(), time.Now().UTC())

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.mu.Unlock()

	return lead, nil
}

// GetByID retrieves a lead by ID within an agency
func (r *InMemoryRepository) GetByID(ctx context.Context, agencyID, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok || lead.AgencyID != agencyID {
		return nil, ErrLeadNotFound
	}

	return lead, nil
}

// CheckDuplicate finds the oldest lead in the agency sharing the phone number.
func (r *InMemoryRepository) CheckDuplicate(ctx context.Context, agencyID, firstName, lastName, phone string) (string, error) {
	digits := phoneDigits(phone)
	if digits == "" {
		return "", nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var match *Lead
	for _, lead := range r.leads {
		if lead.AgencyID != agencyID || phoneDigits(lead.Phone) != digits {
			continue
		}
		if firstName != "" && !strings.EqualFold(lead.FirstName, firstName) {
			continue
		}
		if lastName != "" && !strings.EqualFold(lead.LastName, lastName) {
			continue
		}
		if match == nil || lead.CreatedAt.Before(match.CreatedAt) {
			match = lead
		}
	}
	if match == nil {
		return "", nil
	}
	return match.ID, nil
}

// ListByAgency returns the agency's leads, newest first.
func (r *InMemoryRepository) ListByAgency(ctx context.Context, agencyID string, filter ListLeadsFilter) ([]*Lead, error) {
	r.mu.RLock()
	out := make([]*Lead, 0)
	for _, lead := range r.leads {
		if lead.AgencyID != agencyID {
			continue
		}
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		if filter.Source != "" && lead.Source != filter.Source {
			continue
		}
		out = append(out, lead)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*Lead{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
