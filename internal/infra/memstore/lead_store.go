package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/naass/lead-api/internal/entity"
)

type LeadStore struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead
	Now   func() time.Time
}

var _ entity.LeadRepositoryInterface = (*LeadStore)(nil)

func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads: make(map[string]*entity.Lead),
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *LeadStore) Create(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = copyLead(lead)
	return nil
}

// sorted returns the leads matching status, newest first. Caller holds mu.
func (s *LeadStore) sorted(status entity.LeadStatus) []*entity.Lead {
	out := make([]*entity.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *LeadStore) List(_ context.Context, filter entity.LeadFilter) ([]*entity.Lead, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sorted(filter.Status)
	total := int64(len(all))

	start := (filter.Page - 1) * filter.Limit
	if start < 0 {
		start = 0
	}
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(all) {
		end = len(all)
	}

	out := make([]*entity.Lead, 0, end-start)
	for _, l := range all[start:end] {
		out = append(out, copyLead(l))
	}
	return out, total, nil
}

func (s *LeadStore) Stats(_ context.Context, since time.Time) (*entity.LeadStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &entity.LeadStats{
		ByStatus:    []entity.StatusCount{},
		TopServices: []entity.ServiceCount{},
	}
	byStatus := map[entity.LeadStatus]int64{}
	byService := map[string]int64{}
	for _, l := range s.leads {
		stats.Total++
		if !l.CreatedAt.Before(since) {
			stats.Today++
		}
		byStatus[l.Status]++
		byService[l.Service]++
	}

	for st, n := range byStatus {
		stats.ByStatus = append(stats.ByStatus, entity.StatusCount{Status: st, Count: n})
	}
	sort.Slice(stats.ByStatus, func(i, j int) bool { return stats.ByStatus[i].Status < stats.ByStatus[j].Status })

	for svc, n := range byService {
		stats.TopServices = append(stats.TopServices, entity.ServiceCount{Service: svc, Count: n})
	}
	sort.Slice(stats.TopServices, func(i, j int) bool {
		a, b := stats.TopServices[i], stats.TopServices[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Service < b.Service
	})
	if len(stats.TopServices) > 5 {
		stats.TopServices = stats.TopServices[:5]
	}
	return stats, nil
}

func (s *LeadStore) UpdateStatus(_ context.Context, id string, status entity.LeadStatus) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	l.Status = status
	l.UpdatedAt = s.Now()
	return copyLead(l), nil
}

func (s *LeadStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[id]; !ok {
		return entity.ErrLeadNotFound
	}
	delete(s.leads, id)
	return nil
}

func (s *LeadStore) BulkDelete(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := s.leads[id]; ok {
			delete(s.leads, id)
			n++
		}
	}
	return n, nil
}

func copyLead(l *entity.Lead) *entity.Lead {
	cp := *l
	if l.Location != nil {
		loc := *l.Location
		cp.Location = &loc
	}
	return &cp
}
