package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/naass/lead-api/internal/entity"
)

const (
	DefaultLeadPageSize = 50
	MaxLeadPageSize     = 500
)

type LeadPage struct {
	Leads      []*entity.Lead
	Total      int64
	Page       int
	TotalPages int
}

// LeadService backs the admin dashboard.
type LeadService struct {
	Repo entity.LeadRepositoryInterface
	Now  func() time.Time
}

func NewLeadService(repo entity.LeadRepositoryInterface) *LeadService {
	return &LeadService{Repo: repo, Now: time.Now}
}

func (s *LeadService) List(ctx context.Context, rawStatus string, limit, page int) (*LeadPage, error) {
	var status entity.LeadStatus
	if rawStatus != "" {
		st, err := entity.ParseLeadStatus(rawStatus)
		if err != nil {
			return nil, InvalidArgument("Invalid status")
		}
		status = st
	}
	if limit <= 0 {
		limit = DefaultLeadPageSize
	}
	if limit > MaxLeadPageSize {
		limit = MaxLeadPageSize
	}
	if page <= 0 {
		page = 1
	}

	leads, total, err := s.Repo.List(ctx, entity.LeadFilter{Status: status, Limit: limit, Page: page})
	if err != nil {
		return nil, storeFailure("Error fetching leads", err)
	}
	return &LeadPage{
		Leads:      leads,
		Total:      total,
		Page:       page,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// Stats counts "today" from local midnight.
func (s *LeadService) Stats(ctx context.Context) (*entity.LeadStats, error) {
	now := s.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats, err := s.Repo.Stats(ctx, midnight)
	if err != nil {
		return nil, storeFailure("Error fetching statistics", err)
	}
	return stats, nil
}

func (s *LeadService) UpdateStatus(ctx context.Context, id, rawStatus string) (*entity.Lead, error) {
	status, err := entity.ParseLeadStatus(rawStatus)
	if err != nil {
		return nil, InvalidArgument("Invalid status")
	}
	lead, err := s.Repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, NotFound("Lead not found")
	}
	if err != nil {
		return nil, storeFailure("Error updating lead", err)
	}
	return lead, nil
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return NotFound("Lead not found")
	}
	if err != nil {
		return storeFailure("Error deleting lead", err)
	}
	return nil
}

func (s *LeadService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, InvalidArgument("No lead IDs provided")
	}
	n, err := s.Repo.BulkDelete(ctx, ids)
	if err != nil {
		return 0, storeFailure("Failed to delete leads", err)
	}
	return n, nil
}
