package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naass/lead-api/internal/entity"
)

func TestLeadListDefaultsAndPages(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("List", mock.Anything, entity.LeadFilter{Status: entity.LeadStatusContacted, Limit: 50, Page: 1}).
		Return([]*entity.Lead{{ID: "a"}}, int64(101), nil)

	page, err := NewLeadService(repo).List(context.Background(), "contacted", 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Leads, 1)
}

func TestLeadListRejectsUnknownStatus(t *testing.T) {
	_, err := NewLeadService(new(MockLeadRepository)).List(context.Background(), "archived", 10, 1)
	assert.Equal(t, CodeInvalidArgument, DomainCode(err))
}

func TestLeadStatsCountsFromMidnight(t *testing.T) {
	repo := new(MockLeadRepository)
	s := NewLeadService(repo)
	s.Now = func() time.Time { return time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC) }

	midnight := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repo.On("Stats", mock.Anything, midnight).Return(&entity.LeadStats{Total: 4, Today: 1}, nil)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Today)
	repo.AssertExpectations(t)
}

func TestLeadUpdateStatus(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("UpdateStatus", mock.Anything, "known", entity.LeadStatusQualified).
		Return(&entity.Lead{ID: "known", Status: entity.LeadStatusQualified}, nil)
	repo.On("UpdateStatus", mock.Anything, "missing", entity.LeadStatusQualified).
		Return(nil, entity.ErrLeadNotFound)
	s := NewLeadService(repo)

	lead, err := s.UpdateStatus(context.Background(), "known", "qualified")
	require.NoError(t, err)
	assert.Equal(t, entity.LeadStatusQualified, lead.Status)

	_, err = s.UpdateStatus(context.Background(), "missing", "qualified")
	assert.Equal(t, CodeNotFound, DomainCode(err))

	_, err = s.UpdateStatus(context.Background(), "known", "bogus")
	assert.Equal(t, CodeInvalidArgument, DomainCode(err))
}

func TestLeadDeleteAndBulkDelete(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("Delete", mock.Anything, "gone").Return(entity.ErrLeadNotFound)
	repo.On("Delete", mock.Anything, "broken").Return(errors.New("db down"))
	repo.On("BulkDelete", mock.Anything, []string{"a", "b"}).Return(int64(2), nil)
	s := NewLeadService(repo)
	ctx := context.Background()

	assert.Equal(t, CodeNotFound, DomainCode(s.Delete(ctx, "gone")))
	assert.True(t, IsTechnicalError(s.Delete(ctx, "broken")))

	_, err := s.BulkDelete(ctx, nil)
	assert.Equal(t, CodeInvalidArgument, DomainCode(err))

	n, err := s.BulkDelete(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
