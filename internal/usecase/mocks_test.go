package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/naass/lead-api/internal/entity"
)

type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Upsert(ctx context.Context, d *entity.Draft) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDraftRepository) FindByKey(ctx context.Context, key string, formType entity.FormType, expiresAt time.Time) (*entity.Draft, error) {
	args := m.Called(ctx, key, formType, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Draft), args.Error(1)
}

func (m *MockDraftRepository) Delete(ctx context.Context, key string, formType entity.FormType) (bool, error) {
	args := m.Called(ctx, key, formType)
	return args.Bool(0), args.Error(1)
}

func (m *MockDraftRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Draft, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Draft), args.Error(1)
}

func (m *MockDraftRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDraftRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entity.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepository) Stats(ctx context.Context, since time.Time) (*entity.LeadStats, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(*entity.LeadStats), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) (*entity.Lead, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Resolve(ctx context.Context, ip string) (string, *entity.Location) {
	args := m.Called(ctx, ip)
	loc, _ := args.Get(1).(*entity.Location)
	return args.String(0), loc
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyLeadCreated(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}
