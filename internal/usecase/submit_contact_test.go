package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naass/lead-api/internal/entity"
)

func TestSubmitContactCreatesLeadAndClearsDraft(t *testing.T) {
	leads := new(MockLeadRepository)
	drafts := new(MockDraftRepository)
	loc := new(MockLocator)
	notifier := new(MockNotifier)

	loc.On("Resolve", mock.Anything, "203.0.113.9").Return("203.0.113.9", &entity.Location{Country: "US"})
	leads.On("Create", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Email == "jane@example.com" &&
			l.Status == entity.LeadStatusNew &&
			l.Progress == 100 &&
			l.Location != nil && l.Location.Country == "US"
	})).Return(nil)
	drafts.On("Delete", mock.Anything, "draft-key", entity.FormTypeContact).Return(true, nil)
	notifier.On("NotifyLeadCreated", mock.Anything, mock.Anything).Return(nil)

	uc := NewSubmitContactUseCase(leads, drafts, loc, notifier, zerolog.Nop())
	lead, err := uc.Execute(context.Background(), ContactInput{
		Name:      "Jane",
		Email:     "Jane@Example.com",
		Service:   "seo",
		DraftKey:  "draft-key",
		IPAddress: "203.0.113.9",
		UserAgent: "Mozilla/5.0",
	})

	require.NoError(t, err)
	assert.Equal(t, "Mozilla/5.0", lead.UserAgent)
	leads.AssertExpectations(t)
	drafts.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSubmitContactValidation(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewSubmitContactUseCase(leads, nil, nil, nil, zerolog.Nop())

	_, err := uc.Execute(context.Background(), ContactInput{Name: " ", Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidArgument, DomainCode(err))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "service is required")
	leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitContactNotificationFailureDoesNotFail(t *testing.T) {
	leads := new(MockLeadRepository)
	notifier := new(MockNotifier)
	leads.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyLeadCreated", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	uc := NewSubmitContactUseCase(leads, nil, nil, notifier, zerolog.Nop())
	lead, err := uc.Execute(context.Background(), ContactInput{Name: "A", Email: "a@b.co", Service: "ppc"})

	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
}

func TestSubmitContactStoreFailure(t *testing.T) {
	leads := new(MockLeadRepository)
	leads.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	uc := NewSubmitContactUseCase(leads, nil, nil, nil, zerolog.Nop())
	_, err := uc.Execute(context.Background(), ContactInput{Name: "A", Email: "a@b.co", Service: "ppc"})

	assert.True(t, IsTechnicalError(err))
}
