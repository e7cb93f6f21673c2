package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/naass/lead-api/internal/entity"
)

// LeadNotifier announces a new lead. Implementations may queue or send directly.
type LeadNotifier interface {
	NotifyLeadCreated(ctx context.Context, lead *entity.Lead) error
}

type ContactInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Service  string `json:"service" validate:"required"`
	Message  string `json:"message"`
	DraftKey string `json:"draftKey"`

	SessionID string `json:"-"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type SubmitContactUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Drafts   entity.DraftRepository
	Locator  Locator
	Notifier LeadNotifier
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewSubmitContactUseCase(
	leads entity.LeadRepositoryInterface,
	drafts entity.DraftRepository,
	locator Locator,
	notifier LeadNotifier,
	logger zerolog.Logger,
) *SubmitContactUseCase {
	return &SubmitContactUseCase{
		Leads:    leads,
		Drafts:   drafts,
		Locator:  locator,
		Notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "contact").Logger(),
	}
}

func (uc *SubmitContactUseCase) Execute(ctx context.Context, in ContactInput) (*entity.Lead, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Service = strings.TrimSpace(in.Service)

	if err := uc.validate.Struct(in); err != nil {
		return nil, InvalidArgument(describeValidation(err))
	}

	lead, err := entity.NewLead(in.Name, in.Email, in.Phone, in.Company, in.Service, in.Message)
	if err != nil {
		return nil, InvalidArgument(err.Error())
	}

	ip := in.IPAddress
	if uc.Locator != nil {
		ip, lead.Location = uc.Locator.Resolve(ctx, ip)
	}
	lead.IPAddress = ip
	lead.UserAgent = in.UserAgent
	lead.SessionID = in.SessionID

	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, storeFailure("failed to save lead", err)
	}

	if in.DraftKey != "" && uc.Drafts != nil {
		if _, err := uc.Drafts.Delete(ctx, in.DraftKey, entity.FormTypeContact); err != nil {
			uc.logger.Warn().Err(err).Str("lead_id", lead.ID).Msg("could not clear contact draft")
		}
	}

	if uc.Notifier != nil {
		if err := uc.Notifier.NotifyLeadCreated(ctx, lead); err != nil {
			uc.logger.Error().Err(err).Str("lead_id", lead.ID).Msg("lead notification failed")
		}
	}

	uc.logger.Info().Str("lead_id", lead.ID).Str("service", lead.Service).Msg("lead created")
	return lead, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
