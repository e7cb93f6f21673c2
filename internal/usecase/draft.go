package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/naass/lead-api/internal/entity"
)

const MaxDraftList = 100

// Locator resolves the public address and location of a client. Lookups are
// best-effort: on failure it returns the input ip and a nil location.
type Locator interface {
	Resolve(ctx context.Context, ip string) (string, *entity.Location)
}

type SaveDraftInput struct {
	Key       string
	FormType  string
	Data      entity.FormData
	SessionID string
	IPAddress string
	UserAgent string
}

type DraftService struct {
	Repo    entity.DraftRepository
	Locator Locator
	Now     func() time.Time
	logger  zerolog.Logger
}

func NewDraftService(repo entity.DraftRepository, locator Locator, logger zerolog.Logger) *DraftService {
	return &DraftService{
		Repo:    repo,
		Locator: locator,
		Now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.With().Str("component", "drafts").Logger(),
	}
}

func (s *DraftService) SaveDraft(ctx context.Context, in SaveDraftInput) (*entity.Draft, error) {
	if strings.TrimSpace(in.Key) == "" || in.Data == nil {
		return nil, InvalidArgument("Key and data are required")
	}
	formType, err := entity.ParseFormType(in.FormType)
	if err != nil {
		return nil, InvalidArgument("Invalid form type")
	}

	ip := in.IPAddress
	var loc *entity.Location
	if s.Locator != nil {
		ip, loc = s.Locator.Resolve(ctx, ip)
	}

	draft := &entity.Draft{
		Key:       in.Key,
		FormType:  formType,
		Data:      in.Data.Clone(),
		SessionID: in.SessionID,
		IPAddress: ip,
		UserAgent: in.UserAgent,
		Location:  loc,
		Progress:  entity.CalculateProgress(in.Data),
		ExpiresAt: entity.NextExpiry(s.Now()),
	}

	if err := s.Repo.Upsert(ctx, draft); err != nil {
		return nil, storeFailure("failed to save draft", err)
	}

	s.logger.Debug().
		Str("draft_id", draft.ID).
		Str("form_type", string(formType)).
		Int("progress", draft.Progress).
		Str("ip", ip).
		Msg("draft saved")

	return draft, nil
}

// GetDraft returns nil, nil on a miss. A hit extends the draft's expiry.
func (s *DraftService) GetDraft(ctx context.Context, key, rawFormType string) (*entity.Draft, error) {
	formType, err := s.validateKey(key, rawFormType)
	if err != nil {
		return nil, err
	}

	draft, err := s.Repo.FindByKey(ctx, key, formType, entity.NextExpiry(s.Now()))
	if err != nil {
		return nil, storeFailure("failed to fetch draft", err)
	}
	return draft, nil
}

func (s *DraftService) DeleteDraft(ctx context.Context, key, rawFormType string) (bool, error) {
	formType, err := s.validateKey(key, rawFormType)
	if err != nil {
		return false, err
	}

	deleted, err := s.Repo.Delete(ctx, key, formType)
	if err != nil {
		return false, storeFailure("failed to delete draft", err)
	}
	return deleted, nil
}

func (s *DraftService) ListDrafts(ctx context.Context, limit int) ([]*entity.Draft, error) {
	if limit <= 0 || limit > MaxDraftList {
		limit = MaxDraftList
	}
	drafts, err := s.Repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, storeFailure("failed to fetch drafts", err)
	}
	return drafts, nil
}

func (s *DraftService) BulkDeleteDrafts(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, InvalidArgument("No draft IDs provided")
	}
	n, err := s.Repo.BulkDelete(ctx, ids)
	if err != nil {
		return 0, storeFailure("failed to delete drafts", err)
	}
	return n, nil
}

func (s *DraftService) validateKey(key, rawFormType string) (entity.FormType, error) {
	if strings.TrimSpace(key) == "" {
		return "", InvalidArgument("Key is required")
	}
	formType, err := entity.ParseFormType(rawFormType)
	if err != nil {
		return "", InvalidArgument("Invalid form type")
	}
	return formType, nil
}
