// Package memstore keeps drafts and leads in process memory. It backs
// STORE_DRIVER=memory for local development and the end-to-end tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naass/lead-api/internal/entity"
)

type draftKey struct {
	key      string
	formType entity.FormType
}

type DraftStore struct {
	mu     sync.Mutex
	drafts map[draftKey]*entity.Draft
	Now    func() time.Time
}

var _ entity.DraftRepository = (*DraftStore)(nil)

func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[draftKey]*entity.Draft),
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *DraftStore) Upsert(_ context.Context, d *entity.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	k := draftKey{d.Key, d.FormType}
	if existing, ok := s.drafts[k]; ok && existing.ExpiresAt.After(now) {
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
	} else {
		d.ID = uuid.New().String()
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	s.drafts[k] = copyDraft(d)
	return nil
}

func (s *DraftStore) FindByKey(_ context.Context, key string, formType entity.FormType, expiresAt time.Time) (*entity.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[draftKey{key, formType}]
	if !ok || !d.ExpiresAt.After(s.Now()) {
		return nil, nil
	}
	d.ExpiresAt = expiresAt
	return copyDraft(d), nil
}

func (s *DraftStore) Delete(_ context.Context, key string, formType entity.FormType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := draftKey{key, formType}
	if _, ok := s.drafts[k]; !ok {
		return false, nil
	}
	delete(s.drafts, k)
	return true, nil
}

func (s *DraftStore) ListRecent(_ context.Context, limit int) ([]*entity.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		out = append(out, copyDraft(d))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *DraftStore) BulkDelete(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var n int64
	for k, d := range s.drafts {
		if _, ok := wanted[d.ID]; ok {
			delete(s.drafts, k)
			n++
		}
	}
	return n, nil
}

func (s *DraftStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, d := range s.drafts {
		if d.ExpiresAt.Before(now) {
			delete(s.drafts, k)
			n++
		}
	}
	return n, nil
}

// Len reports how many drafts are held, expired or not.
func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func copyDraft(d *entity.Draft) *entity.Draft {
	cp := *d
	cp.Data = d.Data.Clone()
	if d.Location != nil {
		loc := *d.Location
		cp.Location = &loc
	}
	return &cp
}
