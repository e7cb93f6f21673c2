package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naass/lead-api/internal/entity"
)

var draftRowColumns = []string{
	"id", "draft_key", "form_type", "data", "session_id", "ip_address", "user_agent",
	"location", "progress", "created_at", "updated_at", "expires_at",
}

func newDraftRepo(t *testing.T) (*DraftRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDraftRepository(db, 30*time.Second), mock
}

func TestDraftRepositoryUpsertUsesOnConflict(t *testing.T) {
	repo, mock := newDraftRepo(t)
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (draft_key, form_type)")).
		WithArgs(sqlmock.AnyArg(), "k1", "contact", sqlmock.AnyArg(), "sess-1", "203.0.113.9", nil, nil, 17, now.Add(entity.DraftTTL)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("2b7f5d2e-5b7e-4c39-9e0c-7d1b0c6f6a11", now, now))

	d := &entity.Draft{
		Key:       "k1",
		FormType:  entity.FormTypeContact,
		Data:      entity.NewFormData("name", "A"),
		SessionID: "sess-1",
		IPAddress: "203.0.113.9",
		Progress:  17,
		ExpiresAt: now.Add(entity.DraftTTL),
	}
	require.NoError(t, repo.Upsert(context.Background(), d))

	assert.Equal(t, "2b7f5d2e-5b7e-4c39-9e0c-7d1b0c6f6a11", d.ID)
	assert.Equal(t, now, d.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryUpsertRestartsExpiredRow(t *testing.T) {
	repo, mock := newDraftRepo(t)
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("created_at = CASE WHEN drafts.expires_at <= NOW() THEN NOW() ELSE drafts.created_at END")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("7c0e3a51-0a4b-4f7e-8a55-0f3a2a9b1c22", now, now))

	d := &entity.Draft{Key: "k1", FormType: entity.FormTypeContact, Data: entity.NewFormData("name", "B"), ExpiresAt: now.Add(entity.DraftTTL)}
	require.NoError(t, repo.Upsert(context.Background(), d))

	assert.Equal(t, "7c0e3a51-0a4b-4f7e-8a55-0f3a2a9b1c22", d.ID)
	assert.Equal(t, now, d.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryUpsertWrapsError(t *testing.T) {
	repo, mock := newDraftRepo(t)
	mock.ExpectQuery("INSERT INTO drafts").WillReturnError(errors.New("connection reset"))

	err := repo.Upsert(context.Background(), &entity.Draft{Key: "k", FormType: entity.FormTypeLead, Data: entity.FormData{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDraftRepositoryFindByKeyExtendsExpiry(t *testing.T) {
	repo, mock := newDraftRepo(t)
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	newExpiry := now.Add(entity.DraftTTL)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE drafts SET expires_at = $3")).
		WithArgs("k1", "contact", newExpiry).
		WillReturnRows(sqlmock.NewRows(draftRowColumns).AddRow(
			"2b7f5d2e-5b7e-4c39-9e0c-7d1b0c6f6a11", "k1", "contact", []byte(`{"name":"A","phone":null}`),
			"sess-1", "203.0.113.9", nil, []byte(`{"city":"Austin","country":"United States"}`),
			17, now, now, newExpiry,
		))

	d, err := repo.FindByKey(context.Background(), "k1", entity.FormTypeContact, newExpiry)
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, entity.FormTypeContact, d.FormType)
	assert.Equal(t, "A", d.Data.Get("name"))
	assert.Nil(t, d.Data["phone"])
	assert.Equal(t, "", d.UserAgent)
	require.NotNil(t, d.Location)
	assert.Equal(t, "Austin", d.Location.City)
	assert.Equal(t, newExpiry, d.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryFindByKeyMiss(t *testing.T) {
	repo, mock := newDraftRepo(t)
	mock.ExpectQuery("UPDATE drafts").WillReturnRows(sqlmock.NewRows(draftRowColumns))

	d, err := repo.FindByKey(context.Background(), "missing", entity.FormTypeQuiz, time.Now())
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDraftRepositoryDelete(t *testing.T) {
	repo, mock := newDraftRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM drafts WHERE draft_key = $1 AND form_type = $2")).
		WithArgs("k1", "lead").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM drafts").
		WithArgs("k1", "lead").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "k1", entity.FormTypeLead)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), "k1", entity.FormTypeLead)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryListRecent(t *testing.T) {
	repo, mock := newDraftRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY updated_at DESC LIMIT $1")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(draftRowColumns).
			AddRow("id-2", "b", "quiz", []byte(`{}`), "s", nil, nil, nil, 0, now, now, now).
			AddRow("id-1", "a", "lead", []byte(`{"email":"a@b.c"}`), "s", nil, nil, nil, 17, now, now, now))

	drafts, err := repo.ListRecent(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "id-2", drafts[0].ID)
	assert.Nil(t, drafts[0].Location)
	assert.Equal(t, "a@b.c", drafts[1].Data.Get("email"))
}

func TestDraftRepositoryBulkDeleteSkipsInvalidIDs(t *testing.T) {
	repo, mock := newDraftRepo(t)

	n, err := repo.BulkDelete(context.Background(), []string{"not-a-uuid"})
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM drafts WHERE id = ANY($1::uuid[])")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err = repo.BulkDelete(context.Background(), []string{
		"2b7f5d2e-5b7e-4c39-9e0c-7d1b0c6f6a11",
		"9c0f3b5e-1d6a-4a0e-8f55-3c1e2b7d9a44",
		"junk",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryDeleteExpired(t *testing.T) {
	repo, mock := newDraftRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM drafts WHERE expires_at < $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
