package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/naass/lead-api/internal/entity"
)

const draftColumns = `id, draft_key, form_type, data, session_id, ip_address, user_agent,
		location, progress, created_at, updated_at, expires_at`

type DraftRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

var _ entity.DraftRepository = (*DraftRepository)(nil)

func NewDraftRepository(db *sql.DB, timeout time.Duration) *DraftRepository {
	return &DraftRepository{DB: db, Timeout: timeout}
}

// Upsert relies on the (draft_key, form_type) unique constraint, so racing
// saves for the same pair collapse into one row and the last writer wins.
// Saving over an expired row the sweep has not reached yet starts a new draft.
func (r *DraftRepository) Upsert(ctx context.Context, d *entity.Draft) error {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	data, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("encode draft data: %w", err)
	}
	loc, err := encodeLocation(d.Location)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO drafts (id, draft_key, form_type, data, session_id, ip_address, user_agent,
			location, progress, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (draft_key, form_type)
		DO UPDATE SET
			id = CASE WHEN drafts.expires_at <= NOW() THEN EXCLUDED.id ELSE drafts.id END,
			created_at = CASE WHEN drafts.expires_at <= NOW() THEN NOW() ELSE drafts.created_at END,
			data = EXCLUDED.data,
			session_id = EXCLUDED.session_id,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			location = EXCLUDED.location,
			progress = EXCLUDED.progress,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = r.DB.QueryRowContext(
		ctx,
		query,
		uuid.New().String(),
		d.Key,
		string(d.FormType),
		data,
		d.SessionID,
		nullString(d.IPAddress),
		nullString(d.UserAgent),
		loc,
		d.Progress,
		d.ExpiresAt,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

// FindByKey reads and extends a live draft in a single statement.
func (r *DraftRepository) FindByKey(ctx context.Context, key string, formType entity.FormType, expiresAt time.Time) (*entity.Draft, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	query := `
		UPDATE drafts SET expires_at = $3
		WHERE draft_key = $1 AND form_type = $2 AND expires_at > NOW()
		RETURNING ` + draftColumns

	d, err := scanDraft(r.DB.QueryRowContext(ctx, query, key, string(formType), expiresAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find draft: %w", err)
	}
	return d, nil
}

func (r *DraftRepository) Delete(ctx context.Context, key string, formType entity.FormType) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx, `DELETE FROM drafts WHERE draft_key = $1 AND form_type = $2`, key, string(formType))
	if err != nil {
		return false, fmt.Errorf("delete draft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete draft: %w", err)
	}
	return n > 0, nil
}

func (r *DraftRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Draft, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, `SELECT `+draftColumns+` FROM drafts ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	drafts := make([]*entity.Draft, 0)
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// BulkDelete ignores ids that are not UUIDs; they cannot match any row.
func (r *DraftRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	valid := validUUIDs(ids)
	if len(valid) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx, `DELETE FROM drafts WHERE id = ANY($1::uuid[])`, pq.Array(valid))
	if err != nil {
		return 0, fmt.Errorf("bulk delete drafts: %w", err)
	}
	return res.RowsAffected()
}

func (r *DraftRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx, `DELETE FROM drafts WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired drafts: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*entity.Draft, error) {
	var (
		d         entity.Draft
		formType  string
		data      []byte
		ip, agent sql.NullString
		loc       []byte
	)

	err := row.Scan(
		&d.ID,
		&d.Key,
		&formType,
		&data,
		&d.SessionID,
		&ip,
		&agent,
		&loc,
		&d.Progress,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	d.FormType = entity.FormType(formType)
	d.IPAddress = ip.String
	d.UserAgent = agent.String
	if err := json.Unmarshal(data, &d.Data); err != nil {
		return nil, fmt.Errorf("decode draft data: %w", err)
	}
	if d.Location, err = decodeLocation(loc); err != nil {
		return nil, err
	}
	return &d, nil
}

func encodeLocation(loc *entity.Location) (any, error) {
	if loc == nil {
		return nil, nil
	}
	b, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("encode location: %w", err)
	}
	return b, nil
}

func decodeLocation(b []byte) (*entity.Location, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var loc entity.Location
	if err := json.Unmarshal(b, &loc); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &loc, nil
}

func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}
