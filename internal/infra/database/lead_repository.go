package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/naass/lead-api/internal/entity"
)

const leadColumns = `id, name, email, phone, company, service, message, status, source,
		ip_address, user_agent, location, session_id, progress, created_at, updated_at`

type LeadRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

var _ entity.LeadRepositoryInterface = (*LeadRepository)(nil)

func NewLeadRepository(db *sql.DB, timeout time.Duration) *LeadRepository {
	return &LeadRepository{DB: db, Timeout: timeout}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	loc, err := encodeLocation(lead.Location)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO leads (id, name, email, phone, company, service, message, status, source,
			ip_address, user_agent, location, session_id, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.DB.ExecContext(
		ctx,
		query,
		lead.ID,
		lead.Name,
		lead.Email,
		nullString(lead.Phone),
		nullString(lead.Company),
		lead.Service,
		nullString(lead.Message),
		string(lead.Status),
		lead.Source,
		nullString(lead.IPAddress),
		nullString(lead.UserAgent),
		loc,
		nullString(lead.SessionID),
		lead.Progress,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, int64, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	limit, page := filter.Limit, filter.Page
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	status := string(filter.Status)

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		status, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]*entity.Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE ($1 = '' OR status = $1)`, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	return leads, total, nil
}

func (r *LeadRepository) Stats(ctx context.Context, since time.Time) (*entity.LeadStats, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	stats := &entity.LeadStats{
		ByStatus:    []entity.StatusCount{},
		TopServices: []entity.ServiceCount{},
	}

	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $1) FROM leads`, since,
	).Scan(&stats.Total, &stats.Today)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	if stats.ByStatus, err = r.countByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.TopServices, err = r.topServices(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *LeadRepository) countByStatus(ctx context.Context) ([]entity.StatusCount, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("leads by status: %w", err)
	}
	defer rows.Close()

	out := []entity.StatusCount{}
	for rows.Next() {
		var sc entity.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads by status: %w", err)
	}
	return out, nil
}

func (r *LeadRepository) topServices(ctx context.Context) ([]entity.ServiceCount, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT service, COUNT(*) AS n FROM leads GROUP BY service ORDER BY n DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top services: %w", err)
	}
	defer rows.Close()

	out := []entity.ServiceCount{}
	for rows.Next() {
		var sc entity.ServiceCount
		if err := rows.Scan(&sc.Service, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan service count: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top services: %w", err)
	}
	return out, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) (*entity.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrLeadNotFound
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	lead, err := scanLead(r.DB.QueryRowContext(ctx, `
		UPDATE leads SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+leadColumns, id, string(status)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update lead status: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return entity.ErrLeadNotFound
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	valid := validUUIDs(ids)
	if len(valid) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = ANY($1::uuid[])`, pq.Array(valid))
	if err != nil {
		return 0, fmt.Errorf("bulk delete leads: %w", err)
	}
	return res.RowsAffected()
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l                       entity.Lead
		status                  string
		phone, company, message sql.NullString
		ip, agent, session      sql.NullString
		loc                     []byte
	)

	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Email,
		&phone,
		&company,
		&l.Service,
		&message,
		&status,
		&l.Source,
		&ip,
		&agent,
		&loc,
		&session,
		&l.Progress,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = entity.LeadStatus(status)
	l.Phone = phone.String
	l.Company = company.String
	l.Message = message.String
	l.IPAddress = ip.String
	l.UserAgent = agent.String
	l.SessionID = session.String
	if l.Location, err = decodeLocation(loc); err != nil {
		return nil, err
	}
	return &l, nil
}
