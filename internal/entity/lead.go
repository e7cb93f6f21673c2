package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusRejected  LeadStatus = "rejected"
)

func ParseLeadStatus(raw string) (LeadStatus, error) {
	switch s := LeadStatus(raw); s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusRejected:
		return s, nil
	default:
		return "", fmt.Errorf("invalid lead status %q", raw)
	}
}

var ErrLeadNotFound = errors.New("lead not found")

// Lead is a finalized submission. Only Status changes after creation.
type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Company   string     `json:"company,omitempty"`
	Service   string     `json:"service"`
	Message   string     `json:"message,omitempty"`
	Status    LeadStatus `json:"status"`
	Source    string     `json:"source"`
	IPAddress string     `json:"ipAddress,omitempty"`
	UserAgent string     `json:"userAgent,omitempty"`
	Location  *Location  `json:"location,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
	Progress  int        `json:"progress"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func NewLead(name, email, phone, company, service, message string) (*Lead, error) {
	now := time.Now().UTC()
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     strings.TrimSpace(phone),
		Company:   strings.TrimSpace(company),
		Service:   strings.TrimSpace(service),
		Message:   strings.TrimSpace(message),
		Status:    LeadStatusNew,
		Source:    "website",
		Progress:  100,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	if l.Email == "" {
		return errors.New("email is required")
	}
	if l.Service == "" {
		return errors.New("service is required")
	}
	return nil
}

type LeadFilter struct {
	Status LeadStatus
	Limit  int
	Page   int
}

type StatusCount struct {
	Status LeadStatus `json:"status"`
	Count  int64      `json:"count"`
}

type ServiceCount struct {
	Service string `json:"service"`
	Count   int64  `json:"count"`
}

type LeadStats struct {
	Total       int64          `json:"total"`
	Today       int64          `json:"today"`
	ByStatus    []StatusCount  `json:"byStatus"`
	TopServices []ServiceCount `json:"topServices"`
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	List(ctx context.Context, filter LeadFilter) ([]*Lead, int64, error)
	Stats(ctx context.Context, since time.Time) (*LeadStats, error)
	UpdateStatus(ctx context.Context, id string, status LeadStatus) (*Lead, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int64, error)
}
