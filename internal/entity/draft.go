package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DraftTTL is how long an untouched draft survives. Every save or read pushes
// the deadline forward again.
const DraftTTL = 7 * 24 * time.Hour

type FormType string

const (
	FormTypeLead    FormType = "lead"
	FormTypeContact FormType = "contact"
	FormTypeQuiz    FormType = "quiz"
)

func ParseFormType(raw string) (FormType, error) {
	switch ft := FormType(raw); ft {
	case FormTypeLead, FormTypeContact, FormTypeQuiz:
		return ft, nil
	default:
		return "", fmt.Errorf("invalid form type %q", raw)
	}
}

// ProgressFields are the fields counted by CalculateProgress, in display order.
var ProgressFields = []string{"name", "email", "company", "phone", "service", "message"}

// FormData maps a field name to its value. A nil value means the field was sent as null.
type FormData map[string]*string

func (d *FormData) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*d = nil
		return nil
	}

	out := make(FormData, len(raw))
	for field, msg := range raw {
		msg = bytes.TrimSpace(msg)
		switch {
		case len(msg) == 0 || string(msg) == "null":
			out[field] = nil
		case msg[0] == '"':
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				return fmt.Errorf("field %q: %w", field, err)
			}
			out[field] = &s
		case string(msg) == "true" || string(msg) == "false":
			s := string(msg)
			out[field] = &s
		case msg[0] == '-' || (msg[0] >= '0' && msg[0] <= '9'):
			if _, err := strconv.ParseFloat(string(msg), 64); err != nil {
				return fmt.Errorf("field %q: invalid number", field)
			}
			s := string(msg)
			out[field] = &s
		default:
			return fmt.Errorf("field %q must be a string or null", field)
		}
	}
	*d = out
	return nil
}

// Get returns the field value, or "" when absent or null.
func (d FormData) Get(field string) string {
	if v := d[field]; v != nil {
		return *v
	}
	return ""
}

func (d FormData) Clone() FormData {
	if d == nil {
		return nil
	}
	out := make(FormData, len(d))
	for k, v := range d {
		if v == nil {
			out[k] = nil
			continue
		}
		s := *v
		out[k] = &s
	}
	return out
}

// NewFormData builds FormData from alternating field/value pairs.
func NewFormData(pairs ...string) FormData {
	d := make(FormData, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		v := pairs[i+1]
		d[pairs[i]] = &v
	}
	return d
}

// CalculateProgress returns the rounded percentage of ProgressFields that hold a non-blank value.
func CalculateProgress(data FormData) int {
	filled := 0
	for _, f := range ProgressFields {
		if strings.TrimSpace(data.Get(f)) != "" {
			filled++
		}
	}
	return int(math.Round(float64(filled) * 100 / float64(len(ProgressFields))))
}

func NextExpiry(now time.Time) time.Time {
	return now.Add(DraftTTL)
}

type Location struct {
	City    string  `json:"city,omitempty"`
	Region  string  `json:"region,omitempty"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

type Draft struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	FormType  FormType  `json:"formType"`
	Data      FormData  `json:"data"`
	SessionID string    `json:"sessionId"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type DraftRepository interface {
	// Upsert inserts or replaces the draft identified by (Key, FormType) in one
	// atomic step and fills ID, CreatedAt and UpdatedAt.
	Upsert(ctx context.Context, d *Draft) error
	// FindByKey returns nil, nil when no live draft exists. A hit moves
	// expires_at to expiresAt before returning.
	FindByKey(ctx context.Context, key string, formType FormType, expiresAt time.Time) (*Draft, error)
	Delete(ctx context.Context, key string, formType FormType) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*Draft, error)
	BulkDelete(ctx context.Context, ids []string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
