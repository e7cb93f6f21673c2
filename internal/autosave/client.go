package autosave

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/naass/lead-api/internal/entity"
)

// DraftClient is the coordinator's view of the draft API. GetDraft returns
// (nil, nil) when no draft exists.
type DraftClient interface {
	SaveDraft(ctx context.Context, formType entity.FormType, key string, data entity.FormData) (*SaveResult, error)
	GetDraft(ctx context.Context, formType entity.FormType, key string) (*Draft, error)
	DeleteDraft(ctx context.Context, formType entity.FormType, key string) (bool, error)
}

type SaveResult struct {
	DraftID  string `json:"draftId"`
	Progress int    `json:"progress"`
}

type Draft struct {
	ID        string          `json:"id"`
	Data      entity.FormData `json:"data"`
	Progress  int             `json:"progress"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("draft api returned %d: %s", e.StatusCode, e.Message)
}

// apiErrorBody covers both failure envelopes: handlers answer with "message",
// the rate limiter and admin guard with "error".
type apiErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type saveResponse struct {
	Success bool `json:"success"`
	SaveResult
}

type getResponse struct {
	Success bool   `json:"success"`
	Draft   *Draft `json:"draft"`
}

type deleteResponse struct {
	Success bool `json:"success"`
	Deleted bool `json:"deleted"`
}

// HTTPClient talks to the draft endpoints mounted under baseURL (for example
// http://localhost:8080/api).
type HTTPClient struct {
	http *resty.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTPClient{http: c}
}

// WithSession sends the given session id on every request.
func (c *HTTPClient) WithSession(sessionID string) *HTTPClient {
	c.http.SetHeader("X-Session-ID", sessionID)
	return c
}

func (c *HTTPClient) SaveDraft(ctx context.Context, formType entity.FormType, key string, data entity.FormData) (*SaveResult, error) {
	var out saveResponse
	resp, err := c.request(ctx, formType).
		SetBody(map[string]any{"key": key, "data": data}).
		SetResult(&out).
		Post("/drafts/{formType}/draft")
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out.SaveResult, nil
}

func (c *HTTPClient) GetDraft(ctx context.Context, formType entity.FormType, key string) (*Draft, error) {
	var out getResponse
	resp, err := c.request(ctx, formType).
		SetQueryParam("key", key).
		SetResult(&out).
		Get("/drafts/{formType}/draft")
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return out.Draft, nil
}

func (c *HTTPClient) DeleteDraft(ctx context.Context, formType entity.FormType, key string) (bool, error) {
	var out deleteResponse
	resp, err := c.request(ctx, formType).
		SetQueryParam("key", key).
		SetResult(&out).
		Delete("/drafts/{formType}/draft")
	if err != nil {
		return false, fmt.Errorf("delete draft: %w", err)
	}
	if resp.IsError() {
		return false, apiError(resp)
	}
	return out.Deleted, nil
}

func (c *HTTPClient) request(ctx context.Context, formType entity.FormType) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetPathParam("formType", string(formType)).
		SetError(&apiErrorBody{})
}

func apiError(resp *resty.Response) error {
	msg := resp.Status()
	if body, ok := resp.Error().(*apiErrorBody); ok {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}
