package autosave_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naass/lead-api/internal/autosave"
	"github.com/naass/lead-api/internal/entity"
	"github.com/naass/lead-api/internal/infra/http/handlers"
	"github.com/naass/lead-api/internal/infra/http/middleware"
	"github.com/naass/lead-api/internal/infra/memstore"
	"github.com/naass/lead-api/internal/usecase"
)

func newDraftServer(t *testing.T) *httptest.Server {
	t.Helper()
	service := usecase.NewDraftService(memstore.NewDraftStore(), nil, zerolog.Nop())
	router := handlers.NewRouter(handlers.RouterConfig{
		Drafts:     handlers.NewDraftHandler(service),
		LimitStore: middleware.NewMemoryStore(),
		Logger:     zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClientAgainstDraftAPI(t *testing.T) {
	srv := newDraftServer(t)
	c := autosave.NewHTTPClient(srv.URL+"/api", 0).WithSession("sess-1")
	ctx := context.Background()

	res, err := c.SaveDraft(ctx, entity.FormTypeContact, "browser-key", entity.NewFormData("name", "Jane"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.DraftID)

	d, err := c.GetDraft(ctx, entity.FormTypeContact, "browser-key")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Jane", d.Data.Get("name"))

	deleted, err := c.DeleteDraft(ctx, entity.FormTypeContact, "browser-key")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestHTTPClientReportsServerMessage(t *testing.T) {
	srv := newDraftServer(t)

	_, err := autosave.NewHTTPClient(srv.URL+"/api", 0).
		SaveDraft(context.Background(), "bogus", "browser-key", entity.NewFormData("a", "b"))

	var apiErr *autosave.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid form type", apiErr.Message)
}
