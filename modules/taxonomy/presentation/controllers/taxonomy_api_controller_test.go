package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/dedup"
	"github.com/greenweave/greenweave/modules/taxonomy/infrastructure/persistence"
	"github.com/greenweave/greenweave/modules/taxonomy/presentation/controllers"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/application"
	"github.com/greenweave/greenweave/pkg/eventbus"
	"github.com/greenweave/greenweave/pkg/middleware"
)

func newTaxonomyRouter(t *testing.T) *mux.Router {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	app := application.New(&application.ApplicationOptions{
		Bundle:   application.LoadBundle(),
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})

	repo := persistence.NewMemoryTaxonomyRepository()
	guard := dedup.NewGuard(repo)
	app.RegisterServices(services.NewTaxonomyService(repo, guard, app.EventPublisher()))

	router := mux.NewRouter()
	router.Use(middleware.WithClaims())
	controllers.NewTaxonomyAPIController(app).Register(router)
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path string, headers map[string]string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func addEntry(t *testing.T, router *mux.Router, kind string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, router, http.MethodPost, "/taxonomy/api/entries/"+kind, nil, body)
}

func TestTaxonomyAPI_AddAndListChildren(t *testing.T) {
	router := newTaxonomyRouter(t)

	rec := addEntry(t, router, "sector", map[string]any{"name": "Energy"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = addEntry(t, router, "standard", map[string]any{
		"name":  "GRI",
		"scope": map[string]any{"kind": "sector", "name": "Energy"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Entry struct {
			Code string `json:"code"`
			Name string `json:"name"`
		} `json:"entry"`
		Reused bool `json:"reused"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "GRI", created.Entry.Code)
	assert.False(t, created.Reused)

	rec = doJSON(t, router, http.MethodGet,
		"/taxonomy/api/entries/standard/children?scope_kind=sector&scope_name=Energy", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var children []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &children))
	require.Len(t, children, 1)
	assert.Equal(t, "GRI", children[0].Name)
}

func TestTaxonomyAPI_UnknownKindRejected(t *testing.T) {
	router := newTaxonomyRouter(t)

	rec := addEntry(t, router, "galaxy", map[string]any{"name": "Andromeda"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TAXONOMY_INVALID_KIND", body.Code)
}

func TestTaxonomyAPI_ExactDuplicateNotConfirmable(t *testing.T) {
	router := newTaxonomyRouter(t)

	rec := addEntry(t, router, "sector", map[string]any{"name": "Energy"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Case and accent folding make this an exact duplicate.
	rec = addEntry(t, router, "sector", map[string]any{"name": "ENERGY", "confirm": true})
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Code        string `json:"code"`
		Confirmable bool   `json:"confirmable"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TAXONOMY_ALREADY_EXISTS", body.Code)
	assert.False(t, body.Confirmable)
}

func TestTaxonomyAPI_SimilarMatchConflictThenConfirm(t *testing.T) {
	router := newTaxonomyRouter(t)

	seed := func(kind, name string, scope map[string]any, extra map[string]any) {
		body := map[string]any{"name": name}
		if scope != nil {
			body["scope"] = scope
		}
		for k, v := range extra {
			body[k] = v
		}
		rec := addEntry(t, router, kind, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	seed("sector", "Energy", nil, nil)
	sectorScope := map[string]any{"kind": "sector", "name": "Energy"}
	seed("standard", "GRI", sectorScope, nil)
	issueScope := map[string]any{"kind": "sector", "name": "Energy", "standard": "GRI"}
	seed("issue", "Emissions", issueScope, nil)
	criteriaScope := map[string]any{"kind": "sector", "name": "Energy", "standard": "GRI", "issue": "Emissions"}
	seed("criteria", "Direct emissions", criteriaScope, nil)

	// Similar but not identical: conflict carrying the match list.
	rec := addEntry(t, router, "criteria", map[string]any{
		"name":  "Indirect emissions",
		"scope": criteriaScope,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var conflict struct {
		Code        string `json:"code"`
		Confirmable bool   `json:"confirmable"`
		Matches     []struct {
			Name  string  `json:"name"`
			Score float64 `json:"score"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Equal(t, "TAXONOMY_SIMILAR_EXISTS", conflict.Code)
	assert.True(t, conflict.Confirmable)
	require.NotEmpty(t, conflict.Matches)
	assert.Equal(t, "Direct emissions", conflict.Matches[0].Name)

	// Resubmitting with confirm proceeds.
	rec = addEntry(t, router, "criteria", map[string]any{
		"name":    "Indirect emissions",
		"scope":   criteriaScope,
		"confirm": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet,
		"/taxonomy/api/entries/criteria/children?scope_kind=sector&scope_name=Energy&standard=GRI&issue=Emissions", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var children []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &children))
	require.Len(t, children, 2)
}

func TestTaxonomyAPI_ChildrenRequireScope(t *testing.T) {
	router := newTaxonomyRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/taxonomy/api/entries/issue/children?scope_kind=sector&scope_name=Energy", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TAXONOMY_INVALID_SCOPE", body.Code)
}

func TestTaxonomyAPI_RoleGating(t *testing.T) {
	router := newTaxonomyRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/taxonomy/api/entries/sector",
		map[string]string{middleware.RoleHeader: "auditor"},
		map[string]any{"name": "Energy"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TAXONOMY_FORBIDDEN", body.Code)

	rec = doJSON(t, router, http.MethodPost, "/taxonomy/api/entries/sector",
		map[string]string{middleware.RoleHeader: "admin"},
		map[string]any{"name": "Energy"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Reads stay open to every role.
	rec = doJSON(t, router, http.MethodGet, "/taxonomy/api/sectors",
		map[string]string{middleware.RoleHeader: "auditor"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
