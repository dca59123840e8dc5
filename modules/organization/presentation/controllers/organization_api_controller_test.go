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

	"github.com/greenweave/greenweave/modules/organization/infrastructure/persistence"
	"github.com/greenweave/greenweave/modules/organization/presentation/controllers"
	"github.com/greenweave/greenweave/modules/organization/services"
	"github.com/greenweave/greenweave/pkg/application"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

func newOrganizationRouter(t *testing.T) *mux.Router {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	app := application.New(&application.ApplicationOptions{
		Bundle:   application.LoadBundle(),
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	repo := persistence.NewMemoryOrganizationRepository()
	app.RegisterServices(services.NewOrganizationService(repo, app.EventPublisher()))

	router := mux.NewRouter()
	controllers.NewOrganizationAPIController(app).Register(router)
	return router
}

func postOrganization(t *testing.T, router *mux.Router, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/organizations/api/organizations", &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestOrganizationAPI_CreateSimple(t *testing.T) {
	router := newOrganizationRouter(t)

	rec := postOrganization(t, router, map[string]any{
		"name": "Acme SARL",
		"type": "simple",
		"sites": []map[string]any{
			{"name": "HQ", "location": "Lyon"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Type  string `json:"type"`
		Sites []struct {
			Name     string `json:"name"`
			Location string `json:"location"`
		} `json:"sites"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Acme SARL", created.Name)
	assert.Equal(t, "simple", created.Type)
	require.Len(t, created.Sites, 1)
	assert.Equal(t, "Lyon", created.Sites[0].Location)

	req := httptest.NewRequest(http.MethodGet, "/organizations/api/organizations/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOrganizationAPI_CreateGroupWithSubsidiaries(t *testing.T) {
	router := newOrganizationRouter(t)

	rec := postOrganization(t, router, map[string]any{
		"name":           "Verdant Group",
		"type":           "group",
		"business_lines": []string{"Generation", "Distribution"},
		"subsidiaries": []map[string]any{
			{"name": "Verdant Solar", "business_line": "Generation"},
			{"name": "Verdant Grid", "business_line": "Distribution"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		BusinessLines []string `json:"business_lines"`
		Subsidiaries  []struct {
			Name         string `json:"name"`
			BusinessLine string `json:"business_line"`
		} `json:"subsidiaries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, []string{"Generation", "Distribution"}, created.BusinessLines)
	require.Len(t, created.Subsidiaries, 2)
}

func TestOrganizationAPI_SimpleTypeRejectsSubsidiaries(t *testing.T) {
	router := newOrganizationRouter(t)

	rec := postOrganization(t, router, map[string]any{
		"name":           "Solo SAS",
		"type":           "simple",
		"business_lines": []string{"Retail"},
		"subsidiaries": []map[string]any{
			{"name": "Branch"},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ORG_VALIDATION", body.Code)
	assert.Contains(t, body.Fields, "BusinessLines")
	assert.Contains(t, body.Fields, "Subsidiaries")
}

func TestOrganizationAPI_ValidationErrors(t *testing.T) {
	router := newOrganizationRouter(t)

	rec := postOrganization(t, router, map[string]any{
		"name": "",
		"type": "conglomerate",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ORG_VALIDATION", body.Code)
	assert.Contains(t, body.Fields, "Name")
	assert.Contains(t, body.Fields, "Type")
}

func TestOrganizationAPI_UnknownIDIs404(t *testing.T) {
	router := newOrganizationRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/organizations/api/organizations/00000000-0000-0000-0000-000000000001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
