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

	"github.com/greenweave/greenweave/modules/core/infrastructure/persistence"
	"github.com/greenweave/greenweave/modules/core/presentation/controllers"
	"github.com/greenweave/greenweave/modules/core/services"
	"github.com/greenweave/greenweave/pkg/application"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

func newUsersRouter(t *testing.T) *mux.Router {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	app := application.New(&application.ApplicationOptions{
		Bundle:   application.LoadBundle(),
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	repo := persistence.NewMemoryUserRepository()
	app.RegisterServices(services.NewUserService(repo, app.EventPublisher()))

	router := mux.NewRouter()
	controllers.NewUsersAPIController(app).Register(router)
	return router
}

func postUser(t *testing.T, router *mux.Router, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/core/api/users", &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUsersAPI_CreateAndListByOrganization(t *testing.T) {
	router := newUsersRouter(t)

	rec := postUser(t, router, map[string]any{
		"email":        "claire@acme.example",
		"first_name":   "Claire",
		"last_name":    "Moreau",
		"role":         "contributor",
		"organization": "Acme SARL",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Role         string `json:"role"`
		Organization string `json:"organization"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "contributor", created.Role)

	req := httptest.NewRequest(http.MethodGet, "/core/api/users?organization=Acme+SARL", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "claire@acme.example", users[0].Email)
}

func TestUsersAPI_ValidationErrors(t *testing.T) {
	router := newUsersRouter(t)

	rec := postUser(t, router, map[string]any{
		"email": "not-an-email",
		"role":  "emperor",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "USERS_VALIDATION", body.Code)
	assert.Contains(t, body.Fields, "Email")
	assert.Contains(t, body.Fields, "Role")
	assert.Contains(t, body.Fields, "Organization")
}

func TestUsersAPI_ListRequiresOrganization(t *testing.T) {
	router := newUsersRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/core/api/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersAPI_UnknownUserIs404(t *testing.T) {
	router := newUsersRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/core/api/users/00000000-0000-0000-0000-000000000042", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
