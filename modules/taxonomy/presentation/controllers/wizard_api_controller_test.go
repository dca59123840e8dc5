package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenweave/greenweave/modules/taxonomy/presentation/controllers"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/application"
	"github.com/greenweave/greenweave/pkg/configuration"
	"github.com/greenweave/greenweave/pkg/eventbus"
)

type wizardState struct {
	Step                int      `json:"step"`
	StepName            string   `json:"step_name"`
	Sector              string   `json:"sector"`
	Subsector           string   `json:"subsector"`
	Standards           []string `json:"standards"`
	Issues              []string `json:"issues"`
	Criteria            []string `json:"criteria"`
	Indicators          []string `json:"indicators"`
	OrganizationCreated bool     `json:"organization_created"`
	UsersCreated        bool     `json:"users_created"`
	Completed           bool     `json:"completed"`
}

type wizardStep struct {
	State    wizardState `json:"state"`
	Moved    bool        `json:"moved"`
	Redirect string      `json:"redirect"`
}

func newWizardRouter(t *testing.T) *mux.Router {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	app := application.New(&application.ApplicationOptions{
		Bundle:   application.LoadBundle(),
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterServices(services.NewWizardService(time.Hour))

	router := mux.NewRouter()
	controllers.NewWizardAPIController(app).Register(router)
	return router
}

func createWizardSession(t *testing.T, router *mux.Router) (string, map[string]string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/wizard/api/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Token string      `json:"token"`
		State wizardState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Token)
	require.Equal(t, "sector", created.State.StepName)

	header := map[string]string{configuration.Use().WizardSessionHeader: created.Token}
	return created.Token, header
}

func TestWizardAPI_MissingAndUnknownToken(t *testing.T) {
	router := newWizardRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/wizard/api/session", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	header := map[string]string{configuration.Use().WizardSessionHeader: "no-such-token"}
	rec = doJSON(t, router, http.MethodGet, "/wizard/api/session", header, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWizardAPI_AdvanceGuardRedirects(t *testing.T) {
	router := newWizardRouter(t)
	_, header := createWizardSession(t, router)

	// Advancing without a sector selection is refused.
	rec := doJSON(t, router, http.MethodPost, "/wizard/api/session/advance", header, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var step wizardStep
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	assert.False(t, step.Moved)
	assert.Equal(t, "sector", step.Redirect)
	assert.Equal(t, 1, step.State.Step)

	rec = doJSON(t, router, http.MethodPost, "/wizard/api/session/sector", header, map[string]any{"name": "Energy"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/wizard/api/session/advance", header, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	assert.True(t, step.Moved)
	assert.Equal(t, "standards", step.State.StepName)
}

func TestWizardAPI_FullRunCompletes(t *testing.T) {
	router := newWizardRouter(t)
	_, header := createWizardSession(t, router)

	post := func(path string, body any) wizardStep {
		rec := doJSON(t, router, http.MethodPost, path, header, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var step wizardStep
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
		return step
	}

	post("/wizard/api/session/sector", map[string]any{"name": "Energy"})
	post("/wizard/api/session/subsector", map[string]any{"name": "Renewables"})
	post("/wizard/api/session/advance", nil)

	post("/wizard/api/session/toggle/standards", map[string]any{"code": "GRI"})
	post("/wizard/api/session/advance", nil)

	post("/wizard/api/session/toggle/issues", map[string]any{"code": "EMISSIONS"})
	post("/wizard/api/session/advance", nil)

	post("/wizard/api/session/toggle/criteria", map[string]any{"code": "DIRECTEMISSIONS"})
	post("/wizard/api/session/advance", nil)

	post("/wizard/api/session/toggle/indicators", map[string]any{"code": "SCOPE1GHGEMISSIONS"})
	step := post("/wizard/api/session/advance", nil)
	require.Equal(t, "organization", step.State.StepName)

	// Users step is gated on organization creation.
	step = post("/wizard/api/session/advance", nil)
	assert.False(t, step.Moved)
	assert.Equal(t, "organization", step.Redirect)

	post("/wizard/api/session/organization-created", nil)
	step = post("/wizard/api/session/advance", nil)
	require.True(t, step.Moved)
	require.Equal(t, "users", step.State.StepName)
	assert.False(t, step.State.Completed)

	rec := doJSON(t, router, http.MethodPost, "/wizard/api/session/users-created", header, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var state wizardState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.Completed)
}

func TestWizardAPI_SectorReselectClearsSubsectorOnly(t *testing.T) {
	router := newWizardRouter(t)
	_, header := createWizardSession(t, router)

	doJSON(t, router, http.MethodPost, "/wizard/api/session/sector", header, map[string]any{"name": "Energy"})
	doJSON(t, router, http.MethodPost, "/wizard/api/session/subsector", header, map[string]any{"name": "Renewables"})
	doJSON(t, router, http.MethodPost, "/wizard/api/session/toggle/standards", header, map[string]any{"code": "GRI"})

	rec := doJSON(t, router, http.MethodPost, "/wizard/api/session/sector", header, map[string]any{"name": "Manufacturing"})
	require.Equal(t, http.StatusOK, rec.Code)

	var state wizardState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "Manufacturing", state.Sector)
	assert.Empty(t, state.Subsector)
	// Downstream selections survive a sector change.
	assert.Equal(t, []string{"GRI"}, state.Standards)
}

func TestWizardAPI_GoToRedirectsToGuardStep(t *testing.T) {
	router := newWizardRouter(t)
	_, header := createWizardSession(t, router)

	doJSON(t, router, http.MethodPost, "/wizard/api/session/sector", header, map[string]any{"name": "Energy"})

	rec := doJSON(t, router, http.MethodPost, "/wizard/api/session/goto", header, map[string]any{"step": 4})
	require.Equal(t, http.StatusOK, rec.Code)

	// The criteria step requires an issue selection, so the guard sends the
	// user back to the issues step.
	var step wizardStep
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	assert.False(t, step.Moved)
	assert.Equal(t, "issues", step.Redirect)
	assert.Equal(t, "issues", step.State.StepName)
}

func TestWizardAPI_ToggleUnknownKind(t *testing.T) {
	router := newWizardRouter(t)
	_, header := createWizardSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/wizard/api/session/toggle/colors", header, map[string]any{"code": "RED"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "WIZARD_INVALID_KIND", body.Code)
}

func TestWizardAPI_ResetUnknownTokenIs404(t *testing.T) {
	router := newWizardRouter(t)

	header := map[string]string{configuration.Use().WizardSessionHeader: "no-such-token"}
	rec := doJSON(t, router, http.MethodPost, "/wizard/api/session/reset", header, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "WIZARD_SESSION_NOT_FOUND", body.Code)
}

func TestWizardAPI_ResetReturnsToFirstStep(t *testing.T) {
	router := newWizardRouter(t)
	_, header := createWizardSession(t, router)

	doJSON(t, router, http.MethodPost, "/wizard/api/session/sector", header, map[string]any{"name": "Energy"})
	doJSON(t, router, http.MethodPost, "/wizard/api/session/advance", header, nil)

	rec := doJSON(t, router, http.MethodPost, "/wizard/api/session/reset", header, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var state wizardState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "sector", state.StepName)
	assert.Empty(t, state.Sector)
}
