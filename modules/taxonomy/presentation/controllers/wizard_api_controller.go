package controllers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/wizard"
	"github.com/greenweave/greenweave/modules/taxonomy/presentation/mappers"
	"github.com/greenweave/greenweave/modules/taxonomy/presentation/viewmodels"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/application"
	"github.com/greenweave/greenweave/pkg/configuration"
)

type WizardAPIController struct {
	app           application.Application
	wizards       *services.WizardService
	sessionHeader string
	apiPrefix     string
}

func NewWizardAPIController(app application.Application) application.Controller {
	return &WizardAPIController{
		app:           app,
		wizards:       app.Service(services.WizardService{}).(*services.WizardService),
		sessionHeader: configuration.Use().WizardSessionHeader,
		apiPrefix:     "/wizard/api",
	}
}

func (c *WizardAPIController) Key() string {
	return c.apiPrefix
}

func (c *WizardAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/sessions", c.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/session", c.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/session/sector", c.SelectSector).Methods(http.MethodPost)
	api.HandleFunc("/session/subsector", c.SelectSubsector).Methods(http.MethodPost)
	api.HandleFunc("/session/toggle/{kind}", c.ToggleSelection).Methods(http.MethodPost)
	api.HandleFunc("/session/advance", c.Advance).Methods(http.MethodPost)
	api.HandleFunc("/session/retreat", c.Retreat).Methods(http.MethodPost)
	api.HandleFunc("/session/goto", c.GoToStep).Methods(http.MethodPost)
	api.HandleFunc("/session/organization-created", c.MarkOrganizationCreated).Methods(http.MethodPost)
	api.HandleFunc("/session/users-created", c.MarkUsersCreated).Methods(http.MethodPost)
	api.HandleFunc("/session/reset", c.ResetSession).Methods(http.MethodPost)
}

type createSessionResponse struct {
	Token string                 `json:"token"`
	State viewmodels.WizardState `json:"state"`
}

type stepResponse struct {
	State viewmodels.WizardState `json:"state"`
	Moved bool                   `json:"moved"`
	// Redirect names the step the guard sent the user to when the
	// requested move was not allowed.
	Redirect string `json:"redirect,omitempty"`
}

func (c *WizardAPIController) CreateSession(w http.ResponseWriter, r *http.Request) {
	token := c.wizards.Create()

	var state viewmodels.WizardState
	c.wizards.View(token, func(s *wizard.Session) {
		state = mappers.SessionToViewModel(s)
	})
	writeJSON(w, http.StatusCreated, createSessionResponse{
		Token: token,
		State: state,
	})
}

// sessionToken pulls the wizard session token from the request header.
func (c *WizardAPIController) sessionToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := strings.TrimSpace(r.Header.Get(c.sessionHeader))
	if token == "" {
		writeAPIError(w, r, http.StatusBadRequest, "WIZARD_NO_SESSION", "session token header is required")
		return "", false
	}
	return token, true
}

// mutate runs fn on the request's session under the registry lock, so the
// viewmodel snapshot fn builds is consistent with the mutation it follows.
func (c *WizardAPIController) mutate(w http.ResponseWriter, r *http.Request, token string, fn func(*wizard.Session)) bool {
	if !c.wizards.Mutate(token, fn) {
		writeAPIError(w, r, http.StatusNotFound, "WIZARD_SESSION_NOT_FOUND", "session not found or expired")
		return false
	}
	return true
}

func (c *WizardAPIController) GetSession(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	var state viewmodels.WizardState
	if !c.wizards.View(token, func(s *wizard.Session) {
		state = mappers.SessionToViewModel(s)
	}) {
		writeAPIError(w, r, http.StatusNotFound, "WIZARD_SESSION_NOT_FOUND", "session not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type selectRequest struct {
	Name string `json:"name"`
}

func (c *WizardAPIController) SelectSector(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := decodeJSON(r.Body, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeAPIError(w, r, http.StatusBadRequest, "WIZARD_INVALID_BODY", "name is required")
		return
	}

	var state viewmodels.WizardState
	if !c.mutate(w, r, token, func(s *wizard.Session) {
		s.SelectSector(req.Name)
		state = mappers.SessionToViewModel(s)
	}) {
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (c *WizardAPIController) SelectSubsector(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := decodeJSON(r.Body, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeAPIError(w, r, http.StatusBadRequest, "WIZARD_INVALID_BODY", "name is required")
		return
	}

	var state viewmodels.WizardState
	if !c.mutate(w, r, token, func(s *wizard.Session) {
		s.SelectSubsector(req.Name)
		state = mappers.SessionToViewModel(s)
	}) {
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type toggleRequest struct {
	Code string `json:"code"`
}

func (c *WizardAPIController) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	kind := mux.Vars(r)["kind"]

	var req toggleRequest
	if err := decodeJSON(r.Body, &req); err != nil || strings.TrimSpace(req.Code) == "" {
		writeAPIError(w, r, http.StatusBadRequest, "WIZARD_INVALID_BODY", "code is required")
		return
	}

	var state viewmodels.WizardState
	var unknownKind bool
	if !c.mutate(w, r, token, func(s *wizard.Session) {
		switch kind {
		case "standards":
			s.ToggleStandard(req.Code)
		case "issues":
			s.ToggleIssue(req.Code)
		case "criteria":
			s.ToggleCriteria(req.Code)
		case "indicators":
			s.ToggleIndicator(req.Code)
		default:
			unknownKind = true
			return
		}
		state = mappers.SessionToViewModel(s)
	}) {
		return
	}
	if unknownKind {
		writeAPIError(w, r, http.StatusBadRequest, "WIZARD_INVALID_KIND", "unknown selection kind")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (c *WizardAPIController) Advance(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	var resp stepResponse
	if !c.mutate(w, r, token, func(s *wizard.Session) {
		before := s.Step()
		_, moved := s.Advance()
		resp.Moved = moved
		if !moved {
			if redirect := s.Guard(before + 1); redirect != 0 {
				resp.Redirect = redirect.String()
			}
		}
		resp.State = mappers.SessionToViewModel(s)
	}) {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *WizardAPIController) Retreat(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	var resp stepResponse
	if !c.mutate(w, r, token, func(s *wizard.Session) {
		before := s.Step()
		after := s.Retreat()
		resp.Moved = after != before
		resp.State = mappers.SessionToViewModel(s)
	}) {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type goToRequest struct {
	Step int `json:"step"`
}

func (c *WizardAPIController) GoToStep(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	var req goToRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "WIZARD_INVALID_BODY", "invalid json body")
		return
	}

	var resp stepResponse
	if !c.mutate(w, r, token, func(s *wizard.Session) {
		requested := wizard.Step(req.Step)
		after := s.GoTo(requested)
		resp.Moved = after == requested
		if after != requested {
			resp.Redirect = after.String()
		}
		resp.State = mappers.SessionToViewModel(s)
	}) {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *WizardAPIController) MarkOrganizationCreated(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	var state viewmodels.WizardState
	if !c.mutate(w, r, token, func(s *wizard.Session) {
		s.MarkOrganizationCreated()
		state = mappers.SessionToViewModel(s)
	}) {
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (c *WizardAPIController) MarkUsersCreated(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	var state viewmodels.WizardState
	if !c.mutate(w, r, token, func(s *wizard.Session) {
		s.MarkUsersCreated()
		state = mappers.SessionToViewModel(s)
	}) {
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (c *WizardAPIController) ResetSession(w http.ResponseWriter, r *http.Request) {
	token, ok := c.sessionToken(w, r)
	if !ok {
		return
	}

	var state viewmodels.WizardState
	if !c.mutate(w, r, token, func(s *wizard.Session) {
		s.Reset()
		state = mappers.SessionToViewModel(s)
	}) {
		return
	}
	writeJSON(w, http.StatusOK, state)
}
