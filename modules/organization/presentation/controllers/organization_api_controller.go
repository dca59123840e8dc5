package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	coredtos "github.com/greenweave/greenweave/modules/core/presentation/controllers/dtos"
	"github.com/greenweave/greenweave/modules/organization/domain/organization"
	"github.com/greenweave/greenweave/modules/organization/services"
	"github.com/greenweave/greenweave/pkg/application"
	"github.com/greenweave/greenweave/pkg/composables"
)

type OrganizationAPIController struct {
	app           application.Application
	organizations *services.OrganizationService
	apiPrefix     string
}

func NewOrganizationAPIController(app application.Application) application.Controller {
	return &OrganizationAPIController{
		app:           app,
		organizations: app.Service(services.OrganizationService{}).(*services.OrganizationService),
		apiPrefix:     "/organizations/api",
	}
}

func (c *OrganizationAPIController) Key() string {
	return c.apiPrefix
}

func (c *OrganizationAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/organizations", c.CreateOrganization).Methods(http.MethodPost)
	api.HandleFunc("/organizations", c.ListOrganizations).Methods(http.MethodGet)
	api.HandleFunc("/organizations/{id}", c.GetOrganization).Methods(http.MethodGet)
}

type subsidiaryResponse struct {
	Name         string `json:"name"`
	BusinessLine string `json:"business_line,omitempty"`
}

type siteResponse struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type organizationResponse struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Type          string               `json:"type"`
	BusinessLines []string             `json:"business_lines,omitempty"`
	Subsidiaries  []subsidiaryResponse `json:"subsidiaries,omitempty"`
	Sites         []siteResponse       `json:"sites,omitempty"`
}

func toOrganizationResponse(o *organization.Organization) organizationResponse {
	subs := make([]subsidiaryResponse, 0, len(o.Subsidiaries()))
	for _, s := range o.Subsidiaries() {
		subs = append(subs, subsidiaryResponse{Name: s.Name, BusinessLine: s.BusinessLine})
	}
	sites := make([]siteResponse, 0, len(o.Sites()))
	for _, s := range o.Sites() {
		sites = append(sites, siteResponse{Name: s.Name, Location: s.Location})
	}
	return organizationResponse{
		ID:            o.ID().String(),
		Name:          o.Name(),
		Type:          string(o.Type()),
		BusinessLines: o.BusinessLines(),
		Subsidiaries:  subs,
		Sites:         sites,
	}
}

func (c *OrganizationAPIController) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var dto organization.CreateDTO
	if err := decodeJSON(r.Body, &dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORG_INVALID_BODY", "invalid json body")
		return
	}

	if fieldErrors, ok := dto.Ok(r.Context()); !ok {
		type validationResponse struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		}
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Code:   "ORG_VALIDATION",
			Fields: fieldErrors,
		})
		return
	}

	entity, err := dto.ToEntity()
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORG_INVALID_TYPE", err.Error())
		return
	}

	created, err := c.organizations.Create(r.Context(), entity)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "ORG_INTERNAL", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toOrganizationResponse(created))
}

func (c *OrganizationAPIController) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := c.organizations.List(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "ORG_INTERNAL", err.Error())
		return
	}

	out := make([]organizationResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, toOrganizationResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *OrganizationAPIController) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORG_INVALID_ID", "invalid organization id")
		return
	}

	o, err := c.organizations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "ORG_NOT_FOUND", "organization not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "ORG_INTERNAL", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toOrganizationResponse(o))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(err)
	}
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	meta := map[string]string{}
	if requestID := composables.UseRequestID(r.Context()); requestID != "" {
		meta["request_id"] = requestID
	}
	writeJSON(w, status, coredtos.APIError{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

func decodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
