package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/dedup"
	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/modules/taxonomy/presentation/mappers"
	"github.com/greenweave/greenweave/modules/taxonomy/presentation/viewmodels"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/application"
	"github.com/greenweave/greenweave/pkg/intl"
	"github.com/greenweave/greenweave/pkg/middleware"
	"github.com/greenweave/greenweave/pkg/serrors"
)

type TaxonomyAPIController struct {
	app       application.Application
	taxonomy  *services.TaxonomyService
	apiPrefix string
}

func NewTaxonomyAPIController(app application.Application) application.Controller {
	return &TaxonomyAPIController{
		app:       app,
		taxonomy:  app.Service(services.TaxonomyService{}).(*services.TaxonomyService),
		apiPrefix: "/taxonomy/api",
	}
}

func (c *TaxonomyAPIController) Key() string {
	return c.apiPrefix
}

func (c *TaxonomyAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/sectors", c.ListSectors).Methods(http.MethodGet)
	api.HandleFunc("/sectors/{sector}/subsectors", c.ListSubsectors).Methods(http.MethodGet)
	api.HandleFunc("/indicators/{code}", c.GetIndicator).Methods(http.MethodGet)

	api.Handle("/entries/{kind}", middleware.RequireTaxonomyWrite(http.HandlerFunc(c.AddEntry))).Methods(http.MethodPost)
	api.HandleFunc("/entries/{kind}/children", c.ListChildren).Methods(http.MethodGet)
}

type scopeRequest struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Standard string `json:"standard,omitempty"`
	Issue    string `json:"issue,omitempty"`
	Criteria string `json:"criteria,omitempty"`
}

func (s scopeRequest) toDomain() taxonomy.Scope {
	return taxonomy.Scope{
		Kind:     taxonomy.ScopeKind(s.Kind),
		Name:     s.Name,
		Standard: s.Standard,
		Issue:    s.Issue,
		Criteria: s.Criteria,
	}
}

type addEntryRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Confirm     bool         `json:"confirm,omitempty"`
	Scope       scopeRequest `json:"scope"`

	// Subsector parent.
	Sector string `json:"sector,omitempty"`

	// Indicator metadata.
	Unit        string `json:"unit,omitempty"`
	Metric      string `json:"metric,omitempty"`
	Axis        string `json:"axis,omitempty"`
	Aggregation string `json:"aggregation,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
}

type addEntryResponse struct {
	Entry  viewmodels.Entry `json:"entry"`
	Reused bool             `json:"reused"`
}

// duplicateResponse is the 409 payload for both hard duplicates and
// unconfirmed ambiguous matches. Resubmitting with "confirm": true resolves
// the ambiguous case.
type duplicateResponse struct {
	Code        string             `json:"code"`
	Message     string             `json:"message"`
	Matches     []viewmodels.Match `json:"matches,omitempty"`
	Confirmable bool               `json:"confirmable"`
}

// AddEntry runs the Duplicate Guard before anything else: a strict-policy
// exact duplicate is rejected outright, a similar-but-not-identical match is
// rejected with the candidate list until the client confirms.
func (c *TaxonomyAPIController) AddEntry(w http.ResponseWriter, r *http.Request) {
	kind, err := taxonomy.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TAXONOMY_INVALID_KIND", err.Error())
		return
	}

	var req addEntryRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TAXONOMY_INVALID_BODY", "invalid json body")
		return
	}

	cmd := services.AddEntryCommand{
		Kind:        kind,
		Name:        req.Name,
		Description: req.Description,
		Scope:       req.Scope.toDomain(),
		SectorName:  req.Sector,
		Unit:        req.Unit,
		Metric:      taxonomy.IndicatorKind(req.Metric),
		Axis:        taxonomy.Axis(req.Axis),
		Aggregation: taxonomy.Aggregation(req.Aggregation),
		Frequency:   taxonomy.Frequency(req.Frequency),
	}

	confirm := func(context.Context, string, []dedup.Match) (bool, error) {
		return req.Confirm, nil
	}

	result, err := c.taxonomy.AddEntry(r.Context(), cmd, confirm)
	if err != nil {
		var baseErr *serrors.BaseError
		if errors.As(err, &baseErr) {
			writeJSON(w, http.StatusConflict, duplicateResponse{
				Code:        baseErr.Code,
				Message:     baseErr.Localize(intl.UseLocalizer(r.Context())),
				Confirmable: false,
			})
			return
		}
		writeServiceError(w, r, err)
		return
	}

	if result.Blocked {
		writeJSON(w, http.StatusConflict, duplicateResponse{
			Code:        "TAXONOMY_SIMILAR_EXISTS",
			Message:     intl.MustT(r.Context(), "Taxonomy.Errors.SimilarExists"),
			Matches:     mappers.MatchesToViewModels(result.Matches),
			Confirmable: true,
		})
		return
	}

	writeJSON(w, http.StatusCreated, addEntryResponse{
		Entry:  mappers.EntryToViewModel(result.Entry),
		Reused: result.Reused,
	})
}

func (c *TaxonomyAPIController) ListChildren(w http.ResponseWriter, r *http.Request) {
	kind, err := taxonomy.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TAXONOMY_INVALID_KIND", err.Error())
		return
	}

	q := r.URL.Query()
	scope := taxonomy.Scope{
		Kind:     taxonomy.ScopeKind(q.Get("scope_kind")),
		Name:     strings.TrimSpace(q.Get("scope_name")),
		Standard: strings.TrimSpace(q.Get("standard")),
		Issue:    strings.TrimSpace(q.Get("issue")),
		Criteria: strings.TrimSpace(q.Get("criteria")),
	}
	if err := scope.Validate(kind); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "TAXONOMY_INVALID_SCOPE", err.Error())
		return
	}

	entries, err := c.taxonomy.Children(r.Context(), kind, scope)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mappers.EntriesToViewModels(entries))
}

func (c *TaxonomyAPIController) ListSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := c.taxonomy.Sectors(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]viewmodels.Entry, 0, len(sectors))
	for _, s := range sectors {
		out = append(out, viewmodels.Entry{Code: s.Name, Name: s.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *TaxonomyAPIController) ListSubsectors(w http.ResponseWriter, r *http.Request) {
	sector := mux.Vars(r)["sector"]

	subsectors, err := c.taxonomy.Subsectors(r.Context(), sector)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]viewmodels.Entry, 0, len(subsectors))
	for _, s := range subsectors {
		out = append(out, viewmodels.Entry{Code: s.Name, Name: s.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *TaxonomyAPIController) GetIndicator(w http.ResponseWriter, r *http.Request) {
	ind, err := c.taxonomy.Indicator(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mappers.IndicatorToViewModel(ind))
}
