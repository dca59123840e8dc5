package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/greenweave/greenweave/modules/core/domain/aggregates/user"
	"github.com/greenweave/greenweave/modules/core/services"
	"github.com/greenweave/greenweave/pkg/application"
)

type UsersAPIController struct {
	app       application.Application
	users     *services.UserService
	apiPrefix string
}

func NewUsersAPIController(app application.Application) application.Controller {
	return &UsersAPIController{
		app:       app,
		users:     app.Service(services.UserService{}).(*services.UserService),
		apiPrefix: "/core/api",
	}
}

func (c *UsersAPIController) Key() string {
	return c.apiPrefix
}

func (c *UsersAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/users", c.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users", c.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", c.GetUser).Methods(http.MethodGet)
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Role         string `json:"role"`
	Organization string `json:"organization,omitempty"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:           u.ID().String(),
		Email:        u.Email(),
		FirstName:    u.FirstName(),
		LastName:     u.LastName(),
		Role:         string(u.Role()),
		Organization: u.Organization(),
	}
}

func (c *UsersAPIController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto user.CreateDTO
	if err := decodeJSON(r.Body, &dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "USERS_INVALID_BODY", "invalid json body")
		return
	}

	if fieldErrors, ok := dto.Ok(r.Context()); !ok {
		type validationResponse struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		}
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Code:   "USERS_VALIDATION",
			Fields: fieldErrors,
		})
		return
	}

	entity, err := dto.ToEntity()
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "USERS_INVALID_ROLE", err.Error())
		return
	}

	created, err := c.users.Create(r.Context(), entity)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "USERS_INTERNAL", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

func (c *UsersAPIController) ListUsers(w http.ResponseWriter, r *http.Request) {
	organization := strings.TrimSpace(r.URL.Query().Get("organization"))
	if organization == "" {
		writeAPIError(w, r, http.StatusBadRequest, "USERS_INVALID_QUERY", "organization is required")
		return
	}

	users, err := c.users.ListByOrganization(r.Context(), organization)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "USERS_INTERNAL", err.Error())
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *UsersAPIController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "USERS_INVALID_ID", "invalid user id")
		return
	}

	u, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "USERS_NOT_FOUND", "user not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "USERS_INTERNAL", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}
