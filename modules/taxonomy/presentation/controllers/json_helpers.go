package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	coredtos "github.com/greenweave/greenweave/modules/core/presentation/controllers/dtos"
	"github.com/greenweave/greenweave/modules/taxonomy/services"
	"github.com/greenweave/greenweave/pkg/composables"
)

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

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		writeAPIError(w, r, svcErr.Status, svcErr.Code, svcErr.Message)
		return
	}
	writeAPIError(w, r, http.StatusInternalServerError, "TAXONOMY_INTERNAL", err.Error())
}

func decodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
