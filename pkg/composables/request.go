package composables

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/greenweave/greenweave/pkg/constants"
)

var (
	ErrNoLogger   = errors.New("logger not found")
	ErrNoTenantID = errors.New("tenant id not found")
	ErrNoOrgName  = errors.New("organization name not found")
)

type Params struct {
	IP            string
	UserAgent     string
	Authenticated bool
	Request       *http.Request
	Writer        http.ResponseWriter
}

// UseParams returns the request parameters from the context.
// If the parameters are not found, the second return value will be false.
func UseParams(ctx context.Context) (*Params, bool) {
	params, ok := ctx.Value(constants.ParamsKey).(*Params)
	return params, ok
}

// WithParams returns a new context with the request parameters.
func WithParams(ctx context.Context, params *Params) context.Context {
	return context.WithValue(ctx, constants.ParamsKey, params)
}

// UseLogger returns the logger from the context and panics when absent:
// middleware installs it on every request, so a miss is a wiring bug.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		panic(ErrNoLogger)
	}
	return logger.(*logrus.Entry)
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

func WithTenantID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, id)
}

func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(constants.TenantIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrNoTenantID
	}
	return id, nil
}

// WithOrgName attaches the organization-name partition key of the active
// user. Per-organization records are scoped by this value.
func WithOrgName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, constants.OrgNameKey, name)
}

func UseOrgName(ctx context.Context) (string, error) {
	name, ok := ctx.Value(constants.OrgNameKey).(string)
	if !ok || name == "" {
		return "", ErrNoOrgName
	}
	return name, nil
}

// WithRoleClaim records the raw role claim of the caller. The claim is
// advisory: it is validated where a write actually needs gating.
func WithRoleClaim(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, constants.RoleClaimKey, role)
}

func UseRoleClaim(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(constants.RoleClaimKey).(string)
	return role, ok && role != ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.RequestIDKey, id)
}

func UseRequestID(ctx context.Context) string {
	id, ok := ctx.Value(constants.RequestIDKey).(string)
	if !ok {
		return ""
	}
	return id
}

func UseIP(ctx context.Context) (string, bool) {
	params, ok := UseParams(ctx)
	if !ok {
		return "", false
	}
	return params.IP, true
}

func UseUserAgent(ctx context.Context) (string, bool) {
	params, ok := UseParams(ctx)
	if !ok {
		return "", false
	}
	return params.UserAgent, true
}
