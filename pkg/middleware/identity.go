package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/greenweave/greenweave/modules/core/domain/aggregates/user"
	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/httpapi"
)

// Identity claims arrive as headers set by the authenticating proxy.
// The server only reads them; authentication itself happens upstream.
const (
	TenantIDHeader = "X-Tenant-ID"
	OrgNameHeader  = "X-Org-Name"
	RoleHeader     = "X-User-Role"
)

// WithClaims copies identity claim headers into the request context.
// Malformed tenant ids are dropped rather than rejected so that anonymous
// and internal calls keep working.
func WithClaims() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				ctx := r.Context()
				if raw := r.Header.Get(TenantIDHeader); raw != "" {
					if id, err := uuid.Parse(raw); err == nil {
						ctx = composables.WithTenantID(ctx, id)
					}
				}
				if name := r.Header.Get(OrgNameHeader); name != "" {
					ctx = composables.WithOrgName(ctx, name)
				}
				if role := r.Header.Get(RoleHeader); role != "" {
					ctx = composables.WithRoleClaim(ctx, role)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// RequireTaxonomyWrite rejects mutating taxonomy calls made under a role
// claim that is not allowed to write. Requests without a role claim pass
// through: the perimeter decides whether anonymous callers get this far.
func RequireTaxonomyWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claim, ok := composables.UseRoleClaim(r.Context())
		if ok {
			role, err := user.NewRole(claim)
			if err != nil || !role.CanWriteTaxonomy() {
				_ = httpapi.WriteError(w, http.StatusForbidden, "TAXONOMY_FORBIDDEN",
					"role is not allowed to modify the taxonomy", nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
