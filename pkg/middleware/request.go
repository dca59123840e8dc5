package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/greenweave/greenweave/pkg/composables"
	"github.com/greenweave/greenweave/pkg/configuration"
	"github.com/greenweave/greenweave/pkg/constants"
)

// Provide injects a static value into every request context under the
// given key. Used to thread the application container and the pgx pool.
func Provide(key constants.ContextKey, value any) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), key, value)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

func RequestParams() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				params := &composables.Params{
					IP:        getRealIP(r, conf),
					UserAgent: r.UserAgent(),
					Request:   r,
					Writer:    w,
				}
				ctx := composables.WithParams(r.Context(), params)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}
