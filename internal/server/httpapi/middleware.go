package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/chathub/internal/common"
	"github.com/dmitrijs2005/chathub/internal/server/auth"
)

type ctxKey int

const identityKey ctxKey = iota

// IdentityFromContext returns the verified identity placed by requireAuth.
func IdentityFromContext(ctx context.Context) (*auth.Payload, bool) {
	p, ok := ctx.Value(identityKey).(*auth.Payload)
	return p, ok
}

// requireAuth verifies the bearer token and puts the identity on the request
// context. Requests that fail verification never reach the handler.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)

		payload, err := s.auth.Authenticate(r.Context(), header)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, payload)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
