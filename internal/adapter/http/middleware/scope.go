package middleware

import (
	"net/http"

	"github.com/iho/pettycash/internal/domain"
)

// BoardingHouseHeader selects the boarding house a request works on.
const BoardingHouseHeader = "X-Boarding-House-ID"

// BoardingHouseScope scopes the request context to one boarding house.
// A user whose token is bound to a boarding house cannot switch to another
// one through the header.
func BoardingHouseScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := r.Header.Get(BoardingHouseHeader)

		if user, ok := domain.UserFromContext(r.Context()); ok && user.BoardingHouseID != "" {
			if scope != "" && scope != user.BoardingHouseID {
				writeJSONError(w, http.StatusForbidden, "boarding house not accessible")
				return
			}
			scope = user.BoardingHouseID
		}

		if scope == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := domain.ContextWithBoardingHouse(r.Context(), scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
