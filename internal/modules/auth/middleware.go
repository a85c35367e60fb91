package auth

import (
	"context"
	"net/http"

	"github.com/gatherly/gatherly/internal/modules/auth/domain"
	"github.com/gatherly/gatherly/internal/modules/core"
	"github.com/gatherly/gatherly/internal/store"
)

const SessionCookieName = "gatherly-session"

// AuthenticationMiddleware resolves the session cookie to a caller
// identity and places it in the request context. Requests without a live
// session never reach the handlers.
func AuthenticationMiddleware(s *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				core.WriteUnauthorized(w, r, nil)
				return
			}

			var (
				userID uint64
				found  bool
			)

			err = s.View(func(tx *store.Tx) error {
				raw, ok, err := tx.Get(domain.SessionCollection, []byte(cookie.Value))
				if err != nil {
					return err
				}

				if !ok {
					return nil
				}

				found = true
				userID, err = store.DecodeID(raw)
				return err
			})
			if err != nil {
				core.WriteInternalServerError(w, r, nil)
				return
			}

			if !found {
				core.WriteUnauthorized(w, r, nil)
				return
			}

			authContext := context.WithValue(r.Context(), core.SessionContextKey, core.ContextSession{UserID: userID})
			next.ServeHTTP(w, r.WithContext(authContext))
		})
	}
}
