package middleware

import (
	"net/http"

	"github.com/JonMunkholm/tabclean/internal/logging"
	"github.com/gorilla/sessions"
)

// SessionValueKey is the cookie session value holding the dataset session id.
const SessionValueKey = "sid"

// Session reads the signed session cookie and, when it names a dataset
// session, stores that id on the request context (see
// logging.SessionIDFromContext). A missing or tampered cookie is not an
// error here; the request simply carries no session.
func Session(store sessions.Store, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r, name)
			if err != nil {
				logging.FromContext(r.Context()).Warn("session cookie rejected",
					"path", r.URL.Path,
					"error", err,
				)
			}
			if sess != nil {
				if id, ok := sess.Values[SessionValueKey].(string); ok && id != "" {
					r = r.WithContext(logging.WithSessionID(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
