// ABOUTME: HTTP middleware guarding protected routes with cookie authentication
// ABOUTME: Validates the session, checks scopes, and attaches Identity to context

package auth

import (
	"errors"
	"net/http"
)

// Protect wraps a handler with authentication and scope authorization.
// Requests without the cookie triple get 400; requests that fail
// authentication or hold none of the required scopes get 401. The wrapped
// handler only runs after both checks pass, with the resolved Identity in
// the request context. Internal distinctions between failures stay in the
// logs; clients see a uniform category.
//
// With no required scopes the gate authenticates only, for routes like
// logout that any signed-in user may call.
func Protect(svc *Service, required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookies, err := ParseCookies(r)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			identity, err := svc.Validate(r.Context(), cookies)
			if err != nil {
				svc.logger.Debug("request validation failed", "path", r.URL.Path, "error", err)
				writeAuthError(w, err)
				return
			}

			if len(required) > 0 {
				if err := svc.Authorize(identity.Scopes, required...); err != nil {
					svc.logger.Debug("request authorization failed", "path", r.URL.Path,
						"user_id", identity.User.ID, "error", err)
					writeAuthError(w, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// writeAuthError maps auth errors to the HTTP status taxonomy with a
// generic JSON body. Unexpected errors (store failures) become 500.
func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case errors.Is(err, ErrMissingAuthorizationCookie):
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"authorization cookie not present"}`))
	case errors.Is(err, ErrScopesFailed):
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"permission denied"}`))
	case errors.Is(err, ErrAuthenticationFailed):
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"authentication failed"}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal error"}`))
	}
}
