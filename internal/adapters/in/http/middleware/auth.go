// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	usecase "farmlink/internal/application/usecase"
	"farmlink/internal/domain/session"
)

// FirebaseAuthClient is an alias so wiring code can take
// *middleware.FirebaseAuthClient without importing the SDK.
type FirebaseAuthClient = fbauth.Client

// context keys use a private type to avoid collisions (SA1029)
type ctxKey struct{ name string }

var ctxKeySession = ctxKey{name: "session"}

// WithSession stores the session on ctx. Exported for handler tests.
func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFrom returns the session placed by AuthMiddleware. The zero
// session (not authenticated) comes back when the middleware did not
// run, e.g. on public routes.
func SessionFrom(ctx context.Context) session.Session {
	if s, ok := ctx.Value(ctxKeySession).(session.Session); ok {
		return s
	}
	return session.Session{}
}

// AuthMiddleware verifies
//
//   - Authorization: Bearer <ID_TOKEN>
//
// against Firebase Auth, resolves the profile-backed session and passes
// it down via context.
type AuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
	Auth         *usecase.AuthUsecase

	// Optional lets requests without a token through with the zero
	// session; handlers that need auth still reject them.
	Optional bool
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Anonymous requests on optional routes never need the auth
		// backend; catalog browsing keeps working when it is down.
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			if m.Optional {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		if m.FirebaseAuth == nil || m.Auth == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		sess, err := m.Auth.ResolveSession(r.Context(), uid)
		if err != nil {
			// A verified identity with no profile doc: registration
			// endpoints still need the uid/email, everything else sees
			// an unauthenticated session and rejects on its own.
			email := ""
			if e, ok := token.Claims["email"].(string); ok {
				email = strings.TrimSpace(e)
			}
			log.Printf("[AuthMiddleware] path=%s uid=%s has NO profile (email=%s)", r.URL.Path, uid, email)
			sess = session.Session{UID: uid, Email: email}
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}
