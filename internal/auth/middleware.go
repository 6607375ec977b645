package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/sakif/jamstand/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// UserResolver turns a bearer token into the user who owns it. The user
// service implements this against the Users table.
type UserResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.User, error)
}

// RequireAuth wraps protected routes. It reads the Authorization header
// or, failing that, a "token" field in a JSON body, resolves the token
// to a user, and stores the user in the request context. Missing or
// unknown tokens end the chain with a 401.
func RequireAuth(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				token = bodyToken(r)
			}
			if token == "" {
				writeUnauthorized(w, "Authentication required")
				return
			}
			user, err := resolver.ResolveToken(r.Context(), token)
			if err != nil || user == nil {
				writeUnauthorized(w, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithUser returns a context carrying user the way RequireAuth
// stores it. Handler tests use it to skip the middleware.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user placed by RequireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// BearerToken extracts the credential from the Authorization header. A
// "Bearer " prefix is optional; some existing clients send the raw token.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(after)
	}
	return header
}

// maxTokenBodyBytes bounds how much of a body the middleware will read
// looking for a token. Token-in-body requests are small JSON documents.
const maxTokenBodyBytes = 1 << 20

// bodyToken pulls the "token" field out of a JSON body and puts the
// bytes back so the handler can decode the body again.
func bodyToken(r *http.Request) string {
	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyBytes))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var payload struct {
		Token string `json:"token"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	return strings.TrimSpace(payload.Token)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
