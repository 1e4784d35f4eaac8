package api

import (
	"context"
	"net"
	"net/http"

	"github.com/ficai/signal-server/internal/auth"
	"github.com/ficai/signal-server/internal/domain"
	"github.com/ficai/signal-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	contextKeyAccount   contextKey = "account"
	contextKeySessionID contextKey = "session_id"
)

// requireSession is middleware that resolves the session cookie and
// attaches the account to the request context. Requests without a valid
// session never reach the handler.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, sessionID, ok := s.resolveSession(w, r, true)
		if !ok {
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), account, sessionID)))
	})
}

// optionalSession resolves the session cookie when present but lets
// anonymous requests through. A cookie that is present but bad is still
// rejected; silently downgrading a claimed identity to anonymous would
// mask broken clients.
func (s *Server) optionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(auth.SessionCookieName); err != nil {
			next.ServeHTTP(w, r)
			return
		}

		account, sessionID, ok := s.resolveSession(w, r, false)
		if !ok {
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), account, sessionID)))
	})
}

// resolveSession authenticates the request's session cookie, writing the
// error response itself when the session is missing or bad. requireCookie
// controls whether a missing cookie is an error.
func (s *Server) resolveSession(w http.ResponseWriter, r *http.Request, requireCookie bool) (*domain.Account, []byte, bool) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		if requireCookie {
			response.Forbidden(w, "session required", s.logger)
		}
		return nil, nil, false
	}

	sessionID, err := auth.DecodeSessionID(cookie.Value)
	if err != nil {
		// A cookie we could never have issued is a malformed request,
		// not a failed login.
		response.BadRequest(w, "malformed session cookie", s.logger)
		return nil, nil, false
	}

	account, err := s.authService.Authenticate(r.Context(), sessionID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return nil, nil, false
	}

	return account, sessionID, true
}

func withSession(ctx context.Context, account *domain.Account, sessionID []byte) context.Context {
	ctx = context.WithValue(ctx, contextKeyAccount, account)
	return context.WithValue(ctx, contextKeySessionID, sessionID)
}

// accountFrom extracts the authenticated account from request context.
// Returns nil for anonymous requests.
func accountFrom(ctx context.Context) *domain.Account {
	if account, ok := ctx.Value(contextKeyAccount).(*domain.Account); ok {
		return account
	}
	return nil
}

// sessionIDFrom extracts the session id from request context.
func sessionIDFrom(ctx context.Context) []byte {
	if id, ok := ctx.Value(contextKeySessionID).([]byte); ok {
		return id
	}
	return nil
}

// limitCredentialRequests rate limits requests by client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) limitCredentialRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.credLimiter.Allow(ip) {
			s.logger.Warn("Rate limit exceeded",
				"ip", ip,
				"path", r.URL.Path,
			)
			response.TooManyRequests(w, "too many requests, try again later", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP returns the client address without the port. Behind a proxy,
// middleware.RealIP has already rewritten RemoteAddr from the forwarding
// headers.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
