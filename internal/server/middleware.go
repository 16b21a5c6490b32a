package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"greencycle/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeySession contextKey = "session"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth verifies the caller's access token and rebuilds the
// session from the authoritative users row on every request. The
// session cookie is never the source of authorization; it only carries
// display fields between page loads.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken, err := s.accessTokenFromRequest(r)
		if err != nil {
			s.logger.WithError(err).Debug("no usable access token on request")
			s.respondErrorCode(w, http.StatusUnauthorized, "unauthenticated", "Sign in to continue.", "Log in and retry the request.")
			return
		}

		userID, err := s.verifyAccessToken(r.Context(), accessToken)
		if err != nil {
			s.logger.WithError(err).Warn("access token failed verification")
			s.respondErrorCode(w, http.StatusUnauthorized, "unauthenticated", "Your session has expired.", "Log in again.")
			return
		}

		user, err := s.userRepo.User(r.Context(), userID)
		if err != nil {
			if errors.Is(err, types.ErrUserNotFound) {
				s.respondErrorCode(w, http.StatusUnauthorized, "unauthenticated", "No profile exists for this account.", "Register before signing in.")
				return
			}
			s.logger.WithError(err).Error("failed to load user for session")
			s.internalServerError(w)
			return
		}

		session := &types.Session{
			UserID: user.ID,
			Role:   user.Role,
			Name:   user.Name,
			Email:  user.Email,
			Phone:  user.ContactNumber,
		}

		ctx := context.WithValue(r.Context(), contextKeySession, session)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessTokenFromRequest prefers the encrypted cookie and falls back
// to a bearer header for non-browser clients.
func (s *Service) accessTokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.config.TokenCookieName)
	if err == nil {
		var accessToken string
		if err := s.cookie.Decode(s.config.TokenCookieName, cookie.Value, &accessToken); err != nil {
			return "", fmt.Errorf("failed to decode access token cookie: %w", err)
		}
		return accessToken, nil
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return token, nil
	}

	return "", errors.New("no access token cookie or bearer header")
}

// verifyAccessToken validates the JWT against the identity provider's
// JWKS and returns the subject claim.
func (s *Service) verifyAccessToken(ctx context.Context, accessToken string) (string, error) {
	set, err := s.jwksCache.Lookup(ctx, s.jwksURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse access token: %w", err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return "", errors.New("access token has no subject claim")
	}

	return userID, nil
}

func (s *Service) sessionFromContext(ctx context.Context) (*types.Session, error) {
	session, ok := ctx.Value(contextKeySession).(*types.Session)
	if !ok || session == nil {
		return nil, errors.New("session not found in context")
	}
	return session, nil
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
