package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/session"
	"github.com/quaymarket/storefront/internal/store"
)

type sessionResponse struct {
	Status string       `json:"status"`
	User   *sessionUser `json:"user,omitempty"`
	Expiry *time.Time   `json:"expires_at,omitempty"`
}

type sessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// currentSession reports the caller's session state. This is the endpoint
// the browser session context resolves against; it is public and answers
// "unauthenticated" cleanly rather than erroring, matching the resolver's
// two-outcome contract.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) {
	claims, err := s.sessions.Resolve(r)
	if err != nil {
		writeJSON(w, http.StatusOK, sessionResponse{Status: "unauthenticated"})
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Status: "authenticated",
		User: &sessionUser{
			ID:    claims.UserID.String(),
			Name:  claims.Name,
			Email: claims.Email,
			Role:  string(claims.Role),
		},
		Expiry: &claims.ExpiresAt,
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims := session.ClaimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, sessionUser{
		ID:    claims.UserID.String(),
		Name:  claims.Name,
		Email: claims.Email,
		Role:  string(claims.Role),
	})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	s.sessions.SignOut(w)
	w.WriteHeader(http.StatusNoContent)
}

type devSignInRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to"`
}

// devSignIn issues a session token for a seeded user. It stands in for the
// out-of-scope credential issuance flow so the system is runnable end to
// end in development; registration is gated behind the --dev-issuer flag.
// It accepts both JSON and the sign-in page's form post.
func (s *Server) devSignIn(w http.ResponseWriter, r *http.Request) {
	var req devSignInRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = r.PostFormValue("email")
		req.RedirectTo = r.PostFormValue("redirectTo")
	} else if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeJSONError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeJSONError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		log.Error().Err(err).Msg("Failed to look up user for dev sign-in")
		writeJSONError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}
	if user.IsDeleted() {
		writeJSONError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	token, err := s.sessions.Issue(r.Context(), w, r, user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue session token")
		writeJSONError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}

	log.Info().Str("user_id", user.UserID.String()).Msg("Dev sign-in issued session")

	if req.RedirectTo != "" && strings.HasPrefix(req.RedirectTo, "/") {
		http.Redirect(w, r, req.RedirectTo, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
