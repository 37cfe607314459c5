package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

type userResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.UserID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		DeletedAt: u.DeletedAt,
	}
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeJSONError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}

	writeJSON(w, http.StatusOK, out)
}

type roleUpdateRequest struct {
	Role string `json:"role"`
}

func (s *Server) updateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req roleUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid role")
		return
	}

	user, err := s.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeJSONError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Error().Err(err).Msg("Failed to load user")
		writeJSONError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	if err := s.users.UpdateRole(r.Context(), userID, role); err != nil {
		log.Error().Err(err).Msg("Failed to update user role")
		writeJSONError(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	user.Role = role

	log.Info().
		Str("user_id", user.UserID.String()).
		Str("role", string(role)).
		Msg("Updated user role")

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
