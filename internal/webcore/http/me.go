package http

import (
	"net/http"
	"time"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/pkg/httpx"
)

type userView struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	IsVerifiedEmail bool       `json:"is_verified_email"`
	DateJoined      time.Time  `json:"date_joined"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastLogin       *time.Time `json:"last_login"`
}

type userResponse struct {
	User userView `json:"user"`
}

func newUserView(u domain.User) userView {
	return userView{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		IsVerifiedEmail: u.IsVerifiedEmail,
		DateJoined:      u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
		LastLogin:       u.LastLoginAt,
	}
}

type MeHandler struct {
	UserService *service.UserService
}

// HandleGet returns the authenticated user's profile.
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	user, err := h.UserService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, userResponse{User: newUserView(user)})
}

type updateMeRequest struct {
	FirstName string `json:"first_name" validate:"max=64"`
	LastName  string `json:"last_name" validate:"max=64"`
}

// HandleUpdate replaces the authenticated user's first and last name.
func (h *MeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if !decode(w, r, &req) {
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	user, err := h.UserService.UpdateNames(r.Context(), userID, req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse{User: newUserView(user)})
}
