package http

import (
	"net/http"

	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/pkg/httpx"
)

type LoginHandler struct {
	AccountService *service.AccountService
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleLogin exchanges credentials for a bearer token.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	token, err := h.AccountService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// HandleLogout revokes the presented token and ends the session.
func (h *LoginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := httpx.RawTokenFromContext(r.Context())

	if err := h.AccountService.Logout(r.Context(), token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
