package http

import (
	"net/http"

	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/pkg/httpx"
)

type PasswordHandler struct {
	AccountService *service.AccountService
}

type messageResponse struct {
	Message string `json:"message"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleResetRequest starts the password-reset flow. It reports success for
// unknown addresses too.
func (h *PasswordHandler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AccountService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "if the email address is registered, a reset code has been sent to it",
	})
}

type resetVerifyRequest struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// HandleResetVerify consumes the reset code and installs the new password.
// Existing sessions stop working; the user has to log in again.
func (h *PasswordHandler) HandleResetVerify(w http.ResponseWriter, r *http.Request) {
	var req resetVerifyRequest
	if !decode(w, r, &req) {
		return
	}
	if !confirmPasswords(w, req.Password, req.PasswordConfirm) {
		return
	}

	if err := h.AccountService.VerifyPasswordReset(r.Context(), req.Email, req.OTP, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "your password has been reset, please log in again",
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// HandleChange replaces the authenticated user's password.
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if !confirmPasswords(w, req.Password, req.PasswordConfirm) {
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	if err := h.AccountService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "your password has been changed, please log in again",
	})
}
