package http

import (
	"net/http"

	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/pkg/httpx"
)

type EmailHandler struct {
	AccountService *service.AccountService
}

type changeEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleChange records the requested address and mails a confirmation code
// to it. The account keeps its current address until the code is verified.
func (h *EmailHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	var req changeEmailRequest
	if !decode(w, r, &req) {
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	if err := h.AccountService.ChangeEmail(r.Context(), userID, req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "a confirmation code has been sent to the new email address",
	})
}

type verifyEmailRequest struct {
	OTP string `json:"otp" validate:"required"`
}

// HandleVerify consumes the confirmation code and commits the new address.
func (h *EmailHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !decode(w, r, &req) {
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	if err := h.AccountService.VerifyChangeEmail(r.Context(), userID, req.OTP); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "your email address has been updated",
	})
}
