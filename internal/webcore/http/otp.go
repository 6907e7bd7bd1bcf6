package http

import (
	"net/http"

	"github.com/altostack/webcore/internal/webcore/service"
)

type OTPHandler struct {
	AccountService *service.AccountService
}

type otpResendRequest struct {
	RequestType string `json:"request_type" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

// HandleResend re-issues the code for an in-flight register, reset-password
// or change-email flow. The previous code stops verifying.
func (h *OTPHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	var req otpResendRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AccountService.ResendOTP(r.Context(), req.RequestType, req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
