package http

import (
	"net/http"

	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/pkg/httpx"
)

type RegisterHandler struct {
	AccountService *service.AccountService
}

type registerRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type registerResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// HandleRegister creates an unverified account and mails the activation code.
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	if !confirmPasswords(w, req.Password, req.PasswordConfirm) {
		return
	}

	user, err := h.AccountService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, registerResponse{
		Email:   user.Email,
		Message: "a verification code has been sent to your email address",
	})
}

type registerVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type registerVerifyResponse struct {
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

// HandleVerify consumes the activation code and logs the new account in.
func (h *RegisterHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req registerVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	token, err := h.AccountService.VerifyRegistration(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, registerVerifyResponse{
		AccessToken: token,
		Message:     "your account has been verified",
	})
}
