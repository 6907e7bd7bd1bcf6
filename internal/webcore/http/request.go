package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/internal/webcore/store"
	"github.com/altostack/webcore/pkg/httpx"
	"github.com/altostack/webcore/pkg/passwordx"
	"github.com/altostack/webcore/pkg/slogx"
	"github.com/altostack/webcore/pkg/validatorx"
)

// decode unmarshals the JSON request body into dst and validates it. On
// failure it writes the error response and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.ErrMalformedBody.WriteError(w)
		return false
	}
	if err := validatorx.Validate(dst); err != nil {
		var verr *validatorx.ValidationError
		if errors.As(err, &verr) {
			httpx.NewAPIError(http.StatusUnprocessableEntity, httpx.ErrorCodeValidation, verr.Error()).WriteError(w)
		} else {
			httpx.ErrMalformedBody.WriteError(w)
		}
		return false
	}
	return true
}

// confirmPasswords enforces the password/password_confirm equality check at
// the API boundary. Writes a 422 and returns false on mismatch.
func confirmPasswords(w http.ResponseWriter, password, confirm string) bool {
	if password != confirm {
		httpx.NewAPIError(http.StatusUnprocessableEntity, httpx.ErrorCodeValidation,
			"password and password_confirm do not match").WriteError(w)
		return false
	}
	return true
}

// writeServiceError maps domain and service errors onto the API error shape.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var weak *passwordx.WeakPasswordError

	switch {
	case errors.As(err, &weak):
		httpx.NewAPIError(http.StatusUnprocessableEntity, httpx.ErrorCodeValidation, weak.Message).WriteError(w)

	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.NewAPIError(http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant,
			"incorrect email or password").WriteError(w)

	case errors.Is(err, service.ErrAccountNotVerified):
		httpx.NewAPIError(http.StatusForbidden, httpx.ErrorCodeForbidden,
			"the account email address has not been verified").WriteError(w)

	case errors.Is(err, service.ErrEmailTaken):
		httpx.NewAPIError(http.StatusConflict, httpx.ErrorCodeConflict,
			"an account with this email address already exists").WriteError(w)

	case errors.Is(err, service.ErrOTPExpired):
		httpx.NewAPIError(http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant,
			"the code has expired, request a new one").WriteError(w)

	case errors.Is(err, service.ErrOTPPurposeMismatch),
		errors.Is(err, service.ErrOTPInvalid):
		httpx.NewAPIError(http.StatusUnauthorized, httpx.ErrorCodeInvalidGrant,
			"the code is not valid").WriteError(w)

	case errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrTokenInvalid):
		httpx.NewAPIError(http.StatusUnauthorized, httpx.ErrorCodeInvalidToken,
			"the access token is not valid").WriteError(w)

	case errors.Is(err, service.ErrNoPendingEmail):
		httpx.NewAPIError(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest,
			"no email change is pending for this address").WriteError(w)

	case errors.Is(err, domain.ErrUnknownPurpose):
		httpx.NewAPIError(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest,
			"unrecognized request type").WriteError(w)

	case errors.Is(err, store.ErrNotFound):
		httpx.NewAPIError(http.StatusNotFound, httpx.ErrorCodeNotFound,
			"the requested resource was not found").WriteError(w)

	case errors.Is(err, store.ErrAlreadyExists):
		httpx.NewAPIError(http.StatusConflict, httpx.ErrorCodeConflict,
			"the resource already exists").WriteError(w)

	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "error", err)
		httpx.ErrInternal.WriteError(w)
	}
}
