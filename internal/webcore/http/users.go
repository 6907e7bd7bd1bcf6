package http

import (
	"net/http"
	"strconv"

	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleGet returns another user's profile. Only administrators may read
// other accounts.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFromContext(r.Context())

	caller, err := h.UserService.GetByID(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !caller.IsAdmin {
		httpx.NewAPIError(http.StatusForbidden, httpx.ErrorCodeForbidden,
			"only administrators may read other accounts").WriteError(w)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.NewAPIError(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest,
			"the user id must be numeric").WriteError(w)
		return
	}

	user, err := h.UserService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, userResponse{User: newUserView(user)})
}
