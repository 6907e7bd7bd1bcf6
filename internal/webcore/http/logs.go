package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/pkg/httpx"
)

type LogsHandler struct {
	LogService *service.LogService
}

type logEntryView struct {
	ID      int64     `json:"id"`
	IP      string    `json:"ip"`
	Date    time.Time `json:"date"`
	Request string    `json:"request"`
	Status  int       `json:"status"`
	Size    int64     `json:"size"`
}

type logListResponse struct {
	Entries []logEntryView `json:"entries"`
	Count   int            `json:"count"`
}

func writeLogEntries(w http.ResponseWriter, entries []domain.LogEntry) {
	views := make([]logEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, logEntryView{
			ID:      e.ID,
			IP:      e.IP,
			Date:    e.Date,
			Request: e.Request,
			Status:  e.Status,
			Size:    e.Size,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, logListResponse{Entries: views, Count: len(views)})
}

func queryInt(r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HandleList returns a page of log entries; skip and limit come from the
// query string.
func (h *LogsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	skip, ok := queryInt(r, "skip", 0)
	if !ok {
		httpx.NewAPIError(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest,
			"skip must be an integer").WriteError(w)
		return
	}
	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		httpx.NewAPIError(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest,
			"limit must be an integer").WriteError(w)
		return
	}

	entries, err := h.LogService.List(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeLogEntries(w, entries)
}

// HandleByIP returns every entry recorded for one remote address.
func (h *LogsHandler) HandleByIP(w http.ResponseWriter, r *http.Request) {
	entries, err := h.LogService.ByIP(r.Context(), r.PathValue("ip"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeLogEntries(w, entries)
}

// HandleByDate returns the entries for one calendar day (YYYY-MM-DD).
func (h *LogsHandler) HandleByDate(w http.ResponseWriter, r *http.Request) {
	day, err := time.Parse("2006-01-02", r.PathValue("date"))
	if err != nil {
		httpx.NewAPIError(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest,
			"date must be formatted as YYYY-MM-DD").WriteError(w)
		return
	}

	entries, err := h.LogService.ByDate(r.Context(), day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeLogEntries(w, entries)
}

// HandleByDateRange returns the entries between start_date and end_date,
// both inclusive, both YYYY-MM-DD.
func (h *LogsHandler) HandleByDateRange(w http.ResponseWriter, r *http.Request) {
	from, errFrom := time.Parse("2006-01-02", r.URL.Query().Get("start_date"))
	to, errTo := time.Parse("2006-01-02", r.URL.Query().Get("end_date"))
	if errFrom != nil || errTo != nil {
		httpx.NewAPIError(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest,
			"start_date and end_date must be formatted as YYYY-MM-DD").WriteError(w)
		return
	}

	entries, err := h.LogService.ByDateRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeLogEntries(w, entries)
}
