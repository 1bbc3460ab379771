package attendance

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/rbac"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Handler manages attendance endpoints.
type Handler struct {
	logger *slog.Logger
	repo   RepositoryPort
	rbac   rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo RepositoryPort, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, rbac: rbac}
}

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ModuleAttendance, rbac.ActionRead)).Get("/employees/{id}", h.listForEmployee)
	r.With(h.rbac.Require(rbac.ModuleAttendance, rbac.ActionCreate)).Post("/clock-in", h.clockIn)
	r.With(h.rbac.Require(rbac.ModuleAttendance, rbac.ActionUpdate)).Post("/clock-out", h.clockOut)
}

type clockRequest struct {
	EmployeeID int64  `json:"employee_id"`
	Note       string `json:"note"`
}

type recordView struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"`
	ClockIn    string `json:"clock_in"`
	ClockOut   string `json:"clock_out,omitempty"`
	Note       string `json:"note,omitempty"`
}

func (h *Handler) clockIn(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.EmployeeID == 0 {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	rec, err := h.repo.ClockIn(r.Context(), req.EmployeeID, time.Now().UTC(), req.Note)
	if err != nil {
		h.fail(w, "clock in", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(*rec))
}

func (h *Handler) clockOut(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.EmployeeID == 0 {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	rec, err := h.repo.ClockOut(r.Context(), req.EmployeeID, time.Now().UTC())
	if err != nil {
		h.fail(w, "clock out", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*rec))
}

func (h *Handler) listForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	to := time.Now().UTC()
	from := to.AddDate(0, -1, 0)
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			to = parsed.AddDate(0, 0, 1)
		}
	}
	records, err := h.repo.ListForEmployee(r.Context(), employeeID, from, to)
	if err != nil {
		h.fail(w, "list attendance", err)
		return
	}
	views := make([]recordView, len(records))
	for i, rec := range records {
		views[i] = toView(rec)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": views})
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if shared.UserSafeMessage(err) == "internal error" && h.logger != nil {
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func toView(rec Record) recordView {
	view := recordView{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		ClockIn:    rec.ClockIn.UTC().Format(time.RFC3339),
		Note:       rec.Note,
	}
	if rec.ClockOut != nil {
		view.ClockOut = rec.ClockOut.UTC().Format(time.RFC3339)
	}
	return view
}
