package documents

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/rbac"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Handler manages document metadata endpoints.
type Handler struct {
	logger    *slog.Logger
	repo      RepositoryPort
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo RepositoryPort, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, validator: validator.New(), rbac: rbac}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ModuleDocuments, rbac.ActionRead)).Get("/", h.list)
	r.With(h.rbac.Require(rbac.ModuleDocuments, rbac.ActionRead)).Get("/{id}", h.get)
	r.With(h.rbac.Require(rbac.ModuleDocuments, rbac.ActionCreate)).Post("/", h.create)
	r.With(h.rbac.Require(rbac.ModuleDocuments, rbac.ActionUpdate)).Put("/{id}", h.rename)
	r.With(h.rbac.Require(rbac.ModuleDocuments, rbac.ActionDelete)).Delete("/{id}", h.delete)
}

type createDocumentRequest struct {
	EmployeeID  int64  `json:"employee_id"`
	Title       string `json:"title" validate:"required"`
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

type renameDocumentRequest struct {
	Title string `json:"title" validate:"required"`
}

type documentView struct {
	ID          int64  `json:"id"`
	EmployeeID  int64  `json:"employee_id,omitempty"`
	Title       string `json:"title"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	StorageKey  string `json:"storage_key"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	employeeID, _ := strconv.ParseInt(r.URL.Query().Get("employee_id"), 10, 64)
	p := shared.NewPagination(page, perPage, 0)
	docs, total, err := h.repo.List(r.Context(), employeeID, p.PerPage, p.Offset())
	if err != nil {
		h.fail(w, "list documents", err)
		return
	}
	views := make([]documentView, len(docs))
	for i, d := range docs {
		views[i] = toView(d)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"documents":  views,
		"pagination": shared.NewPagination(p.Page, p.PerPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*doc))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	identity, _ := rbac.IdentityFromContext(r.Context())
	doc := Document{
		Title:       req.Title,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		StorageKey:  uuid.NewString(),
		UploadedBy:  identity.UserID,
	}
	if req.EmployeeID != 0 {
		doc.EmployeeID = &req.EmployeeID
	}
	created, err := h.repo.Create(r.Context(), doc)
	if err != nil {
		h.fail(w, "create document", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(*created))
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req renameDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.repo.Rename(r.Context(), id, req.Title); err != nil {
		h.fail(w, "rename document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if shared.UserSafeMessage(err) == "internal error" && h.logger != nil {
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return 0, false
	}
	return id, true
}

func toView(d Document) documentView {
	view := documentView{
		ID:          d.ID,
		Title:       d.Title,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		StorageKey:  d.StorageKey,
	}
	if d.EmployeeID != nil {
		view.EmployeeID = *d.EmployeeID
	}
	return view
}
