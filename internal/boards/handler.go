package boards

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

// Handler manages workspace, board and task endpoints. Each of the three
// resources declares its own permission module.
type Handler struct {
	logger *slog.Logger
	repo   RepositoryPort
	rbac   rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo RepositoryPort, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, rbac: rbac}
}

// MountRoutes registers routes under /workspaces, /boards and /tasks.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/workspaces", func(r chi.Router) {
		r.With(h.rbac.Require(rbac.ModuleWorkspaces, rbac.ActionRead)).Get("/", h.listWorkspaces)
		r.With(h.rbac.Require(rbac.ModuleWorkspaces, rbac.ActionCreate)).Post("/", h.createWorkspace)
		r.With(h.rbac.Require(rbac.ModuleWorkspaces, rbac.ActionDelete)).Delete("/{id}", h.deleteWorkspace)
		r.With(h.rbac.Require(rbac.ModuleBoards, rbac.ActionRead)).Get("/{id}/boards", h.listBoards)
		r.With(h.rbac.Require(rbac.ModuleBoards, rbac.ActionCreate)).Post("/{id}/boards", h.createBoard)
	})
	r.Route("/boards", func(r chi.Router) {
		r.With(h.rbac.Require(rbac.ModuleBoards, rbac.ActionDelete)).Delete("/{id}", h.deleteBoard)
		r.With(h.rbac.Require(rbac.ModuleTasks, rbac.ActionRead)).Get("/{id}/tasks", h.listTasks)
		r.With(h.rbac.Require(rbac.ModuleTasks, rbac.ActionCreate)).Post("/{id}/tasks", h.createTask)
	})
	r.Route("/tasks", func(r chi.Router) {
		r.With(h.rbac.Require(rbac.ModuleTasks, rbac.ActionUpdate)).Put("/{id}", h.updateTask)
		r.With(h.rbac.Require(rbac.ModuleTasks, rbac.ActionDelete)).Delete("/{id}", h.deleteTask)
	})
}

type nameRequest struct {
	Name string `json:"name"`
}

type taskRequest struct {
	Title      string `json:"title"`
	Status     string `json:"status"`
	AssigneeID int64  `json:"assignee_id"`
	DueAt      string `json:"due_at"`
}

func (h *Handler) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.repo.ListWorkspaces(r.Context())
	if err != nil {
		h.fail(w, "list workspaces", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"workspaces": workspaces})
}

func (h *Handler) createWorkspace(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Name == "" {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	ws, err := h.repo.CreateWorkspace(r.Context(), req.Name)
	if err != nil {
		h.fail(w, "create workspace", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ws)
}

func (h *Handler) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteWorkspace(r.Context(), id); err != nil {
		h.fail(w, "delete workspace", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listBoards(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := pathID(w, r)
	if !ok {
		return
	}
	boards, err := h.repo.ListBoards(r.Context(), workspaceID)
	if err != nil {
		h.fail(w, "list boards", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"boards": boards})
}

func (h *Handler) createBoard(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Name == "" {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	board, err := h.repo.CreateBoard(r.Context(), workspaceID, req.Name)
	if err != nil {
		h.fail(w, "create board", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, board)
}

func (h *Handler) deleteBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteBoard(r.Context(), id); err != nil {
		h.fail(w, "delete board", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r)
	if !ok {
		return
	}
	tasks, err := h.repo.ListTasks(r.Context(), boardID)
	if err != nil {
		h.fail(w, "list tasks", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	boardID, ok := pathID(w, r)
	if !ok {
		return
	}
	task, ok := h.decodeTask(w, r)
	if !ok {
		return
	}
	task.BoardID = boardID
	created, err := h.repo.CreateTask(r.Context(), task)
	if err != nil {
		h.fail(w, "create task", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, ok := h.decodeTask(w, r)
	if !ok {
		return
	}
	task.ID = id
	if err := h.repo.UpdateTask(r.Context(), task); err != nil {
		h.fail(w, "update task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteTask(r.Context(), id); err != nil {
		h.fail(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeTask(w http.ResponseWriter, r *http.Request) (Task, bool) {
	var req taskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Title == "" {
		httpx.RespondError(w, shared.ErrValidation)
		return Task{}, false
	}
	if req.Status == "" {
		req.Status = StatusTodo
	}
	if !ValidStatus(req.Status) {
		httpx.RespondError(w, shared.ErrValidation)
		return Task{}, false
	}
	task := Task{Title: req.Title, Status: req.Status}
	if req.AssigneeID != 0 {
		task.AssigneeID = &req.AssigneeID
	}
	if req.DueAt != "" {
		due, err := time.Parse("2006-01-02", req.DueAt)
		if err != nil {
			httpx.RespondError(w, shared.ErrValidation)
			return Task{}, false
		}
		task.DueAt = &due
	}
	return task, true
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
