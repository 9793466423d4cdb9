package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bszczerba/taskdeck/internal/api/shared"
	"github.com/bszczerba/taskdeck/internal/domain"
	"github.com/bszczerba/taskdeck/internal/service"
	"github.com/bszczerba/taskdeck/internal/store"
)

const defaultPageSize = 20

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// ListTasks handles GET /api/tasks. It supports filtering by title
// substring, status, category, and deadline, combined with pagination and
// sorting query parameters.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	query, err := parseTaskQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := parsePageRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.taskService.GetTasks(r.Context(), userID, query, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	tasks := result.Tasks
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks:      tasks,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
	})
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), userID, taskID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH /api/tasks/{id}/status.
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.UpdateTaskStatus(r.Context(), userID, taskID, domain.TaskStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetDashboard handles GET /api/tasks/dashboard.
func (h *TaskHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.taskService.GetDashboard(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build dashboard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dashboard)
}

// ExportTasks handles GET /api/tasks/export, streaming the user's tasks as a
// CSV attachment.
func (h *TaskHandler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	data, err := h.taskService.ExportCSV(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export tasks")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		// Headers are already sent; nothing to do but log.
		slog.Error("failed to write CSV export", "error", err, "user_id", userID)
	}
}

// parseTaskQuery builds the service-level filter from the request's query
// parameters.
func parseTaskQuery(r *http.Request) (service.TaskQuery, error) {
	params := r.URL.Query()
	var query service.TaskQuery

	if title := params.Get("title"); title != "" {
		query.Title = &title
	}

	if raw := params.Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !domain.ValidStatus(status) {
			return query, fmt.Errorf("%w: %q", service.ErrInvalidStatus, raw)
		}
		query.Status = &status
	}

	if raw := params.Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return query, domain.NewValidationError("category_id", "has invalid format", domain.ErrInvalidID)
		}
		query.CategoryID = &categoryID
	}

	if raw := params.Get("deadline"); raw != "" {
		deadline, err := service.ParseDeadlineFilter(raw)
		if err != nil {
			return query, err
		}
		query.Deadline = &deadline
	}

	return query, nil
}

// parsePageRequest builds pagination and sorting from the request's query
// parameters, applying defaults for anything absent.
func parsePageRequest(r *http.Request) (store.PageRequest, error) {
	params := r.URL.Query()
	page := store.PageRequest{
		Page:     1,
		PageSize: defaultPageSize,
		SortBy:   params.Get("sort"),
		Order:    params.Get("order"),
	}

	if raw := params.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, domain.NewValidationError("page", "must be a positive integer", domain.ErrValidation)
		}
		page.Page = n
	}

	if raw := params.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, domain.NewValidationError("page_size", "must be a non-negative integer", domain.ErrValidation)
		}
		// page_size=0 disables pagination.
		page.PageSize = n
	}

	return page, nil
}
