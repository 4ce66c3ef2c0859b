package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskService interface {
	HealthCheck(context.Context) error
	ListTasks(context.Context) ([]*task.Task, error)
	CreateTask(ctx context.Context, payload map[string]any) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, payload map[string]any) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	tasks, err := h.TaskService.ListTasks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: tasks listed",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	payload, ok := readPayload(w, r)
	if !ok {
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), payload)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, created)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	payload, ok := readPayload(w, r)
	if !ok {
		return
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), id, payload)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: task replaced",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	if err := h.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: task deleted",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "unavailable"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

// readPayload writes the 4xx itself and reports false when the body is
// unusable.
func readPayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: wrong content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return nil, false
	}

	payload, err := decodeObject(r)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			responseWithError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return nil, false
		}
		logger.Warn("HTTP: unreadable JSON body", zap.String("client_ip", r.RemoteAddr))
		responseWithJSON(w, http.StatusBadRequest,
			toPayload("error", msgBodyNotObject),
			toPayload("details", []string{msgBodyNotObject}))
		return nil, false
	}
	return payload, true
}
