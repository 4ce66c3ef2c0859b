package service

import (
	"context"
	"errors"
	"fmt"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	rep "taskManager/internal/repository"
	"taskManager/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskService struct {
	repo  TaskRepository
	newID func() string
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo:  repo,
		newID: uuid.NewString,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("task store health check: %w", err)
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, NewStorageError(fmt.Errorf("listing tasks: %w", err))
	}
	return tasks, nil
}

// CreateTask validates the raw payload and persists it under a fresh id.
// Nothing reaches the store unless every rule passes.
func (s *TaskService) CreateTask(ctx context.Context, payload map[string]any) (*task.Task, error) {
	fields, problems := validation.Task(payload)
	if len(problems) > 0 {
		logger.Info("Service: task rejected by validation", zap.Strings("details", problems))
		return nil, NewValidationError(problems)
	}

	created := task.New(fields, task.WithID(s.newID()))
	if err := s.repo.Create(ctx, created); err != nil {
		return nil, NewStorageError(fmt.Errorf("creating task: %w", err))
	}

	logger.Info("Service: task created", zap.String("task_id", created.ID))
	return created, nil
}

// UpdateTask is a full replace: fields absent from the payload fall back
// to their defaults rather than keeping the stored value.
func (s *TaskService) UpdateTask(ctx context.Context, id string, payload map[string]any) (*task.Task, error) {
	fields, problems := validation.Task(payload)
	if len(problems) > 0 {
		logger.Info("Service: task update rejected by validation",
			zap.String("task_id", id),
			zap.Strings("details", problems))
		return nil, NewValidationError(problems)
	}

	updated, err := s.repo.Replace(ctx, id, fields)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("task_id", id))
			return nil, NewNotFound("Task")
		}
		return nil, NewStorageError(fmt.Errorf("replacing task %s: %w", id, err))
	}

	logger.Info("Service: task replaced", zap.String("task_id", id))
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("task_id", id))
			return NewNotFound("Task")
		}
		return NewStorageError(fmt.Errorf("deleting task %s: %w", id, err))
	}

	logger.Info("Service: task deleted", zap.String("task_id", id))
	return nil
}
