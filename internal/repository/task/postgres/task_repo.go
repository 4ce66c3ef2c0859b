package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const taskColumns = `id, title, description, status, priority, due_date,
	category, assignee, tags, created_at, updated_at`

const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: postgres ping failed", err)
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	task.WithCreatedAt(now())(taskToCreate)
	if taskToCreate.Tags == nil {
		taskToCreate.Tags = []string{}
	}

	query := `INSERT INTO tasks (` + taskColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.pool.Exec(ctx, query,
		taskToCreate.ID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Priority,
		taskToCreate.DueDate,
		taskToCreate.Category,
		taskToCreate.Assignee,
		taskToCreate.Tags,
		taskToCreate.CreatedAt,
		taskToCreate.UpdatedAt,
	)
	if err != nil {
		logger.Error("Repository: failed to insert task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("inserting task: %w", err)
	}

	warnIfSlow("create_task", start)
	return nil
}

// Replace overwrites every mutable column in one statement.
func (s *Storage) Replace(ctx context.Context, id string, fields task.Fields) (*task.Task, error) {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $2,
				description = $3,
				status = $4,
				priority = $5,
				due_date = $6,
				category = $7,
				assignee = $8,
				tags = $9,
				updated_at = $10
			WHERE id = $1
			RETURNING ` + taskColumns

	tags := fields.Tags
	if tags == nil {
		tags = []string{}
	}

	updated, err := scanTask(s.pool.QueryRow(ctx, query,
		id,
		fields.Title,
		fields.Description,
		fields.Status,
		fields.Priority,
		fields.DueDate,
		fields.Category,
		fields.Assignee,
		tags,
		now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to replace task", err, zap.String("task_id", id))
		return nil, fmt.Errorf("replacing task: %w", err)
	}

	warnIfSlow("replace_task", start)
	return updated, nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete_task", start)
	return nil
}

func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id`)
	if err != nil {
		logger.Error("Repository: failed to list tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	warnIfSlow("list_tasks", start)
	return tasks, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.Category,
		&t.Assignee,
		&t.Tags,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		t.DueDate = &due
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

// now matches the microsecond precision of timestamptz so the record
// handed back to callers equals the stored one.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query", zap.String("operation", op), zap.Duration("ms", elapsed))
	}
}
