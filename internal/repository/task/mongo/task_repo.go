package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/database/mongodb"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

type TaskStorage struct {
	db    *mongo.Database
	tasks *mongo.Collection
}

// NewTaskStorage makes sure the listing index exists before handing out
// the store.
func NewTaskStorage(ctx context.Context, db *mongo.Database) (*TaskStorage, error) {
	tasks := db.Collection(mongodb.TasksCollection)

	_, err := tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		logger.Error("Repository: failed to create tasks index", err)
		return nil, fmt.Errorf("creating tasks index: %w", err)
	}

	return &TaskStorage{db: db, tasks: tasks}, nil
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Repository: mongo ping failed", err)
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	task.WithCreatedAt(now())(taskToCreate)
	normalize(taskToCreate)

	if _, err := s.tasks.InsertOne(ctx, taskToCreate); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: failed to insert task", err, zap.String("task_id", taskToCreate.ID))
		return fmt.Errorf("inserting task: %w", err)
	}

	warnIfSlow("create_task", start)
	return nil
}

// Replace sets every mutable field in a single FindOneAndUpdate and
// returns the post-image.
func (s *TaskStorage) Replace(ctx context.Context, id string, fields task.Fields) (*task.Task, error) {
	start := time.Now()

	next := task.New(fields)
	normalize(next)

	update := bson.M{"$set": bson.M{
		"title":       next.Title,
		"description": next.Description,
		"status":      next.Status,
		"priority":    next.Priority,
		"dueDate":     next.DueDate,
		"category":    next.Category,
		"assignee":    next.Assignee,
		"tags":        next.Tags,
		"updatedAt":   now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated task.Task
	err := s.tasks.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to replace task", err, zap.String("task_id", id))
		return nil, fmt.Errorf("replacing task: %w", err)
	}

	warnIfSlow("replace_task", start)
	return fromDocument(&updated), nil
}

func (s *TaskStorage) Delete(ctx context.Context, id string) error {
	start := time.Now()

	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.String("task_id", id))
		return fmt.Errorf("deleting task: %w", err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete_task", start)
	return nil
}

func (s *TaskStorage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.tasks.Find(ctx, bson.D{}, opts)
	if err != nil {
		logger.Error("Repository: failed to list tasks", err)
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	var docs []*task.Task
	if err := cursor.All(ctx, &docs); err != nil {
		logger.Error("Repository: failed to decode tasks", err)
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}

	tasks := make([]*task.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, fromDocument(doc))
	}

	warnIfSlow("list_tasks", start)
	return tasks, nil
}

// normalize brings a task to the precision BSON datetimes keep, so the
// record returned from a write equals the one read back later.
func normalize(t *task.Task) {
	t.CreatedAt = t.CreatedAt.Truncate(time.Millisecond)
	t.UpdatedAt = t.UpdatedAt.Truncate(time.Millisecond)
	if t.DueDate != nil {
		due := t.DueDate.UTC().Truncate(time.Millisecond)
		t.DueDate = &due
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
}

func fromDocument(t *task.Task) *task.Task {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		t.DueDate = &due
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query", zap.String("operation", op), zap.Duration("ms", elapsed))
	}
}
