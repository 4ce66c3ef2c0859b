package mongo_test

import (
	"context"
	"testing"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/database/mongodb"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/repository"
	taskmongo "taskManager/internal/repository/task/mongo"
	"taskManager/internal/testkit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoTestSuite struct {
	suite.Suite
	container *testkit.Container
	client    *mongo.Client
	db        *mongo.Database
	storage   *taskmongo.TaskStorage
	ctx       context.Context
}

func TestMongoTestSuite(t *testing.T) {
	testkit.SkipIfShort(t)
	suite.Run(t, new(MongoTestSuite))
}

func (s *MongoTestSuite) SetupSuite() {
	logger.InitNop()
	s.ctx = context.Background()

	container, err := testkit.StartMongo(s.ctx)
	require.NoError(s.T(), err)
	s.container = container

	client, err := mongodb.Connect(s.ctx, config.MongoConfig{URI: container.URL, Database: "tasks_test"})
	require.NoError(s.T(), err)
	s.client = client
	s.db = client.Database("tasks_test")

	storage, err := taskmongo.NewTaskStorage(s.ctx, s.db)
	require.NoError(s.T(), err)
	s.storage = storage
}

func (s *MongoTestSuite) TearDownSuite() {
	if s.client != nil {
		_ = mongodb.Disconnect(s.ctx, s.client)
	}
	s.container.Stop(s.ctx)
}

func (s *MongoTestSuite) SetupTest() {
	_, err := s.db.Collection(mongodb.TasksCollection).DeleteMany(s.ctx, bson.D{})
	require.NoError(s.T(), err)
}

func (s *MongoTestSuite) newTask(title string) *task.Task {
	due := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
	return task.New(task.Fields{
		Title:    title,
		Status:   task.StatusPending,
		Priority: task.PriorityCritical,
		DueDate:  &due,
		Category: "home",
		Tags:     []string{"x", "y", "z"},
	}, task.WithID(uuid.NewString()))
}

func (s *MongoTestSuite) TestHealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func (s *MongoTestSuite) TestCreateAndList() {
	created := s.newTask("Write report")
	require.NoError(s.T(), s.storage.Create(s.ctx, created))

	tasks, err := s.storage.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), tasks, 1)
	assert.Equal(s.T(), created, tasks[0])
}

func (s *MongoTestSuite) TestCreate_Duplicate() {
	created := s.newTask("Once")
	require.NoError(s.T(), s.storage.Create(s.ctx, created))

	again := s.newTask("Twice")
	again.ID = created.ID
	assert.ErrorIs(s.T(), s.storage.Create(s.ctx, again), repository.ErrDuplicate)
}

func (s *MongoTestSuite) TestStoredDocumentUsesClientFieldNames() {
	created := s.newTask("Field names")
	require.NoError(s.T(), s.storage.Create(s.ctx, created))

	var raw bson.M
	err := s.db.Collection(mongodb.TasksCollection).FindOne(s.ctx, bson.M{"_id": created.ID}).Decode(&raw)
	require.NoError(s.T(), err)
	for _, key := range []string{"_id", "title", "dueDate", "createdAt", "updatedAt", "tags"} {
		assert.Contains(s.T(), raw, key)
	}
}

func (s *MongoTestSuite) TestList_NewestFirst() {
	for _, title := range []string{"first", "second", "third"} {
		require.NoError(s.T(), s.storage.Create(s.ctx, s.newTask(title)))
		time.Sleep(5 * time.Millisecond)
	}

	tasks, err := s.storage.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), tasks, 3)
	assert.Equal(s.T(), "third", tasks[0].Title)
	assert.Equal(s.T(), "second", tasks[1].Title)
	assert.Equal(s.T(), "first", tasks[2].Title)
}

func (s *MongoTestSuite) TestReplace_FullReplace() {
	created := s.newTask("Original")
	require.NoError(s.T(), s.storage.Create(s.ctx, created))
	time.Sleep(2 * time.Millisecond)

	replacement := task.Fields{
		Title:    "Replaced",
		Status:   task.StatusDone,
		Priority: task.PriorityLow,
		Tags:     []string{},
	}
	updated, err := s.storage.Replace(s.ctx, created.ID, replacement)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), replacement, updated.Fields())
	assert.Nil(s.T(), updated.DueDate)
	assert.Empty(s.T(), updated.Category)
	assert.True(s.T(), created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(s.T(), updated.UpdatedAt.After(created.UpdatedAt))

	tasks, err := s.storage.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), tasks, 1)
	assert.Equal(s.T(), updated, tasks[0])
}

func (s *MongoTestSuite) TestReplace_NotFound() {
	_, err := s.storage.Replace(s.ctx, uuid.NewString(), task.Fields{Title: "ghost", Status: task.StatusPending, Priority: task.PriorityLow})
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *MongoTestSuite) TestDelete() {
	created := s.newTask("Delete me")
	require.NoError(s.T(), s.storage.Create(s.ctx, created))

	require.NoError(s.T(), s.storage.Delete(s.ctx, created.ID))
	assert.ErrorIs(s.T(), s.storage.Delete(s.ctx, created.ID), repository.ErrNotFound)
}
