package postgres_test

import (
	"context"
	"testing"

	"taskManager/internal/config"
	pgdb "taskManager/internal/database/postgres"
	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/repository/user/postgres"
	"taskManager/internal/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type UserPostgresSuite struct {
	suite.Suite
	container *testkit.Container
	pool      *pgxpool.Pool
	storage   *postgres.Storage
	ctx       context.Context
}

func TestUserPostgresSuite(t *testing.T) {
	testkit.SkipIfShort(t)
	suite.Run(t, new(UserPostgresSuite))
}

func (s *UserPostgresSuite) SetupSuite() {
	logger.InitNop()
	s.ctx = context.Background()

	container, err := testkit.StartPostgres(s.ctx)
	require.NoError(s.T(), err)
	s.container = container

	require.NoError(s.T(), pgdb.Migrate(container.URL))
	pool, err := pgdb.Connect(s.ctx, config.DatabaseConfig{URL: container.URL, MaxConnections: 4})
	require.NoError(s.T(), err)
	s.pool = pool
	s.storage = postgres.New(pool)
}

func (s *UserPostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	s.container.Stop(s.ctx)
}

func (s *UserPostgresSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "DELETE FROM users")
	require.NoError(s.T(), err)
}

func (s *UserPostgresSuite) TestCreateAndGetByEmail() {
	u := &user.User{ID: "u-1", Email: " Boss@Example.com", PasswordHash: "$2a$10$hash", Name: "Boss", Role: user.RoleAdmin}
	require.NoError(s.T(), s.storage.Create(s.ctx, u))

	found, err := s.storage.GetByEmail(s.ctx, "boss@EXAMPLE.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), u, found)
}

func (s *UserPostgresSuite) TestDuplicateEmail() {
	require.NoError(s.T(), s.storage.Create(s.ctx, &user.User{ID: "u-1", Email: "a@b.c", PasswordHash: "h", Role: user.RoleUser}))
	err := s.storage.Create(s.ctx, &user.User{ID: "u-2", Email: "a@b.c", PasswordHash: "h", Role: user.RoleUser})
	assert.ErrorIs(s.T(), err, repository.ErrDuplicate)
}

func (s *UserPostgresSuite) TestGetByEmail_NotFound() {
	_, err := s.storage.GetByEmail(s.ctx, "missing@example.com")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *UserPostgresSuite) TestSchemaRejectsUnknownRole() {
	err := s.storage.Create(s.ctx, &user.User{ID: "u-3", Email: "x@y.z", PasswordHash: "h", Role: "owner"})
	assert.Error(s.T(), err)
}
