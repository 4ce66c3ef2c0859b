package redis

import (
	"context"
	"testing"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/database/redisdb"
	"taskManager/internal/logger"
	"taskManager/internal/models/session"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/testkit"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisSessionSuite struct {
	suite.Suite
	container *testkit.Container
	rdb       *redis.Client
	store     *SessionStore
	ctx       context.Context
}

func TestRedisSessionSuite(t *testing.T) {
	testkit.SkipIfShort(t)
	suite.Run(t, new(RedisSessionSuite))
}

func (s *RedisSessionSuite) SetupSuite() {
	logger.InitNop()
	s.ctx = context.Background()

	container, err := testkit.StartRedis(s.ctx)
	require.NoError(s.T(), err)
	s.container = container

	rdb, err := redisdb.Connect(s.ctx, config.RedisConfig{Addr: container.URL})
	require.NoError(s.T(), err)
	s.rdb = rdb
}

func (s *RedisSessionSuite) TearDownSuite() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	s.container.Stop(s.ctx)
}

func (s *RedisSessionSuite) SetupTest() {
	require.NoError(s.T(), s.rdb.FlushDB(s.ctx).Err())
	s.store = NewSessionStore(s.rdb)
}

func (s *RedisSessionSuite) newSession(token string, ttl time.Duration) session.Session {
	u := &user.User{ID: "u1", Email: "a@b.c", Name: "A", Role: user.RoleUser}
	sess := session.ForUser(u, time.Now().UTC().Truncate(time.Second), ttl)
	sess.Token = token
	return sess
}

func (s *RedisSessionSuite) TestSaveSetsKeyTTL() {
	sess := s.newSession("tok", time.Hour)
	require.NoError(s.T(), s.store.Save(s.ctx, sess))

	ttl, err := s.rdb.TTL(s.ctx, "session:tok").Result()
	require.NoError(s.T(), err)
	assert.Greater(s.T(), ttl, 58*time.Minute)
	assert.LessOrEqual(s.T(), ttl, time.Hour)

	got, err := s.store.Get(s.ctx, "tok")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), sess.UserID, got.UserID)
	assert.Equal(s.T(), sess.Role, got.Role)
	assert.True(s.T(), sess.ExpiresAt.Equal(got.ExpiresAt))
}

func (s *RedisSessionSuite) TestGet_Missing() {
	_, err := s.store.Get(s.ctx, "nope")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *RedisSessionSuite) TestDelete() {
	require.NoError(s.T(), s.store.Save(s.ctx, s.newSession("tok", time.Hour)))
	require.NoError(s.T(), s.store.Delete(s.ctx, "tok"))

	_, err := s.store.Get(s.ctx, "tok")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *RedisSessionSuite) TestGet_ExpiredBeforeRedisEvicts() {
	sess := s.newSession("tok", time.Hour)
	require.NoError(s.T(), s.store.Save(s.ctx, sess))

	s.store.now = func() time.Time { return sess.ExpiresAt }
	_, err := s.store.Get(s.ctx, "tok")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *RedisSessionSuite) TestSave_AlreadyExpired() {
	sess := s.newSession("tok", time.Hour)
	s.store.now = func() time.Time { return sess.ExpiresAt.Add(time.Second) }
	assert.Error(s.T(), s.store.Save(s.ctx, sess))
}
