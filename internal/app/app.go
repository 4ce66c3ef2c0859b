package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/config"
	"taskManager/internal/database/mongodb"
	pgdb "taskManager/internal/database/postgres"
	"taskManager/internal/database/redisdb"
	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	sessioninmemory "taskManager/internal/repository/session/inmemory"
	sessionmongo "taskManager/internal/repository/session/mongo"
	sessionredis "taskManager/internal/repository/session/redis"
	taskinmemory "taskManager/internal/repository/task/inmemory"
	taskmongo "taskManager/internal/repository/task/mongo"
	taskpostgres "taskManager/internal/repository/task/postgres"
	userinmemory "taskManager/internal/repository/user/inmemory"
	usermongo "taskManager/internal/repository/user/mongo"
	userpostgres "taskManager/internal/repository/user/postgres"
	"taskManager/internal/service"
	"taskManager/internal/worker"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

type App struct {
	config *config.Config
	server *http.Server
	router http.Handler

	mongo *mongo.Database

	tasks    service.TaskRepository
	users    service.UserRepository
	sessions service.SessionStore

	taskService *service.TaskService
	authService *service.AuthService

	// closed in reverse order of registration
	shutdowns []closer
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]closer, 0),
	}
}

// Init opens every configured backend, builds the services and the HTTP
// server. Whatever was opened before a failure is closed again.
func (a *App) Init(ctx context.Context) (*App, error) {
	if err := a.InitStorage(ctx); err != nil {
		return nil, err
	}

	if err := a.bootstrapUser(ctx); err != nil {
		a.closeAll(ctx)
		return nil, err
	}

	a.router = a.newRouter()
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	return a, nil
}

// InitStorage connects the stores and services without any HTTP surface;
// the operator CLI stops here.
func (a *App) InitStorage(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		a.closeAll(ctx)
		return err
	}

	hasher := auth.NewPasswordHasher(a.config.Auth.BcryptCost)
	a.taskService = service.NewTaskService(a.tasks)
	a.authService = service.NewAuthService(a.users, a.sessions, hasher, a.config.Sessions.TTL)
	return nil
}

func (a *App) connect(ctx context.Context) error {
	if a.config.UsesMongo() {
		client, err := mongodb.Connect(ctx, a.config.Mongo)
		if err != nil {
			return fmt.Errorf("connecting to mongo: %w", err)
		}
		a.onShutdown("mongo", func(ctx context.Context) error {
			return mongodb.Disconnect(ctx, client)
		})
		a.mongo = client.Database(a.config.Mongo.Database)
	}

	switch a.config.Repository.Type {
	case config.BackendMongo:
		tasks, err := taskmongo.NewTaskStorage(ctx, a.mongo)
		if err != nil {
			return err
		}
		users, err := usermongo.NewUserStorage(ctx, a.mongo)
		if err != nil {
			return err
		}
		a.tasks, a.users = tasks, users

	case config.BackendPostgres:
		if err := pgdb.Migrate(a.config.Database.URL); err != nil {
			return fmt.Errorf("migrating postgres: %w", err)
		}
		pool, err := pgdb.Connect(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		a.onShutdown("postgres", func(context.Context) error {
			pool.Close()
			logger.Info("Repository: PostgreSQL pool closed")
			return nil
		})
		a.tasks, a.users = taskpostgres.New(pool), userpostgres.New(pool)

	case config.BackendInMemory:
		logger.Warn("Repository: using in-memory task and user storage, data is lost on restart")
		a.tasks, a.users = taskinmemory.NewTaskStorage(), userinmemory.NewUserStorage()

	default:
		return fmt.Errorf("unknown repository type %q", a.config.Repository.Type)
	}

	switch a.config.Sessions.Type {
	case config.BackendRedis:
		rdb, err := redisdb.Connect(ctx, a.config.Redis)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.onShutdown("redis", func(context.Context) error {
			return rdb.Close()
		})
		a.sessions = sessionredis.NewSessionStore(rdb)

	case config.BackendMongo:
		sessions, err := sessionmongo.NewSessionStore(ctx, a.mongo)
		if err != nil {
			return err
		}
		a.sessions = sessions

	case config.BackendInMemory:
		sessions := sessioninmemory.NewSessionStore()
		a.sessions = sessions
		a.startSweeper(sessions)

	default:
		return fmt.Errorf("unknown sessions type %q", a.config.Sessions.Type)
	}

	logger.Info("App: storage ready",
		zap.String("repository", a.config.Repository.Type),
		zap.String("sessions", a.config.Sessions.Type))
	return nil
}

func (a *App) bootstrapUser(ctx context.Context) error {
	b := a.config.Auth.Bootstrap
	if b.Email == "" {
		return nil
	}

	_, err := a.authService.CreateUser(ctx, service.NewUser{
		Email:    b.Email,
		Password: b.Password,
		Name:     b.Name,
		Role:     user.Role(b.Role),
	})
	var businessErr *service.BusinessError
	switch {
	case err == nil:
		logger.Info("App: bootstrap user created", zap.String("email", user.NormalizeEmail(b.Email)))
	case errors.As(err, &businessErr) && businessErr.Code == service.CodeConflict:
		logger.Debug("App: bootstrap user already exists")
	default:
		return fmt.Errorf("creating bootstrap user: %w", err)
	}
	return nil
}

func (a *App) startSweeper(store worker.Purger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.NewSessionSweeper(store, worker.DefaultSweepInterval).Start(ctx)
	}()
	a.onShutdown("session sweeper", func(ctx context.Context) error {
		cancel()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (a *App) onShutdown(name string, fn func(context.Context) error) {
	a.shutdowns = append(a.shutdowns, closer{name: name, fn: fn})
}

func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) AuthService() *service.AuthService {
	return a.authService
}

func (a *App) TaskService() *service.TaskService {
	return a.taskService
}

// Run blocks serving HTTP until Shutdown is called.
func (a *App) Run() error {
	logger.Info("App: server started", zap.String("addr", a.server.Addr))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests first and only then closes the
// stores they may still be using.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if a.server != nil {
		start := time.Now()
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
		logger.Info("App: http server stopped", zap.Duration("ms", time.Since(start)))
	}

	if err := a.closeAll(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeAll(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		c := a.shutdowns[i]
		if err := c.fn(ctx); err != nil {
			logger.Error("App: closing resource failed", err, zap.String("resource", c.name))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.shutdowns = a.shutdowns[:0]
	return errors.Join(errs...)
}
