// Package testkit starts throwaway backing services for integration tests.
package testkit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Container is a started service plus the address tests connect to.
type Container struct {
	testcontainers.Container
	URL string
}

func (c *Container) Stop(ctx context.Context) {
	if c == nil || c.Container == nil {
		return
	}
	_ = c.Container.Terminate(ctx)
}

// SkipIfShort keeps `go test -short` free of docker.
func SkipIfShort(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test: needs docker")
	}
}

func StartPostgres(ctx context.Context) (*Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	c, err := start(ctx, req, "5432")
	if err != nil {
		return nil, err
	}
	c.URL = fmt.Sprintf("postgres://test:test@%s/testdb?sslmode=disable", c.URL)
	return c, nil
}

func StartMongo(ctx context.Context) (*Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := start(ctx, req, "27017")
	if err != nil {
		return nil, err
	}
	c.URL = "mongodb://" + c.URL
	return c, nil
}

// StartRedis returns a container whose URL is a bare host:port address.
func StartRedis(ctx context.Context) (*Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	return start(ctx, req, "6379")
}

func start(ctx context.Context, req testcontainers.ContainerRequest, port string) (*Container, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port+"/tcp"))
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("container port: %w", err)
	}

	return &Container{
		Container: container,
		URL:       fmt.Sprintf("%s:%s", host, mapped.Port()),
	}, nil
}
