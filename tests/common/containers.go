package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	upstreamOnce     sync.Once
	upstreamStartErr error
	upstream         *UpstreamContainer
)

// UpstreamContainer is an httpbin instance standing in for a catalog API.
type UpstreamContainer struct {
	container testcontainers.Container
	ctx       context.Context
	cancel    context.CancelFunc
	url       string
}

// URL returns the base URL of the running upstream.
func (u *UpstreamContainer) URL() string {
	return u.url
}

// CollectLogs saves container stdout/stderr to dir/.
func (u *UpstreamContainer) CollectLogs(dir string) {
	if u == nil || u.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	os.MkdirAll(dir, 0755)

	reader, err := u.container.Logs(ctx)
	if err != nil {
		return
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return
	}
	os.WriteFile(filepath.Join(dir, "httpbin.log"), logs, 0644)
}

// Cleanup tears down the container.
// Uses a fresh context for teardown in case the main context expired.
func (u *UpstreamContainer) Cleanup() {
	if u == nil {
		return
	}

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cleanupCancel()

	if u.container != nil {
		u.container.Terminate(cleanupCtx)
	}
	if u.cancel != nil {
		u.cancel()
	}
}

func startUpstream() (*UpstreamContainer, error) {
	if url := GetUpstreamURL(); url != "" {
		return &UpstreamContainer{url: url}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	ctr, err := testcontainers.Run(ctx, LoadTestConfig().Upstream.Image,
		testcontainers.WithExposedPorts("8080/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/get").WithPort("8080/tcp").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start httpbin: %w", err)
	}

	mappedPort, err := ctr.MappedPort(ctx, "8080/tcp")
	if err != nil {
		ctr.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("get httpbin mapped port: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("get httpbin host: %w", err)
	}

	return &UpstreamContainer{
		container: ctr,
		ctx:       ctx,
		cancel:    cancel,
		url:       fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
	}, nil
}

// StartUpstream starts httpbin once per test process. Integration tests
// skip in -short mode. FREEAPIS_TEST_UPSTREAM_URL points at an existing
// instance instead of starting a container.
func StartUpstream(t *testing.T) *UpstreamContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	upstreamOnce.Do(func() {
		upstream, upstreamStartErr = startUpstream()
	})

	if upstreamStartErr != nil {
		t.Fatalf("Failed to start upstream: %v", upstreamStartErr)
	}
	return upstream
}

// StopUpstream collects logs and terminates the shared upstream, if started.
func StopUpstream() {
	if upstream == nil {
		return
	}
	upstream.CollectLogs(GetResultsDir())
	upstream.Cleanup()
}
