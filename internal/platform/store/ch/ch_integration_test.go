//go:build integration_ch
// +build integration_ch

package ch

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startClickhouse(t *testing.T) (host string, port int, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.8-alpine",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
			"CLICKHOUSE_DB":       "default",
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start clickhouse container: %v", err)
	}

	h, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "9000/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return h, mapped.Int(), stop
}

func TestInsertQuery_RoundTrip_Integration(t *testing.T) {
	host, port, stop := startClickhouse(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	c, err := Open(ctx, Config{
		Host:      host,
		Port:      port,
		User:      "default",
		Database:  "default",
		ClientTag: "integration",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	ddl := `CREATE TABLE IF NOT EXISTS repositories (
		name String, owner String, stars Int64, watchers Int64,
		forks Int64, language String, updated DateTime DEFAULT now()
	) ENGINE = MergeTree() ORDER BY (owner, name)`
	if rows, err := c.Query(ctx, ddl); err != nil {
		t.Fatalf("ddl: %v", err)
	} else {
		_ = rows.Close()
	}

	cols := []string{"name", "owner", "stars", "watchers", "forks", "language"}
	data := [][]any{
		{"linux", "torvalds", int64(180000), int64(180000), int64(50000), "C"},
		{"go", "golang", int64(125000), int64(125000), int64(17000), "Go"},
	}
	if err := c.Insert(ctx, "repositories", cols, data); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, err := c.Query(ctx, "SELECT name, stars FROM repositories ORDER BY stars DESC")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			name  string
			stars int64
		)
		if err := rows.Scan(&name, &stars); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names = append(names, fmt.Sprintf("%s=%d", name, stars))
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(names) != 2 || names[0] != "linux=180000" {
		t.Fatalf("unexpected result: %v", names)
	}
}
