//go:build integration

// Package dbtest starts a throwaway MySQL for store integration tests.
package dbtest

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"night-attendance-backend/internal/platform/config"
	"night-attendance-backend/internal/platform/db"
)

// NewMySQL returns a migrated database, or skips the test when Docker is unavailable.
// The container is terminated through t.Cleanup.
func NewMySQL(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "test",
			"MYSQL_DATABASE":      "night_attendance_test",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}
	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		t.Fatalf("Failed to parse container port: %v", err)
	}

	conn, err := db.Connect(config.DatabaseConfig{
		Host:         host,
		Port:         portNum,
		Username:     "root",
		Password:     "test",
		DBName:       "night_attendance_test",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return conn
}

// InsertStudent adds a bare student row and returns its id.
func InsertStudent(t *testing.T, conn *sql.DB, regNo, hostel string) int64 {
	t.Helper()
	res, err := conn.Exec(`
	INSERT INTO students (reg_no, name, email, password_hash, hostel)
	VALUES (?, ?, ?, 'x', ?)`, regNo, "Student "+regNo, regNo+"@campus.test", hostel)
	if err != nil {
		t.Fatalf("Failed to insert student %s: %v", regNo, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read student id: %v", err)
	}
	return id
}
