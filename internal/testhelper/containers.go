// Package testhelper starts shared database containers for integration tests.
// Tests are skipped with -short or when Docker is unavailable.
package testhelper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error

	mongoOnce sync.Once
	mongoURI  string
	mongoErr  error
)

// SetupPostgres returns a gorm connection to a shared PostgreSQL container
// with every model migrated. Tables named in truncate are emptied first.
func SetupPostgres(t *testing.T, truncate ...string) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	pgOnce.Do(func() {
		pgDSN, pgErr = startPostgres()
	})
	if pgErr != nil {
		t.Skipf("testhelper: postgres container unavailable: %v", pgErr)
	}

	db, err := gorm.Open(postgres.Open(pgDSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("testhelper: open gorm: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Reminder{},
		&models.Notification{},
		&models.Medication{},
		&models.MedicationLog{},
		&models.HealthMetric{},
		&models.Appointment{},
	); err != nil {
		t.Fatalf("testhelper: migrate: %v", err)
	}

	if len(truncate) > 0 {
		stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(truncate, ", "))
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("testhelper: truncate: %v", err)
		}
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SetupMongo returns a client for a shared MongoDB container and a database
// name unique to the calling test.
func SetupMongo(t *testing.T) (*mongo.Client, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}

	mongoOnce.Do(func() {
		mongoURI, mongoErr = startMongo()
	})
	if mongoErr != nil {
		t.Skipf("testhelper: mongo container unavailable: %v", mongoErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("testhelper: connect mongo: %v", err)
	}

	database := "test_" + strings.NewReplacer("/", "_", " ", "_").Replace(strings.ToLower(t.Name()))
	if len(database) > 60 {
		database = database[:60]
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(database).Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return client, database
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "healthtracker",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://testuser:testpass@%s:%s/healthtracker?sslmode=disable", host, port.Port()), nil
}

func startMongo() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("mongodb://%s:%s", host, port.Port()), nil
}
