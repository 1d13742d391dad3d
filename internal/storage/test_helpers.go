package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/postcraft/internal/migrations"
	"github.com/magabrotheeeer/postcraft/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateCompany создает тестовую компанию и возвращает её идентификатор
func (f *TestDataFactory) CreateCompany(t *testing.T, name, sector string, services []string) string {
	uid := uuid.New().String()
	raw, err := json.Marshal(services)
	require.NoError(t, err)
	_, err = f.storage.DB.Exec(`INSERT INTO companies (uid, name, sector, services)
		VALUES ($1, $2, $3, $4)`,
		uid, name, sector, raw)
	require.NoError(t, err)
	return uid
}

// CreateUser создает тестового пользователя, привязанного к компании
func (f *TestDataFactory) CreateUser(t *testing.T, email, passwordHash, companyUID string) string {
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, email, password_hash, first_name, last_name, role, company_uid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uid, email, passwordHash, "Test", "User", "owner", companyUID)
	require.NoError(t, err)
	return uid
}

// CreatePack создает тестовый тарифный пакет
func (f *TestDataFactory) CreatePack(t *testing.T, companyUID, status string, limit, used int) string {
	uid, err := f.storage.CreatePack(context.Background(), models.Pack{
		CompanyUID:        companyUID,
		PackType:          "starter",
		MonthlyPostsLimit: limit,
		PostsUsed:         used,
		Price:             29.90,
		Status:            status,
	})
	require.NoError(t, err)
	return uid
}

// CreateTemplate создает тестовый шаблон контента
func (f *TestDataFactory) CreateTemplate(t *testing.T, name string, platforms, formats []string) string {
	uid := uuid.New().String()
	platformsRaw, err := json.Marshal(platforms)
	require.NoError(t, err)
	formatsRaw, err := json.Marshal(formats)
	require.NoError(t, err)
	_, err = f.storage.DB.Exec(`INSERT INTO templates (uid, name, category, base_prompt, sectors, platforms, formats)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uid, name, "promo", "Write a post about {{topic}}", []byte(`["beauty"]`), platformsRaw, formatsRaw)
	require.NoError(t, err)
	return uid
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
// и прогоняет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	require.Eventually(t, func() bool {
		storage, err = New(connString)
		return err == nil
	}, time.Minute, time.Second)

	require.NoError(t, migrations.Run(storage.DB, migrationsDir(t)))

	cleanup := func() {
		_ = storage.DB.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}
	return storage, cleanup
}

// migrationsDir возвращает путь к каталогу миграций относительно этого файла
func migrationsDir(t *testing.T) string {
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}
