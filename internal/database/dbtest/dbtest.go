// Пакет dbtest — запуск PostgreSQL в Docker через testcontainers
// для интеграционных тестов. Тесты пропускаются без TEST_INTEGRATION.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/foodcatalog/internal/config"
)

// StartPostgres запускает контейнер PostgreSQL и возвращает конфиг, указывающий на него.
// Контейнер останавливается в t.Cleanup.
func StartPostgres(t *testing.T) *config.Config {
	t.Helper()

	RequireIntegration(t)

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("food_catalog_test"),
		postgres.WithUsername("food_catalog"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("FC_DB_HOST", host)
	t.Setenv("FC_DB_PORT", port.Port())
	t.Setenv("FC_DB_NAME", "food_catalog_test")
	t.Setenv("FC_DB_USER", "food_catalog")
	t.Setenv("FC_DB_PASSWORD", "test-password")
	t.Setenv("FC_DB_SSL_MODE", "disable")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	return cfg
}

// RequireIntegration пропускает тест, если TEST_INTEGRATION не задана.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}
}
