// Пакет config — загрузка и валидация конфигурации food-catalog
// из переменных окружения FC_* и (опционально) YAML-файла через viper.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// ServiceName — имя сервиса в логах, health и метриках.
const ServiceName = "food-catalog"

// envPrefix — префикс переменных окружения.
const envPrefix = "FC"

// Config содержит все параметры конфигурации food-catalog.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймауты HTTP-сервера. WriteTimeout покрывает синхронный POST /products/import.
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, allow, prefer, require, verify-ca, verify-full
	DBSSLMode string
	// Максимальное число соединений пула
	DBMaxConns int

	// --- Импорт ---

	// Базовый URL удалённого источника (всегда со слешем в конце)
	ImportBaseURL string
	// Имя файла со списком файлов относительно ImportBaseURL
	ImportIndexFile string
	// Время ежедневного запуска (часы и минуты, локальное время ImportLocation)
	ImportHour   int
	ImportMinute int
	// Часовой пояс расписания
	ImportLocation *time.Location
	// Включён ли ежедневный планировщик
	ImportScheduleEnabled bool
	// Максимум записей, вставляемых из одного файла
	ImportBatchCap int
	// Таймаут получения списка файлов и заголовков ответа
	ImportFetchTimeout time.Duration
	// Таймаут обработки одного файла
	ImportFileTimeout time.Duration
	// Таймаут финальной вставки после отмены запуска
	ImportFlushTimeout time.Duration
	// Повторы HTTP-запросов к источнику
	ImportRetryMax     int
	ImportRetryWaitMin time.Duration
	ImportRetryWaitMax time.Duration
	// Ограничение исходящих запросов (запросов в секунду и burst)
	ImportRateLimit float64
	ImportRateBurst int
	// Максимальная длина одной распакованной строки
	ImportMaxLineBytes int

	// --- Кэш ---

	CacheSize int
	CacheTTL  time.Duration

	// --- Мониторинг зависимостей ---

	DephealthEnabled       bool
	DephealthGroup         string
	DephealthCheckInterval time.Duration
	DephealthIsEntry       bool

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// Допустимые значения DB_SSL_MODE.
var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Load загружает конфигурацию. Если path не пуст, сначала читается
// YAML-файл, переменные окружения FC_* имеют приоритет над ним.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("чтение файла конфигурации %s: %w", path, err)
		}
	}

	return load(source{v: v})
}

func load(src source) (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	if cfg.Port, err = src.integer("port", 8000); err != nil {
		return nil, err
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%s: значение %d вне допустимого диапазона 1-65535", envName("port"), cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(src.str("log.level", "info"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", envName("log.level"), err)
	}

	cfg.LogFormat = src.str("log.format", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("%s: недопустимое значение %q, допустимые: json, text", envName("log.format"), cfg.LogFormat)
	}

	if cfg.HTTPReadTimeout, err = src.duration("http.read_timeout", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = src.duration("http.write_timeout", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = src.duration("http.idle_timeout", 120*time.Second); err != nil {
		return nil, err
	}

	// --- PostgreSQL ---

	cfg.DBHost = src.str("db.host", "localhost")
	if cfg.DBPort, err = src.integer("db.port", 5432); err != nil {
		return nil, err
	}
	cfg.DBName = src.str("db.name", "food_catalog")
	cfg.DBUser = src.str("db.user", "food_catalog")
	if cfg.DBPassword, err = src.required("db.password"); err != nil {
		return nil, err
	}
	cfg.DBSSLMode = src.str("db.ssl_mode", "disable")
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("%s: недопустимое значение %q", envName("db.ssl_mode"), cfg.DBSSLMode)
	}
	if cfg.DBMaxConns, err = src.integer("db.max_conns", 10); err != nil {
		return nil, err
	}
	if cfg.DBMaxConns < 1 {
		return nil, fmt.Errorf("%s: должно быть >= 1", envName("db.max_conns"))
	}

	// --- Импорт ---

	base := src.str("import.base_url", "https://challenges.coode.sh/food/data/json/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%s: некорректный URL %q", envName("import.base_url"), base)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	cfg.ImportBaseURL = base
	cfg.ImportIndexFile = src.str("import.index_file", "index.txt")

	cfg.ImportHour, cfg.ImportMinute, err = parseClock(src.str("import.schedule", "00:00"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", envName("import.schedule"), err)
	}
	cfg.ImportLocation, err = time.LoadLocation(src.str("import.timezone", "Local"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", envName("import.timezone"), err)
	}
	if cfg.ImportScheduleEnabled, err = src.boolean("import.schedule_enabled", true); err != nil {
		return nil, err
	}

	if cfg.ImportBatchCap, err = src.integer("import.batch_cap", 100); err != nil {
		return nil, err
	}
	if cfg.ImportBatchCap < 1 {
		return nil, fmt.Errorf("%s: должно быть >= 1", envName("import.batch_cap"))
	}
	if cfg.ImportFetchTimeout, err = src.duration("import.fetch_timeout", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ImportFileTimeout, err = src.duration("import.file_timeout", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ImportFlushTimeout, err = src.duration("import.flush_timeout", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ImportRetryMax, err = src.integer("import.retry_max", 3); err != nil {
		return nil, err
	}
	if cfg.ImportRetryMax < 0 {
		return nil, fmt.Errorf("%s: должно быть >= 0", envName("import.retry_max"))
	}
	if cfg.ImportRetryWaitMin, err = src.duration("import.retry_wait_min", time.Second); err != nil {
		return nil, err
	}
	if cfg.ImportRetryWaitMax, err = src.duration("import.retry_wait_max", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ImportRetryWaitMax < cfg.ImportRetryWaitMin {
		return nil, fmt.Errorf("%s: меньше %s", envName("import.retry_wait_max"), envName("import.retry_wait_min"))
	}
	if cfg.ImportRateLimit, err = src.float("import.rate_limit", 2); err != nil {
		return nil, err
	}
	if cfg.ImportRateLimit <= 0 {
		return nil, fmt.Errorf("%s: должно быть > 0", envName("import.rate_limit"))
	}
	if cfg.ImportRateBurst, err = src.integer("import.rate_burst", 1); err != nil {
		return nil, err
	}
	if cfg.ImportRateBurst < 1 {
		return nil, fmt.Errorf("%s: должно быть >= 1", envName("import.rate_burst"))
	}
	if cfg.ImportMaxLineBytes, err = src.integer("import.max_line_bytes", 16<<20); err != nil {
		return nil, err
	}
	if cfg.ImportMaxLineBytes < 4096 {
		return nil, fmt.Errorf("%s: должно быть >= 4096", envName("import.max_line_bytes"))
	}

	// --- Кэш ---

	if cfg.CacheSize, err = src.integer("cache.size", 1000); err != nil {
		return nil, err
	}
	if cfg.CacheSize < 1 {
		return nil, fmt.Errorf("%s: должно быть >= 1", envName("cache.size"))
	}
	if cfg.CacheTTL, err = src.duration("cache.ttl", 5*time.Minute); err != nil {
		return nil, err
	}

	// --- Мониторинг зависимостей ---

	if cfg.DephealthEnabled, err = src.boolean("dephealth.enabled", true); err != nil {
		return nil, err
	}
	cfg.DephealthGroup = src.str("dephealth.group", ServiceName)
	if cfg.DephealthCheckInterval, err = src.duration("dephealth.check_interval", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.DephealthIsEntry, err = src.boolean("dephealth.isentry", false); err != nil {
		return nil, err
	}

	if cfg.ShutdownTimeout, err = src.duration("shutdown_timeout", 10*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL (формат key=value для pgxpool).
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode, c.DBMaxConns,
	)
}

// DatabaseURL возвращает URL PostgreSQL без пароля (для меток dephealth).
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(c.DBUser),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// MigrateURL возвращает URL для golang-migrate (драйвер pgx5).
func (c *Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// IndexURL возвращает полный URL списка файлов.
func (c *Config) IndexURL() string {
	return c.ImportBaseURL + c.ImportIndexFile
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(slog.String("service", ServiceName))
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// source — чтение значений из viper с ошибками в терминах переменных окружения.
type source struct {
	v *viper.Viper
}

// envName возвращает имя переменной окружения для ключа: db.host → FC_DB_HOST.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// str возвращает строковое значение или значение по умолчанию.
func (s source) str(key, defaultVal string) string {
	val := strings.TrimSpace(s.v.GetString(key))
	if val == "" {
		return defaultVal
	}
	return val
}

// required возвращает значение или ошибку, если оно не задано.
func (s source) required(key string) (string, error) {
	val := s.v.GetString(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", envName(key))
	}
	return val, nil
}

// integer возвращает целочисленное значение или значение по умолчанию.
func (s source) integer(key string, defaultVal int) (int, error) {
	val := s.str(key, "")
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: некорректное целое число: %q", envName(key), val)
	}
	return n, nil
}

// float возвращает значение с плавающей точкой или значение по умолчанию.
func (s source) float(key string, defaultVal float64) (float64, error) {
	val := s.str(key, "")
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: некорректное число: %q", envName(key), val)
	}
	return f, nil
}

// duration возвращает time.Duration или значение по умолчанию.
func (s source) duration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.str(key, "")
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", envName(key), val)
	}
	return d, nil
}

// boolean возвращает булево значение или значение по умолчанию.
func (s source) boolean(key string, defaultVal bool) (bool, error) {
	val := s.str(key, "")
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: некорректное булево значение: %q", envName(key), val)
	}
	return b, nil
}

// parseClock разбирает время суток в формате HH:MM.
func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("некорректное время %q, ожидается HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
