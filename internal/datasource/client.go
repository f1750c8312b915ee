// Пакет datasource — HTTP-клиент удалённого источника данных:
// список файлов (index.txt) и потоковая загрузка gzip-файлов.
// Повторы через go-retryablehttp, ограничение частоты через x/time/rate.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// maxIndexBytes — максимальный размер списка файлов.
const maxIndexBytes = 1 << 20

// Ошибки источника данных.
var (
	// ErrFetch — источник недоступен или вернул ошибку.
	ErrFetch = errors.New("ошибка загрузки из источника")
	// ErrUnexpectedStatus — ответ с кодом вне диапазона 2xx.
	ErrUnexpectedStatus = fmt.Errorf("%w: неожиданный HTTP-статус", ErrFetch)
	// ErrInvalidName — недопустимое имя файла в списке.
	ErrInvalidName = errors.New("недопустимое имя файла")
)

// Options — параметры клиента источника.
type Options struct {
	// BaseURL — базовый URL, к которому добавляются имена файлов
	BaseURL string
	// IndexFile — имя файла со списком файлов
	IndexFile string
	// FetchTimeout — таймаут получения списка и ожидания заголовков ответа
	FetchTimeout time.Duration
	// RetryMax — количество повторов
	RetryMax int
	// RetryWaitMin, RetryWaitMax — границы backoff между повторами
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit — запросов в секунду, RateBurst — размер burst
	RateLimit float64
	RateBurst int
}

// Client — клиент удалённого источника данных.
type Client struct {
	http         *retryablehttp.Client
	base         *url.URL
	indexFile    string
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// New создаёт клиент источника.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("некорректный базовый URL %q", opts.BaseURL)
	}
	if opts.IndexFile == "" {
		opts.IndexFile = "index.txt"
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = 1
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	// Файлы *.gz отдаются как есть: прозрачная распаковка транспорта отключена.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: opts.FetchTimeout,
		DisableCompression:    true,
	}

	log := logger.With(slog.String("component", "datasource"))

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport: &rateLimitedTransport{
			base:    transport,
			limiter: rate.NewLimiter(limit, opts.RateBurst),
		},
	}
	rc.Logger = log
	rc.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}

	return &Client{
		http:         rc,
		base:         base,
		indexFile:    opts.IndexFile,
		fetchTimeout: opts.FetchTimeout,
		logger:       log,
	}, nil
}

// BaseURL возвращает базовый URL источника.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// IndexURL возвращает URL списка файлов.
func (c *Client) IndexURL() string {
	return c.base.JoinPath(c.indexFile).String()
}

// FileURL возвращает URL файла по имени из списка.
func (c *Client) FileURL(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") || strings.Contains(name, "://") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return c.base.JoinPath(name).String(), nil
}

// FetchIndex загружает список файлов. Пустые строки отбрасываются,
// порядок сохраняется.
func (c *Client) FetchIndex(ctx context.Context) ([]string, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	indexURL := c.IndexURL()
	resp, err := c.get(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: чтение %s: %v", ErrFetch, indexURL, err)
	}

	names := ParseIndex(string(data))
	c.logger.Info("Список файлов получен",
		slog.String("url", indexURL),
		slog.Int("files", len(names)),
	)
	return names, nil
}

// Open открывает потоковую загрузку файла. Тело ответа закрывает вызывающий.
// Время чтения ограничивается контекстом ctx.
func (c *Client) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	fileURL, err := c.FileURL(name)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, fileURL)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// get выполняет GET с повторами и проверяет статус ответа.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: создание запроса %s: %v", ErrFetch, rawURL, err)
	}
	req.Header.Set("User-Agent", "food-catalog-importer")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrFetch, rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: %d", ErrUnexpectedStatus, rawURL, resp.StatusCode)
	}
	return resp, nil
}

// ParseIndex разбирает список файлов: по одному имени в строке,
// пробелы по краям и пустые строки отбрасываются.
func ParseIndex(text string) []string {
	lines := strings.Split(text, "\n")
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		name := strings.TrimSpace(line)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// rateLimitedTransport ограничивает частоту исходящих запросов,
// включая повторы retryablehttp.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
