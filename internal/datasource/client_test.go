package datasource

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupSource создаёт mock HTTP-сервер источника.
func setupSource(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseURL string, retryMax int) *Client {
	t.Helper()
	c, err := New(Options{
		BaseURL:      baseURL + "/food/data/json/",
		IndexFile:    "index.txt",
		FetchTimeout: 5 * time.Second,
		RetryMax:     retryMax,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
		RateLimit:    1000,
		RateBurst:    10,
	}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"пустой", "", []string{}},
		{"одна строка", "products_01.json.gz", []string{"products_01.json.gz"}},
		{"пустые строки и CRLF", "a.json.gz\r\n\n  \nb.json.gz\n", []string{"a.json.gz", "b.json.gz"}},
		{"порядок сохраняется", "c\nb\na", []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIndex(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseIndex(%q) = %v, ожидалось %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClient_FetchIndex(t *testing.T) {
	server := setupSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/food/data/json/index.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, _ = io.WriteString(w, "products_01.json.gz\n\nproducts_02.json.gz\n")
	})

	client := newTestClient(t, server.URL, 0)

	names, err := client.FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("FetchIndex: %v", err)
	}
	want := []string{"products_01.json.gz", "products_02.json.gz"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("FetchIndex = %v, ожидалось %v", names, want)
	}
}

func TestClient_FetchIndex_NotFound(t *testing.T) {
	server := setupSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	client := newTestClient(t, server.URL, 0)

	_, err := client.FetchIndex(context.Background())
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("err = %v, ожидался ErrUnexpectedStatus", err)
	}
	if !errors.Is(err, ErrFetch) {
		t.Errorf("ErrUnexpectedStatus должен оборачивать ErrFetch")
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := setupSource(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "a.json.gz\n")
	})

	client := newTestClient(t, server.URL, 3)

	names, err := client.FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("FetchIndex: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("names = %v", names)
	}
	if calls.Load() != 3 {
		t.Errorf("запросов = %d, ожидалось 3", calls.Load())
	}
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	server := setupSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := newTestClient(t, server.URL, 1)

	if _, err := client.FetchIndex(context.Background()); !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, ожидался ErrFetch", err)
	}
}

func TestClient_Open(t *testing.T) {
	payload := []byte{0x1f, 0x8b, 0x08, 0x00}
	server := setupSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/food/data/json/products_01.json.gz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write(payload)
	})

	client := newTestClient(t, server.URL, 0)

	body, err := client.Open(context.Background(), "products_01.json.gz")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer body.Close()

	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, payload) {
		t.Errorf("тело = %v, ожидалось %v", got, payload)
	}

	if _, err := client.Open(context.Background(), "missing.json.gz"); !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("Open(missing): err = %v, ожидался ErrUnexpectedStatus", err)
	}
}

func TestClient_FileURL(t *testing.T) {
	client := newTestClient(t, "http://source.local", 0)

	got, err := client.FileURL("products_01.json.gz")
	if err != nil {
		t.Fatal(err)
	}
	if got != "http://source.local/food/data/json/products_01.json.gz" {
		t.Errorf("FileURL = %q", got)
	}
	if client.IndexURL() != "http://source.local/food/data/json/index.txt" {
		t.Errorf("IndexURL = %q", client.IndexURL())
	}

	for _, bad := range []string{"", "  ", "../secret", "http://evil/x.gz"} {
		if _, err := client.FileURL(bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("FileURL(%q): err = %v, ожидался ErrInvalidName", bad, err)
		}
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := setupSource(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "a\n")
	})
	client := newTestClient(t, server.URL, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.FetchIndex(ctx); !errors.Is(err, ErrFetch) {
		t.Errorf("err = %v, ожидался ErrFetch", err)
	}
}

func TestNew_InvalidBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "::bad"}, testLogger()); err == nil {
		t.Error("ожидалась ошибка для некорректного URL")
	}
}
