package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// gzipLines сжимает строки в gzip (по строке на запись).
func gzipLines(t *testing.T, lines ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	for _, l := range lines {
		if _, err := io.WriteString(zw, l+"\n"); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func readAllLines(t *testing.T, lr *LineReader) []string {
	t.Helper()
	var got []string
	for lr.Next() {
		got = append(got, string(lr.Bytes()))
	}
	return got
}

func TestLineReader_Lines(t *testing.T) {
	data := gzipLines(t, `{"code":"1"}`, "", `{"code":"2"}`)

	lr, err := NewLineReader(bytes.NewReader(data), 0)
	if err != nil {
		t.Fatalf("NewLineReader: %v", err)
	}
	defer lr.Close()

	got := readAllLines(t, lr)
	if lr.Err() != nil {
		t.Fatalf("Err() = %v", lr.Err())
	}
	want := []string{`{"code":"1"}`, "", `{"code":"2"}`}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("строки = %q, ожидалось %q", got, want)
	}
	if lr.Lines() != 3 {
		t.Errorf("Lines() = %d, ожидалось 3", lr.Lines())
	}
}

func TestLineReader_CRLFAndNoTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = io.WriteString(zw, "a\r\nb")
	_ = zw.Close()

	lr, err := NewLineReader(&buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := readAllLines(t, lr)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("строки = %q, ожидалось [a b]", got)
	}
}

func TestLineReader_NotGzip(t *testing.T) {
	_, err := NewLineReader(strings.NewReader(`{"code":"1"}`), 0)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v, ожидался ErrDecode", err)
	}
}

func TestLineReader_Truncated(t *testing.T) {
	lines := make([]string, 2000)
	for i := range lines {
		lines[i] = fmt.Sprintf(`{"code":"%d","product_name":"product %d"}`, i+1, i)
	}
	data := gzipLines(t, lines...)
	truncated := data[:len(data)/2]

	lr, err := NewLineReader(bytes.NewReader(truncated), 0)
	if err != nil {
		t.Fatalf("NewLineReader: %v", err)
	}
	got := readAllLines(t, lr)
	if !errors.Is(lr.Err(), ErrDecode) {
		t.Fatalf("Err() = %v, ожидался ErrDecode", lr.Err())
	}
	if len(got) >= len(lines) {
		t.Errorf("прочитано %d строк из обрезанного потока", len(got))
	}
	// После ошибки последовательность завершена
	if lr.Next() {
		t.Error("Next() после ошибки должен возвращать false")
	}
}

func TestLineReader_LineTooLong(t *testing.T) {
	data := gzipLines(t, strings.Repeat("x", 10000))

	lr, err := NewLineReader(bytes.NewReader(data), 4096)
	if err != nil {
		t.Fatal(err)
	}
	readAllLines(t, lr)
	if !errors.Is(lr.Err(), ErrDecode) {
		t.Errorf("Err() = %v, ожидался ErrDecode для слишком длинной строки", lr.Err())
	}
}

// TestLineReader_BoundedMemory проверяет потоковую обработку: 256 MiB
// распакованных данных читаются при небольшом объёме кучи, и первая строка
// доступна до того, как производитель записал весь поток.
func TestLineReader_BoundedMemory(t *testing.T) {
	if testing.Short() {
		t.Skip("пропуск в режиме -short")
	}

	const (
		lineSize  = 1024
		lineCount = 256 * 1024 // 256 MiB без сжатия
		heapLimit = 64 << 20
	)

	pr, pw := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		zw, _ := gzip.NewWriterLevel(pw, gzip.BestSpeed)
		line := []byte(`{"code":"1","product_name":"` + strings.Repeat("a", lineSize-31) + `"}` + "\n")
		for i := 0; i < lineCount; i++ {
			if _, err := zw.Write(line); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(zw.Close())
	}()

	lr, err := NewLineReader(pr, 0)
	if err != nil {
		t.Fatalf("NewLineReader: %v", err)
	}
	defer lr.Close()

	var ms runtime.MemStats
	var peak uint64
	n := 0
	for lr.Next() {
		n++
		if n == 1 {
			select {
			case <-done:
				t.Fatal("поток полностью записан до чтения первой строки")
			default:
			}
		}
		if n%16384 == 0 {
			runtime.ReadMemStats(&ms)
			if ms.HeapAlloc > peak {
				peak = ms.HeapAlloc
			}
		}
	}
	if lr.Err() != nil {
		t.Fatalf("Err() = %v", lr.Err())
	}
	if n != lineCount {
		t.Errorf("прочитано %d строк, ожидалось %d", n, lineCount)
	}
	if peak > heapLimit {
		t.Errorf("пиковая куча %d байт превышает %d", peak, heapLimit)
	}
	<-done
}
