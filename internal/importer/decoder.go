package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// ErrDecode — повреждённый gzip-поток или ошибка чтения строк.
// Для файла ошибка терминальная, для запуска — нет.
var ErrDecode = errors.New("ошибка декодирования потока")

// defaultMaxLineBytes — максимальная длина строки по умолчанию.
const defaultMaxLineBytes = 16 << 20

// LineReader — ленивая последовательность строк распакованного gzip-потока.
// Источник → gzip → bufio.Scanner; строки читаются по одной по запросу,
// в памяти находится только текущая строка и буферы.
type LineReader struct {
	gz      *gzip.Reader
	scanner *bufio.Scanner
	lines   int
	err     error
}

// NewLineReader оборачивает сжатый поток. Ошибка заголовка gzip
// возвращается сразу и оборачивает ErrDecode.
func NewLineReader(r io.Reader, maxLineBytes int) (*LineReader, error) {
	if maxLineBytes <= 0 {
		maxLineBytes = defaultMaxLineBytes
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	scanner := bufio.NewScanner(gz)
	initial := 64 * 1024
	if initial > maxLineBytes {
		initial = maxLineBytes
	}
	scanner.Buffer(make([]byte, 0, initial), maxLineBytes)

	return &LineReader{gz: gz, scanner: scanner}, nil
}

// Next переходит к следующей строке. false — конец потока или ошибка (см. Err).
func (lr *LineReader) Next() bool {
	if lr.err != nil {
		return false
	}
	if !lr.scanner.Scan() {
		if err := lr.scanner.Err(); err != nil {
			lr.err = fmt.Errorf("%w: строка %d: %v", ErrDecode, lr.lines+1, err)
		}
		return false
	}
	lr.lines++
	return true
}

// Bytes возвращает текущую строку без символа перевода строки.
// Срез действителен до следующего вызова Next.
func (lr *LineReader) Bytes() []byte {
	return lr.scanner.Bytes()
}

// Lines возвращает количество прочитанных строк.
func (lr *LineReader) Lines() int {
	return lr.lines
}

// Err возвращает терминальную ошибку последовательности или nil при корректном конце.
func (lr *LineReader) Err() error {
	return lr.err
}

// Close освобождает gzip-декодер. Исходный поток закрывает владелец.
func (lr *LineReader) Close() error {
	return lr.gz.Close()
}
