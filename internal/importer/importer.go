// Пакет importer — пакетный импорт продуктов из удалённого источника.
//
// Один запуск:
//  1. Получить список файлов (ошибка — провал всего запуска)
//  2. Для каждого файла по порядку: открыть поток, распаковать gzip,
//     читать строки, разбирать JSON и преобразовывать в Product
//  3. Накопить не более BatchCap записей и вставить их одной командой
//  4. Записать итог в журнал импорта
//
// Ошибки разбора строки пропускают строку. Ошибки загрузки и распаковки
// проваливают файл, запуск продолжается. Ошибка вставки останавливает запуск.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

// Тексты итогов, сохраняемые в журнал.
const (
	SuccessDetail = "Importação concluída com sucesso."
	FailurePrefix = "Erro na importação: "
)

var (
	// ErrCancelled — запуск прерван отменой контекста.
	ErrCancelled = errors.New("importação cancelada")
	// ErrInsert — ошибка массовой вставки; запуск прекращается.
	ErrInsert = errors.New("ошибка вставки пакета")
)

// Source — источник файлов импорта.
type Source interface {
	// FetchIndex возвращает имена файлов в порядке обработки.
	FetchIndex(ctx context.Context) ([]string, error)
	// Open открывает сжатый поток файла.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// ProductStore — хранилище, принимающее пакет записей целиком или никак.
type ProductStore interface {
	InsertMany(ctx context.Context, products []*model.Product) (int64, error)
}

// Recorder — журнал итогов запусков.
type Recorder interface {
	Record(ctx context.Context, outcome *model.RunOutcome)
}

// Options — параметры импорта.
type Options struct {
	// BatchCap — максимум записей из одного файла
	BatchCap int
	// FileTimeout — ограничение времени обработки одного файла (0 — без ограничения)
	FileTimeout time.Duration
	// FlushTimeout — ограничение финальной вставки после отмены
	FlushTimeout time.Duration
	// MaxLineBytes — максимальная длина строки
	MaxLineBytes int
}

// Importer выполняет запуски импорта. Сам по себе не защищён от
// параллельных запусков — это обеспечивает планировщик.
type Importer struct {
	source   Source
	store    ProductStore
	recorder Recorder
	opts     Options
	now      func() time.Time
	logger   *slog.Logger
}

// New создаёт Importer. recorder может быть nil.
func New(source Source, store ProductStore, recorder Recorder, opts Options, logger *slog.Logger) *Importer {
	if opts.BatchCap <= 0 {
		opts.BatchCap = 100
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = 30 * time.Second
	}
	return &Importer{
		source:   source,
		store:    store,
		recorder: recorder,
		opts:     opts,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "importer")),
	}
}

// Run выполняет один запуск и возвращает его итог. Итог всегда
// передаётся в журнал, даже при отмене ctx.
func (im *Importer) Run(ctx context.Context, trigger model.Trigger) *model.RunOutcome {
	out := &model.RunOutcome{Trigger: trigger, StartedAt: im.now()}
	log := im.logger.With(slog.String("trigger", string(trigger)))
	log.Info("Импорт запущен")

	if err := im.run(ctx, out, log); err != nil {
		out.Status = model.ImportFailure
		out.Detail = FailurePrefix + err.Error()
	} else {
		out.Status = model.ImportSuccess
		out.Detail = SuccessDetail
	}
	out.FinishedAt = im.now()

	runsTotal.WithLabelValues(string(trigger), string(out.Status)).Inc()
	runDuration.Observe(out.FinishedAt.Sub(out.StartedAt).Seconds())

	if im.recorder != nil {
		im.recorder.Record(context.WithoutCancel(ctx), out)
	}

	attrs := []any{
		slog.String("status", string(out.Status)),
		slog.Int("files", out.FilesTotal),
		slog.Int("files_failed", out.FilesFailed),
		slog.Int("inserted", out.RecordsInserted),
		slog.Int("skipped", out.LinesSkipped),
		slog.Duration("duration", out.FinishedAt.Sub(out.StartedAt)),
	}
	if out.Succeeded() {
		log.Info("Импорт завершён", attrs...)
	} else {
		log.Error("Импорт завершён с ошибкой", append(attrs, slog.String("detail", out.Detail))...)
	}
	return out
}

// run обходит файлы и возвращает первую встреченную ошибку.
func (im *Importer) run(ctx context.Context, out *model.RunOutcome, log *slog.Logger) error {
	names, err := im.source.FetchIndex(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return fmt.Errorf("получение списка файлов: %w", err)
	}
	out.FilesTotal = len(names)

	var firstErr error
	for _, name := range names {
		if ctx.Err() != nil {
			return firstOf(firstErr, ErrCancelled)
		}

		res, err := im.processFile(ctx, name, log)
		out.Files = append(out.Files, res)
		out.RecordsInserted += res.Inserted
		out.LinesSkipped += res.Skipped
		recordsTotal.WithLabelValues("inserted").Add(float64(res.Inserted))
		recordsTotal.WithLabelValues("skipped").Add(float64(res.Skipped))

		switch {
		case err == nil:
			filesTotal.WithLabelValues("ok").Inc()
		case errors.Is(err, ErrCancelled):
			return firstOf(firstErr, ErrCancelled)
		default:
			out.FilesFailed++
			filesTotal.WithLabelValues("failed").Inc()
			firstErr = firstOf(firstErr, fmt.Errorf("%s: %w", name, err))
			if errors.Is(err, ErrInsert) {
				return firstErr
			}
		}
	}
	return firstErr
}

// processFile обрабатывает один файл: не более BatchCap записей, одна вставка.
func (im *Importer) processFile(ctx context.Context, name string, log *slog.Logger) (model.FileResult, error) {
	res := model.FileResult{Name: name}
	log = log.With(slog.String("file", name))
	log.Info("Обработка файла")

	fctx := ctx
	if im.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, im.opts.FileTimeout)
		defer cancel()
	}

	fail := func(err error) (model.FileResult, error) {
		res.Error = err.Error()
		log.Error("Ошибка обработки файла", slog.String("error", err.Error()))
		return res, err
	}

	body, err := im.source.Open(fctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return res, ErrCancelled
		}
		return fail(err)
	}
	defer body.Close()

	lines, err := NewLineReader(body, im.opts.MaxLineBytes)
	if err != nil {
		return fail(err)
	}
	defer lines.Close()

	batch := make([]*model.Product, 0, im.opts.BatchCap)
	cancelled := false
	for len(batch) < im.opts.BatchCap && lines.Next() {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		line := bytes.TrimSpace(lines.Bytes())
		if len(line) == 0 {
			continue
		}
		p, err := MapRecord(line, im.now())
		if err != nil {
			res.Skipped++
			log.Debug("Строка пропущена",
				slog.Int("line", lines.Lines()),
				slog.String("error", err.Error()),
			)
			continue
		}
		batch = append(batch, p)
	}

	if err := lines.Err(); err != nil {
		if ctx.Err() == nil {
			return fail(err)
		}
		cancelled = true
	}
	if res.Skipped > 0 {
		log.Warn("Пропущены некорректные строки", slog.Int("skipped", res.Skipped))
	}

	if len(batch) > 0 {
		insertCtx := ctx
		if cancelled {
			var cancel context.CancelFunc
			insertCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), im.opts.FlushTimeout)
			defer cancel()
		}
		n, err := im.store.InsertMany(insertCtx, batch)
		if err != nil {
			return fail(fmt.Errorf("%w: %w", ErrInsert, err))
		}
		res.Inserted = int(n)
		batchSize.Observe(float64(len(batch)))
	}

	if cancelled {
		log.Warn("Обработка файла прервана отменой", slog.Int("inserted", res.Inserted))
		return res, ErrCancelled
	}

	log.Info("Файл обработан",
		slog.Int("inserted", res.Inserted),
		slog.Int("skipped", res.Skipped),
		slog.Int("lines", lines.Lines()),
	)
	return res, nil
}

func firstOf(first, next error) error {
	if first != nil {
		return first
	}
	return next
}
