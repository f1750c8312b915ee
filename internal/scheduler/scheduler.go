// Пакет scheduler — ежедневный запуск импорта без наложения запусков.
//
// Одновременно выполняется не более одного запуска: плановый запуск,
// попавший на активный ручной, пропускается, ручной запуск во время
// активного получает ErrRunInProgress. Остановка планировщика отменяет
// активный запуск; импортёр дозаписывает текущий пакет и завершается.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

var (
	// ErrRunInProgress — запуск импорта уже выполняется.
	ErrRunInProgress = errors.New("импорт уже выполняется")
	// ErrStopped — планировщик остановлен, новые запуски не принимаются.
	ErrStopped = errors.New("планировщик остановлен")
)

// Runner выполняет один запуск импорта.
type Runner interface {
	Run(ctx context.Context, trigger model.Trigger) *model.RunOutcome
}

// Config — расписание.
type Config struct {
	// Hour, Minute — время ежедневного запуска
	Hour   int
	Minute int
	// Location — часовой пояс расписания (nil — time.Local)
	Location *time.Location
	// Enabled — false отключает плановые запуски, ручные остаются доступны
	Enabled bool
}

// Scheduler запускает импорт по расписанию и по требованию.
type Scheduler struct {
	runner Runner
	cfg    Config
	state  *State
	logger *slog.Logger

	guard   *semaphore.Weighted
	running atomic.Bool

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu       sync.Mutex
	ctx      context.Context // время жизни запусков; отменяется в Stop
	cancel   context.CancelFunc
	stopped  bool
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New создаёт планировщик. Запуски по расписанию начинаются после Start.
func New(runner Runner, cfg Config, state *State, logger *slog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Scheduler{
		runner: runner,
		cfg:    cfg,
		state:  state,
		logger: logger.With(slog.String("component", "scheduler")),
		guard:  semaphore.NewWeighted(1),
		now:    time.Now,
		after:  time.After,
	}
}

// Start запускает фоновую горутину расписания. Вызывается один раз.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.mu.Unlock()

	if !s.cfg.Enabled {
		s.logger.Info("Плановый импорт отключён")
		return
	}

	s.wg.Add(1)
	go s.loop(runCtx)

	s.logger.Info("Планировщик запущен",
		slog.String("at", time.Date(0, 1, 1, s.cfg.Hour, s.cfg.Minute, 0, 0, time.UTC).Format("15:04")),
		slog.String("timezone", s.cfg.Location.String()),
	)
}

// Stop отменяет активный запуск и ждёт его завершения.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()
		s.wg.Wait()
		s.logger.Info("Планировщик остановлен")
	})
}

// Running сообщает, выполняется ли сейчас запуск.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// State возвращает состояние последнего запуска.
func (s *Scheduler) State() *State {
	return s.state
}

// TriggerNow синхронно выполняет запуск, если никакой другой не активен.
// Отмена ctx вызывающего не прерывает запуск: он живёт до Stop.
func (s *Scheduler) TriggerNow(ctx context.Context, trigger model.Trigger) (*model.RunOutcome, error) {
	if !s.guard.TryAcquire(1) {
		runsSkippedTotal.WithLabelValues(string(trigger)).Inc()
		return nil, ErrRunInProgress
	}
	defer s.guard.Release(1)

	lifetime, err := s.enter()
	if err != nil {
		return nil, err
	}
	defer s.wg.Done()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(lifetime, cancel)
	defer stop()

	s.running.Store(true)
	defer s.running.Store(false)

	outcome := s.runner.Run(runCtx, trigger)
	s.state.Record(outcome)
	lastRunTimestamp.Set(float64(outcome.FinishedAt.Unix()))
	return outcome, nil
}

// enter регистрирует запуск и возвращает контекст времени жизни запусков.
func (s *Scheduler) enter() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}
	s.wg.Add(1)
	if s.ctx == nil {
		return context.Background(), nil
	}
	return s.ctx, nil
}

// loop ждёт ближайшего времени запуска и выполняет импорт.
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		now := s.now().In(s.cfg.Location)
		next := NextRun(now, s.cfg.Hour, s.cfg.Minute)
		nextRunTimestamp.Set(float64(next.Unix()))
		s.logger.Debug("Следующий запуск импорта", slog.Time("at", next))

		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(now)):
		}

		if ctx.Err() != nil {
			return
		}
		if _, err := s.TriggerNow(ctx, model.TriggerSchedule); errors.Is(err, ErrRunInProgress) {
			s.logger.Warn("Плановый запуск пропущен: предыдущий ещё выполняется")
		}
	}
}

// NextRun возвращает ближайший момент hour:minute строго после now
// в часовом поясе now.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}
