package scheduler

import (
	"sync"
	"time"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

// State — состояние последнего завершённого запуска импорта в пределах процесса.
// Пишет планировщик, читает status-эндпоинт. После перезапуска сбрасывается.
type State struct {
	mu      sync.RWMutex
	lastRun time.Time
	last    *model.RunOutcome
}

// NewState создаёт состояние «импорт ещё не выполнялся».
func NewState() *State {
	return &State{}
}

// Record сохраняет итог завершённого запуска (успешного или нет).
func (s *State) Record(o *model.RunOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = o.FinishedAt
	s.last = o
}

// LastRun возвращает время завершения последнего запуска.
// false — запусков ещё не было.
func (s *State) LastRun() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.last != nil
}

// LastOutcome возвращает итог последнего запуска или nil.
func (s *State) LastOutcome() *model.RunOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
