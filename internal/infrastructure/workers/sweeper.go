package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"raisserver/internal/domain/repositories"
)

// sweepTimeout бюджет одного прохода уборщика
const sweepTimeout = 30 * time.Second

// Sweeper периодически помечает зависшие в processing сессии как failed
// и догоняет отложенные пересчеты месячных сводов
type Sweeper struct {
	cron     *cron.Cron
	sessions repositories.UploadSessionRepository
	rollups  repositories.RollupRepository
	maxAge   time.Duration
}

// NewSweeper создает уборщик с расписанием @every interval
func NewSweeper(
	sessions repositories.UploadSessionRepository,
	rollups repositories.RollupRepository,
	interval, maxAge time.Duration,
) (*Sweeper, error) {
	s := &Sweeper{
		sessions: sessions,
		rollups:  rollups,
		maxAge:   maxAge,
	}

	c := cron.New()
	if _, err := c.AddFunc("@every "+interval.String(), s.sweep); err != nil {
		return nil, fmt.Errorf("failed to schedule sweeper: %w", err)
	}
	s.cron = c
	return s, nil
}

// Start запускает расписание уборщика
func (s *Sweeper) Start() {
	s.cron.Start()
	log.Printf("[Sweeper] Started (stale age %s)", s.maxAge)
}

// Stop останавливает расписание и дожидается текущего прохода
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Printf("[Sweeper] Stopped")
}

// sweep один проход: зависшие сессии и отложенные своды
func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	olderThan := time.Now().UTC().Add(-s.maxAge)
	if n, err := s.sessions.MarkStaleFailed(ctx, olderThan); err != nil {
		log.Printf("[Sweeper] Failed to mark stale sessions: %v", err)
	} else if n > 0 {
		log.Printf("[Sweeper] Marked %d stale sessions as failed", n)
	}

	if refreshed, err := s.rollups.RefreshDirty(ctx); err != nil {
		log.Printf("[Sweeper] Rollup refresh failed: %v", err)
	} else if refreshed > 0 {
		log.Printf("[Sweeper] Refreshed %d rollup months", refreshed)
	}
}
