// Package workers содержит фоновую обработку загрузок: пул воркеров
// конвейера и уборщик зависших сессий.
package workers

import (
	"context"
	"errors"
	"log"
	"sync"

	"raisserver/internal/application/ingestion"
)

// Domain-specific errors для очереди обработки
var (
	ErrQueueFull   = errors.New("ingest queue is full")
	ErrPoolStopped = errors.New("ingest pool is stopped")
)

// Pool обрабатывает задания загрузки фиксированным числом воркеров.
// Очередь ограничена; переполнение возвращается вызывающему, не блокирует
type Pool struct {
	svc     *ingestion.Service
	jobs    chan *ingestion.Job
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool создает пул; размеры меньше единицы приводятся к единице
func NewPool(svc *ingestion.Service, workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		svc:     svc,
		jobs:    make(chan *ingestion.Job, queueSize),
		workers: workers,
	}
}

// Start запускает воркеров; каждый берет задания из очереди до ее закрытия
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i+1)
	}
	log.Printf("[Ingest] Started %d workers (queue capacity %d)", p.workers, cap(p.jobs))
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		log.Printf("[Ingest Worker %d] Processing session %s (%d files)", id, job.SessionUUID, len(job.Files))
		p.svc.ProcessSession(ctx, job)
		log.Printf("[Ingest Worker %d] Finished session %s", id, job.SessionUUID)
	}
}

// Enqueue ставит задание в очередь без ожидания
func (p *Pool) Enqueue(job *ingestion.Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolStopped
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueDepth возвращает число заданий, ожидающих воркера
func (p *Pool) QueueDepth() int {
	return len(p.jobs)
}

// Stop закрывает очередь и дожидается завершения взятых заданий
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.jobs)
	p.wg.Wait()
	log.Printf("[Ingest] All workers stopped")
}
