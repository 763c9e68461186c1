package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// SchedulerOptions bound the background enrichment worker.
type SchedulerOptions struct {
	BatchSize   int           // tasks run concurrently within one batch
	BatchPause  time.Duration // pause between batches, throttles LLM/provider load
	TaskTimeout time.Duration // per-task budget
}

// EnrichmentScheduler runs enrichment after the response has been sent.
// Batches are strictly sequential; tasks within a batch run concurrently.
// An in-flight URL set dedupes work submitted by overlapping requests, and
// tasks run on context.Background so request cancellation never reaches them.
type EnrichmentScheduler struct {
	enricher ports.Enricher
	writer   *Writer
	opts     SchedulerOptions
	logger   *slog.Logger

	mu       sync.Mutex
	started  bool
	pending  []domain.EnrichmentTask
	inflight map[string]struct{}

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

var _ ports.EnrichmentQueue = (*EnrichmentScheduler)(nil)

// NewEnrichmentScheduler wires the worker; Start must be called before
// enqueued tasks are processed.
func NewEnrichmentScheduler(enricher ports.Enricher, writer *Writer, opts SchedulerOptions, logger *slog.Logger) *EnrichmentScheduler {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 2
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = time.Minute
	}
	return &EnrichmentScheduler{
		enricher: enricher,
		writer:   writer,
		opts:     opts,
		logger:   logger,
		inflight: make(map[string]struct{}),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Enqueue admits tasks for background processing without blocking. URLs
// already queued or being processed are dropped; a future request retries
// them because their record still lacks a real summary.
func (s *EnrichmentScheduler) Enqueue(tasks []domain.EnrichmentTask) {
	if len(tasks) == 0 {
		return
	}

	s.mu.Lock()
	admitted := 0
	for _, task := range tasks {
		url := task.Candidate.SourceURL
		if url == "" {
			continue
		}
		if _, busy := s.inflight[url]; busy {
			continue
		}
		s.inflight[url] = struct{}{}
		s.pending = append(s.pending, task)
		admitted++
	}
	s.mu.Unlock()

	if admitted > 0 {
		s.debug("tasks enqueued", "admitted", admitted, "submitted", len(tasks))
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// Start launches the worker goroutine. Repeated calls are no-ops.
func (s *EnrichmentScheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	go s.run()
}

// Stop halts the worker after the current batch settles and waits for it,
// bounded by ctx. Stopping a scheduler that never started returns
// immediately.
func (s *EnrichmentScheduler) Stop(ctx context.Context) error {
	s.once.Do(func() { close(s.done) })

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *EnrichmentScheduler) run() {
	defer close(s.stopped)

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			batch := s.takeBatch()
			if len(batch) == 0 {
				break
			}
			s.processBatch(batch)

			select {
			case <-s.done:
				return
			case <-time.After(s.opts.BatchPause):
			}
		}
	}
}

func (s *EnrichmentScheduler) takeBatch() []domain.EnrichmentTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.opts.BatchSize
	if n > len(s.pending) {
		n = len(s.pending)
	}
	if n == 0 {
		return nil
	}
	batch := make([]domain.EnrichmentTask, n)
	copy(batch, s.pending[:n])
	s.pending = s.pending[n:]
	return batch
}

func (s *EnrichmentScheduler) processBatch(batch []domain.EnrichmentTask) {
	var wg sync.WaitGroup
	for _, task := range batch {
		wg.Add(1)
		go func(task domain.EnrichmentTask) {
			defer wg.Done()
			s.process(task)
		}(task)
	}
	wg.Wait()
}

// process runs one task to completion. Failures are logged and dropped; the
// task is never retried within this cycle.
func (s *EnrichmentScheduler) process(task domain.EnrichmentTask) {
	url := task.Candidate.SourceURL
	defer func() {
		s.mu.Lock()
		delete(s.inflight, url)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.TaskTimeout)
	defer cancel()

	summary, fallback := s.enricher.Summarize(ctx, task.Candidate)

	if _, err := s.writer.Upsert(ctx, task, summary, fallback); err != nil {
		s.warn("persist enrichment", "url", url, "error", err)
		return
	}
	s.debug("enriched", "url", url, "fallback", fallback)
}

func (s *EnrichmentScheduler) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *EnrichmentScheduler) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
